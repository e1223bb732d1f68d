package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
)

// DirectDispatcher sends notification emails in a background goroutine,
// bypassing the broker. Used when NATS is not configured so that the
// fan-out stays fire-and-forget either way.
type DirectDispatcher struct {
	mailer  Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewDirectDispatcher(mailer Mailer, logger *slog.Logger, m *metrics.Metrics) *DirectDispatcher {
	return &DirectDispatcher{
		mailer:  mailer,
		logger:  logger,
		metrics: m,
	}
}

func (d *DirectDispatcher) Publish(ctx context.Context, event Event) error {
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := d.mailer.SendNewClassmate(sendCtx, event.RecipientEmail, event.RecipientName, event.ClassmateName, event.CourseID, event.SectionCode); err != nil {
			d.logger.Error("failed to send classmate notification",
				"recipient", event.RecipientEmail,
				"course_id", event.CourseID,
				"error", err,
			)
			d.metrics.RecordEmailFailed(sendCtx)
			return
		}

		d.metrics.RecordEmailSent(sendCtx)
	}()
	return nil
}
