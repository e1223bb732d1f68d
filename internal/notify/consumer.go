package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Mailer sends a new-classmate notification email.
type Mailer interface {
	SendNewClassmate(ctx context.Context, to, recipientName, classmateName, courseID, sectionCode string) error
}

// Consumer subscribes to notification events and hands them to the mailer.
// It runs in-process alongside the HTTP server.
type Consumer struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	mailer  Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewConsumer(url string, subject string, mailer Mailer, logger *slog.Logger, m *metrics.Metrics) (*Consumer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		conn:    nc,
		subject: subject,
		mailer:  mailer,
		logger:  logger,
		metrics: m,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.Error("failed to unmarshal notification event", "error", err)
			return
		}

		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.mailer.SendNewClassmate(sendCtx, event.RecipientEmail, event.RecipientName, event.ClassmateName, event.CourseID, event.SectionCode); err != nil {
			c.logger.Error("failed to send classmate notification",
				"recipient", event.RecipientEmail,
				"course_id", event.CourseID,
				"error", err,
			)
			c.metrics.RecordEmailFailed(sendCtx)
			return
		}

		c.metrics.RecordEmailSent(sendCtx)
		c.logger.Info("classmate notification sent",
			"recipient", event.RecipientEmail,
			"course_id", event.CourseID,
		)
	})
	if err != nil {
		return err
	}

	c.sub = sub
	c.logger.Info("notification consumer started", "subject", c.subject)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) Close() error {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}

// HealthCheck verifies the NATS connection is healthy
func (c *Consumer) HealthCheck() error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}

	if !c.conn.IsConnected() {
		return nats.ErrDisconnected
	}

	return nil
}
