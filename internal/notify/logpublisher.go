package notify

import (
	"context"
	"log/slog"
)

// LogPublisher records events in the log instead of delivering them. Used in
// local development when no email provider is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "notification dropped (no email provider configured)",
		"recipient", event.RecipientEmail,
		"course_id", event.CourseID,
	)
	return nil
}
