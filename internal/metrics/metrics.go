package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	usersRegistered   metric.Int64Counter
	usersConfirmed    metric.Int64Counter
	logins            metric.Int64Counter
	classesUpdated    metric.Int64Counter
	classmateSearches metric.Int64Counter
	emailsSent        metric.Int64Counter
	emailsFailed      metric.Int64Counter
}

func New(ctx context.Context, serviceName string) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Database: database}

	m.usersRegistered, err = meter.Int64Counter(
		"msaconnect.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.usersConfirmed, err = meter.Int64Counter(
		"msaconnect.users.confirmed",
		metric.WithDescription("Total number of email confirmations completed"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"msaconnect.logins",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.classesUpdated, err = meter.Int64Counter(
		"msaconnect.classes.updated",
		metric.WithDescription("Total number of class list replacements"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, err
	}

	m.classmateSearches, err = meter.Int64Counter(
		"msaconnect.classmates.searched",
		metric.WithDescription("Total number of classmate searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, err
	}

	m.emailsSent, err = meter.Int64Counter(
		"msaconnect.emails.sent",
		metric.WithDescription("Total number of notification emails sent"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	m.emailsFailed, err = meter.Int64Counter(
		"msaconnect.emails.failed",
		metric.WithDescription("Total number of notification emails that failed to send"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing.
// The returned Metrics will safely ignore all Record* calls.
func NewMock() *Metrics {
	return &Metrics{
		Database: &DatabaseMetrics{},
	}
}

func (m *Metrics) RecordUserRegistered(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordUserConfirmed(ctx context.Context) {
	if m != nil && m.usersConfirmed != nil {
		m.usersConfirmed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordClassesUpdated(ctx context.Context) {
	if m != nil && m.classesUpdated != nil {
		m.classesUpdated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordClassmateSearch(ctx context.Context) {
	if m != nil && m.classmateSearches != nil {
		m.classmateSearches.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEmailSent(ctx context.Context) {
	if m != nil && m.emailsSent != nil {
		m.emailsSent.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEmailFailed(ctx context.Context) {
	if m != nil && m.emailsFailed != nil {
		m.emailsFailed.Add(ctx, 1)
	}
}
