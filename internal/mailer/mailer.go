// Package mailer sends transactional email through SendGrid. Callers treat
// it as a best-effort collaborator: every send is dispatched off the request
// path and failures are logged, never propagated.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hamzamohiuddin1/msaconnect/internal/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrMissingAPIKey = errors.New("SendGrid API key is not configured")

type SendGridMailer struct {
	client      *sendgrid.Client
	fromAddress string
	fromName    string
	frontendURL string
	logger      *slog.Logger
}

func New(cfg config.EmailConfig, logger *slog.Logger) (*SendGridMailer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	fromAddress := cfg.FromAddress
	if fromAddress == "" {
		fromAddress = "noreply@msaconnect.com"
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "MSAConnect"
	}

	return &SendGridMailer{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: cfg.FrontendURL,
		logger:      logger,
	}, nil
}

// SendConfirmation emails the single-use confirmation link for a pending
// registration.
func (m *SendGridMailer) SendConfirmation(ctx context.Context, to, name, token string) error {
	confirmationURL := fmt.Sprintf("%s/confirm-email?token=%s", m.frontendURL, token)

	subject := "MSAConnect - Confirm Your Email Address"
	plain := fmt.Sprintf(
		"Welcome to MSAConnect, %s! Confirm your email address by visiting: %s (the link expires in 24 hours)",
		name, confirmationURL,
	)
	html := confirmationHTML(name, confirmationURL)

	return m.send(ctx, to, name, subject, plain, html)
}

// SendNewClassmate notifies an existing enrollee that someone new joined one
// of their courses.
func (m *SendGridMailer) SendNewClassmate(ctx context.Context, to, recipientName, classmateName, courseID, sectionCode string) error {
	subject := fmt.Sprintf("MSAConnect - New Classmate in %s", courseID)
	plain := fmt.Sprintf(
		"Salaam %s! %s just joined %s (section %s) on MSAConnect. Log in to exchange contact information.",
		recipientName, classmateName, courseID, sectionCode,
	)
	html := newClassmateHTML(recipientName, classmateName, courseID, sectionCode, m.frontendURL)

	return m.send(ctx, to, recipientName, subject, plain, html)
}

func (m *SendGridMailer) send(ctx context.Context, toAddress, toName, subject, plain, html string) error {
	from := mail.NewEmail(m.fromName, m.fromAddress)
	to := mail.NewEmail(toName, toAddress)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	m.logger.InfoContext(ctx, "email sent", "to", toAddress, "subject", subject, "status", resp.StatusCode)
	return nil
}
