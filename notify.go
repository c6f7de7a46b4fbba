package main

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/slack-go/slack"
)

// Notifier delivers one alert decision. Implementations must not panic on
// transport failure; errors are returned so the pipeline can count them and
// keep going.
type Notifier interface {
	Send(ctx context.Context, decision AlertDecision) error
}

// DeliveryNotifier sends email alerts over SMTP (falling back to .eml drafts
// when SMTP is not configured) and chat digests to a webhook as a JSON
// payload with a single text field, where anything but HTTP 200 is a failure.
type DeliveryNotifier struct {
	cfg Config
}

func NewDeliveryNotifier(cfg Config) *DeliveryNotifier {
	return &DeliveryNotifier{cfg: cfg}
}

func (n *DeliveryNotifier) Send(ctx context.Context, decision AlertDecision) error {
	switch decision.Channel {
	case ChannelWebhook:
		return n.sendWebhook(ctx, decision)
	case ChannelEmail:
		return n.sendEmail(decision)
	default:
		return fmt.Errorf("unknown alert channel %q", decision.Channel)
	}
}

func (n *DeliveryNotifier) sendWebhook(ctx context.Context, decision AlertDecision) error {
	if decision.Recipient == "" {
		return fmt.Errorf("webhook digest %q: no webhook URL configured", decision.Subject)
	}
	for i, chunk := range decision.Chunks {
		text := chunk
		if len(decision.Chunks) > 1 {
			text = fmt.Sprintf("%s (part %d/%d)\n%s", decision.Subject, i+1, len(decision.Chunks), chunk)
		}
		err := slack.PostWebhookCustomHTTPContext(ctx, decision.Recipient, externalHTTPClient,
			&slack.WebhookMessage{Text: text})
		if err != nil {
			return fmt.Errorf("webhook digest %q part %d/%d: %w", decision.Subject, i+1, len(decision.Chunks), err)
		}
	}
	return nil
}

func (n *DeliveryNotifier) sendEmail(decision AlertDecision) error {
	if decision.Recipient == "" {
		return fmt.Errorf("email %q (%s): no recipient", decision.Subject, decision.Kind)
	}

	body := joinChunks(decision.Chunks)
	if !n.cfg.EmailConfigured() {
		// No SMTP credentials: leave a draft behind instead of dropping the
		// alert on the floor.
		path, err := WriteEmailDraftFile(body, n.cfg.ReportOutputDir, time.Now(),
			fmt.Sprintf("%s %s", decision.Subject, decision.Recipient))
		if err != nil {
			return fmt.Errorf("email draft %q for %s: %w", decision.Subject, decision.Recipient, err)
		}
		log.Printf("email draft written kind=%s recipient=%s file=%s", decision.Kind, decision.Recipient, path)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.EmailUser, n.cfg.EmailPassword, n.cfg.SMTPHost)
	msg := buildEmailMessage(n.cfg.EmailUser, decision.Recipient, decision.Subject, body)

	if err := smtp.SendMail(addr, auth, n.cfg.EmailUser, []string{decision.Recipient}, msg); err != nil {
		return fmt.Errorf("email %q to %s: %w", decision.Subject, decision.Recipient, err)
	}
	return nil
}

func buildEmailMessage(from, to, subject, body string) []byte {
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		from, to, subject)
	return []byte(headers + normalizeCRLF(body))
}

func joinChunks(chunks []string) string {
	if len(chunks) == 1 {
		return chunks[0]
	}
	var body string
	for _, c := range chunks {
		body += c
	}
	return body
}
