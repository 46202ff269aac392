package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const defaultSendTimeout = 10 * time.Second

// Mailgun delivers notifications through the Mailgun HTTP API.
// The underlying client is built once and shared across sends.
type Mailgun struct {
	client  *mg.MailgunImpl
	sender  string
	tag     string
	timeout time.Duration
}

type MailgunOption func(*Mailgun)

// WithAPIBase points the client at another region, e.g. mg.APIBaseEU.
func WithAPIBase(base string) MailgunOption {
	return func(m *Mailgun) {
		if base != "" {
			m.client.SetAPIBase(base)
		}
	}
}

// WithTag labels every outgoing message for Mailgun analytics.
func WithTag(tag string) MailgunOption {
	return func(m *Mailgun) { m.tag = tag }
}

func NewMailgun(domain, apiKey, sender string, opts ...MailgunOption) *Mailgun {
	m := &Mailgun{
		client:  mg.NewMailgun(domain, apiKey),
		sender:  sender,
		timeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send implements Sender. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if m.tag != "" {
		if err := msg.AddTag(m.tag); err != nil {
			return fmt.Errorf("mailgun: tag: %w", err)
		}
	}
	c, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun: send to %s: %w", to, err)
	}
	return nil
}
