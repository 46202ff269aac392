package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

var (
	ErrWebhookMissingHeaders = errors.New("webhook: missing signature headers")
	ErrWebhookTimestamp      = errors.New("webhook: timestamp outside tolerance")
	ErrWebhookSignature      = errors.New("webhook: no matching signature")
)

const webhookSecretPrefix = "whsec_"

// WebhookVerifier checks svix-signed identity events. Signature matching is
// done by the svix library; the timestamp window is ours so it stays
// configurable and testable.
type WebhookVerifier struct {
	wh        *svix.Webhook
	Tolerance time.Duration
	Now       func() time.Time
}

// NewWebhookVerifier accepts the dashboard secret, "whsec_" + base64 key.
func NewWebhookVerifier(secret string, tolerance time.Duration) (*WebhookVerifier, error) {
	if strings.TrimPrefix(secret, webhookSecretPrefix) == "" {
		return nil, errors.New("webhook: empty secret")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("webhook: secret: %w", err)
	}
	return &WebhookVerifier{wh: wh, Tolerance: tolerance, Now: time.Now}, nil
}

// Sign produces a "v1,<sig>" entry for the given message, as the sender would.
func (v *WebhookVerifier) Sign(id string, ts time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, ts, body)
}

// webhookHeader reads the unbranded webhook-* header, falling back to svix-*.
func webhookHeader(h http.Header, name string) string {
	if val := h.Get("webhook-" + name); val != "" {
		return val
	}
	return h.Get("svix-" + name)
}

func (v *WebhookVerifier) Verify(headers http.Header, body []byte) error {
	id, timestamp := webhookHeader(headers, "id"), webhookHeader(headers, "timestamp")
	if id == "" || timestamp == "" || webhookHeader(headers, "signature") == "" {
		return ErrWebhookMissingHeaders
	}
	sec, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrWebhookTimestamp
	}
	if d := v.Now().Sub(time.Unix(sec, 0)); d > v.Tolerance || d < -v.Tolerance {
		return ErrWebhookTimestamp
	}
	if err := v.wh.VerifyIgnoringTimestamp(body, headers); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}
	return nil
}
