package templates

import (
	"strings"
	"time"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithEstimate(eta string) Option {
	return func(d *EmailData) { d.Estimate = strings.TrimSpace(eta) }
}

var statusLabels = map[string]string{
	"new":          "New",
	"accepted":     "Accepted",
	"preparing":    "Being prepared",
	"for_delivery": "Out for delivery",
	"completed":    "Completed",
	"cancelled":    "Cancelled",
	"declined":     "Declined by the store",
}

// StatusLabel is the customer-facing wording of an order status.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// NewOrderStatusData builds the payload of an order status email.
func NewOrderStatusData(name, orderNumber, previous, status string, opts ...Option) map[string]any {
	d := EmailData{
		Name:           name,
		Type:           OrderStatus,
		OrderNumber:    orderNumber,
		PreviousStatus: previous,
		Status:         status,
		StatusLabel:    StatusLabel(status),
	}
	for _, o := range opts {
		o(&d)
	}
	return ToMap(d)
}

// Brand is the sender identity merged into every job by the worker.
type Brand struct {
	AppName     string
	CompanyName string
	LogoURL     string
	SupportURL  string
}

// ApplyBrand fills branding keys that the producer left empty.
func ApplyBrand(data map[string]any, b Brand) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	for k, v := range map[string]string{
		"AppName":     b.AppName,
		"CompanyName": b.CompanyName,
		"LogoURL":     b.LogoURL,
		"SupportURL":  b.SupportURL,
	} {
		if cur, ok := data[k].(string); ok && strings.TrimSpace(cur) != "" {
			continue
		}
		data[k] = v
	}
	return data
}
