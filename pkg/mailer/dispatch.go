package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/delivery-marketplace/pkg/mailer/templates"
)

var (
	ErrNoRecipient = errors.New("email job has no recipient")
	ErrTemplate    = errors.New("email template failed")
)

// Permanent reports whether retrying the job can not succeed.
func Permanent(err error) bool {
	return errors.Is(err, ErrNoRecipient) || errors.Is(err, ErrTemplate)
}

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Dispatcher renders templated jobs and hands them to a Sender.
type Dispatcher struct {
	Sender Sender
	Brand  templates.Brand
}

func (d *Dispatcher) Dispatch(ctx context.Context, job EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return ErrNoRecipient
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Templated() {
		var err error
		subject, text, html, err = templates.Render(job.Template, templates.ApplyBrand(job.Data, d.Brand))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTemplate, err)
		}
	}
	return d.Sender.Send(ctx, job.To, subject, text, html)
}
