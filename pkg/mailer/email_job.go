package mailer

// EmailJob is the message the order service queues for the notify worker.
// Either Template (rendered with Data) or a literal Subject/Text/HTML body is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	// Ref ties the job back to the entity that caused it, e.g. an order id.
	Ref string `json:"ref,omitempty"`
}

// Templated reports whether the body is rendered at dispatch time.
func (j EmailJob) Templated() bool { return j.Template != "" }
