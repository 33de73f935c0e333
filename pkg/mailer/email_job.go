package mailer

// Template names understood by the worker.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
	TemplateDueDigest     = "due_digest"
)

// EmailJob is the unit of work queued to RabbitMQ for the worker.
// Either Template+Data or Subject+Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
}
