package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

var verifyEmail = template.Must(template.New("verify_email").Parse(`
<p>Hi {{.Name}},</p>
<p>Confirm your email address for {{.Company}} by following this link:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in 24 hours. If you did not create an account, ignore this message.</p>
`))

var resetPassword = template.Must(template.New("reset_password").Parse(`
<p>Hi {{.Name}},</p>
<p>A password reset was requested for your {{.Company}} account. Reset it here:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in 30 minutes. If this wasn't you, you can safely ignore this message.</p>
`))

var dueDigest = template.Must(template.New("due_digest").Parse(`
<p>Hi {{.Name}},</p>
<p>You have loans due soon:</p>
<ul>
{{range .Items}}<li><strong>{{.Borrower}}</strong>: {{.Amount}} due {{.When}}</li>
{{end}}</ul>
<p>Open your dashboard to follow up.</p>
`))

var registry = map[string]*template.Template{
	"verify_email":   verifyEmail,
	"reset_password": resetPassword,
	"due_digest":     dueDigest,
}

var subjects = map[string]string{
	"verify_email":   "Verify your email address",
	"reset_password": "Reset your password",
	"due_digest":     "Loans due soon",
}

// Render produces the subject and HTML body for a named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", fmt.Errorf("templates: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[name], buf.String(), nil
}
