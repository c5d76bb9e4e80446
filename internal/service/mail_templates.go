package service

import (
	"bytes"
	"fmt"
	"html/template"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(
		`<h2>Welcome, {{.Name}}!</h2>
<p>Thank you for registering, you are almost done.</p>
<p>In order to confirm your email, click the verification link below.</p>
<a href="{{.Link}}">Click here to verify</a>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<h2>Dear {{.Name}},</h2>
<p>Your reset password link is available below. It expires in {{.ExpiresIn}}.</p>
<a href="{{.Link}}">Reset</a>
<p>If you didn't ask for a password reset you can ignore this mail.</p>`))
)

// VerificationMail renders the mail sent after registering
func VerificationMail(to, name, link string) (*Mail, error) {
	var buf bytes.Buffer

	err := verificationTmpl.Execute(&buf, map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render verification mail, %w", err)
	}

	return &Mail{
		To:      to,
		Subject: "Email Verification",
		HTML:    buf.String(),
	}, nil
}

// ResetMail renders the mail holding a password reset link
func ResetMail(to, name, link, expiresIn string) (*Mail, error) {
	var buf bytes.Buffer

	err := resetTmpl.Execute(&buf, map[string]string{
		"Name":      name,
		"Link":      link,
		"ExpiresIn": expiresIn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render reset mail, %w", err)
	}

	return &Mail{
		To:      to,
		Subject: "Reset Password",
		HTML:    buf.String(),
	}, nil
}
