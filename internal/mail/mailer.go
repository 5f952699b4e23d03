package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"hoalan-be/internal/config"
)

// Message is a templated notification. Template names the body template;
// Data is handed to it as-is.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     any
}

// Mailer sends templated notifications. Callers treat sends as
// fire-and-forget; a failed send is logged, never surfaced.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

func NewSMTPMailer(cfg config.SMTPConfig) (Mailer, error) {
	tmpl, err := template.New("mail").Parse(bodyTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail templates: %w", err)
	}

	return &smtpMailer{cfg: cfg, templates: tmpl}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, msg.Template, msg.Data); err != nil {
		return fmt.Errorf("failed to render mail template %s: %w", msg.Template, err)
	}

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&raw, "To: %s\r\n", msg.To)
	fmt.Fprintf(&raw, "Subject: %s\r\n", msg.Subject)
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	raw.WriteString("\r\n")
	raw.Write(body.Bytes())

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, raw.Bytes())
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
