package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wneessen/go-mail"
)

type EmailOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// Email sends the summary over SMTP with the CSVs attached.
type Email struct {
	opts EmailOptions
}

func NewEmail(opts EmailOptions) (*Email, error) {
	if opts.Host == "" || opts.From == "" || len(opts.To) == 0 {
		return nil, fmt.Errorf("email: host, from and to are required")
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Email{opts: opts}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, msg Message) error {
	m, err := e.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(e.opts.Port),
		mail.WithTimeout(e.opts.Timeout),
	}
	if e.opts.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if e.opts.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.opts.Username),
			mail.WithPassword(e.opts.Password),
		)
	}

	client, err := mail.NewClient(e.opts.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// build assembles the MIME message. Attachments that do not exist are
// skipped so a missing optional file never blocks the summary.
func (e *Email) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.opts.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(e.opts.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		m.AttachFile(path, mail.WithFileName(filepath.Base(path)))
	}
	return m, nil
}
