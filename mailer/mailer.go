package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Message is a single HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages and returns the recipient addresses the
// transport accepted.
type Mailer interface {
	Send(ctx context.Context, msg Message) ([]string, error)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	SSL      bool
	Timeout  time.Duration
}

// SMTPMailer sends through a single SMTP relay. A connection is dialed per send.
type SMTPMailer struct {
	client *mail.Client
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) ([]string, error) {
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	em := mail.NewMsg()
	if err := em.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := em.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	em.Subject(msg.Subject)
	em.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, em); err != nil {
		return nil, fmt.Errorf("send mail: %w", err)
	}
	return msg.To, nil
}
