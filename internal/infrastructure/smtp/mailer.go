package smtp

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-push-inbox/internal/config"
	"github.com/go-push-inbox/internal/domain"
	"github.com/wneessen/go-mail"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	host     string
	port     int
	from     string
	username string
	password string
	tls      bool
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		tls:      cfg.SMTPTLS,
	}
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set From address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set To address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *mailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.port)}
	if m.tls {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}
	return opts
}

// EmailSink mirrors displayed notifications to a mailbox.
type EmailSink struct {
	mailer Mailer
	to     string
}

func NewEmailSink(mailer Mailer, to string) *EmailSink {
	return &EmailSink{mailer: mailer, to: to}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Show(ctx context.Context, ch domain.Channel, req domain.DisplayRequest) error {
	return s.mailer.SendEmail(ctx, s.to, fmt.Sprintf("[%s] %s", ch.Name, req.Title), emailBody(req))
}

func emailBody(req domain.DisplayRequest) string {
	var b strings.Builder
	b.WriteString(req.Body)
	if len(req.Data) > 0 {
		b.WriteString("\n\n")
		for _, k := range slices.Sorted(maps.Keys(req.Data)) {
			fmt.Fprintf(&b, "%s: %s\n", k, req.Data[k])
		}
	}
	return b.String()
}
