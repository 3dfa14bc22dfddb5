package notifications

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	implicitTLSPort    = 465
	defaultSMTPTimeout = 30 * time.Second
	mailerName         = "skknicheck"
	priorityHigh       = "high"
)

// Transport delivers a composed message to its envelope recipients.
type Transport interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPConfig describes the mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSConfig overrides the TLS settings used for implicit TLS and STARTTLS.
	TLSConfig *tls.Config
	Timeout   time.Duration
}

type smtpTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport returns a Transport using implicit TLS on port 465 and
// STARTTLS (when offered) on any other port.
func NewSMTPTransport(cfg SMTPConfig) Transport {
	return &smtpTransport{cfg: cfg}
}

func (t *smtpTransport) Send(ctx context.Context, msg *mail.Msg) error {
	client, err := t.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return nil
}

func (t *smtpTransport) client() (*mail.Client, error) {
	timeout := t.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(timeout),
	}
	if t.cfg.Port == implicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.cfg.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(t.cfg.TLSConfig))
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	client, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

type emailChannel struct {
	from       string
	recipients []string
	transport  Transport
	now        func() time.Time
}

func (e *emailChannel) Name() string { return "email" }

func (e *emailChannel) Send(ctx context.Context, msg Message) error {
	if len(e.recipients) == 0 {
		return errors.New("email: no recipients")
	}
	m, err := composeEmail(e.from, e.recipients, msg, e.now())
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if err := e.transport.Send(ctx, m); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// composeEmail builds a single-part UTF-8 text message. Addresses are parsed
// so a value carrying header syntax is rejected instead of written verbatim.
func composeEmail(from string, to []string, msg Message, now time.Time) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingQP))
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(now)
	m.SetMessageID()
	m.SetGenHeader(mail.HeaderXMailer, mailerName)
	if msg.Priority == priorityHigh {
		m.SetImportance(mail.ImportanceHigh)
	}
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
