package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"skknicheck/internal/config"
	"skknicheck/internal/logging"
	"skknicheck/internal/reconcile"
)

// Service defines the notification surface exposed to the workflow.
type Service interface {
	// NotifyRevoked delivers the revoked-standard alert. It reports whether at
	// least one channel accepted the message; an empty list sends nothing.
	NotifyRevoked(ctx context.Context, alerts []reconcile.Alert) (bool, error)
	// NotifyError reports a failed run on operational channels (ntfy).
	NotifyError(ctx context.Context, err error, stage string) error
	TestNotification(ctx context.Context) error
}

// Channel is one delivery transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Option customizes NewService.
type Option func(*serviceOptions)

type serviceOptions struct {
	transport  Transport
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// WithTransport replaces the SMTP transport.
func WithTransport(t Transport) Option {
	return func(o *serviceOptions) { o.transport = t }
}

// WithHTTPClient replaces the ntfy HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *serviceOptions) { o.httpClient = c }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithClock overrides the Date header clock.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// NewService builds a fan-out over every configured channel. Email is enabled
// when SMTP user, password and recipients are all set; ntfy when a topic URL
// is set. With neither, a noop implementation is returned.
func NewService(cfg *config.Config, opts ...Option) Service {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.NewComponentLogger(o.logger, "notify")

	var alerts, ops []Channel
	if cfg.EmailEnabled() {
		email := cfg.Notifications.Email
		transport := o.transport
		if transport == nil {
			transport = NewSMTPTransport(SMTPConfig{
				Host:     email.Host,
				Port:     email.Port,
				Username: email.Username,
				Password: email.Password,
				Timeout:  defaultSMTPTimeout,
			})
		}
		alerts = append(alerts, &emailChannel{
			from:       email.From,
			recipients: email.Recipients,
			transport:  transport,
			now:        o.now,
		})
	}
	if cfg.Notifications.NtfyTopic != "" {
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.NotifyTimeout()}
		}
		ntfy := &ntfyChannel{endpoint: cfg.Notifications.NtfyTopic, client: client}
		alerts = append(alerts, ntfy)
		ops = append(ops, ntfy)
	}
	if len(alerts) == 0 {
		logger.Debug("no notification channel configured")
		return noopService{}
	}
	return &fanout{alerts: alerts, ops: ops, logger: logger}
}

// NewFanout wraps explicit channels. Operational messages go to ops only.
func NewFanout(logger *slog.Logger, alerts, ops []Channel) Service {
	return &fanout{alerts: alerts, ops: ops, logger: logging.NewComponentLogger(logger, "notify")}
}

type fanout struct {
	alerts []Channel
	ops    []Channel
	logger *slog.Logger
}

func (f *fanout) NotifyRevoked(ctx context.Context, alerts []reconcile.Alert) (bool, error) {
	if len(alerts) == 0 {
		f.logger.Info("no revoked standards, alert skipped")
		return false, nil
	}
	return f.broadcast(ctx, f.alerts, RevokedMessage(alerts))
}

func (f *fanout) NotifyError(ctx context.Context, err error, stage string) error {
	_, sendErr := f.broadcast(ctx, f.ops, errorMessage(err, stage))
	return sendErr
}

func (f *fanout) TestNotification(ctx context.Context) error {
	_, err := f.broadcast(ctx, f.alerts, testMessage())
	return err
}

func (f *fanout) broadcast(ctx context.Context, channels []Channel, msg Message) (bool, error) {
	var (
		sent bool
		errs []error
	)
	for _, ch := range channels {
		if err := ch.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			logging.WarnWithContext(f.logger, "notification delivery failed", "notify_failed",
				logging.String("channel", ch.Name()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check channel credentials and connectivity"),
				logging.String(logging.FieldImpact, "recipients were not alerted on this channel"),
			)
			continue
		}
		sent = true
		f.logger.Info("notification sent",
			logging.String("channel", ch.Name()),
			logging.String("subject", msg.Subject),
		)
	}
	return sent, errors.Join(errs...)
}

type noopService struct{}

func (noopService) NotifyRevoked(context.Context, []reconcile.Alert) (bool, error) { return false, nil }
func (noopService) NotifyError(context.Context, error, string) error               { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
