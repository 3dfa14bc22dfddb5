package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"skknicheck/internal/logging"
	"skknicheck/internal/notifications"
	"skknicheck/internal/reconcile"
	"skknicheck/internal/records"
	"skknicheck/internal/runlock"
	"skknicheck/internal/services"
	"skknicheck/internal/sheet"
	"skknicheck/internal/store"
)

// Reconciler classifies records in place. *reconcile.Reconciler satisfies it.
type Reconciler interface {
	Run(ctx context.Context, recs []records.Record) (reconcile.Outcome, error)
}

// StoreOpener authenticates against the data store.
type StoreOpener func(ctx context.Context) (store.Store, error)

// Dependencies wires the collaborators of a run.
type Dependencies struct {
	OpenStore  StoreOpener
	Reconciler Reconciler
	Notifier   notifications.Service
	Columns    sheet.Columns
	// LockPath, when set, is flocked for the duration of the run.
	LockPath string
	Logger   *slog.Logger
}

// Options toggles side effects of a run.
type Options struct {
	// DryRun classifies without writing the store or sending alerts.
	DryRun bool
	// NoNotify writes the store but skips alert delivery.
	NoNotify bool
}

// Summary describes a completed (or partially completed) run.
type Summary struct {
	RunID     string                 `json:"run_id"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
	Rows      int                    `json:"rows"`
	Skipped   int                    `json:"skipped_rows"`
	Lookups   []reconcile.Lookup     `json:"-"`
	Counts    map[records.Status]int `json:"-"`
	Records   []records.Record       `json:"-"`
	Alerts    []reconcile.Alert      `json:"alerts"`
	Written   bool                   `json:"written"`
	Notified  bool                   `json:"notified"`
	NotifyErr error                  `json:"-"`
	DryRun    bool                   `json:"dry_run"`
}

// Runner executes the staged reconciliation run:
// auth, fetch, classify, write, notify.
type Runner struct {
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner constructs a runner.
func NewRunner(deps Dependencies) *Runner {
	if deps.Columns == (sheet.Columns{}) {
		deps.Columns = sheet.DefaultColumns()
	}
	return &Runner{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "workflow"),
		now:    time.Now,
	}
}

// Run performs one reconciliation pass. The returned error, when non-nil,
// carries the failing stage (see services.StageOf). Notification failures
// are logged and reported in Summary.NotifyErr but never fail the run.
func (r *Runner) Run(ctx context.Context, opts Options) (summary Summary, runErr error) {
	if r.deps.OpenStore == nil || r.deps.Reconciler == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, services.StageStartup, "wire runner", "store opener and reconciler are required", nil)
	}
	summary = Summary{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		DryRun:    opts.DryRun,
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Bool("dry_run", opts.DryRun),
		logging.Bool("no_notify", opts.NoNotify),
	)
	defer func() {
		summary.Duration = r.now().Sub(summary.StartedAt)
	}()

	if r.deps.LockPath != "" {
		lock, err := runlock.Acquire(r.deps.LockPath)
		if err != nil {
			marker := services.ErrConfiguration
			if !errors.Is(err, runlock.ErrLocked) {
				marker = services.ErrTransient
			}
			return summary, r.fail(ctx, services.Wrap(marker, services.StageStartup, "acquire run lock", "", err))
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	st, err := r.authenticate(ctx)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", logging.Error(err))
		}
	}()

	recs, layout, err := r.fetch(ctx, st)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	summary.Rows = len(recs)

	outcome, err := r.classify(ctx, recs)
	if err != nil {
		return summary, r.fail(ctx, err)
	}
	summary.Records = outcome.Records
	summary.Lookups = outcome.Lookups
	summary.Counts = outcome.Counts
	summary.Skipped = outcome.Skipped
	summary.Alerts = reconcile.BuildAlerts(outcome.Records)

	if opts.DryRun {
		logger.Info("dry run: store not written, alerts not sent",
			logging.Int("alerts", len(summary.Alerts)),
		)
		r.logFinished(ctx, summary)
		return summary, nil
	}

	if err := r.write(ctx, st, layout, outcome.Records); err != nil {
		return summary, r.fail(ctx, err)
	}
	summary.Written = true

	if opts.NoNotify {
		logger.Info("notifications disabled for this run", logging.Int("alerts", len(summary.Alerts)))
	} else {
		summary.Notified, summary.NotifyErr = r.notify(ctx, summary.Alerts)
	}

	r.logFinished(ctx, summary)
	return summary, nil
}

func (r *Runner) logFinished(ctx context.Context, summary Summary) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("rows", summary.Rows),
		logging.Int("lookups", len(summary.Lookups)),
		logging.Int("alerts", len(summary.Alerts)),
		logging.Bool("written", summary.Written),
		logging.Bool("notified", summary.Notified),
		logging.Duration("elapsed", r.now().Sub(summary.StartedAt)),
	}
	for _, status := range records.Statuses() {
		key := strings.ToLower(strings.ReplaceAll(status.String(), " ", "_"))
		attrs = append(attrs, logging.Int(key, summary.Counts[status]))
	}
	logging.WithContext(ctx, r.logger).Info("run finished", logging.Args(attrs...)...)
}
