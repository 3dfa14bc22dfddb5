package workflow

import (
	"context"
	"errors"
	"strings"

	"skknicheck/internal/logging"
	"skknicheck/internal/reconcile"
	"skknicheck/internal/records"
	"skknicheck/internal/services"
	"skknicheck/internal/sheet"
	"skknicheck/internal/store"
)

func (r *Runner) authenticate(ctx context.Context) (store.Store, error) {
	ctx = services.WithStage(ctx, services.StageAuth)
	st, err := r.deps.OpenStore(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrAuth, services.StageAuth, "open store", "check store credentials and sharing", err)
	}
	logging.WithContext(ctx, r.logger).Info("store opened")
	return st, nil
}

func (r *Runner) fetch(ctx context.Context, src store.Source) ([]records.Record, sheet.Layout, error) {
	ctx = services.WithStage(ctx, services.StageFetch)
	table, err := src.Read(ctx)
	if err != nil {
		return nil, sheet.Layout{}, services.Wrap(services.ErrFetch, services.StageFetch, "read table", "", err)
	}
	recs, layout, err := table.Records(r.deps.Columns)
	if err != nil {
		return nil, layout, services.Wrap(services.ErrFetch, services.StageFetch, "map columns", "", err)
	}
	logging.WithContext(ctx, r.logger).Info("records loaded",
		logging.Int("rows", len(recs)),
		logging.Int("status_column", layout.Status),
	)
	return recs, layout, nil
}

func (r *Runner) classify(ctx context.Context, recs []records.Record) (reconcile.Outcome, error) {
	ctx = services.WithStage(ctx, services.StageClassify)
	outcome, err := r.deps.Reconciler.Run(ctx, recs)
	if err != nil {
		return reconcile.Outcome{}, services.Wrap(services.ErrClassify, services.StageClassify, "reconcile", "", err)
	}
	return outcome, nil
}

func (r *Runner) write(ctx context.Context, sink store.Sink, layout sheet.Layout, recs []records.Record) error {
	ctx = services.WithStage(ctx, services.StageWrite)
	update := sheet.BuildUpdate(layout, recs)
	if err := sink.WriteStatus(ctx, update); err != nil {
		return services.Wrap(services.ErrWrite, services.StageWrite, "write status column", "", err)
	}
	logging.WithContext(ctx, r.logger).Info("status column merged",
		logging.Int("column", update.Column),
		logging.Bool("new_column", update.WriteHeader),
		logging.Int("highlighted_rows", len(update.Highlight)),
	)
	return nil
}

func (r *Runner) notify(ctx context.Context, alerts []reconcile.Alert) (bool, error) {
	ctx = services.WithStage(ctx, services.StageNotify)
	logger := logging.WithContext(ctx, r.logger)
	if r.deps.Notifier == nil {
		logger.Info("no notifier configured, alerts not sent", logging.Int("alerts", len(alerts)))
		return false, nil
	}
	sent, err := r.deps.Notifier.NotifyRevoked(ctx, alerts)
	if err != nil {
		err = services.Wrap(services.ErrNotify, services.StageNotify, "send revoked alert", "", err)
		logging.WarnWithContext(logger, "alert delivery failed", "notify_failed",
			logging.Error(err),
			logging.Bool("sent", sent),
			logging.String(logging.FieldErrorHint, "check SMTP_USER, SMTP_PASS, RECIPIENTS or the ntfy topic"),
			logging.String(logging.FieldImpact, "status column was written; recipients may not have been alerted"),
		)
		return sent, err
	}
	if sent {
		logger.Info("revoked alert sent", logging.Int("alerts", len(alerts)))
	}
	return sent, nil
}

// fail logs a fatal stage error and forwards it to operational channels.
func (r *Runner) fail(ctx context.Context, err error) error {
	stage := services.StageOf(err)
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, r.logger)
	if errors.Is(err, context.Canceled) {
		logger.Info("run cancelled")
		return err
	}
	logging.ErrorWithContext(logger, "run failed", "run_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, stageHint(stage)),
	)
	if r.deps.Notifier != nil {
		if notifyErr := r.deps.Notifier.NotifyError(ctx, err, stage); notifyErr != nil {
			logger.Debug("failure notification not delivered", logging.Error(notifyErr))
		}
	}
	return err
}

func stageHint(stage string) string {
	switch strings.TrimSpace(stage) {
	case services.StageStartup:
		return "another run may hold the lock; check the state directory"
	case services.StageAuth:
		return "verify GSHEETS_JSON and that the sheet is shared with the service account"
	case services.StageFetch:
		return "verify the worksheet gid and the Nomor/Tahun headers"
	case services.StageClassify:
		return "the run was interrupted; re-run to classify all pairs"
	case services.StageWrite:
		return "verify write access to the output worksheet"
	default:
		return "check logs for details"
	}
}
