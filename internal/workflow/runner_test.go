package workflow_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"skknicheck/internal/logging"
	"skknicheck/internal/reconcile"
	"skknicheck/internal/records"
	"skknicheck/internal/runlock"
	"skknicheck/internal/search"
	"skknicheck/internal/services"
	"skknicheck/internal/sheet"
	"skknicheck/internal/store"
	"skknicheck/internal/workflow"
)

type fakeStore struct {
	table    sheet.Table
	readErr  error
	writeErr error
	updates  []sheet.StatusUpdate
	closed   bool
}

func (f *fakeStore) Read(context.Context) (sheet.Table, error) { return f.table, f.readErr }

func (f *fakeStore) WriteStatus(_ context.Context, u sheet.StatusUpdate) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type stubSearcher struct {
	byQuery map[string][]search.Result
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	s.calls++
	return s.byQuery[query], nil
}

type fakeNotifier struct {
	alerts    [][]reconcile.Alert
	errStages []string
	err       error
}

func (f *fakeNotifier) NotifyRevoked(_ context.Context, alerts []reconcile.Alert) (bool, error) {
	f.alerts = append(f.alerts, alerts)
	if f.err != nil {
		return false, f.err
	}
	return len(alerts) > 0, nil
}

func (f *fakeNotifier) NotifyError(_ context.Context, _ error, stage string) error {
	f.errStages = append(f.errStages, stage)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func scenarioTable() sheet.Table {
	return sheet.FromValues([][]string{
		{"Nama Skema", "Nomor SKKNI", "Tahun SKKNI"},
		{"A", "12", "2018"},
		{"", "", ""},
		{"C", "12", "2018"},
	})
}

func scenarioSearcher() *stubSearcher {
	q := search.QueryFor(records.Pair{Number: 12, Year: 2018}, search.DefaultSite)
	return &stubSearcher{byQuery: map[string][]search.Result{
		q: {{Title: "SKKNI 2018-012", Snippet: "Status: TIDAK BERLAKU sejak 2023"}},
	}}
}

func newRunner(st *fakeStore, searcher search.Searcher, notifier *fakeNotifier) *workflow.Runner {
	return workflow.NewRunner(workflow.Dependencies{
		OpenStore:  func(context.Context) (store.Store, error) { return st, nil },
		Reconciler: reconcile.New(searcher, reconcile.WithLogger(logging.NewNop())),
		Notifier:   notifier,
		Logger:     logging.NewNop(),
	})
}

func TestRunEndToEnd(t *testing.T) {
	st := &fakeStore{table: scenarioTable()}
	searcher := scenarioSearcher()
	notifier := &fakeNotifier{}

	summary, err := newRunner(st, searcher, notifier).Run(context.Background(), workflow.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if searcher.calls != 1 {
		t.Fatalf("expected one lookup for the shared pair, got %d", searcher.calls)
	}
	if len(st.updates) != 1 {
		t.Fatalf("expected one write, got %d", len(st.updates))
	}
	update := st.updates[0]
	if diff := cmp.Diff([]string{"Dicabut", "Tidak ditemukan", "Dicabut"}, update.Values); diff != "" {
		t.Fatalf("status column (-want +got):\n%s", diff)
	}
	if update.Column != 3 || !update.WriteHeader {
		t.Fatalf("unexpected placement %+v", update)
	}
	if diff := cmp.Diff([]int{0, 2}, update.Highlight); diff != "" {
		t.Fatalf("highlight rows (-want +got):\n%s", diff)
	}
	if summary.Records[1].SchemeName != "A" {
		t.Fatalf("forward fill missing, got %q", summary.Records[1].SchemeName)
	}

	wantAlerts := []reconcile.Alert{
		{SchemeName: "A", Number: 12, Year: 2018},
		{SchemeName: "C", Number: 12, Year: 2018},
	}
	if diff := cmp.Diff(wantAlerts, summary.Alerts); diff != "" {
		t.Fatalf("alerts (-want +got):\n%s", diff)
	}
	if len(notifier.alerts) != 1 || !summary.Notified || !summary.Written {
		t.Fatalf("unexpected delivery state %+v", summary)
	}
	if summary.Counts[records.StatusDicabut] != 2 || summary.Counts[records.StatusNotFound] != 1 {
		t.Fatalf("unexpected counts %v", summary.Counts)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if !st.closed {
		t.Fatal("store should be closed after the run")
	}
}

func TestRunDryRunSkipsSideEffects(t *testing.T) {
	st := &fakeStore{table: scenarioTable()}
	notifier := &fakeNotifier{}
	summary, err := newRunner(st, scenarioSearcher(), notifier).Run(context.Background(), workflow.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(st.updates) != 0 || len(notifier.alerts) != 0 {
		t.Fatal("dry run must not write or notify")
	}
	if summary.Written || !summary.DryRun || len(summary.Alerts) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestRunNoNotify(t *testing.T) {
	st := &fakeStore{table: scenarioTable()}
	notifier := &fakeNotifier{}
	summary, err := newRunner(st, scenarioSearcher(), notifier).Run(context.Background(), workflow.Options{NoNotify: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Written || len(notifier.alerts) != 0 {
		t.Fatalf("expected write without notify, got %+v", summary)
	}
}

func TestRunStageFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		open   func(st *fakeStore) workflow.StoreOpener
		mutate func(st *fakeStore)
		stage  string
		marker error
	}{
		{
			name: "auth",
			open: func(*fakeStore) workflow.StoreOpener {
				return func(context.Context) (store.Store, error) { return nil, boom }
			},
			stage:  services.StageAuth,
			marker: services.ErrAuth,
		},
		{
			name:   "fetch read",
			mutate: func(st *fakeStore) { st.readErr = boom },
			stage:  services.StageFetch,
			marker: services.ErrFetch,
		},
		{
			name: "fetch missing columns",
			mutate: func(st *fakeStore) {
				st.table = sheet.FromValues([][]string{{"Nama Skema"}, {"A"}})
			},
			stage:  services.StageFetch,
			marker: sheet.ErrMissingColumns,
		},
		{
			name:   "write",
			mutate: func(st *fakeStore) { st.writeErr = boom },
			stage:  services.StageWrite,
			marker: services.ErrWrite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{table: scenarioTable()}
			if tt.mutate != nil {
				tt.mutate(st)
			}
			opener := func(context.Context) (store.Store, error) { return st, nil }
			if tt.open != nil {
				opener = tt.open(st)
			}
			notifier := &fakeNotifier{}
			runner := workflow.NewRunner(workflow.Dependencies{
				OpenStore:  opener,
				Reconciler: reconcile.New(scenarioSearcher()),
				Notifier:   notifier,
			})
			_, err := runner.Run(context.Background(), workflow.Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := services.StageOf(err); got != tt.stage {
				t.Fatalf("stage = %q, want %q (err %v)", got, tt.stage, err)
			}
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v in chain, got %v", tt.marker, err)
			}
			if len(notifier.alerts) != 0 {
				t.Fatal("failed run must not send alerts")
			}
			if diff := cmp.Diff([]string{tt.stage}, notifier.errStages); diff != "" {
				t.Fatalf("error notifications (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunNotifyFailureIsNotFatal(t *testing.T) {
	st := &fakeStore{table: scenarioTable()}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	summary, err := newRunner(st, scenarioSearcher(), notifier).Run(context.Background(), workflow.Options{})
	if err != nil {
		t.Fatalf("notify failure should not fail the run: %v", err)
	}
	if !summary.Written || summary.Notified {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !errors.Is(summary.NotifyErr, services.ErrNotify) {
		t.Fatalf("expected ErrNotify, got %v", summary.NotifyErr)
	}
}

func TestRunCancelledBeforeWrite(t *testing.T) {
	st := &fakeStore{table: scenarioTable()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(st, scenarioSearcher(), &fakeNotifier{}).Run(ctx, workflow.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if services.StageOf(err) != services.StageClassify {
		t.Fatalf("stage = %q", services.StageOf(err))
	}
	if len(st.updates) != 0 {
		t.Fatal("cancelled run must not write")
	}
}

func TestRunHonoursLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "skknicheck.lock")
	held, err := runlock.Acquire(lockPath)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	st := &fakeStore{table: scenarioTable()}
	runner := workflow.NewRunner(workflow.Dependencies{
		OpenStore:  func(context.Context) (store.Store, error) { return st, nil },
		Reconciler: reconcile.New(scenarioSearcher()),
		LockPath:   lockPath,
	})
	_, err = runner.Run(context.Background(), workflow.Options{})
	if !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if services.StageOf(err) != services.StageStartup {
		t.Fatalf("stage = %q", services.StageOf(err))
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	_, err := workflow.NewRunner(workflow.Dependencies{}).Run(context.Background(), workflow.Options{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
