package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"skknicheck/internal/classify"
	"skknicheck/internal/logging"
	"skknicheck/internal/records"
	"skknicheck/internal/search"
)

// Gate spaces outbound lookups. *ratelimit.Limiter satisfies it.
type Gate interface {
	Acquire(ctx context.Context) error
}

// Lookup is the outcome for one unique pair.
type Lookup struct {
	Pair   records.Pair
	Query  string
	Status records.Status
	Hits   int
	Err    error
}

// ProgressFunc is called after each unique-pair lookup.
type ProgressFunc func(index, total int, lookup Lookup)

// Outcome summarizes a reconciliation run.
type Outcome struct {
	Records []records.Record
	Lookups []Lookup
	Revoked []int
	Counts  map[records.Status]int
	Skipped int
}

// Reconciler runs one search per unique pair and maps the classification back
// onto every row sharing that pair.
type Reconciler struct {
	searcher   search.Searcher
	classifier classify.Classifier
	gate       Gate
	site       string
	logger     *slog.Logger
	progress   ProgressFunc
}

// Option customizes a Reconciler.
type Option func(*Reconciler)

// WithClassifier overrides the default rule set.
func WithClassifier(c classify.Classifier) Option {
	return func(r *Reconciler) {
		r.classifier = c
	}
}

// WithGate installs the rate limiter acquired before each lookup.
func WithGate(g Gate) Option {
	return func(r *Reconciler) {
		r.gate = g
	}
}

// WithSite overrides the site restriction used in queries.
func WithSite(site string) Option {
	return func(r *Reconciler) {
		r.site = strings.TrimSpace(site)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithProgress registers a per-lookup callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Reconciler) {
		r.progress = fn
	}
}

// New builds a reconciler around searcher.
func New(searcher search.Searcher, opts ...Option) *Reconciler {
	r := &Reconciler{
		searcher:   searcher,
		classifier: classify.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "reconciler")
	return r
}

// UniquePairs returns the distinct valid pairs of recs in first-seen order and
// the number of rows that had no usable pair.
func UniquePairs(recs []records.Record) ([]records.Pair, int) {
	seen := make(map[records.Pair]struct{}, len(recs))
	pairs := make([]records.Pair, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		pair, ok := rec.Pair()
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs, skipped
}

// Run classifies recs in place and returns the outcome. Lookups run strictly
// in sequence. A failed lookup marks its pair as Error and the run continues;
// only cancellation of ctx aborts, in which case recs are left untouched.
func (r *Reconciler) Run(ctx context.Context, recs []records.Record) (Outcome, error) {
	if r.searcher == nil {
		return Outcome{}, errors.New("reconcile: searcher is required")
	}
	pairs, skipped := UniquePairs(recs)
	r.logger.Info("reconciling records",
		logging.Int("rows", len(recs)),
		logging.Int("unique_pairs", len(pairs)),
		logging.Int("skipped_rows", skipped),
	)

	statusByPair := make(map[records.Pair]records.Status, len(pairs))
	lookups := make([]Lookup, 0, len(pairs))
	for i, pair := range pairs {
		if r.gate != nil {
			if err := r.gate.Acquire(ctx); err != nil {
				return Outcome{}, err
			}
		}
		lookup := r.lookup(ctx, pair)
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		statusByPair[pair] = lookup.Status
		lookups = append(lookups, lookup)
		if r.progress != nil {
			r.progress(i+1, len(pairs), lookup)
		}
	}

	counts := make(map[records.Status]int, 4)
	for i := range recs {
		status := records.StatusNotFound
		if pair, ok := recs[i].Pair(); ok {
			if mapped, found := statusByPair[pair]; found {
				status = mapped
			}
		}
		recs[i].Status = status
		counts[status]++
	}

	return Outcome{
		Records: recs,
		Lookups: lookups,
		Revoked: records.RevokedIndexes(recs),
		Counts:  counts,
		Skipped: skipped,
	}, nil
}

func (r *Reconciler) lookup(ctx context.Context, pair records.Pair) Lookup {
	query := search.QueryFor(pair, r.site)
	lookup := Lookup{Pair: pair, Query: query}
	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		lookup.Status = records.StatusError
		lookup.Err = err
		if ctx.Err() == nil {
			logging.WarnWithContext(r.logger, "lookup failed; marking pair as error", "lookup_failed",
				logging.Int("nomor", pair.Number),
				logging.Int("tahun", pair.Year),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-run later or check the search service status"),
				logging.String(logging.FieldImpact, "rows with this pair get status Error"),
			)
		}
		return lookup
	}
	lookup.Hits = len(results)
	lookup.Status = r.classifier.Classify(results)
	r.logger.Debug("pair classified",
		logging.Int("nomor", pair.Number),
		logging.Int("tahun", pair.Year),
		logging.Int("hits", len(results)),
		logging.String("status", lookup.Status.String()),
	)
	return lookup
}
