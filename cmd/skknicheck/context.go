package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"skknicheck/internal/config"
	"skknicheck/internal/logging"
	"skknicheck/internal/notifications"
	"skknicheck/internal/ratelimit"
	"skknicheck/internal/reconcile"
	"skknicheck/internal/search"
	"skknicheck/internal/store"
	"skknicheck/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = fmt.Errorf("ensure directories: %w", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// log returns the process logger, falling back to a console logger when the
// configured one cannot be built.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) newSearcher() (*search.Client, error) {
	cfg := c.config
	return search.NewClient(search.Config{
		APIKey:      cfg.Search.APIKey,
		BaseURL:     cfg.Search.BaseURL,
		Language:    cfg.Search.Language,
		ResultCount: cfg.Search.ResultCount,
	},
		search.WithRetryMaxAttempts(cfg.Search.Retries),
		search.WithRetryBackoff(cfg.RetryBackoff()),
		search.WithAttemptTimeout(cfg.AttemptTimeout()),
		search.WithLogger(c.log()),
	)
}

func (c *commandContext) newNotifier() notifications.Service {
	return notifications.NewService(c.config, notifications.WithLogger(c.log()))
}

func (c *commandContext) newRunner(searcher search.Searcher) *workflow.Runner {
	cfg := c.config
	logger := c.log()
	progress := logging.NewComponentLogger(logger, "progress")
	reconciler := reconcile.New(searcher,
		reconcile.WithGate(ratelimit.New(cfg.RateLimitInterval(), ratelimit.SystemClock())),
		reconcile.WithSite(cfg.Search.Site),
		reconcile.WithLogger(logger),
		reconcile.WithProgress(func(index, total int, lookup reconcile.Lookup) {
			progress.Info("lookup",
				logging.Int("index", index),
				logging.Int("total", total),
				logging.Int("nomor", lookup.Pair.Number),
				logging.Int("tahun", lookup.Pair.Year),
				logging.String("status", lookup.Status.String()),
				logging.Int("hits", lookup.Hits),
			)
		}),
	)
	return workflow.NewRunner(workflow.Dependencies{
		OpenStore: func(ctx context.Context) (store.Store, error) {
			return store.Open(ctx, cfg, store.Options{Logger: logger})
		},
		Reconciler: reconciler,
		Notifier:   c.newNotifier(),
		Columns:    store.Columns(cfg),
		LockPath:   cfg.LockPath(),
		Logger:     logger,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
