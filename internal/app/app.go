// Package app wires configuration, registry, journal, reaper and the HTTP
// server into one lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"ets/internal/reaper"
	"ets/pkg/client"
	"ets/pkg/config"
	"ets/pkg/journal"
	"ets/pkg/logger"
	"ets/pkg/registry"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	reg *registry.Registry
	jnl *journal.Journal
	srv *http.Server
}

// New initializes resources that do not require a running context (journal,
// registry). It does not start the reaper or the HTTP server; call Run to
// start those and block until shutdown.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	logger.InitWithLevel(eff.Config.Logging.Level)

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}

	if p := eff.Config.Journal.Path; p != "" {
		j, err := journal.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open journal at %s: %w", p, err)
		}
		a.jnl = j
	}

	a.reg = registry.New(client.NewSimFactory(),
		registry.WithMaxInstances(eff.Config.Limits.MaxInstances),
		registry.WithMessageCapacity(eff.Config.Limits.MaxMessages),
		registry.WithJournal(a.jnl),
	)
	reaper.SetRegistry(a.reg)

	return a, nil
}

// Registry exposes the instance registry, mainly for tests and tooling.
func (a *App) Registry() *registry.Registry {
	return a.reg
}

// Run starts the reaper and the HTTP server, and blocks until ctx is
// canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopReaper, err := reaper.Start(ctx, a.eff.Config.Reaper, a.reg)
	if err != nil {
		return err
	}
	defer stopReaper()

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.stop()
		return nil
	case err := <-errCh:
		a.stop()
		return err
	}
}

// stop drains the HTTP server and closes the journal.
func (a *App) stop() {
	if a.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http_shutdown_error", "error", err)
		}
	}
	if err := a.jnl.Close(); err != nil {
		logger.Warn("journal_close_error", "error", err)
	}
	logger.Info("app_stopped")
}
