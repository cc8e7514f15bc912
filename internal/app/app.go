package app

import (
	"context"
	"fmt"

	"swingflow/internal/config"
	"swingflow/internal/journal"
	"swingflow/internal/lifecycle"
	"swingflow/internal/logger"
	"swingflow/internal/store/sqlite"
	tradehttp "swingflow/internal/transport/http/trade"

	"golang.org/x/sync/errgroup"
)

// App owns application-level orchestration: dependencies built from
// configuration, one HTTP server, explicit teardown.
type App struct {
	cfg     *config.Config
	store   *sqlite.SqliteStore
	journal *journal.Store
	machine *lifecycle.Machine
	http    *tradehttp.Server
}

// NewApp builds the application object from configuration (not started).
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return Build(cfg)
}

// Run serves until ctx cancels or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	logger.Infof("swingflow up (env=%s, http=%s, db=%s)", a.cfg.App.Env, a.http.Addr(), a.cfg.Database.Path)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	err := group.Wait()
	a.Close()
	return err
}

// Machine exposes the lifecycle machine (for replay harnesses and tests).
func (a *App) Machine() *lifecycle.Machine {
	if a == nil {
		return nil
	}
	return a.machine
}

// Close releases storage handles.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.Warnf("closing journal: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warnf("closing store: %v", err)
		}
	}
}
