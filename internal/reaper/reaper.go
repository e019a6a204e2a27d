// Package reaper removes expired ephemeral messages on a cron schedule.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"ets/pkg/config"
	"ets/pkg/logger"
	"ets/pkg/registry"
)

var storedRegistry *registry.Registry

// SetRegistry stores the registry so tests (or admin triggers) can invoke
// sweep runs on-demand.
func SetRegistry(r *registry.Registry) {
	storedRegistry = r
}

// RunImmediate triggers a single sweep using the stored registry. Returns an
// error if no registry was registered.
func RunImmediate() (int, error) {
	if storedRegistry == nil {
		return 0, fmt.Errorf("no registry registered for reaper run")
	}
	return runOnce(storedRegistry), nil
}

// Start starts the sweep scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.ReaperConfig, reg *registry.Registry) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("reaper_disabled")
		return func() {}, nil
	}

	// map empty cron to default every-minute sweep
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "* * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("reaper_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid reaper cron expression: %s", cfg.Cron)
	}

	logger.Info("reaper_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, reg, cronExpr)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, reg *registry.Registry, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("reaper_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("reaper_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			runOnce(reg)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			runOnce(reg)
		case <-ctx.Done():
			logger.Info("reaper_scheduler_stopping")
			return
		}
	}
}

// runOnce sweeps all instances and returns the number of removed messages.
func runOnce(reg *registry.Registry) int {
	removed := reg.ExpireMessages(time.Now())
	if removed > 0 {
		logger.Info("reaper_swept", "removed", removed)
	}
	return removed
}
