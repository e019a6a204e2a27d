package app

import (
	"fmt"

	"github.com/adhocore/gronx"

	"ets/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.Effective) error {
	cfg := eff.Config

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Limits.MaxInstances <= 0 {
		return fmt.Errorf("limits.max_instances must be positive, got %d", cfg.Limits.MaxInstances)
	}
	if cfg.Limits.MaxMessages <= 0 {
		return fmt.Errorf("limits.max_messages must be positive, got %d", cfg.Limits.MaxMessages)
	}
	if rl := cfg.Security.RateLimit; rl.RPS > 0 && rl.Burst <= 0 {
		return fmt.Errorf("security.rate_limit.burst must be positive when rps is set")
	}
	if cfg.Reaper.Enabled && cfg.Reaper.Cron != "" && !gronx.IsValid(cfg.Reaper.Cron) {
		return fmt.Errorf("invalid reaper.cron expression: %s", cfg.Reaper.Cron)
	}
	return nil
}
