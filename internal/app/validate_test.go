package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ets/pkg/config"
)

func TestValidateConfig(t *testing.T) {
	base := func() config.Effective {
		return config.Effective{Config: config.Default()}
	}

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, validateConfig(base()))
	})

	t.Run("bad port", func(t *testing.T) {
		eff := base()
		eff.Config.Server.Port = 70000
		assert.Error(t, validateConfig(eff))
	})

	t.Run("zero instance cap", func(t *testing.T) {
		eff := base()
		eff.Config.Limits.MaxInstances = 0
		assert.Error(t, validateConfig(eff))
	})

	t.Run("rate limit without burst", func(t *testing.T) {
		eff := base()
		eff.Config.Security.RateLimit.RPS = 10
		eff.Config.Security.RateLimit.Burst = 0
		assert.Error(t, validateConfig(eff))
	})

	t.Run("bad reaper cron", func(t *testing.T) {
		eff := base()
		eff.Config.Reaper.Cron = "every now and then"
		assert.Error(t, validateConfig(eff))
	})
}
