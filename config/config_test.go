package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 5*time.Minute, cfg.SessionRetention)
		assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
		assert.Contains(t, cfg.DefaultScopes, "openid")
		assert.True(t, cfg.DemoMode())
	})

	t.Run("Credentials disable demo mode", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "my_client_id")
		t.Setenv("GOOGLE_CLIENT_SECRET", "my_client_secret")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.False(t, cfg.DemoMode())
	})

	t.Run("Partial credentials keep demo mode", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "my_client_id")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.True(t, cfg.DemoMode())
	})

	t.Run("Retention shorter than sweep interval is rejected", func(t *testing.T) {
		t.Setenv("AUTH_SESSION_RETENTION", "1m")
		t.Setenv("AUTH_SWEEP_INTERVAL", "5m")

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("Custom scopes", func(t *testing.T) {
		t.Setenv("OAUTH_DEFAULT_SCOPES", "openid,email")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, []string{"openid", "email"}, cfg.DefaultScopes)
	})
}
