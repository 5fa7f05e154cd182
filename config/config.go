package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the deployment-level settings. Everything has a workable
// default except the Google credentials: when those are absent the service
// runs the oauth flow in demo mode with a synthetic token exchange.
type Config struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	DefaultScopes      []string      `env:"OAUTH_DEFAULT_SCOPES" envSeparator:"," envDefault:"openid,email,profile,https://www.googleapis.com/auth/calendar.readonly,https://www.googleapis.com/auth/drive.readonly"`
	SessionRetention   time.Duration `env:"AUTH_SESSION_RETENTION" envDefault:"5m"`
	SweepInterval      time.Duration `env:"AUTH_SWEEP_INTERVAL" envDefault:"5m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %s", err)
	}

	// A session created just before a sweep tick must survive until the next one
	if cfg.SessionRetention < cfg.SweepInterval {
		return Config{}, fmt.Errorf("session retention (%s) must not be shorter than the sweep interval (%s)",
			cfg.SessionRetention, cfg.SweepInterval)
	}

	return cfg, nil
}

func (c Config) DemoMode() bool {
	return c.GoogleClientID == "" || c.GoogleClientSecret == ""
}
