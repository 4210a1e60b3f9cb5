package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	DatabaseURL     string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Synthetic order feed.
	FeedEnabled  bool
	FeedInterval time.Duration
	FeedCap      int
	FeedVerbose  bool
}

// Load reads configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("ORDER_FEED_ENABLED", true)
	v.SetDefault("ORDER_FEED_INTERVAL", "12s")
	v.SetDefault("ORDER_FEED_CAP", 50)
	v.SetDefault("ORDER_FEED_VERBOSE", false)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetString("PORT"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		AllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		FeedEnabled:     v.GetBool("ORDER_FEED_ENABLED"),
		FeedInterval:    v.GetDuration("ORDER_FEED_INTERVAL"),
		FeedCap:         v.GetInt("ORDER_FEED_CAP"),
		FeedVerbose:     v.GetBool("ORDER_FEED_VERBOSE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.FeedInterval <= 0 {
		errs = append(errs, errors.New("ORDER_FEED_INTERVAL must be > 0"))
	}
	if c.FeedCap <= 0 {
		errs = append(errs, errors.New("ORDER_FEED_CAP must be > 0"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be > 0"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
