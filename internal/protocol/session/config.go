package session

import (
	"time"

	"github.com/codemob-dev/mc-connect/internal/protocol/frame"
	"github.com/rs/zerolog"
)

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines transport/session defaults shared by Client and Dispatcher.
type Config struct {
	ConnectTimeout     time.Duration
	MaxConnectAttempts int
	Limits             frame.Limits
	// Backoff paces both dial retries and reads retried after a transport error.
	Backoff BackoffConfig
	// Logger overrides the component logger derived from the global one.
	Logger *zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout:     5 * time.Second,
		MaxConnectAttempts: 5,
		Limits:             frame.DefaultLimits(),
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	c.Limits = c.Limits.WithDefaults()
	if c.Backoff == (BackoffConfig{}) {
		c.Backoff = def.Backoff
	}
	return c
}
