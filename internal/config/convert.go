package config

import (
	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol/frame"
	"github.com/codemob-dev/mc-connect/internal/protocol/session"
)

// SessionConfig maps the [client] and [session] sections onto session.Config.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		ConnectTimeout:     c.Client.DialTimeout,
		MaxConnectAttempts: c.Client.MaxDialAttempts,
		Limits:             frame.Limits{MaxPayloadBytes: c.Session.MaxFrameBytes},
		Backoff: session.BackoffConfig{
			InitialDelay: c.Session.Backoff.Initial,
			Multiplier:   c.Session.Backoff.Multiplier,
			MaxDelay:     c.Session.Backoff.Max,
			Jitter:       c.Session.Backoff.Jitter,
		},
	}.WithDefaults()
}

// LogOverride applies the [log] section to a logging.Config. Environment
// variables still take precedence.
func (c Config) LogOverride() func(*logging.Config) {
	return func(lc *logging.Config) {
		if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
			lc.Level = lvl
		}
		if f, ok := logging.ParseFormat(c.Log.Format); ok {
			lc.Format = f
		}
	}
}
