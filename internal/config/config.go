package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/codemob-dev/mc-connect/internal/logging"
)

const DefaultAddr = "127.0.0.1:8080"

type Config struct {
	Agent   AgentConfig   `toml:"agent"`
	Client  ClientConfig  `toml:"client"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

type AgentConfig struct {
	Addr             string   `toml:"addr"`
	SingleConnection bool     `toml:"single_connection"`
	MetricsAddr      string   `toml:"metrics_addr"`
	NotifyCommand    []string `toml:"notify_command"`
	AllowLaunch      bool     `toml:"allow_launch"`
	LaunchWait       bool     `toml:"launch_wait"`
}

type ClientConfig struct {
	Addr            string        `toml:"addr"`
	DialTimeout     time.Duration `toml:"dial_timeout"`
	MaxDialAttempts int           `toml:"max_dial_attempts"`
}

type SessionConfig struct {
	MaxFrameBytes uint32        `toml:"max_frame_bytes"`
	Backoff       BackoffConfig `toml:"backoff"`
}

type BackoffConfig struct {
	Initial    time.Duration `toml:"initial"`
	Multiplier float64       `toml:"multiplier"`
	Max        time.Duration `toml:"max"`
	Jitter     bool          `toml:"jitter"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	return Config{
		Agent: AgentConfig{
			Addr:             DefaultAddr,
			SingleConnection: true,
		},
		Client: ClientConfig{
			Addr:            DefaultAddr,
			DialTimeout:     5 * time.Second,
			MaxDialAttempts: 5,
		},
		Session: SessionConfig{
			MaxFrameBytes: 8 * 1024 * 1024,
			Backoff: BackoffConfig{
				Initial:    250 * time.Millisecond,
				Multiplier: 2.0,
				Max:        5 * time.Second,
				Jitter:     true,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over Default: keys absent from the file keep their default
// values, unknown keys are rejected. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config unknown keys (%s): %s", path, strings.Join(keys, ", "))
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text over Default without validating it.
func Decode(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	var errs []error
	if err := validateAddr(cfg.Agent.Addr); err != nil {
		errs = append(errs, fmt.Errorf("agent.addr: %w", err))
	}
	if strings.TrimSpace(cfg.Agent.MetricsAddr) != "" {
		if err := validateAddr(cfg.Agent.MetricsAddr); err != nil {
			errs = append(errs, fmt.Errorf("agent.metrics_addr: %w", err))
		}
	}
	if len(cfg.Agent.NotifyCommand) > 0 && strings.TrimSpace(cfg.Agent.NotifyCommand[0]) == "" {
		errs = append(errs, fmt.Errorf("agent.notify_command: empty program name"))
	}
	if err := validateAddr(cfg.Client.Addr); err != nil {
		errs = append(errs, fmt.Errorf("client.addr: %w", err))
	}
	if cfg.Client.DialTimeout < 0 {
		errs = append(errs, fmt.Errorf("client.dial_timeout must not be negative"))
	}
	if cfg.Client.MaxDialAttempts < 0 {
		errs = append(errs, fmt.Errorf("client.max_dial_attempts must not be negative"))
	}
	if cfg.Session.MaxFrameBytes < 9 {
		errs = append(errs, fmt.Errorf("session.max_frame_bytes must hold at least an id and a tag"))
	}
	b := cfg.Session.Backoff
	if b.Initial < 0 || b.Max < 0 {
		errs = append(errs, fmt.Errorf("session.backoff delays must not be negative"))
	}
	if b.Max > 0 && b.Initial > b.Max {
		errs = append(errs, fmt.Errorf("session.backoff.initial exceeds max"))
	}
	if b.Multiplier != 0 && b.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("session.backoff.multiplier must be >= 1"))
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Log.Level))
	}
	if cfg.Log.Format != "" {
		if _, ok := logging.ParseFormat(cfg.Log.Format); !ok {
			errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Log.Format))
		}
	}
	return errors.Join(errs...)
}

func validateAddr(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("addr is required")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}
