package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcconnect.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	testlog.Start(t)
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestTemplateMatchesDefault(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "agent.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	want := Default()
	want.Log.Format = "auto"
	if cfg.Agent.Addr != want.Agent.Addr || cfg.Client != want.Client || cfg.Session != want.Session || cfg.Log != want.Log {
		t.Fatalf("template diverges from defaults: %+v", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[agent]
addr = "0.0.0.0:9000"
single_connection = false
notify_command = ["notify-send"]

[session.backoff]
initial = "10ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Agent.Addr != "0.0.0.0:9000" || cfg.Agent.SingleConnection {
		t.Fatalf("agent section not applied: %+v", cfg.Agent)
	}
	if len(cfg.Agent.NotifyCommand) != 1 || cfg.Agent.NotifyCommand[0] != "notify-send" {
		t.Fatalf("notify command not applied: %v", cfg.Agent.NotifyCommand)
	}
	if cfg.Session.Backoff.Initial != 10*time.Millisecond {
		t.Fatalf("backoff initial not applied: %v", cfg.Session.Backoff.Initial)
	}
	if cfg.Session.Backoff.Max != 5*time.Second || cfg.Client.Addr != DefaultAddr {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "[agent]\nadress = \"x:1\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "agent.adress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "[agent]\naddr = \"nope\"\n[log]\nlevel = \"loud\"\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"agent.addr", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestLoadEmptyPath(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Agent.Addr != DefaultAddr {
		t.Fatalf("unexpected addr: %q", cfg.Agent.Addr)
	}
}

func TestValidateBackoff(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	cfg.Session.Backoff.Initial = time.Minute
	cfg.Session.Backoff.Multiplier = 0.5
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected backoff errors")
	}
	if !strings.Contains(err.Error(), "exceeds max") || !strings.Contains(err.Error(), "multiplier") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionConfigConversion(t *testing.T) {
	testlog.Start(t)
	cfg, err := Decode(`
[client]
dial_timeout = "2s"
max_dial_attempts = 3

[session]
max_frame_bytes = 1024
`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sc := cfg.SessionConfig()
	if sc.ConnectTimeout != 2*time.Second || sc.MaxConnectAttempts != 3 {
		t.Fatalf("client fields not mapped: %+v", sc)
	}
	if sc.Limits.MaxPayloadBytes != 1024 {
		t.Fatalf("limit not mapped: %d", sc.Limits.MaxPayloadBytes)
	}
	if sc.Backoff.InitialDelay != 250*time.Millisecond || !sc.Backoff.Jitter {
		t.Fatalf("backoff not mapped: %+v", sc.Backoff)
	}
}

func TestLogOverride(t *testing.T) {
	testlog.Start(t)
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	lc := logging.Config{Level: zerolog.InfoLevel, Format: logging.FormatConsole}
	cfg.LogOverride()(&lc)
	if lc.Level != zerolog.DebugLevel || lc.Format != logging.FormatJSON {
		t.Fatalf("override not applied: %+v", lc)
	}
}
