package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q)=%v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("unknown level must not parse")
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := ParseFormat("JSON"); !ok || f != FormatJSON {
		t.Fatalf("json: got %q %v", f, ok)
	}
	if f, ok := ParseFormat("pretty"); !ok || f != FormatConsole {
		t.Fatalf("pretty: got %q %v", f, ok)
	}
	if _, ok := ParseFormat("xml"); ok {
		t.Fatalf("xml must not parse")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogTimestamp, "false")
	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel || cfg.Format != FormatJSON || cfg.Timestamp {
		t.Fatalf("unexpected config after env overrides: %+v", cfg)
	}
}

func TestNewJSONWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, Format: FormatJSON, Out: &buf})
	logger.Info().Str("component", "session.client").Uint64("id", 3).Msg("resolved")
	logger.Debug().Msg("filtered")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "session.client" || line["message"] != "resolved" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestAutoFormatFallsBackToJSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, Out: &buf})
	logger.Info().Msg("x")
	if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected json output for non-terminal writer, got %q", buf.String())
	}
}

func TestConsoleWithoutTimestampOmitsTimeColumn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, Format: FormatConsole, NoColor: true, Out: &buf})
	logger.Info().Msg("ready")
	out := buf.String()
	if strings.Contains(out, "<nil>") {
		t.Fatalf("console line carries an empty time column: %q", out)
	}
	if !strings.HasPrefix(out, "INF ready") {
		t.Fatalf("unexpected console line: %q", out)
	}
}

func TestConsoleWithTimestampKeepsTimeColumn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, Format: FormatConsole, NoColor: true, Timestamp: true, Out: &buf})
	logger.Info().Msg("ready")
	if strings.HasPrefix(buf.String(), "INF") {
		t.Fatalf("expected a leading time column, got %q", buf.String())
	}
}
