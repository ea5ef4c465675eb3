package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatByEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		format      string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development"},
		{name: "explicit json wins", environment: "development", format: FormatJSON, wantJSON: true},
		{name: "explicit pretty wins", environment: "production", format: FormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment, Format: tt.format, NoColor: true})
			log.Info("board loaded", "source", "remote")

			out := buf.String()
			if tt.wantJSON {
				assert.Contains(t, out, `"msg":"board loaded"`)
				assert.Contains(t, out, `"source":"remote"`)
			} else {
				assert.Contains(t, out, "INF board loaded source=remote")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		" info ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelWarn, NoColor: true})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("push failed")
	log.Error("encode failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WRN push failed")
	assert.Contains(t, lines[1], "ERR encode failed")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	h.noColor = true
	log := slog.New(h).With("session", "sess-1").WithGroup("import")

	log.Info("merged", "added", 3, "folder", "my export")

	out := buf.String()
	assert.Contains(t, out, "session=sess-1")
	assert.Contains(t, out, "import.added=3")
	assert.Contains(t, out, `import.folder="my export"`)
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty})
	log.Error("boom")

	assert.Contains(t, buf.String(), colorRed+"ERR"+colorReset)
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, AddSource: true, NoColor: true})
	log.Info("with source")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-11T12:00:00Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "800ms", formatValue(slog.DurationValue(800*time.Millisecond)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON})

	log.Component("gateway").WithError(errors.New("offline")).Warn("push failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"gateway"`)
	assert.Contains(t, out, `"error":"offline"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("nowhere")
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
