package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	logger.Debug().Msg("hidden")
	logger.Info().Int64("job_id", 7).Msg("job started")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", lines[0], err)
	}
	if entry["message"] != "job started" || entry["level"] != "info" || entry["job_id"] != float64(7) {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		logger := New(&bytes.Buffer{}, tt.level, "json")
		if logger.GetLevel() != tt.want {
			t.Errorf("level %q: expected %v, got %v", tt.level, tt.want, logger.GetLevel())
		}
	}
}

func TestNew_Plain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "plain")
	logger.Info().Str("resource", "waiting").Msg("saved")

	out := buf.String()
	if !strings.Contains(out, "saved") || !strings.Contains(out, "resource=waiting") {
		t.Errorf("unexpected console output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color codes, got %q", out)
	}
}
