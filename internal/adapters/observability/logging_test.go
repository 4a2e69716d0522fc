package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod", "warn")
	l.Info().Msg("dropped")
	l.Warn().Str("reservation_id", "r-1").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["message"] != "kept" || entry["reservation_id"] != "r-1" || entry["time"] == nil {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_DevConsoleAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "dev", "loud")
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("dev logger should not write JSON: %q", out)
	}
}
