package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("resume.parsed", map[string]any{"resumeId": "r1", "skills": 3, "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "resume.parsed" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["resumeId"] != "r1" || entry["err"] != "boom" {
		t.Fatalf("missing fields: %v", entry)
	}
	if _, ok := entry["ts"].(string); !ok {
		t.Fatalf("expected ts field, got %v", entry)
	}
}

func TestConfigureFiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	Configure(Options{Level: "error", File: path})
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("dropped", nil)
	Error("kept", map[string]any{"code": "internal"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("expected error line, got %s", out)
	}
}
