package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("session restored", String("user", "u-1"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["msg"] != "session restored" {
		t.Fatalf("msg mismatch: got %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("level mismatch: got %v", record["level"])
	}
	if record["user"] != "u-1" {
		t.Fatalf("attr mismatch: got %v", record["user"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debug("poll tick")
	logger.Info("poll tick")
	if buf.Len() != 0 {
		t.Fatalf("expected info/debug suppressed, got %q", buf.String())
	}

	logger.Warn("poll failed")
	if !strings.Contains(buf.String(), "poll failed") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lectureiq.log")
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf, FilePath: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("upload complete")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "upload complete") {
		t.Fatalf("log file missing line: %q", string(data))
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should vanish")
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("nop logger should report disabled")
	}
}
