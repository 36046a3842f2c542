package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nijaru/yt-transcript/config"
	"github.com/sirupsen/logrus"
)

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := newLogger(&config.Config{LogLevel: "warn", LogFormat: "text"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", log.GetLevel())
	}

	log.Info("hidden")
	log.WithField("video_id", "abc123").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "video_id=abc123") {
		t.Errorf("expected warn message with fields, got %q", out)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := newLogger(&config.Config{LogLevel: "info", LogFormat: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.WithField("stage", "fetch").Error("failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["stage"] != "fetch" || entry["msg"] != "failed" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLogger_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer

	log, closer, err := newLogger(&config.Config{LogLevel: "info", LogFormat: "text", LogDir: dir}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Info("written to both")
	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "written to both") {
		t.Errorf("log file missing message: %q", data)
	}
	if !strings.Contains(buf.String(), "written to both") {
		t.Errorf("console missing message: %q", buf.String())
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, _, err := New(&config.Config{LogLevel: "loud"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
