package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_DIR", "/tmp/yt-transcript-logs")
	t.Setenv("HISTORY_DB", "/tmp/history.db")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("YOUTUBE_BASE_URL", "http://localhost:9999")
	t.Setenv("SPACES_KEY", "key")
	t.Setenv("SPACES_SECRET", "secret")
	t.Setenv("SPACES_ENDPOINT", "https://nyc3.digitaloceanspaces.com")
	t.Setenv("SPACES_PATH_STYLE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %s", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json, got %s", cfg.LogFormat)
	}
	if cfg.LogDir != "/tmp/yt-transcript-logs" {
		t.Errorf("expected /tmp/yt-transcript-logs, got %s", cfg.LogDir)
	}
	if cfg.HistoryDB != "/tmp/history.db" {
		t.Errorf("expected /tmp/history.db, got %s", cfg.HistoryDB)
	}
	if cfg.YouTube.HTTPTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.YouTube.HTTPTimeout)
	}
	if cfg.YouTube.BaseURL != "http://localhost:9999" {
		t.Errorf("expected http://localhost:9999, got %s", cfg.YouTube.BaseURL)
	}
	if cfg.Spaces.Endpoint != "https://nyc3.digitaloceanspaces.com" {
		t.Errorf("unexpected endpoint %s", cfg.Spaces.Endpoint)
	}
	if !cfg.Spaces.PathStyle {
		t.Error("expected path style to be enabled")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_DIR", "HISTORY_DB", "HTTP_TIMEOUT",
		"YOUTUBE_BASE_URL", "SPACES_KEY", "SPACES_SECRET", "SPACES_REGION"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected info, got %s", cfg.LogLevel)
	}
	if cfg.HistoryDB != "" {
		t.Errorf("expected history to be disabled, got %s", cfg.HistoryDB)
	}
	if cfg.YouTube.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.YouTube.HTTPTimeout)
	}
	if cfg.YouTube.BaseURL != "https://www.youtube.com" {
		t.Errorf("unexpected base url %s", cfg.YouTube.BaseURL)
	}
	if cfg.Spaces.Region != "us-east-1" {
		t.Errorf("expected us-east-1, got %s", cfg.Spaces.Region)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LogLevel:  "info",
			LogFormat: "text",
			YouTube: YouTubeConfig{
				BaseURL:     "https://www.youtube.com",
				HTTPTimeout: time.Second,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero timeout", func(c *Config) { c.YouTube.HTTPTimeout = 0 }, true},
		{"empty base url", func(c *Config) { c.YouTube.BaseURL = "" }, true},
		{"key without secret", func(c *Config) { c.Spaces.AccessKey = "key" }, true},
		{"key and secret", func(c *Config) { c.Spaces.AccessKey, c.Spaces.SecretKey = "key", "secret" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HISTORY_DB=/tmp/from-env-file.db\nLOG_LEVEL=warn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("HISTORY_DB", "")
	os.Unsetenv("HISTORY_DB")

	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("HISTORY_DB"); got != "/tmp/from-env-file.db" {
		t.Errorf("expected value from env file, got %q", got)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "error" {
		t.Errorf("expected existing variable to win, got %q", got)
	}
}
