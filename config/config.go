package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogDir    string `json:"log_dir"`

	// Optional sqlite file recording each run
	HistoryDB string `json:"history_db"`

	YouTube YouTubeConfig `json:"youtube"`
	Spaces  SpacesConfig  `json:"spaces"`
}

type YouTubeConfig struct {
	BaseURL     string        `json:"base_url"`
	UserAgent   string        `json:"user_agent"`
	HTTPTimeout time.Duration `json:"http_timeout"`
}

type SpacesConfig struct {
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	PathStyle bool   `json:"path_style"`
}

// LoadEnvFiles loads variables from the given files that exist. Variables
// already present in the environment win.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load env file %s", path)
		}
		logrus.WithField("envFile", path).Debug("Loaded environment variables from file")
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "text"),
		LogDir:    GetEnv("LOG_DIR", ""),

		HistoryDB: GetEnv("HISTORY_DB", ""),

		YouTube: YouTubeConfig{
			BaseURL:     GetEnv("YOUTUBE_BASE_URL", "https://www.youtube.com"),
			UserAgent:   GetEnv("USER_AGENT", ""),
			HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		},

		Spaces: SpacesConfig{
			AccessKey: GetEnv("SPACES_KEY", ""),
			SecretKey: GetEnv("SPACES_SECRET", ""),
			Region:    GetEnv("SPACES_REGION", "us-east-1"),
			Endpoint:  GetEnv("SPACES_ENDPOINT", ""),
			PathStyle: getEnvAsBool("SPACES_PATH_STYLE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if c.YouTube.HTTPTimeout <= 0 {
		return errors.New("http timeout must be greater than 0")
	}
	if c.YouTube.BaseURL == "" {
		return errors.New("youtube base url is required")
	}
	if (c.Spaces.AccessKey == "") != (c.Spaces.SecretKey == "") {
		return errors.New("spaces key and secret must be set together")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}
