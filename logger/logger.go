package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nijaru/yt-transcript/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "yt-transcript.log"

// New builds the process logger. Output goes to stderr and, when LogDir is
// set, to a rotating file in that directory. The returned closer releases
// the log file.
func New(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg *config.Config, console io.Writer) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid log level")
	}

	log := logrus.New()
	log.SetLevel(level)

	if strings.ToLower(cfg.LogFormat) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.LogDir == "" {
		log.SetOutput(console)
		return log, nopCloser{}, nil
	}

	if err := os.MkdirAll(cfg.LogDir, os.ModePerm); err != nil {
		return nil, nil, errors.Wrap(err, "failed to create log directory")
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, logFileName),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(console, logFile))

	return log, logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
