package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/pipeline"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/youtube"
	"github.com/sirupsen/logrus"
)

type CLI struct {
	URL    string `arg:"" name:"url" help:"The full YouTube URL of the video (e.g. 'https://www.youtube.com/watch?v=dQw4w9WgXcQ')."`
	Output string `short:"o" default:"transcript.txt" help:"Output file, or s3://bucket/key to upload (default: ${default})."`
}

func main() {
	if err := config.LoadEnvFiles(".env"); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	cli, err := parseArgs(os.Args[1:], os.Exit, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to build command line parser: %v", err)
	}

	os.Exit(run(context.Background(), cli, os.Stderr))
}

// parseArgs parses the command line. Help and usage errors end in exit,
// with any non-zero kong code collapsed to 1.
func parseArgs(args []string, exit func(int), stdout, stderr io.Writer) (CLI, error) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("yt-transcript"),
		kong.Description("Fetch a YouTube video transcript and save it to a file."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if code != 0 {
				code = 1
			}
			exit(code)
		}),
	)
	if err != nil {
		return cli, err
	}

	_, err = parser.Parse(args)
	parser.FatalIfErrorf(err)
	return cli, nil
}

// run executes one transcript fetch and returns the process exit code.
func run(ctx context.Context, cli CLI, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}

	logr, logFile, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer logFile.Close()

	var history pipeline.History
	if cfg.HistoryDB != "" {
		store, err := db.Open(cfg.HistoryDB)
		if err != nil {
			logr.WithError(err).WithField("path", cfg.HistoryDB).Warn("Run history disabled")
		} else {
			defer store.Close()
			history = store
		}
	}

	source := youtube.NewClient(youtube.Config{
		BaseURL:   cfg.YouTube.BaseURL,
		UserAgent: cfg.YouTube.UserAgent,
		Timeout:   cfg.YouTube.HTTPTimeout,
	}, logr)

	writer := storage.NewRouter(storage.NewFileWriter(), func(ctx context.Context) (storage.Writer, error) {
		return storage.NewSpacesWriter(ctx, storage.SpacesConfig{
			AccessKey: cfg.Spaces.AccessKey,
			SecretKey: cfg.Spaces.SecretKey,
			Region:    cfg.Spaces.Region,
			Endpoint:  cfg.Spaces.Endpoint,
			PathStyle: cfg.Spaces.PathStyle,
		})
	})

	p := pipeline.New(transcription.NewService(source, logr), writer, history, logr)
	if _, err := p.Run(ctx, cli.URL, cli.Output); err != nil {
		// The pipeline reports failures at error level; below that the user
		// would otherwise see nothing.
		if !logr.IsLevelEnabled(logrus.ErrorLevel) {
			fmt.Fprintf(stderr, "Error (%s): %v\n", errors.KindOf(err).Stage(), err)
		}
		return 1
	}
	return 0
}
