// Package pipeline runs one URL through parse, fetch and write.
package pipeline

import (
	"context"

	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/sirupsen/logrus"
)

type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// History records the outcome of each run. *db.Store implements it.
type History interface {
	Begin(ctx context.Context, url string) (string, error)
	SetVideoID(ctx context.Context, id, videoID string) error
	SetStatus(ctx context.Context, id string, status db.Status) error
	Complete(ctx context.Context, id, destination string) error
	Fail(ctx context.Context, id, message string) error
}

type Result struct {
	VideoID     string
	Destination string
	Bytes       int
}

type Pipeline struct {
	fetcher Fetcher
	writer  storage.Writer
	history History
	logger  logrus.FieldLogger
}

// New wires the stages together. history may be nil.
func New(fetcher Fetcher, writer storage.Writer, history History, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		fetcher: fetcher,
		writer:  writer,
		history: history,
		logger:  logger,
	}
}

// Run extracts the video ID from rawURL, fetches its transcript and writes
// it to dest. Nothing is written unless the fetch succeeds.
func (p *Pipeline) Run(ctx context.Context, rawURL, dest string) (*Result, error) {
	const op = "Pipeline.Run"
	if dest == "" {
		dest = storage.DefaultOutput
	}

	run := p.begin(ctx, rawURL)
	logger := p.logger.WithField("url", rawURL)
	if run.id != "" {
		logger = logger.WithField("run_id", run.id)
	}

	logger.Info("Extracting video ID from URL")
	videoID, err := validation.ExtractVideoID(rawURL)
	if err != nil {
		return nil, p.fail(ctx, run, logger, err)
	}
	logger = logger.WithField("video_id", videoID)
	logger.Info("Extracted video ID")
	run.setVideoID(ctx, videoID)
	run.setStatus(ctx, db.StatusInProgress)

	logger.Info("Fetching transcript")
	transcript, err := p.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, p.fail(ctx, run, logger, err)
	}
	if transcript == "" {
		return nil, p.fail(ctx, run, logger, errors.NoCaptions(op, videoID, nil))
	}

	logger = logger.WithField("destination", dest)
	logger.Info("Transcript retrieved, writing to destination")
	if err := p.writer.Write(ctx, dest, transcript); err != nil {
		return nil, p.fail(ctx, run, logger, err)
	}

	run.complete(ctx, dest)
	logger.Info("Transcript successfully written")

	return &Result{
		VideoID:     videoID,
		Destination: dest,
		Bytes:       len(transcript),
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, run *runRecord, logger logrus.FieldLogger, err error) error {
	kind := errors.KindOf(err)
	logger.WithFields(logrus.Fields{
		"stage": kind.Stage(),
		"kind":  kind.String(),
	}).Error(err.Error())

	run.fail(ctx, err.Error())
	return err
}

// runRecord forwards to History and only warns on failure, so a broken
// history database never changes the outcome of a run.
type runRecord struct {
	history History
	id      string
	logger  logrus.FieldLogger
}

func (p *Pipeline) begin(ctx context.Context, rawURL string) *runRecord {
	run := &runRecord{history: p.history, logger: p.logger}
	if p.history == nil {
		return run
	}

	id, err := p.history.Begin(ctx, rawURL)
	if err != nil {
		p.logger.WithError(err).Warn("Failed to record run in history")
		run.history = nil
		return run
	}
	run.id = id
	return run
}

func (r *runRecord) setVideoID(ctx context.Context, videoID string) {
	if r.history == nil {
		return
	}
	r.warn(r.history.SetVideoID(ctx, r.id, videoID), "Failed to record video ID")
}

func (r *runRecord) setStatus(ctx context.Context, status db.Status) {
	if r.history == nil {
		return
	}
	r.warn(r.history.SetStatus(ctx, r.id, status), "Failed to update run status")
}

func (r *runRecord) complete(ctx context.Context, dest string) {
	if r.history == nil {
		return
	}
	r.warn(r.history.Complete(ctx, r.id, dest), "Failed to mark run completed")
}

func (r *runRecord) fail(ctx context.Context, message string) {
	if r.history == nil {
		return
	}
	r.warn(r.history.Fail(ctx, r.id, message), "Failed to mark run failed")
}

func (r *runRecord) warn(err error, msg string) {
	if err != nil {
		r.logger.WithError(err).WithField("run_id", r.id).Warn(msg)
	}
}
