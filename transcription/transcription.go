package transcription

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Service struct {
	source captions.Source
	logger logrus.FieldLogger
}

func NewService(source captions.Source, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		source: source,
		logger: logger,
	}
}

// Fetch retrieves the captions for videoID and returns them as plain text.
// Every failure comes back as an *errors.AppError of a fetch Kind.
func (s *Service) Fetch(ctx context.Context, videoID string) (string, error) {
	const op = "transcription.Fetch"
	logger := s.logger.WithField("video_id", videoID)

	segments, err := s.fetchSegments(ctx, videoID)
	if err != nil {
		return "", classify(op, videoID, err)
	}

	logger.WithField("segments", len(segments)).Debug("Captions retrieved")
	return JoinSegments(segments), nil
}

func (s *Service) fetchSegments(ctx context.Context, videoID string) (segments []captions.Segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			segments = nil
			err = errors.Unexpected("transcription.fetchSegments", videoID, fmt.Errorf("panic: %v", r))
		}
	}()
	return s.source.FetchCaptions(ctx, videoID)
}

func classify(op, videoID string, err error) error {
	var appErr *errors.AppError
	if pkgerrors.As(err, &appErr) {
		return appErr
	}

	var retrievalErr *captions.RetrievalError
	switch {
	case pkgerrors.Is(err, captions.ErrDisabled):
		return errors.CaptionsDisabled(op, videoID, nil)
	case pkgerrors.Is(err, captions.ErrNotFound):
		return errors.NoCaptions(op, videoID, nil)
	case pkgerrors.As(err, &retrievalErr):
		return errors.RetrievalFailed(op, videoID, err)
	default:
		return errors.Unexpected(op, videoID, err)
	}
}

// JoinSegments writes each segment's text followed by a newline, in the
// given order, and trims trailing whitespace from the result.
func JoinSegments(segments []captions.Segment) string {
	var builder strings.Builder
	for _, seg := range segments {
		builder.WriteString(seg.Text)
		builder.WriteByte('\n')
	}
	return strings.TrimRightFunc(builder.String(), unicode.IsSpace)
}
