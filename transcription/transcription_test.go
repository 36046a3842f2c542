package transcription

import (
	"context"
	"fmt"
	"testing"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(fn captions.SourceFunc) *Service {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewService(fn, logger)
}

func TestJoinSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []captions.Segment
		expected string
	}{
		{
			name:     "two segments",
			segments: []captions.Segment{{Text: "Hello"}, {Text: "world"}},
			expected: "Hello\nworld",
		},
		{
			name:     "keeps collaborator order",
			segments: []captions.Segment{{Text: "b", Start: 2}, {Text: "a", Start: 1}},
			expected: "b\na",
		},
		{
			name:     "trailing whitespace trimmed",
			segments: []captions.Segment{{Text: "line one"}, {Text: "line two  "}, {Text: " "}},
			expected: "line one\nline two",
		},
		{
			name:     "unicode text",
			segments: []captions.Segment{{Text: "こんにちは"}, {Text: "Grüße"}},
			expected: "こんにちは\nGrüße",
		},
		{
			name:     "no segments",
			segments: nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinSegments(tt.segments))
		})
	}
}

func TestFetch(t *testing.T) {
	var gotID string
	service := newTestService(func(ctx context.Context, videoID string) ([]captions.Segment, error) {
		gotID = videoID
		return []captions.Segment{
			{Text: "Hello", Start: 0, Duration: 1.5},
			{Text: "world", Start: 1.5, Duration: 2},
		}, nil
	})

	text, err := service.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Hello\nworld", text)
	assert.Equal(t, "abc123", gotID)
}

func TestFetch_Errors(t *testing.T) {
	cause := fmt.Errorf("connection reset")

	tests := []struct {
		name   string
		source captions.SourceFunc
		kind   errors.Kind
	}{
		{
			name: "captions disabled",
			source: func(ctx context.Context, videoID string) ([]captions.Segment, error) {
				return nil, captions.ErrDisabled
			},
			kind: errors.KindCaptionsDisabled,
		},
		{
			name: "wrapped not found",
			source: func(ctx context.Context, videoID string) ([]captions.Segment, error) {
				return nil, pkgerrors.Wrap(captions.ErrNotFound, "selecting track")
			},
			kind: errors.KindNoCaptions,
		},
		{
			name: "retrieval error",
			source: func(ctx context.Context, videoID string) ([]captions.Segment, error) {
				return nil, captions.NewRetrievalError(videoID, "request failed", cause)
			},
			kind: errors.KindRetrievalFailed,
		},
		{
			name: "unanticipated error",
			source: func(ctx context.Context, videoID string) ([]captions.Segment, error) {
				return nil, cause
			},
			kind: errors.KindUnexpected,
		},
		{
			name: "panic in collaborator",
			source: func(ctx context.Context, videoID string) ([]captions.Segment, error) {
				panic("index out of range")
			},
			kind: errors.KindUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(tt.source)

			text, err := service.Fetch(context.Background(), "abc123")
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Contains(t, err.Error(), "abc123")
		})
	}
}

func TestFetch_RetrievalCauseInMessage(t *testing.T) {
	service := newTestService(func(ctx context.Context, videoID string) ([]captions.Segment, error) {
		return nil, captions.NewRetrievalError(videoID, "quota exceeded", nil)
	})

	_, err := service.Fetch(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
