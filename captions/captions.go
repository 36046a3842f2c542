// Package captions defines the boundary to a caption-retrieval collaborator.
package captions

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Segment is one timed unit of caption text. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Source fetches the caption segments of a video in chronological order.
type Source interface {
	FetchCaptions(ctx context.Context, videoID string) ([]Segment, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, videoID string) ([]Segment, error)

func (f SourceFunc) FetchCaptions(ctx context.Context, videoID string) ([]Segment, error) {
	return f(ctx, videoID)
}

var (
	ErrDisabled = errors.New("captions are disabled for this video")
	ErrNotFound = errors.New("no captions found in a retrievable format")
)

// RetrievalError reports any other failure to obtain captions: network,
// quota, unavailable video, malformed response.
type RetrievalError struct {
	VideoID string
	Reason  string
	Err     error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Reason, e.VideoID, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Reason, e.VideoID)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func NewRetrievalError(videoID, reason string, err error) *RetrievalError {
	return &RetrievalError{VideoID: videoID, Reason: reason, Err: err}
}
