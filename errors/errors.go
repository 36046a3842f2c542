package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoPatternMatched
	KindMalformedExtraction
	KindCaptionsDisabled
	KindNoCaptions
	KindRetrievalFailed
	KindUnexpected
	KindWriteFailed
)

func (k Kind) String() string {
	switch k {
	case KindNoPatternMatched:
		return "no_pattern_matched"
	case KindMalformedExtraction:
		return "malformed_extraction"
	case KindCaptionsDisabled:
		return "captions_disabled"
	case KindNoCaptions:
		return "no_captions"
	case KindRetrievalFailed:
		return "retrieval_failed"
	case KindUnexpected:
		return "unexpected"
	case KindWriteFailed:
		return "write_failed"
	default:
		return "unknown"
	}
}

// Stage is the pipeline step a Kind belongs to.
func (k Kind) Stage() string {
	switch k {
	case KindNoPatternMatched, KindMalformedExtraction:
		return "parse"
	case KindCaptionsDisabled, KindNoCaptions, KindRetrievalFailed, KindUnexpected:
		return "fetch"
	case KindWriteFailed:
		return "write"
	default:
		return "unknown"
	}
}

type AppError struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Stage() string {
	return e.Kind.Stage()
}

func New(kind Kind, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func NoPatternMatched(op, url string) *AppError {
	return New(KindNoPatternMatched, op, nil,
		fmt.Sprintf("could not recognize YouTube video ID pattern in URL: %s", url))
}

func MalformedExtraction(op, url, candidate string) *AppError {
	return New(KindMalformedExtraction, op, nil,
		fmt.Sprintf("extracted ID %q seems invalid from URL: %s", candidate, url))
}

func CaptionsDisabled(op, videoID string, err error) *AppError {
	return New(KindCaptionsDisabled, op, err,
		fmt.Sprintf("transcripts are disabled for video ID %s", videoID))
}

func NoCaptions(op, videoID string, err error) *AppError {
	return New(KindNoCaptions, op, err,
		fmt.Sprintf("no transcript found for video ID %s; the video might not have captions or they aren't available in a retrievable format", videoID))
}

func RetrievalFailed(op, videoID string, err error) *AppError {
	return New(KindRetrievalFailed, op, err,
		fmt.Sprintf("could not retrieve transcript for video ID %s", videoID))
}

func Unexpected(op, videoID string, err error) *AppError {
	return New(KindUnexpected, op, err,
		fmt.Sprintf("unexpected error while fetching transcript for %s", videoID))
}

func WriteFailed(op, dest string, err error) *AppError {
	return New(KindWriteFailed, op, err,
		fmt.Sprintf("could not write transcript to %q", dest))
}

// KindOf returns the Kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
