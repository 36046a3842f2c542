package storage

import (
	"context"
	"os"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	pkgerrors "github.com/pkg/errors"
)

// DefaultOutput is the destination used when none is given.
const DefaultOutput = "transcript.txt"

// Writer persists transcript text to a destination.
type Writer interface {
	Write(ctx context.Context, dest, text string) error
}

// FileWriter writes transcripts to the local filesystem, replacing any
// existing file at the destination.
type FileWriter struct {
	Perm os.FileMode
}

func NewFileWriter() *FileWriter {
	return &FileWriter{Perm: 0644}
}

func (w *FileWriter) Write(ctx context.Context, dest, text string) error {
	const op = "FileWriter.Write"

	if dest == "" {
		return errors.WriteFailed(op, dest, pkgerrors.New("destination path is empty"))
	}
	if err := ctx.Err(); err != nil {
		return errors.WriteFailed(op, dest, err)
	}

	data := []byte(strings.ToValidUTF8(text, "\uFFFD"))
	if err := os.WriteFile(dest, data, w.Perm); err != nil {
		return errors.WriteFailed(op, dest, err)
	}
	return nil
}

// Router sends s3:// destinations to object storage and everything else to
// the local filesystem. Remote is only constructed when first needed.
type Router struct {
	Local  Writer
	Remote func(ctx context.Context) (Writer, error)

	remote Writer
}

func NewRouter(local Writer, remote func(ctx context.Context) (Writer, error)) *Router {
	return &Router{Local: local, Remote: remote}
}

func (r *Router) Write(ctx context.Context, dest, text string) error {
	const op = "Router.Write"

	if !IsRemote(dest) {
		return r.Local.Write(ctx, dest, text)
	}

	if r.remote == nil {
		if r.Remote == nil {
			return errors.WriteFailed(op, dest, pkgerrors.New("object storage is not configured"))
		}
		remote, err := r.Remote(ctx)
		if err != nil {
			return errors.WriteFailed(op, dest, err)
		}
		r.remote = remote
	}
	return r.remote.Write(ctx, dest, text)
}
