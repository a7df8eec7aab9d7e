//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"errors"
	"fmt"

	"github.com/vidgrab/vidgrab/avutil"
)

// FFmpegError is an error from an FFmpeg call, carrying the raw AVERROR
// code. It appears wrapped under one of the sentinel errors below; unwrap
// with errors.As to inspect the code.
type FFmpegError = avutil.Error

// Error taxonomy. Every failure returned by the package matches exactly one
// of these under errors.Is.
var (
	// ErrInvalidArgument indicates a malformed request: non-increasing
	// frame numbers, a negative frame count, or a width/height pair where
	// only one side is zero. Rejected before any decode work.
	ErrInvalidArgument = errors.New("vidgrab: invalid argument")

	// ErrUnsupportedFormat indicates the container has no decodable video
	// stream, or no decoder is available for its codec.
	ErrUnsupportedFormat = errors.New("vidgrab: unsupported format")

	// ErrCorruptInput indicates the container headers could not be parsed.
	ErrCorruptInput = errors.New("vidgrab: corrupt input")

	// ErrSeek indicates the planned seek target was unreachable.
	ErrSeek = errors.New("vidgrab: seek failed")

	// ErrDecode indicates a packet failed to decode. The whole call aborts;
	// no partial buffer is returned.
	ErrDecode = errors.New("vidgrab: decode failed")

	// ErrInsufficientFrames indicates the stream ended before all requested
	// frames were produced. The error message names the produced count.
	ErrInsufficientFrames = errors.New("vidgrab: insufficient frames")
)

// invalidArgf wraps ErrInvalidArgument with a description of the bad input.
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// wrapFF attaches a sentinel to an underlying FFmpeg error so callers can
// match either layer.
func wrapFF(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// insufficientFrames reports how many frames were produced before the
// stream ran out.
func insufficientFrames(produced, requested int) error {
	return fmt.Errorf("%w: produced %d of %d requested frames", ErrInsufficientFrames, produced, requested)
}
