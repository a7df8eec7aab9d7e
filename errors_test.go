//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"errors"
	"strings"
	"testing"

	"github.com/vidgrab/vidgrab/avutil"
)

func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidArgument,
		ErrUnsupportedFormat,
		ErrCorruptInput,
		ErrSeek,
		ErrDecode,
		ErrInsufficientFrames,
	}
	for i, a := range sentinels {
		if !strings.HasPrefix(a.Error(), "vidgrab: ") {
			t.Errorf("%v should carry the vidgrab prefix", a)
		}
		for _, b := range sentinels[i+1:] {
			if errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestInvalidArgf(t *testing.T) {
	err := invalidArgf("numFrames %d", -1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("invalidArgf should wrap ErrInvalidArgument")
	}
	if !strings.Contains(err.Error(), "numFrames -1") {
		t.Errorf("message %q should include the formatted detail", err)
	}
}

func TestWrapFF(t *testing.T) {
	cause := avutil.NewError(avutil.AVERROR_INVALIDDATA, "avformat_open_input")
	err := wrapFF(ErrCorruptInput, cause)

	if !errors.Is(err, ErrCorruptInput) {
		t.Error("wrapped error should match its sentinel")
	}
	var ffErr *avutil.Error
	if !errors.As(err, &ffErr) {
		t.Fatal("wrapped error should expose the FFmpeg error")
	}
	if ffErr.Code != avutil.AVERROR_INVALIDDATA {
		t.Errorf("Code = %d, want AVERROR_INVALIDDATA", ffErr.Code)
	}

	if got := wrapFF(ErrSeek, nil); got != ErrSeek {
		t.Errorf("wrapFF with nil cause = %v, want the bare sentinel", got)
	}
}

func TestInsufficientFrames(t *testing.T) {
	err := insufficientFrames(13, 64)
	if !errors.Is(err, ErrInsufficientFrames) {
		t.Error("should wrap ErrInsufficientFrames")
	}
	if !strings.Contains(err.Error(), "13") || !strings.Contains(err.Error(), "64") {
		t.Errorf("message %q should name produced and requested counts", err)
	}
}
