//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"testing"
)

func TestLibrarySearchPaths(t *testing.T) {
	paths := LibrarySearchPaths()
	if len(paths) == 0 {
		t.Error("LibrarySearchPaths should return at least one path")
	}
}

// Integration test - only runs if FFmpeg is available.
func TestLoadFFmpeg(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping FFmpeg load test in short mode")
	}

	if err := Load(); err != nil {
		t.Skipf("FFmpeg not available: %v", err)
	}

	if !IsLoaded() {
		t.Error("IsLoaded should be true after successful Load")
	}

	for name, ver := range map[string]uint32{
		"avutil":   AVUtilVersion(),
		"avcodec":  AVCodecVersion(),
		"avformat": AVFormatVersion(),
		"swscale":  SWScaleVersion(),
	} {
		if ver == 0 {
			t.Errorf("%s version should be non-zero after Load", name)
		} else {
			t.Logf("%s version %d.%d.%d", name, ver>>16, (ver>>8)&0xFF, ver&0xFF)
		}
	}
}
