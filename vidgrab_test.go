//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var initErr error

func init() {
	initErr = Init()
}

// Fixture properties: 2 seconds of testsrc at 30 fps with a keyframe every
// 12 frames and no audio.
const (
	fixtureWidth  = 320
	fixtureHeight = 240
	fixtureFPS    = 30
	fixtureFrames = 60
	fixtureGOPs   = 5
)

var (
	fixtureOnce sync.Once
	fixtureData []byte
	fixtureErr  error
)

// testVideoBytes encodes the shared test video with the ffmpeg CLI and
// returns its bytes. Tests are skipped when FFmpeg is unavailable.
func testVideoBytes(t *testing.T) []byte {
	t.Helper()

	if initErr != nil {
		t.Skipf("FFmpeg libraries not available: %v", initErr)
	}

	fixtureOnce.Do(func() {
		dir, err := os.MkdirTemp("", "vidgrab-test")
		if err != nil {
			fixtureErr = err
			return
		}
		defer os.RemoveAll(dir)

		testFile := filepath.Join(dir, "test.mp4")
		cmd := exec.Command("ffmpeg", "-y",
			"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=30",
			"-c:v", "libx264", "-preset", "ultrafast",
			"-g", "12", "-keyint_min", "12", "-sc_threshold", "0",
			"-pix_fmt", "yuv420p",
			"-an",
			testFile)
		if fixtureErr = cmd.Run(); fixtureErr != nil {
			return
		}
		fixtureData, fixtureErr = os.ReadFile(testFile)
	})

	if fixtureErr != nil {
		t.Skipf("ffmpeg not available or failed: %v", fixtureErr)
	}
	return fixtureData
}

func TestInit(t *testing.T) {
	if initErr != nil {
		t.Skipf("FFmpeg libraries not available: %v", initErr)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !IsLoaded() {
		t.Error("IsLoaded returned false after Init")
	}
}

func TestVersion(t *testing.T) {
	if initErr != nil {
		t.Skipf("FFmpeg libraries not available: %v", initErr)
	}

	avutil, avcodec, avformat, swscale := Version()
	for name, ver := range map[string]uint32{
		"avutil":   avutil,
		"avcodec":  avcodec,
		"avformat": avformat,
		"swscale":  swscale,
	} {
		if ver == 0 {
			t.Errorf("%s version is 0", name)
		}
	}
	t.Logf("Versions: avutil=%d.%d.%d, avcodec=%d.%d.%d, avformat=%d.%d.%d, swscale=%d.%d.%d",
		avutil>>16, (avutil>>8)&0xFF, avutil&0xFF,
		avcodec>>16, (avcodec>>8)&0xFF, avcodec&0xFF,
		avformat>>16, (avformat>>8)&0xFF, avformat&0xFF,
		swscale>>16, (swscale>>8)&0xFF, swscale&0xFF)
}

func TestProbe(t *testing.T) {
	data := testVideoBytes(t)

	info, err := Probe(data)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if info.Width != fixtureWidth || info.Height != fixtureHeight {
		t.Errorf("dimensions = %dx%d, want %dx%d", info.Width, info.Height, fixtureWidth, fixtureHeight)
	}
	if info.CodecName != "h264" {
		t.Errorf("CodecName = %q, want h264", info.CodecName)
	}
	if info.FrameRate < fixtureFPS-1 || info.FrameRate > fixtureFPS+1 {
		t.Errorf("FrameRate = %f, want ~%d", info.FrameRate, fixtureFPS)
	}
	if info.FrameCount != fixtureFrames {
		t.Errorf("FrameCount = %d, want %d", info.FrameCount, fixtureFrames)
	}
	if info.Duration < 1.9 || info.Duration > 2.1 {
		t.Errorf("Duration = %f, want ~2.0", info.Duration)
	}
}

func TestProbeGarbage(t *testing.T) {
	if initErr != nil {
		t.Skipf("FFmpeg libraries not available: %v", initErr)
	}

	if _, err := Probe([]byte("this is not a video file at all, not even close")); err == nil {
		t.Error("Probe of garbage input should fail")
	}
}
