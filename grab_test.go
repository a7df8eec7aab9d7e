//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/vidgrab/vidgrab/internal/handles"
)

func frameSlot(res *Result, i int) []byte {
	fb := res.Width * res.Height * 3
	return res.Pixels[i*fb : (i+1)*fb]
}

func TestLoadVid(t *testing.T) {
	data := testVideoBytes(t)

	res, err := LoadVid(data, 8)
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}

	if res.Width != fixtureWidth || res.Height != fixtureHeight {
		t.Errorf("dimensions = %dx%d, want native %dx%d", res.Width, res.Height, fixtureWidth, fixtureHeight)
	}
	if res.FrameCount != 8 {
		t.Errorf("FrameCount = %d, want 8", res.FrameCount)
	}
	if want := 8 * fixtureWidth * fixtureHeight * 3; len(res.Pixels) != want {
		t.Fatalf("len(Pixels) = %d, want %d", len(res.Pixels), want)
	}
	if res.SeekDistance != 0 {
		t.Errorf("SeekDistance = %f, want 0 without random seek", res.SeekDistance)
	}

	// testsrc frames are colorful; an all-zero buffer means nothing was
	// actually converted.
	if bytes.Equal(frameSlot(res, 0), make([]byte, fixtureWidth*fixtureHeight*3)) {
		t.Error("first frame is all zero")
	}
}

func TestLoadVidScaled(t *testing.T) {
	data := testVideoBytes(t)

	res, err := LoadVid(data, 4, WithDimensions(160, 120))
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}
	if res.Width != 160 || res.Height != 120 {
		t.Errorf("dimensions = %dx%d, want 160x120", res.Width, res.Height)
	}
	if want := 4 * 160 * 120 * 3; len(res.Pixels) != want {
		t.Errorf("len(Pixels) = %d, want %d", len(res.Pixels), want)
	}
}

func TestLoadVidInvalidArgs(t *testing.T) {
	for name, call := range map[string]func() error{
		"zero frames": func() error {
			_, err := LoadVid(nil, 0)
			return err
		},
		"negative frames": func() error {
			_, err := LoadVid(nil, -3)
			return err
		},
		"negative dimensions": func() error {
			_, err := LoadVid(nil, 1, WithDimensions(-320, 240))
			return err
		},
		"partial dimensions": func() error {
			_, err := LoadVid(nil, 1, WithDimensions(320, 0))
			return err
		},
		"empty frame list": func() error {
			_, err := LoadVidFrameNums(nil, nil)
			return err
		},
		"negative frame number": func() error {
			_, err := LoadVidFrameNums(nil, []int64{-1})
			return err
		},
		"non-increasing frame numbers": func() error {
			_, err := LoadVidFrameNums(nil, []int64{3, 3, 7})
			return err
		},
	} {
		if err := call(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestLoadVidRandomSeek(t *testing.T) {
	data := testVideoBytes(t)

	rng := rand.New(rand.NewSource(42))
	res, err := LoadVid(data, 8, WithRandomSeek(rng))
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}

	if res.SeekDistance < 0 {
		t.Errorf("SeekDistance = %f, want >= 0", res.SeekDistance)
	}
	if res.SeekDistance > 2.0 {
		t.Errorf("SeekDistance = %f, beyond the stream duration", res.SeekDistance)
	}
	if res.FrameCount != 8 {
		t.Errorf("FrameCount = %d, want 8", res.FrameCount)
	}
}

func TestLoadVidRandomSeekWithFPSCap(t *testing.T) {
	data := testVideoBytes(t)

	// The seek window must be sized with the capped rate: emitting 10
	// frames at 15 fps consumes twice the stream time that 30 fps would,
	// and a window sized with the raw rate can strand the call past the
	// point where 10 capped frames remain.
	for seed := int64(0); seed < 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		res, err := LoadVid(data, 10, WithRandomSeek(rng), WithFPSCap(15))
		if err != nil {
			t.Fatalf("seed %d: LoadVid failed: %v", seed, err)
		}
		if res.FrameCount != 10 {
			t.Errorf("seed %d: FrameCount = %d, want 10", seed, res.FrameCount)
		}
		if maxSeek := 2.0 - 10.0/15.0; res.SeekDistance > maxSeek {
			t.Errorf("seed %d: SeekDistance = %f, want <= %f", seed, res.SeekDistance, maxSeek)
		}
	}
}

func TestLoadVidInsufficientFrames(t *testing.T) {
	data := testVideoBytes(t)

	_, err := LoadVid(data, fixtureFrames+40)
	if !errors.Is(err, ErrInsufficientFrames) {
		t.Fatalf("err = %v, want ErrInsufficientFrames", err)
	}
}

func TestLoadVidShortReadLoop(t *testing.T) {
	data := testVideoBytes(t)

	res, err := LoadVid(data, fixtureFrames+10, WithShortReadPolicy(ShortReadLoop))
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}
	if res.FrameCount != fixtureFrames+10 {
		t.Errorf("FrameCount = %d, want %d", res.FrameCount, fixtureFrames+10)
	}

	// The looped tail repeats the buffer from its start.
	if !bytes.Equal(frameSlot(res, fixtureFrames), frameSlot(res, 0)) {
		t.Error("looped frame does not match the frame it should repeat")
	}
}

func TestLoadVidFPSCap(t *testing.T) {
	data := testVideoBytes(t)

	// Capping 30 fps at 15 halves the frames available: 2 seconds yield
	// about 30, so 20 must still succeed.
	res, err := LoadVid(data, 20, WithFPSCap(15))
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}
	if res.FrameCount != 20 {
		t.Errorf("FrameCount = %d, want 20", res.FrameCount)
	}

	// And more than the capped stream can provide must not.
	if _, err := LoadVid(data, 40, WithFPSCap(15)); !errors.Is(err, ErrInsufficientFrames) {
		t.Errorf("err = %v, want ErrInsufficientFrames", err)
	}
}

func TestLoadVidFrameNums(t *testing.T) {
	data := testVideoBytes(t)

	nums := []int64{0, 10, 30, 59}
	for _, accurate := range []bool{false, true} {
		res, err := LoadVidFrameNums(data, nums, WithAccurateSeek(accurate))
		if err != nil {
			t.Fatalf("LoadVidFrameNums(accurate=%v) failed: %v", accurate, err)
		}
		if res.FrameCount != len(nums) {
			t.Errorf("accurate=%v: FrameCount = %d, want %d", accurate, res.FrameCount, len(nums))
		}
		if want := len(nums) * fixtureWidth * fixtureHeight * 3; len(res.Pixels) != want {
			t.Errorf("accurate=%v: len(Pixels) = %d, want %d", accurate, len(res.Pixels), want)
		}
		// Distinct positions in testsrc should yield distinct frames.
		if bytes.Equal(frameSlot(res, 0), frameSlot(res, 2)) {
			t.Errorf("accurate=%v: frames 0 and 30 are identical", accurate)
		}
	}
}

func TestLoadVidFrameNumsMatchSequential(t *testing.T) {
	data := testVideoBytes(t)

	seq, err := LoadVid(data, 16)
	if err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}
	picked, err := LoadVidFrameNums(data, []int64{5, 12}, WithAccurateSeek(true))
	if err != nil {
		t.Fatalf("LoadVidFrameNums failed: %v", err)
	}

	if !bytes.Equal(frameSlot(picked, 0), frameSlot(seq, 5)) {
		t.Error("accurate frame 5 does not match sequential decode")
	}
	if !bytes.Equal(frameSlot(picked, 1), frameSlot(seq, 12)) {
		t.Error("accurate frame 12 does not match sequential decode")
	}
}

func TestLoadVidFrameNumsOutOfRange(t *testing.T) {
	data := testVideoBytes(t)

	_, err := LoadVidFrameNums(data, []int64{fixtureFrames * 10}, WithAccurateSeek(true))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadVidFrameIndex(t *testing.T) {
	data := testVideoBytes(t)

	res, err := LoadVidFrameIndex(data, 7, WithAccurateSeek(true))
	if err != nil {
		t.Fatalf("LoadVidFrameIndex failed: %v", err)
	}
	if res.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", res.FrameCount)
	}
	if want := fixtureWidth * fixtureHeight * 3; len(res.Pixels) != want {
		t.Errorf("len(Pixels) = %d, want %d", len(res.Pixels), want)
	}
}

func TestLoadVidFrameIndexDeterministic(t *testing.T) {
	data := testVideoBytes(t)

	// Accurate seeking must make single-frame extraction repeatable:
	// the same index grabbed twice yields byte-identical pixels.
	first, err := LoadVidFrameIndex(data, 7, WithAccurateSeek(true))
	if err != nil {
		t.Fatalf("first LoadVidFrameIndex failed: %v", err)
	}
	second, err := LoadVidFrameIndex(data, 7, WithAccurateSeek(true))
	if err != nil {
		t.Fatalf("second LoadVidFrameIndex failed: %v", err)
	}
	if !bytes.Equal(first.Pixels, second.Pixels) {
		t.Error("pixels differ between two identical single-frame grabs")
	}
}

func TestNumGOPs(t *testing.T) {
	data := testVideoBytes(t)

	n, err := NumGOPs(data)
	if err != nil {
		t.Fatalf("NumGOPs failed: %v", err)
	}
	if n != fixtureGOPs {
		t.Errorf("NumGOPs = %d, want %d", n, fixtureGOPs)
	}

	// Nothing is cached between calls, so the answer must not drift.
	again, err := NumGOPs(data)
	if err != nil {
		t.Fatalf("second NumGOPs failed: %v", err)
	}
	if again != n {
		t.Errorf("NumGOPs changed between calls: %d then %d", n, again)
	}
}

func TestResourcesReleased(t *testing.T) {
	data := testVideoBytes(t)

	before := handles.Count()

	if _, err := LoadVid(data, 4); err != nil {
		t.Fatalf("LoadVid failed: %v", err)
	}
	if _, err := LoadVidFrameNums(data, []int64{3}, WithAccurateSeek(true)); err != nil {
		t.Fatalf("LoadVidFrameNums failed: %v", err)
	}
	if _, err := LoadVid(data, fixtureFrames*2); err == nil {
		t.Fatal("expected short read to fail")
	}

	if after := handles.Count(); after != before {
		t.Errorf("handle count = %d after calls, want %d: I/O contexts leaked", after, before)
	}
}
