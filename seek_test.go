//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"math"
	"testing"
	"unsafe"

	"github.com/vidgrab/vidgrab/avutil"
)

// syntheticFrame builds an in-memory block shaped enough like an AVFrame
// for the timestamp accessors.
func syntheticFrame(pts int64) avutil.Frame {
	buf := make([]byte, 256)
	frame := avutil.Frame(unsafe.Pointer(&buf[0]))
	avutil.SetFramePTS(frame, pts)
	return frame
}

func TestSeekPlanExactPosition(t *testing.T) {
	plan := &seekPlan{exact: true, cursor: 12}

	for want := int64(12); want < 16; want++ {
		if pos := plan.position(nil, nil); pos != want {
			t.Errorf("position = %d, want %d", pos, want)
		}
	}
}

func TestSeekPlanExactHoldsOnRepeatedPTS(t *testing.T) {
	plan := &seekPlan{exact: true, cursor: 5, lastPTS: math.MinInt64}

	if pos := plan.position(nil, syntheticFrame(2560)); pos != 5 {
		t.Errorf("first frame at position %d, want 5", pos)
	}
	// Decoders can emit the frame they landed on twice after a seek; the
	// repeat must map to the same position, not the next one.
	if pos := plan.position(nil, syntheticFrame(2560)); pos != 5 {
		t.Errorf("repeated timestamp at position %d, want 5 again", pos)
	}
	if pos := plan.position(nil, syntheticFrame(3072)); pos != 6 {
		t.Errorf("next frame at position %d, want 6", pos)
	}
}

func TestSeekPlanEstimateHoldsOnRepeatedPTS(t *testing.T) {
	s := &Source{}
	plan := &seekPlan{avgDur: 512, lastPos: -1, lastPTS: math.MinInt64}

	if pos := plan.position(s, syntheticFrame(5*512)); pos != 5 {
		t.Errorf("first frame at position %d, want 5", pos)
	}
	if pos := plan.position(s, syntheticFrame(5*512)); pos != 5 {
		t.Errorf("repeated timestamp at position %d, want 5 again", pos)
	}
	if pos := plan.position(s, syntheticFrame(6*512)); pos != 6 {
		t.Errorf("next frame at position %d, want 6", pos)
	}
}

func TestSeekPlanReached(t *testing.T) {
	exact := &seekPlan{exact: true}
	if exact.reached(10, 11) {
		t.Error("exact plan should not match a position before the target")
	}
	if exact.reached(12, 11) {
		t.Error("exact plan should not match a position past the target")
	}
	if !exact.reached(11, 11) {
		t.Error("exact plan should match the exact position")
	}

	estimate := &seekPlan{}
	if estimate.reached(10, 11) {
		t.Error("estimated plan should not match before the target")
	}
	if !estimate.reached(11, 11) || !estimate.reached(14, 11) {
		t.Error("estimated plan should match at or past the target")
	}
}

func TestPlanFrameSeekExact(t *testing.T) {
	data := testVideoBytes(t)

	s, err := openSource(data)
	if err != nil {
		t.Fatalf("openSource failed: %v", err)
	}
	defer s.Close()

	// Frame 30 sits in the GOP opened by the keyframe at frame 24.
	plan, err := planFrameSeek(s, []int64{30}, true)
	if err != nil {
		t.Fatalf("planFrameSeek failed: %v", err)
	}
	if !plan.exact {
		t.Fatal("plan should be exact")
	}
	if plan.cursor != 24 {
		t.Errorf("cursor = %d, want 24 (keyframe of frame 30's GOP)", plan.cursor)
	}
	if plan.index == nil || plan.index.numFrames != fixtureFrames {
		t.Error("plan should carry the full GOP index")
	}
}

func TestPlanFrameSeekEstimate(t *testing.T) {
	data := testVideoBytes(t)

	s, err := openSource(data)
	if err != nil {
		t.Fatalf("openSource failed: %v", err)
	}
	defer s.Close()

	plan, err := planFrameSeek(s, []int64{30}, false)
	if err != nil {
		t.Fatalf("planFrameSeek failed: %v", err)
	}
	if plan.exact {
		t.Fatal("plan should be estimated")
	}
	if plan.avgDur <= 0 {
		t.Errorf("avgDur = %d, want positive", plan.avgDur)
	}

	// The next decoded frame must come from at or before the target: the
	// backward seek lands on the opening keyframe of some GOP at or
	// before frame 30.
	frame, err := s.nextFrame()
	if err != nil {
		t.Fatalf("decode after seek failed: %v", err)
	}
	if pos := plan.position(s, frame); pos > 30 {
		t.Errorf("first frame after seek at position %d, want <= 30", pos)
	}
}
