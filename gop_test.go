//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import "testing"

func TestKeyframeFor(t *testing.T) {
	idx := &gopIndex{
		keyframes: []keyframeEntry{
			{pts: 0, framePos: 0},
			{pts: 12000, framePos: 12},
			{pts: 24000, framePos: 24},
		},
		numFrames: 36,
	}

	tests := []struct {
		framePos int
		wantPos  int
		wantOK   bool
	}{
		{0, 0, true},
		{5, 0, true},
		{11, 0, true},
		{12, 12, true},
		{23, 12, true},
		{24, 24, true},
		{35, 24, true},
	}
	for _, tt := range tests {
		kf, ok := idx.keyframeFor(tt.framePos)
		if ok != tt.wantOK || kf.framePos != tt.wantPos {
			t.Errorf("keyframeFor(%d) = (%d, %v), want (%d, %v)",
				tt.framePos, kf.framePos, ok, tt.wantPos, tt.wantOK)
		}
	}
}

func TestKeyframeForBeforeFirst(t *testing.T) {
	idx := &gopIndex{
		keyframes: []keyframeEntry{{pts: 9000, framePos: 9}},
		numFrames: 18,
	}
	if _, ok := idx.keyframeFor(4); ok {
		t.Error("keyframeFor before the first keyframe should report ok=false")
	}

	empty := &gopIndex{}
	if _, ok := empty.keyframeFor(0); ok {
		t.Error("keyframeFor on an empty index should report ok=false")
	}
}

func TestBuildGOPIndex(t *testing.T) {
	data := testVideoBytes(t)

	s, err := openSource(data)
	if err != nil {
		t.Fatalf("openSource failed: %v", err)
	}
	defer s.Close()

	idx, err := buildGOPIndex(s)
	if err != nil {
		t.Fatalf("buildGOPIndex failed: %v", err)
	}

	if idx.numFrames != fixtureFrames {
		t.Errorf("numFrames = %d, want %d", idx.numFrames, fixtureFrames)
	}
	if idx.numGOPs() != fixtureGOPs {
		t.Errorf("numGOPs = %d, want %d", idx.numGOPs(), fixtureGOPs)
	}

	// Keyframes fall every 12 frames with the fixture's GOP size.
	for i, kf := range idx.keyframes {
		if kf.framePos != i*12 {
			t.Errorf("keyframe %d at framePos %d, want %d", i, kf.framePos, i*12)
		}
	}

	// The walk must leave the source decodable from the start.
	frame, err := s.nextFrame()
	if err != nil {
		t.Fatalf("decode after index walk failed: %v", err)
	}
	_ = frame
}
