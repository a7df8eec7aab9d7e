//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import "testing"

func TestNumGOPsMP4(t *testing.T) {
	data := testVideoBytes(t)

	n, err := numGOPsMP4(data)
	if err != nil {
		t.Fatalf("numGOPsMP4 failed: %v", err)
	}
	if n != fixtureGOPs {
		t.Errorf("numGOPsMP4 = %d, want %d", n, fixtureGOPs)
	}
}

func TestNumGOPsMP4AgreesWithPacketWalk(t *testing.T) {
	data := testVideoBytes(t)

	fromTable, err := numGOPsMP4(data)
	if err != nil {
		t.Fatalf("numGOPsMP4 failed: %v", err)
	}

	s, err := openSource(data)
	if err != nil {
		t.Fatalf("openSource failed: %v", err)
	}
	defer s.Close()
	idx, err := buildGOPIndex(s)
	if err != nil {
		t.Fatalf("buildGOPIndex failed: %v", err)
	}

	if fromTable != idx.numGOPs() {
		t.Errorf("sync-sample table says %d GOPs, packet walk says %d", fromTable, idx.numGOPs())
	}
}

func TestNumGOPsMP4RejectsGarbage(t *testing.T) {
	if _, err := numGOPsMP4([]byte("definitely not an mp4 container")); err == nil {
		t.Error("numGOPsMP4 should fail on non-MP4 data")
	}
}
