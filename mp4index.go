//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"bytes"
	"errors"

	"github.com/Eyevinn/mp4ff/mp4"
)

var errNotIndexableMP4 = errors.New("vidgrab: not an indexable mp4")

// numGOPsMP4 counts GOPs straight from an MP4 container's sync-sample
// table, without opening a decoder. Every sync sample opens a GOP; a track
// without an stss box marks every sample as sync, so its GOP count is its
// sample count. Anything this cannot index (non-MP4 data, fragmented
// files, missing tables) returns an error and the caller falls back to a
// packet walk.
func numGOPsMP4(data []byte) (int, error) {
	mp4File, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	if mp4File.IsFragmented() || mp4File.Moov == nil {
		return 0, errNotIndexableMP4
	}

	for _, trak := range mp4File.Moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			return 0, errNotIndexableMP4
		}
		stbl := trak.Mdia.Minf.Stbl
		if stbl.Stss != nil {
			return len(stbl.Stss.SampleNumber), nil
		}
		// No sync-sample table: every sample is a keyframe.
		if stbl.Stsz != nil {
			return int(stbl.Stsz.SampleNumber), nil
		}
		return 0, errNotIndexableMP4
	}
	return 0, errNotIndexableMP4
}
