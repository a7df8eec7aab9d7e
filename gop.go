//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"sort"

	"github.com/vidgrab/vidgrab/avcodec"
	"github.com/vidgrab/vidgrab/avformat"
	"github.com/vidgrab/vidgrab/avutil"
)

// keyframeEntry records one keyframe of the video stream: its presentation
// timestamp and its position in presentation order.
type keyframeEntry struct {
	pts      int64
	framePos int
}

// gopIndex maps frame positions to the keyframes that open their GOPs.
// It is built from a demux-only packet walk, without decoding, and holds
// the exact frame count of the stream.
type gopIndex struct {
	keyframes []keyframeEntry
	numFrames int
}

// buildGOPIndex walks every packet of the video stream from the start,
// recording presentation timestamps and keyframe flags. Frame positions are
// PTS ranks: packets arrive in decode order, so the n-th smallest timestamp
// belongs to the n-th displayed frame. The demuxer is rewound before
// returning so the caller can decode from the start.
func buildGOPIndex(s *Source) (*gopIndex, error) {
	if err := s.rewind(); err != nil {
		return nil, err
	}

	var (
		ptsList []int64
		keys    []keyframeEntry
	)
	for {
		avcodec.PacketUnref(s.packet)
		if err := avformat.ReadFrame(s.formatCtx, s.packet); err != nil {
			if avutil.IsEOF(err) {
				break
			}
			return nil, wrapFF(ErrCorruptInput, err)
		}
		if avcodec.GetPacketStreamIndex(s.packet) != s.streamIdx {
			continue
		}

		pts := avcodec.GetPacketPTS(s.packet)
		if pts == avutil.NoPTSValue {
			pts = avcodec.GetPacketDTS(s.packet)
		}
		if pts == avutil.NoPTSValue {
			continue
		}
		ptsList = append(ptsList, pts)

		if avcodec.GetPacketFlags(s.packet)&avcodec.PacketFlagKey != 0 {
			keys = append(keys, keyframeEntry{pts: pts})
		}
	}

	sort.Slice(ptsList, func(i, j int) bool { return ptsList[i] < ptsList[j] })
	for i := range keys {
		keys[i].framePos = sort.Search(len(ptsList), func(j int) bool {
			return ptsList[j] >= keys[i].pts
		})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].framePos < keys[j].framePos })

	if err := s.rewind(); err != nil {
		return nil, err
	}

	return &gopIndex{keyframes: keys, numFrames: len(ptsList)}, nil
}

// numGOPs returns the number of GOPs in the stream, one per keyframe.
func (g *gopIndex) numGOPs() int {
	return len(g.keyframes)
}

// keyframeFor returns the last keyframe at or before the given frame
// position. ok is false when the position precedes the first keyframe or
// the stream has none.
func (g *gopIndex) keyframeFor(framePos int) (keyframeEntry, bool) {
	i := sort.Search(len(g.keyframes), func(j int) bool {
		return g.keyframes[j].framePos > framePos
	})
	if i == 0 {
		return keyframeEntry{}, false
	}
	return g.keyframes[i-1], true
}
