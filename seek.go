//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"math"
	"math/rand"

	"github.com/vidgrab/vidgrab/avutil"
)

// seekPlan tracks where decoding stands after a keyframe-aligned seek.
// In exact mode the position is a counter seeded from the GOP index: the
// seek landed on a keyframe whose frame position is known, and every
// decoded frame with a new timestamp advances it by one. In estimate mode
// the position is derived from each frame's timestamp and the average
// frame duration. Both modes hold the position when a frame repeats its
// predecessor's timestamp, since decoders can emit the frame they landed
// on twice after a seek.
type seekPlan struct {
	exact   bool
	cursor  int64
	avgDur  int64
	lastPos int64
	lastPTS int64
	index   *gopIndex
}

// planFrameSeek positions the source to decode toward targets[0] and
// returns the plan for locating decoded frames. In exact mode it builds
// the GOP index, rejects targets beyond the stream's true frame count,
// and seeks to the keyframe opening the target's GOP. In estimate mode it
// seeks to the target's approximate timestamp; the container seek lands
// on the preceding keyframe, so decoding starts at most one GOP early.
func planFrameSeek(s *Source, targets []int64, accurate bool) (*seekPlan, error) {
	if !accurate {
		avgDur := s.avgFrameDuration()
		ts := s.startTime + targets[0]*avgDur
		if err := s.seekTo(ts); err != nil {
			return nil, err
		}
		return &seekPlan{avgDur: avgDur, lastPos: -1, lastPTS: math.MinInt64}, nil
	}

	idx, err := buildGOPIndex(s)
	if err != nil {
		return nil, err
	}
	if last := targets[len(targets)-1]; last >= int64(idx.numFrames) {
		return nil, invalidArgf("frame %d out of range: stream has %d frames", last, idx.numFrames)
	}

	kf, ok := idx.keyframeFor(int(targets[0]))
	if !ok {
		// No keyframe at or before the target: decode from the start,
		// where buildGOPIndex left the demuxer.
		return &seekPlan{exact: true, index: idx, lastPTS: math.MinInt64}, nil
	}
	if err := s.seekTo(kf.pts); err != nil {
		return nil, err
	}
	return &seekPlan{exact: true, cursor: int64(kf.framePos), index: idx, lastPTS: math.MinInt64}, nil
}

// position returns the frame position of a just-decoded frame and advances
// the plan. The position only moves when the frame's timestamp strictly
// increases: a repeated timestamp is the same frame again and maps to the
// same position.
func (p *seekPlan) position(s *Source, frame avutil.Frame) int64 {
	pts := avutil.GetFramePTS(frame)

	if p.exact {
		if pts != avutil.NoPTSValue {
			if pts <= p.lastPTS {
				return p.cursor - 1
			}
			p.lastPTS = pts
		}
		pos := p.cursor
		p.cursor++
		return pos
	}

	if pts == avutil.NoPTSValue || p.avgDur <= 0 {
		p.lastPos++
		return p.lastPos
	}
	if pts <= p.lastPTS {
		return p.lastPos
	}
	p.lastPTS = pts

	pos := (pts - s.startTime) / p.avgDur
	if pos <= p.lastPos {
		pos = p.lastPos + 1
	}
	p.lastPos = pos
	return pos
}

// reached reports whether a frame at pos satisfies the target under this
// plan. Exact positions must match; estimated positions count any frame at
// or past the target, since timestamp arithmetic can skip over it.
func (p *seekPlan) reached(pos, target int64) bool {
	if p.exact {
		return pos == target
	}
	return pos >= target
}

// planRandomSeek seeks to a uniformly random start offset chosen so that
// numFrames frames remain before the end of the stream, and returns the
// offset in seconds. A positive fpsCap below the stream rate stretches the
// reserved tail, since capped emission consumes stream time faster per
// emitted frame. Streams too short to seek within start at zero.
func planRandomSeek(s *Source, numFrames int, fpsCap float64, rng *rand.Rand) (float64, error) {
	fps := s.frameRate.Float64()
	dur := s.durationSeconds()
	if fps <= 0 || dur <= 0 || s.timeBase.IsZero() {
		return 0, nil
	}
	if fpsCap > 0 && fps > fpsCap {
		fps = fpsCap
	}
	maxSeek := dur - float64(numFrames)/fps
	if maxSeek <= 0 {
		return 0, nil
	}
	dist := rng.Float64() * maxSeek
	if dist <= 0 {
		return 0, nil
	}
	ts := s.startTime + int64(dist/s.timeBase.Float64())
	if err := s.seekTo(ts); err != nil {
		return 0, err
	}
	return dist, nil
}
