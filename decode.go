//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"math"

	"github.com/vidgrab/vidgrab/avutil"
)

// driverState tracks the decode driver through one call. Seeking covers
// the container seek, aligning the frames decoded and discarded between the
// landing keyframe and the first wanted frame, emitting the frames written
// to the output buffer. Done and failed are terminal.
type driverState int

const (
	stateSeeking driverState = iota
	stateAligning
	stateEmitting
	stateDone
	stateFailed
)

// decodeDriver drains frames from a Source and fills a frame-major output
// buffer. A driver serves exactly one call; it owns no resources beyond
// bookkeeping and leaves cleanup to the Source and converter.
type decodeDriver struct {
	src   *Source
	conv  *converter
	out   []byte
	state driverState

	emitted int
	lastPTS int64
}

func newDecodeDriver(src *Source, conv *converter, out []byte) *decodeDriver {
	return &decodeDriver{
		src:     src,
		conv:    conv,
		out:     out,
		state:   stateSeeking,
		lastPTS: math.MinInt64,
	}
}

// slot returns the output buffer region for emitted frame i.
func (d *decodeDriver) slot(i int) []byte {
	fb := d.conv.frameBytes()
	return d.out[i*fb : (i+1)*fb]
}

// emit converts frame into the next output slot.
func (d *decodeDriver) emit(frame avutil.Frame) error {
	if err := d.conv.convertInto(frame, d.slot(d.emitted)); err != nil {
		d.state = stateFailed
		return err
	}
	d.emitted++
	return nil
}

// runSequential emits numFrames consecutive frames from the current stream
// position. Decoders can repeat the first frame after a seek, so a frame
// only counts when its timestamp advances past the previous one. When
// fpsCap is set below the stream rate, frames are dropped through a
// fractional accumulator so the kept frames sample the stream evenly.
// A stream that ends early either fails with the produced count or, under
// ShortReadLoop, cycles the frames already emitted to fill the buffer.
func (d *decodeDriver) runSequential(numFrames int, fpsCap float64, shortRead ShortReadPolicy) error {
	keepRatio := 1.0
	if fps := d.src.frameRate.Float64(); fpsCap > 0 && fps > fpsCap {
		keepRatio = fpsCap / fps
	}

	d.state = stateAligning
	var acc float64
	for d.emitted < numFrames {
		frame, err := d.src.nextFrame()
		if err != nil {
			if avutil.IsEOF(err) {
				break
			}
			d.state = stateFailed
			return err
		}

		pts := avutil.GetFramePTS(frame)
		if pts != avutil.NoPTSValue {
			if pts <= d.lastPTS {
				continue
			}
			d.lastPTS = pts
		}

		if keepRatio < 1 {
			acc += keepRatio
			if acc < 1 {
				continue
			}
			acc--
		}

		d.state = stateEmitting
		if err := d.emit(frame); err != nil {
			return err
		}
	}

	if d.emitted < numFrames {
		if shortRead == ShortReadLoop && d.emitted > 0 {
			fb := d.conv.frameBytes()
			for i := d.emitted; i < numFrames; i++ {
				copy(d.out[i*fb:(i+1)*fb], d.slot(i%d.emitted))
			}
			d.emitted = numFrames
		} else {
			d.state = stateFailed
			return insufficientFrames(d.emitted, numFrames)
		}
	}

	d.state = stateDone
	return nil
}

// runTargets emits one frame per entry of targets, a strictly increasing
// list of frame positions. Frames decoded before the next target are
// aligning work and are discarded. Under an estimated plan one decoded
// frame can land at or past several targets at once; it then fills each of
// those slots.
func (d *decodeDriver) runTargets(plan *seekPlan, targets []int64) error {
	d.state = stateAligning
	for d.emitted < len(targets) {
		frame, err := d.src.nextFrame()
		if err != nil {
			if avutil.IsEOF(err) {
				d.state = stateFailed
				return insufficientFrames(d.emitted, len(targets))
			}
			d.state = stateFailed
			return err
		}

		pos := plan.position(d.src, frame)
		if !plan.reached(pos, targets[d.emitted]) {
			continue
		}

		d.state = stateEmitting
		if err := d.emit(frame); err != nil {
			return err
		}
		for d.emitted < len(targets) && plan.reached(pos, targets[d.emitted]) {
			copy(d.slot(d.emitted), d.slot(d.emitted-1))
			d.emitted++
		}
	}

	d.state = stateDone
	return nil
}
