//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"math/rand"
)

// Result carries the output of one extraction call. Pixels is frame-major
// packed RGB24: frame i occupies Pixels[i*Width*Height*3:(i+1)*Width*Height*3],
// rows top to bottom with no padding. Width and Height are always the
// resolved output dimensions, whether they were requested or taken from the
// stream.
type Result struct {
	Pixels       []byte
	Width        int
	Height       int
	FrameCount   int
	SeekDistance float64
}

// ShortReadPolicy selects what LoadVid does when the stream ends before the
// requested frame count is reached.
type ShortReadPolicy int

const (
	// ShortReadError fails the call with ErrInsufficientFrames.
	ShortReadError ShortReadPolicy = iota
	// ShortReadLoop fills the remaining slots by cycling through the
	// frames already decoded.
	ShortReadLoop
)

type options struct {
	width     int
	height    int
	rng       *rand.Rand
	accurate  bool
	fpsCap    float64
	shortRead ShortReadPolicy
}

// Option configures an extraction call.
type Option func(*options)

// WithDimensions requests the output size. Pass 0, 0 (the default) to keep
// the stream's native size.
func WithDimensions(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithRandomSeek makes LoadVid start at a uniformly random offset instead
// of the beginning of the stream. The offset is drawn from rng and reported
// in Result.SeekDistance as seconds.
func WithRandomSeek(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithAccurateSeek controls how LoadVidFrameNums locates frames. When
// accurate, the whole stream is indexed first and frame positions are
// exact. Otherwise positions are estimated from the average frame
// duration, which is faster but can be off on variable-rate streams.
func WithAccurateSeek(accurate bool) Option {
	return func(o *options) { o.accurate = accurate }
}

// WithFPSCap drops frames during LoadVid so the emitted frames sample the
// stream at no more than fps frames per second. Zero (the default) keeps
// every frame.
func WithFPSCap(fps float64) Option {
	return func(o *options) { o.fpsCap = fps }
}

// WithShortReadPolicy selects LoadVid's behavior when the stream is shorter
// than the requested frame count.
func WithShortReadPolicy(p ShortReadPolicy) Option {
	return func(o *options) { o.shortRead = p }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validateDims rejects dimension requests that cannot resolve: sizes are
// either both zero (native) or both positive.
func validateDims(o options) error {
	if o.width < 0 || o.height < 0 {
		return invalidArgf("negative dimensions %dx%d", o.width, o.height)
	}
	if (o.width == 0) != (o.height == 0) {
		return invalidArgf("partial dimensions %dx%d: pass both or neither", o.width, o.height)
	}
	return nil
}

// resolveDims picks the output size for a call, falling back to the
// stream's native size when none was requested.
func resolveDims(s *Source, o options) (int, int, error) {
	if o.width > 0 {
		return o.width, o.height, nil
	}
	if s.width <= 0 || s.height <= 0 {
		return 0, 0, wrapFF(ErrCorruptInput, nil)
	}
	return s.width, s.height, nil
}

// LoadVid decodes numFrames consecutive frames from the encoded video in
// data, starting at the beginning or, with WithRandomSeek, at a random
// offset. The call either fills the whole buffer or fails; a partially
// decoded buffer is never returned.
func LoadVid(data []byte, numFrames int, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	if numFrames <= 0 {
		return nil, invalidArgf("numFrames %d: must be positive", numFrames)
	}
	if err := validateDims(o); err != nil {
		return nil, err
	}

	s, err := openSource(data)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	w, h, err := resolveDims(s, o)
	if err != nil {
		return nil, err
	}
	conv, err := newConverter(s.width, s.height, s.pixFmt, w, h)
	if err != nil {
		return nil, err
	}
	defer conv.Close()

	var dist float64
	if o.rng != nil {
		if dist, err = planRandomSeek(s, numFrames, o.fpsCap, o.rng); err != nil {
			return nil, err
		}
	}

	out := make([]byte, numFrames*conv.frameBytes())
	driver := newDecodeDriver(s, conv, out)
	if err := driver.runSequential(numFrames, o.fpsCap, o.shortRead); err != nil {
		return nil, err
	}

	return &Result{
		Pixels:       out,
		Width:        w,
		Height:       h,
		FrameCount:   numFrames,
		SeekDistance: dist,
	}, nil
}

// LoadVidFrameNums decodes exactly the frames named by frameNums, a
// strictly increasing list of zero-based frame positions, in order. By
// default positions are estimated from timestamps; WithAccurateSeek
// indexes the stream first and makes them exact.
func LoadVidFrameNums(data []byte, frameNums []int64, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	if len(frameNums) == 0 {
		return nil, invalidArgf("empty frame number list")
	}
	if frameNums[0] < 0 {
		return nil, invalidArgf("frame number %d: must be non-negative", frameNums[0])
	}
	for i := 1; i < len(frameNums); i++ {
		if frameNums[i] <= frameNums[i-1] {
			return nil, invalidArgf("frame numbers must be strictly increasing: %d after %d",
				frameNums[i], frameNums[i-1])
		}
	}
	if err := validateDims(o); err != nil {
		return nil, err
	}

	s, err := openSource(data)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	w, h, err := resolveDims(s, o)
	if err != nil {
		return nil, err
	}
	conv, err := newConverter(s.width, s.height, s.pixFmt, w, h)
	if err != nil {
		return nil, err
	}
	defer conv.Close()

	plan, err := planFrameSeek(s, frameNums, o.accurate)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(frameNums)*conv.frameBytes())
	driver := newDecodeDriver(s, conv, out)
	if err := driver.runTargets(plan, frameNums); err != nil {
		return nil, err
	}

	return &Result{
		Pixels:     out,
		Width:      w,
		Height:     h,
		FrameCount: len(frameNums),
	}, nil
}

// LoadVidFrameIndex decodes the single frame at the given zero-based
// position.
func LoadVidFrameIndex(data []byte, frameNum int64, opts ...Option) (*Result, error) {
	return LoadVidFrameNums(data, []int64{frameNum}, opts...)
}

// NumGOPs counts the groups of pictures in the encoded video: one per
// keyframe. MP4 containers are answered from the sync-sample table without
// touching FFmpeg; everything else falls back to a demux-only packet walk.
func NumGOPs(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, invalidArgf("empty input")
	}
	if n, err := numGOPsMP4(data); err == nil {
		return n, nil
	}

	s, err := openSource(data)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	idx, err := buildGOPIndex(s)
	if err != nil {
		return 0, err
	}
	return idx.numGOPs(), nil
}
