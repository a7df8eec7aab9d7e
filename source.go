//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"math"

	"github.com/vidgrab/vidgrab/avcodec"
	"github.com/vidgrab/vidgrab/avformat"
	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/internal/bindings"
)

// Source is the per-call stream context: one demuxer and one decoder bound
// to one in-memory input. It is created at the start of an operation and
// closed before the operation returns; nothing is cached across calls.
type Source struct {
	io        *memoryIO
	formatCtx avformat.FormatContext
	codecCtx  avcodec.Context
	packet    avcodec.Packet
	frame     avutil.Frame

	streamIdx int32
	codecName string
	width     int
	height    int
	pixFmt    avutil.PixelFormat
	timeBase  avutil.Rational
	frameRate avutil.Rational
	startTime int64 // first PTS, stream time base units
	duration  int64 // stream time base units
	nbFrames  int64 // container estimate, may be 0

	draining bool
	closed   bool
}

// openSource opens data as a demuxed container and prepares a decoder for
// its best video stream.
func openSource(data []byte) (*Source, error) {
	if err := bindings.Load(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, invalidArgf("empty input")
	}

	mio, err := newMemoryIO(data)
	if err != nil {
		return nil, err
	}

	formatCtx := avformat.AllocContext()
	if formatCtx == nil {
		mio.Close()
		return nil, wrapFF(ErrCorruptInput, nil)
	}
	avformat.SetIOContext(formatCtx, mio.avio())
	avformat.AddFlags(formatCtx, avformat.FlagCustomIO)

	// avformat_open_input frees the context itself on failure.
	if err := avformat.OpenInput(&formatCtx, ""); err != nil {
		mio.Close()
		return nil, wrapFF(ErrCorruptInput, err)
	}

	if err := avformat.FindStreamInfo(formatCtx); err != nil {
		avformat.CloseInput(&formatCtx)
		mio.Close()
		return nil, wrapFF(ErrCorruptInput, err)
	}

	streamIdx := avformat.FindBestStream(formatCtx, avutil.MediaTypeVideo, -1, -1, nil, 0)
	if streamIdx < 0 {
		avformat.CloseInput(&formatCtx)
		mio.Close()
		return nil, wrapFF(ErrUnsupportedFormat, avutil.NewError(streamIdx, "av_find_best_stream"))
	}

	s := &Source{
		io:        mio,
		formatCtx: formatCtx,
		streamIdx: streamIdx,
	}

	stream := avformat.GetStream(formatCtx, int(streamIdx))
	par := avformat.GetStreamCodecPar(stream)

	s.width = int(avformat.GetCodecParWidth(par))
	s.height = int(avformat.GetCodecParHeight(par))
	s.pixFmt = avutil.PixelFormat(avformat.GetCodecParFormat(par))
	s.timeBase = avformat.GetStreamTimeBase(stream)
	s.frameRate = avformat.GetStreamAvgFrameRate(stream)
	s.nbFrames = avformat.GetStreamNbFrames(stream)

	s.startTime = avformat.GetStreamStartTime(stream)
	if s.startTime == avutil.NoPTSValue {
		s.startTime = 0
	}

	s.duration = avformat.GetStreamDuration(stream)
	if s.duration == avutil.NoPTSValue || s.duration <= 0 {
		// Fall back to the container duration, rescaled into the stream
		// time base.
		if cd := avformat.GetDuration(formatCtx); cd > 0 && !s.timeBase.IsZero() {
			s.duration = avutil.RescaleQ(cd, avutil.TimeBaseAV, s.timeBase)
		}
	}

	if s.frameRate.IsZero() {
		s.frameRate = s.estimateFrameRate()
	}

	codecID := avformat.GetCodecParCodecID(par)
	codec := avcodec.FindDecoder(codecID)
	if codec == nil {
		s.Close()
		return nil, wrapFF(ErrUnsupportedFormat, nil)
	}
	s.codecName = avcodec.GetCodecName(codec)

	s.codecCtx = avcodec.AllocContext3(codec)
	if s.codecCtx == nil {
		s.Close()
		return nil, wrapFF(ErrUnsupportedFormat, nil)
	}
	if err := avcodec.ParametersToContext(s.codecCtx, par); err != nil {
		s.Close()
		return nil, wrapFF(ErrUnsupportedFormat, err)
	}
	if err := avcodec.Open2(s.codecCtx, codec); err != nil {
		s.Close()
		return nil, wrapFF(ErrUnsupportedFormat, err)
	}

	s.packet = avcodec.PacketAlloc()
	s.frame = avutil.FrameAlloc()
	if s.packet == nil || s.frame == nil {
		s.Close()
		return nil, wrapFF(ErrDecode, nil)
	}

	return s, nil
}

// estimateFrameRate derives a frame rate when the container does not record
// one: declared frame count over duration, else 25 fps.
func (s *Source) estimateFrameRate() avutil.Rational {
	if sec := s.durationSeconds(); sec > 0 && s.nbFrames > 0 {
		fps := float64(s.nbFrames) / sec
		if fps > 0 {
			return avutil.NewRational(int32(math.Round(fps*1000)), 1000)
		}
	}
	return avutil.NewRational(25, 1)
}

// durationSeconds returns the stream duration in seconds, 0 when unknown.
func (s *Source) durationSeconds() float64 {
	if s.duration <= 0 || s.timeBase.IsZero() {
		return 0
	}
	return float64(s.duration) * s.timeBase.Float64()
}

// frameCountEstimate returns the container's declared frame count, or a
// duration-based estimate when the container does not record one.
func (s *Source) frameCountEstimate() int64 {
	if s.nbFrames > 0 {
		return s.nbFrames
	}
	if sec := s.durationSeconds(); sec > 0 && !s.frameRate.IsZero() {
		return int64(math.Round(sec * s.frameRate.Float64()))
	}
	return 0
}

// avgFrameDuration returns the average duration of one frame in stream time
// base units. Used by the estimate-based seek policy.
func (s *Source) avgFrameDuration() int64 {
	if n := s.frameCountEstimate(); n > 0 && s.duration > 0 {
		if d := s.duration / n; d > 0 {
			return d
		}
	}
	// One frame at the stream frame rate, in time base units.
	if !s.frameRate.IsZero() && !s.timeBase.IsZero() {
		d := int64(math.Round(1 / (s.frameRate.Float64() * s.timeBase.Float64())))
		if d > 0 {
			return d
		}
	}
	return 1
}

// seekTo issues a container seek to ts (stream time base units), landing on
// the keyframe at or before it, and resets decoder state.
func (s *Source) seekTo(ts int64) error {
	if err := avformat.SeekFrame(s.formatCtx, s.streamIdx, ts, avformat.SeekFlagBackward); err != nil {
		return wrapFF(ErrSeek, err)
	}
	avcodec.FlushBuffers(s.codecCtx)
	s.draining = false
	return nil
}

// rewind seeks back to the start of the stream.
func (s *Source) rewind() error {
	return s.seekTo(s.startTime)
}

// nextFrame decodes and returns the next frame in presentation order.
// The returned frame is owned by the Source and reused on the next call.
// End of stream is reported as an EOF-coded FFmpegError (avutil.IsEOF).
func (s *Source) nextFrame() (avutil.Frame, error) {
	for {
		avutil.FrameUnref(s.frame)
		err := avcodec.ReceiveFrame(s.codecCtx, s.frame)
		if err == nil {
			return s.frame, nil
		}
		if avutil.IsEOF(err) {
			return nil, err
		}
		if !avutil.IsAgain(err) {
			return nil, wrapFF(ErrDecode, err)
		}

		// Decoder wants more input.
		if s.draining {
			// Flush was already signalled; EAGAIN here means no more frames.
			return nil, avutil.NewError(avutil.AVERROR_EOF, "avcodec_receive_frame")
		}
		if err := s.feedPacket(); err != nil {
			return nil, err
		}
	}
}

// feedPacket reads packets until one from the video stream has been sent to
// the decoder, or signals end of stream to drain buffered frames.
func (s *Source) feedPacket() error {
	for {
		avcodec.PacketUnref(s.packet)
		if err := avformat.ReadFrame(s.formatCtx, s.packet); err != nil {
			if avutil.IsEOF(err) {
				if err := avcodec.SendPacket(s.codecCtx, nil); err != nil {
					return wrapFF(ErrDecode, err)
				}
				s.draining = true
				return nil
			}
			return wrapFF(ErrCorruptInput, err)
		}
		if avcodec.GetPacketStreamIndex(s.packet) != s.streamIdx {
			continue
		}
		if err := avcodec.SendPacket(s.codecCtx, s.packet); err != nil {
			return wrapFF(ErrDecode, err)
		}
		return nil
	}
}

// Close releases the decoder, demuxer, and I/O buffer. Idempotent; called
// on every exit path.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.frame != nil {
		avutil.FrameFree(&s.frame)
	}
	if s.packet != nil {
		avcodec.PacketFree(&s.packet)
	}
	if s.codecCtx != nil {
		avcodec.FreeContext(&s.codecCtx)
	}
	if s.formatCtx != nil {
		avformat.CloseInput(&s.formatCtx)
	}
	if s.io != nil {
		s.io.Close()
	}
	return nil
}
