//go:build !ios && !android && (amd64 || arm64)

// Package avformat provides bindings to FFmpeg's libavformat library:
// container probing, demuxing, seeking, and custom I/O contexts.
package avformat

import (
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/vidgrab/vidgrab/avcodec"
	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/internal/bindings"
)

// FormatContext is an opaque FFmpeg AVFormatContext pointer.
type FormatContext = unsafe.Pointer

// Stream is an opaque FFmpeg AVStream pointer.
type Stream = unsafe.Pointer

// IOContext is an opaque FFmpeg AVIOContext pointer.
type IOContext = unsafe.Pointer

// Function bindings
var (
	avformatOpenInput      func(ctx *unsafe.Pointer, url string, fmt, options unsafe.Pointer) int32
	avformatCloseInput     func(ctx *unsafe.Pointer)
	avformatFindStreamInfo func(ctx unsafe.Pointer, options *unsafe.Pointer) int32
	avformatAllocContext   func() unsafe.Pointer
	avformatFreeContext    func(ctx unsafe.Pointer)

	avReadFrame func(ctx, pkt unsafe.Pointer) int32
	avSeekFrame func(ctx unsafe.Pointer, streamIndex int32, timestamp int64, flags int32) int32

	avFindBestStream func(ctx unsafe.Pointer, mediaType, wanted, related int32, decoder *unsafe.Pointer, flags int32) int32

	avioAllocContext func(buffer unsafe.Pointer, bufferSize, writeFlag int32, opaque unsafe.Pointer, readPacket, writePacket, seek uintptr) unsafe.Pointer
	avioContextFree  func(ctx *unsafe.Pointer)

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}

	if err := bindings.Load(); err != nil {
		return
	}

	lib := bindings.LibAVFormat()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&avformatOpenInput, lib, "avformat_open_input")
	purego.RegisterLibFunc(&avformatCloseInput, lib, "avformat_close_input")
	purego.RegisterLibFunc(&avformatFindStreamInfo, lib, "avformat_find_stream_info")
	purego.RegisterLibFunc(&avformatAllocContext, lib, "avformat_alloc_context")
	purego.RegisterLibFunc(&avformatFreeContext, lib, "avformat_free_context")

	purego.RegisterLibFunc(&avReadFrame, lib, "av_read_frame")
	purego.RegisterLibFunc(&avSeekFrame, lib, "av_seek_frame")

	purego.RegisterLibFunc(&avFindBestStream, lib, "av_find_best_stream")

	purego.RegisterLibFunc(&avioAllocContext, lib, "avio_alloc_context")
	purego.RegisterLibFunc(&avioContextFree, lib, "avio_context_free")

	bindingsRegistered = true
}

// AllocContext allocates an AVFormatContext.
func AllocContext() FormatContext {
	if avformatAllocContext == nil {
		return nil
	}
	return avformatAllocContext()
}

// FreeContext frees an AVFormatContext that was never opened.
// Opened contexts must go through CloseInput instead.
func FreeContext(ctx FormatContext) {
	if ctx == nil || avformatFreeContext == nil {
		return
	}
	avformatFreeContext(ctx)
}

// OpenInput opens an input. With a custom I/O context installed, pass an
// empty URL.
func OpenInput(ctx *FormatContext, url string) error {
	if avformatOpenInput == nil {
		return bindings.ErrNotLoaded
	}
	ret := avformatOpenInput(ctx, url, nil, nil)
	if ret < 0 {
		return avutil.NewError(ret, "avformat_open_input")
	}
	return nil
}

// CloseInput closes an input and frees the context.
func CloseInput(ctx *FormatContext) {
	if ctx == nil || *ctx == nil || avformatCloseInput == nil {
		return
	}
	avformatCloseInput(ctx)
	*ctx = nil
}

// FindStreamInfo reads packets to fill in stream information.
func FindStreamInfo(ctx FormatContext) error {
	if avformatFindStreamInfo == nil {
		return bindings.ErrNotLoaded
	}
	ret := avformatFindStreamInfo(ctx, nil)
	if ret < 0 {
		return avutil.NewError(ret, "avformat_find_stream_info")
	}
	return nil
}

// ReadFrame reads the next packet of a stream.
func ReadFrame(ctx FormatContext, pkt avcodec.Packet) error {
	if avReadFrame == nil {
		return bindings.ErrNotLoaded
	}
	ret := avReadFrame(ctx, pkt)
	if ret < 0 {
		return avutil.NewError(ret, "av_read_frame")
	}
	return nil
}

// Seek flags for SeekFrame.
const (
	SeekFlagBackward = 1 // Seek to keyframe at or before target
	SeekFlagByte     = 2 // Seek by byte position
	SeekFlagAny      = 4 // Seek to any frame, not just keyframes
	SeekFlagFrame    = 8 // Seek by frame number
)

// SeekFrame seeks to a timestamp in the stream's time base.
func SeekFrame(ctx FormatContext, streamIndex int32, timestamp int64, flags int32) error {
	if avSeekFrame == nil {
		return bindings.ErrNotLoaded
	}
	ret := avSeekFrame(ctx, streamIndex, timestamp, flags)
	if ret < 0 {
		return avutil.NewError(ret, "av_seek_frame")
	}
	return nil
}

// FindBestStream finds the best stream of a given type.
// Returns the stream index, or a negative AVERROR if none exists.
func FindBestStream(ctx FormatContext, mediaType avutil.MediaType, wanted, related int32, decoder *avcodec.Codec, flags int32) int32 {
	if avFindBestStream == nil {
		return -1
	}
	return avFindBestStream(ctx, int32(mediaType), wanted, related, decoder, flags)
}

// IOAllocContext creates an AVIOContext around caller-supplied callbacks.
// buffer must be allocated with avutil.Malloc; FFmpeg takes ownership and
// may reallocate it. Callback pointers come from purego.NewCallback.
func IOAllocContext(buffer unsafe.Pointer, bufferSize int, writable bool, opaque unsafe.Pointer, readCb, writeCb, seekCb uintptr) IOContext {
	if avioAllocContext == nil {
		return nil
	}
	var writeFlag int32
	if writable {
		writeFlag = 1
	}
	return avioAllocContext(buffer, int32(bufferSize), writeFlag, opaque, readCb, writeCb, seekCb)
}

// AVIOContext struct field offset: unsigned char *buffer follows av_class.
const offsetIOBuffer = 8

// IOContextFree frees an AVIOContext created by IOAllocContext together
// with its (possibly reallocated) internal buffer.
func IOContextFree(ctx *IOContext) {
	if ctx == nil || *ctx == nil || avioContextFree == nil {
		return
	}
	buf := *(*unsafe.Pointer)(unsafe.Pointer(uintptr(*ctx) + offsetIOBuffer))
	if buf != nil {
		avutil.Free(buf)
		*(*unsafe.Pointer)(unsafe.Pointer(uintptr(*ctx) + offsetIOBuffer)) = nil
	}
	avioContextFree(ctx)
	*ctx = nil
}

// AVFormatContext struct field offsets (FFmpeg 6.x / avformat 60.x).
// Verified with offsetof() on FFmpeg 60.16.100.
const (
	offsetIOContext  = 32 // AVIOContext *pb
	offsetNumStreams = 44 // unsigned int nb_streams
	offsetStreams    = 48 // AVStream **streams
	offsetDuration   = 72 // int64_t duration
	offsetBitRate    = 80 // int64_t bit_rate
	offsetCtxFlags   = 96 // int flags (AVFMT_FLAG_*)
)

// Format context flags.
const (
	FlagCustomIO = 0x0080 // AVFMT_FLAG_CUSTOM_IO - caller owns the AVIOContext
)

// GetNumStreams returns the number of streams in the context.
func GetNumStreams(ctx FormatContext) int {
	if ctx == nil {
		return 0
	}
	return int(*(*uint32)(unsafe.Pointer(uintptr(ctx) + offsetNumStreams)))
}

// GetStream returns the stream at the given index.
func GetStream(ctx FormatContext, index int) Stream {
	if ctx == nil || index < 0 || index >= GetNumStreams(ctx) {
		return nil
	}
	streamsPtr := *(*unsafe.Pointer)(unsafe.Pointer(uintptr(ctx) + offsetStreams))
	if streamsPtr == nil {
		return nil
	}
	streamArray := (*[1024]unsafe.Pointer)(streamsPtr)
	return streamArray[index]
}

// GetDuration returns the container duration in AV_TIME_BASE (microsecond) units.
func GetDuration(ctx FormatContext) int64 {
	if ctx == nil {
		return 0
	}
	return *(*int64)(unsafe.Pointer(uintptr(ctx) + offsetDuration))
}

// GetBitRate returns the container bit rate.
func GetBitRate(ctx FormatContext) int64 {
	if ctx == nil {
		return 0
	}
	return *(*int64)(unsafe.Pointer(uintptr(ctx) + offsetBitRate))
}

// SetIOContext installs a custom I/O context on the format context.
func SetIOContext(ctx FormatContext, pb IOContext) {
	if ctx == nil {
		return
	}
	*(*unsafe.Pointer)(unsafe.Pointer(uintptr(ctx) + offsetIOContext)) = pb
}

// AddFlags ORs flags into the format context's flags field.
func AddFlags(ctx FormatContext, flags int32) {
	if ctx == nil {
		return
	}
	p := (*int32)(unsafe.Pointer(uintptr(ctx) + offsetCtxFlags))
	*p |= flags
}

// AVStream struct field offsets (FFmpeg 6.x / avformat 60.x).
// Verified with offsetof() on FFmpeg 60.16.100.
const (
	offsetStreamIndex        = 8  // int index
	offsetStreamCodecPar     = 16 // AVCodecParameters *codecpar
	offsetStreamTimeBase     = 32 // AVRational time_base
	offsetStreamStartTime    = 40 // int64_t start_time
	offsetStreamDuration     = 48 // int64_t duration
	offsetStreamNbFrames     = 56 // int64_t nb_frames
	offsetStreamAvgFrameRate = 88 // AVRational avg_frame_rate
)

// GetStreamIndex returns the stream index.
func GetStreamIndex(stream Stream) int32 {
	if stream == nil {
		return -1
	}
	return *(*int32)(unsafe.Pointer(uintptr(stream) + offsetStreamIndex))
}

// GetStreamCodecPar returns the codec parameters for the stream.
func GetStreamCodecPar(stream Stream) avcodec.Parameters {
	if stream == nil {
		return nil
	}
	return *(*unsafe.Pointer)(unsafe.Pointer(uintptr(stream) + offsetStreamCodecPar))
}

// GetStreamTimeBase returns the stream time base.
func GetStreamTimeBase(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{}
	}
	num := *(*int32)(unsafe.Pointer(uintptr(stream) + offsetStreamTimeBase))
	den := *(*int32)(unsafe.Pointer(uintptr(stream) + offsetStreamTimeBase + 4))
	return avutil.NewRational(num, den)
}

// GetStreamStartTime returns the stream's first PTS in time base units, or
// NoPTSValue when unknown.
func GetStreamStartTime(stream Stream) int64 {
	if stream == nil {
		return avutil.NoPTSValue
	}
	return *(*int64)(unsafe.Pointer(uintptr(stream) + offsetStreamStartTime))
}

// GetStreamDuration returns the stream duration in time base units, or
// NoPTSValue when unknown.
func GetStreamDuration(stream Stream) int64 {
	if stream == nil {
		return avutil.NoPTSValue
	}
	return *(*int64)(unsafe.Pointer(uintptr(stream) + offsetStreamDuration))
}

// GetStreamNbFrames returns the container's declared frame count, or 0 when
// the container does not record one.
func GetStreamNbFrames(stream Stream) int64 {
	if stream == nil {
		return 0
	}
	return *(*int64)(unsafe.Pointer(uintptr(stream) + offsetStreamNbFrames))
}

// GetStreamAvgFrameRate returns the stream's average frame rate.
func GetStreamAvgFrameRate(stream Stream) avutil.Rational {
	if stream == nil {
		return avutil.Rational{}
	}
	num := *(*int32)(unsafe.Pointer(uintptr(stream) + offsetStreamAvgFrameRate))
	den := *(*int32)(unsafe.Pointer(uintptr(stream) + offsetStreamAvgFrameRate + 4))
	return avutil.NewRational(num, den)
}

// AVCodecParameters struct field offsets (FFmpeg 6.x / avcodec 60.x).
const (
	offsetCodecParType    = 0  // enum AVMediaType codec_type
	offsetCodecParCodecID = 4  // enum AVCodecID codec_id
	offsetCodecParFormat  = 28 // int format (pixel format for video)
	offsetCodecParWidth   = 56 // int width
	offsetCodecParHeight  = 60 // int height
)

// GetCodecParType returns the media type from codec parameters.
func GetCodecParType(par avcodec.Parameters) avutil.MediaType {
	if par == nil {
		return avutil.MediaTypeUnknown
	}
	return avutil.MediaType(*(*int32)(unsafe.Pointer(uintptr(par) + offsetCodecParType)))
}

// GetCodecParCodecID returns the codec ID from codec parameters.
func GetCodecParCodecID(par avcodec.Parameters) avcodec.CodecID {
	if par == nil {
		return avcodec.CodecIDNone
	}
	return avcodec.CodecID(*(*int32)(unsafe.Pointer(uintptr(par) + offsetCodecParCodecID)))
}

// GetCodecParWidth returns the video width from codec parameters.
func GetCodecParWidth(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Pointer(uintptr(par) + offsetCodecParWidth))
}

// GetCodecParHeight returns the video height from codec parameters.
func GetCodecParHeight(par avcodec.Parameters) int32 {
	if par == nil {
		return 0
	}
	return *(*int32)(unsafe.Pointer(uintptr(par) + offsetCodecParHeight))
}

// GetCodecParFormat returns the pixel format from codec parameters.
func GetCodecParFormat(par avcodec.Parameters) int32 {
	if par == nil {
		return -1
	}
	return *(*int32)(unsafe.Pointer(uintptr(par) + offsetCodecParFormat))
}
