//go:build !ios && !android && (amd64 || arm64)

// Package vidgrab extracts caller-selected frames from encoded video held
// in memory and returns them as packed RGB24 buffers. It is built for
// machine-learning data loaders that sample sparse or random frame subsets
// from many short clips and cannot afford a full-stream decode per sample.
//
// The FFmpeg libraries are loaded at runtime with purego; no cgo is
// involved. Each call opens its own demuxer and decoder over the input
// bytes and tears them down before returning, so concurrent calls on
// separate inputs are safe.
package vidgrab

import (
	"github.com/vidgrab/vidgrab/avcodec"
	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/internal/bindings"
)

// Init loads the FFmpeg shared libraries. It is called automatically on
// first use, but can be called up front to surface load errors early.
// Safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the FFmpeg libraries have been loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the loaded FFmpeg library versions.
func Version() (avutilVer, avcodecVer, avformatVer, swscaleVer uint32) {
	return bindings.AVUtilVersion(), bindings.AVCodecVersion(),
		bindings.AVFormatVersion(), bindings.SWScaleVersion()
}

// LogLevel controls FFmpeg's own log output.
type LogLevel int32

// FFmpeg log levels (AV_LOG_* values).
const (
	LogQuiet   LogLevel = -8
	LogPanic   LogLevel = 0
	LogFatal   LogLevel = 8
	LogError   LogLevel = 16
	LogWarning LogLevel = 24
	LogInfo    LogLevel = 32
	LogVerbose LogLevel = 40
	LogDebug   LogLevel = 48
)

// SetLogLevel sets FFmpeg's global log level. The default is whatever the
// libraries ship with; library users typically want LogQuiet or LogError.
func SetLogLevel(level LogLevel) {
	bindings.SetLogLevel(int32(level))
}

// Re-exported types for callers that inspect stream metadata.
type (
	// Rational is a fraction, used for time bases and frame rates.
	Rational = avutil.Rational

	// PixelFormat identifies a decoded frame's pixel layout.
	PixelFormat = avutil.PixelFormat

	// CodecID identifies a codec.
	CodecID = avcodec.CodecID
)
