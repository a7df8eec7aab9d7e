//go:build !ios && !android && (amd64 || arm64)

package avcodec

// CodecID represents FFmpeg codec identifiers.
type CodecID int32

// Video codec IDs this module commonly encounters.
const (
	CodecIDNone CodecID = 0

	CodecIDMPEG1VIDEO CodecID = 1
	CodecIDMPEG2VIDEO CodecID = 2
	CodecIDMJPEG      CodecID = 7
	CodecIDMPEG4      CodecID = 12
	CodecIDRAWVIDEO   CodecID = 13
	CodecIDFLV1       CodecID = 21
	CodecIDH264       CodecID = 27
	CodecIDTHEORA     CodecID = 30

	CodecIDVP8 CodecID = 139
	CodecIDVP9 CodecID = 167

	CodecIDHEVC CodecID = 173 // H.265
	CodecIDAV1  CodecID = 226
)
