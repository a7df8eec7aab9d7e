//go:build !ios && !android && (amd64 || arm64)

package vidgrab

// Info describes the best video stream of an encoded video without decoding
// any frames.
type Info struct {
	// Width and Height are the stream's native dimensions.
	Width  int
	Height int

	// CodecName is the decoder's short name (e.g. "h264").
	CodecName string

	// Duration is the stream duration in seconds, 0 when the container
	// does not record one.
	Duration float64

	// FrameRate is the average frame rate.
	FrameRate float64

	// FrameCount is the container's declared frame count, estimated from
	// duration and frame rate when not declared. 0 when unknown.
	FrameCount int64
}

// Probe opens the encoded video in data far enough to read its stream
// parameters and closes it again.
func Probe(data []byte) (*Info, error) {
	s, err := openSource(data)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return &Info{
		Width:      s.width,
		Height:     s.height,
		CodecName:  s.codecName,
		Duration:   s.durationSeconds(),
		FrameRate:  s.frameRate.Float64(),
		FrameCount: s.frameCountEstimate(),
	}, nil
}
