//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"unsafe"

	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/swscale"
)

// rgbBytesPerPixel is the size of one packed RGB24 pixel.
const rgbBytesPerPixel = 3

// converter scales decoded frames and converts them to packed RGB24 at a
// fixed output size. One converter serves one call; the scaler context and
// destination frame are reused for every frame of that call.
type converter struct {
	sws    swscale.Context
	dst    avutil.Frame
	width  int
	height int
}

// newConverter builds a scaler from the source geometry to dstW x dstH
// packed RGB24 frames.
func newConverter(srcW, srcH int, srcFmt avutil.PixelFormat, dstW, dstH int) (*converter, error) {
	if srcW <= 0 || srcH <= 0 || srcFmt == avutil.PixelFormatNone {
		return nil, wrapFF(ErrDecode, nil)
	}

	sws := swscale.GetContext(srcW, srcH, srcFmt, dstW, dstH, avutil.PixelFormatRGB24, swscale.FlagBilinear)
	if sws == nil {
		return nil, wrapFF(ErrDecode, nil)
	}

	dst := avutil.FrameAlloc()
	if dst == nil {
		swscale.FreeContext(sws)
		return nil, wrapFF(ErrDecode, nil)
	}
	avutil.SetFrameWidth(dst, int32(dstW))
	avutil.SetFrameHeight(dst, int32(dstH))
	avutil.SetFrameFormat(dst, int32(avutil.PixelFormatRGB24))
	if err := avutil.FrameGetBuffer(dst, 32); err != nil {
		avutil.FrameFree(&dst)
		swscale.FreeContext(sws)
		return nil, wrapFF(ErrDecode, err)
	}

	return &converter{sws: sws, dst: dst, width: dstW, height: dstH}, nil
}

// frameBytes returns the size of one converted frame in the output buffer.
func (c *converter) frameBytes() int {
	return c.width * c.height * rgbBytesPerPixel
}

// convertInto scales src and writes the packed RGB24 pixels into out, which
// must hold at least frameBytes bytes. Rows are copied one at a time since
// the destination frame's linesize may exceed width*3.
func (c *converter) convertInto(src avutil.Frame, out []byte) error {
	if err := avutil.FrameMakeWritable(c.dst); err != nil {
		return wrapFF(ErrDecode, err)
	}
	if ret := swscale.ScaleFrame(c.sws, c.dst, src); ret < 0 {
		return wrapFF(ErrDecode, avutil.NewError(ret, "sws_scale"))
	}

	data := avutil.GetFrameDataPlane(c.dst, 0)
	stride := int(avutil.GetFrameLinesizePlane(c.dst, 0))
	if data == nil || stride <= 0 {
		return wrapFF(ErrDecode, nil)
	}

	rowBytes := c.width * rgbBytesPerPixel
	for y := 0; y < c.height; y++ {
		row := unsafe.Slice((*byte)(unsafe.Add(data, y*stride)), rowBytes)
		copy(out[y*rowBytes:(y+1)*rowBytes], row)
	}
	return nil
}

// Close releases the scaler context and destination frame. Idempotent.
func (c *converter) Close() {
	if c.dst != nil {
		avutil.FrameFree(&c.dst)
	}
	if c.sws != nil {
		swscale.FreeContext(c.sws)
		c.sws = nil
	}
}
