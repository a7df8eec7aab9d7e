//go:build !ios && !android && (amd64 || arm64)

// Package swscale provides bindings to FFmpeg's libswscale library for
// pixel format conversion and scaling.
package swscale

import (
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/internal/bindings"
)

// Context is an opaque SwsContext pointer.
type Context = unsafe.Pointer

// Scaling algorithm flags.
const (
	FlagFastBilinear = 1     // Fast bilinear
	FlagBilinear     = 2     // Bilinear
	FlagBicubic      = 4     // Bicubic
	FlagPoint        = 0x10  // Nearest neighbor
	FlagArea         = 0x20  // Area averaging
	FlagLanczos      = 0x200 // Lanczos
)

// Function bindings
var (
	swsGetContext  func(srcW, srcH, srcFormat, dstW, dstH, dstFormat, flags int32, srcFilter, dstFilter, param unsafe.Pointer) uintptr
	swsScale       func(ctx, srcSlice, srcStride unsafe.Pointer, srcSliceY, srcSliceH int32, dst, dstStride unsafe.Pointer) int32
	swsFreeContext func(ctx unsafe.Pointer)
	swsScaleFrame  func(ctx, dst, src unsafe.Pointer) int32

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

	lib := bindings.LibSWScale()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&swsGetContext, lib, "sws_getContext")
	purego.RegisterLibFunc(&swsScale, lib, "sws_scale")
	purego.RegisterLibFunc(&swsFreeContext, lib, "sws_freeContext")

	// sws_scale_frame was added in FFmpeg 5.0; older builds fall back to sws_scale.
	registerOptionalLibFunc(&swsScaleFrame, lib, "sws_scale_frame")

	bindingsRegistered = true
}

func registerOptionalLibFunc(fptr any, handle uintptr, name string) {
	defer func() { _ = recover() }()
	purego.RegisterLibFunc(fptr, handle, name)
}

// GetContext creates a scaling context. Returns nil if the conversion is
// unsupported.
func GetContext(srcW, srcH int, srcFormat avutil.PixelFormat, dstW, dstH int, dstFormat avutil.PixelFormat, flags int32) Context {
	if swsGetContext == nil {
		return nil
	}
	return unsafe.Pointer(swsGetContext(
		int32(srcW), int32(srcH), int32(srcFormat),
		int32(dstW), int32(dstH), int32(dstFormat),
		flags,
		nil, nil, nil,
	))
}

// FreeContext frees a scaling context. Safe to call with nil.
func FreeContext(ctx Context) {
	if ctx == nil || swsFreeContext == nil {
		return
	}
	swsFreeContext(ctx)
}

// ScaleFrame scales src into dst. Both frames must have format and
// dimensions set and dst must have allocated, writable buffers.
// Returns a negative AVERROR code on failure.
func ScaleFrame(ctx Context, dst, src avutil.Frame) int32 {
	if ctx == nil {
		return -1
	}

	if swsScaleFrame != nil {
		return swsScaleFrame(ctx, dst, src)
	}

	if swsScale == nil {
		return -1
	}

	srcData := avutil.GetFrameData(src)
	srcLinesize := avutil.GetFrameLinesize(src)
	dstData := avutil.GetFrameData(dst)
	dstLinesize := avutil.GetFrameLinesize(dst)
	srcH := avutil.GetFrameHeight(src)

	return swsScale(ctx,
		unsafe.Pointer(&srcData), unsafe.Pointer(&srcLinesize),
		0, srcH,
		unsafe.Pointer(&dstData), unsafe.Pointer(&dstLinesize),
	)
}
