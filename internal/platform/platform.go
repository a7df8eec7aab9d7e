//go:build !ios && !android && (amd64 || arm64)

// Package platform knows how shared libraries are named on each OS.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// SupportsStructByValue reports whether purego can pass/return structs by
// value on this platform. Only Darwin amd64/arm64 does; everywhere else the
// rational helpers stay in pure Go.
const SupportsStructByValue = runtime.GOOS == "darwin" &&
	(runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64")

// Is64Bit reports whether the platform is 64-bit. Only 64-bit platforms are
// supported; the FFmpeg struct offsets assume 8-byte pointers.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryName returns the platform-specific shared library filename.
// A version of 0 yields the unversioned name.
//
//	Linux:   LibraryName("avcodec", 60) -> "libavcodec.so.60"
//	macOS:   LibraryName("avcodec", 60) -> "libavcodec.60.dylib"
//	Windows: LibraryName("avcodec", 60) -> "avcodec-60.dll"
func LibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("lib%s.%d.dylib", name, version)
		}
		return fmt.Sprintf("lib%s.dylib", name)
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s-%d.dll", name, version)
		}
		return fmt.Sprintf("%s.dll", name)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("lib%s.so.%d", name, version)
		}
		return fmt.Sprintf("lib%s.so", name)
	}
}
