//go:build !ios && !android && (amd64 || arm64)

package vidgrab

import (
	"errors"
	"io"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/vidgrab/vidgrab/avformat"
	"github.com/vidgrab/vidgrab/avutil"
	"github.com/vidgrab/vidgrab/internal/handles"
)

// memoryIO adapts an in-memory byte slice to an AVIOContext. The input is
// borrowed read-only for the lifetime of one call; it is never copied.
type memoryIO struct {
	mu      sync.Mutex
	data    []byte
	pos     int64
	avioCtx avformat.IOContext
	handle  uintptr
	closed  bool
}

// FFmpeg fills its demux buffer in chunks of this size.
const ioBufferSize = 32 * 1024

// AVSEEK_SIZE: the demuxer is asking for the total stream size, not a seek.
const avseekSize = 0x10000

// The read/seek trampolines are registered once and shared by every
// memoryIO; purego has a hard cap on live callbacks.
var (
	ioCallbacksOnce sync.Once
	readCallbackPtr uintptr
	seekCallbackPtr uintptr
)

func initIOCallbacks() {
	ioCallbacksOnce.Do(func() {
		// int read_packet(void *opaque, uint8_t *buf, int buf_size)
		readCallbackPtr = purego.NewCallback(func(_ purego.CDecl, opaque unsafe.Pointer, buf *byte, bufSize int32) int32 {
			m, ok := handles.Lookup(uintptr(opaque)).(*memoryIO)
			if !ok {
				return -1
			}
			n, err := m.read(unsafe.Slice(buf, bufSize))
			if err != nil {
				if err == io.EOF {
					if n > 0 {
						return int32(n)
					}
					return avutil.AVERROR_EOF
				}
				return -1
			}
			return int32(n)
		})

		// int64_t seek(void *opaque, int64_t offset, int whence)
		seekCallbackPtr = purego.NewCallback(func(_ purego.CDecl, opaque unsafe.Pointer, offset int64, whence int32) int64 {
			m, ok := handles.Lookup(uintptr(opaque)).(*memoryIO)
			if !ok {
				return -1
			}
			return m.seek(offset, whence)
		})
	})
}

// newMemoryIO wraps data in an AVIOContext ready to install on a format
// context. The caller must Close it; closing frees the FFmpeg-side buffer.
func newMemoryIO(data []byte) (*memoryIO, error) {
	initIOCallbacks()

	buffer := avutil.Malloc(ioBufferSize)
	if buffer == nil {
		return nil, errors.New("vidgrab: failed to allocate I/O buffer")
	}

	m := &memoryIO{data: data}
	m.handle = handles.Register(m)

	m.avioCtx = avformat.IOAllocContext(
		buffer,
		ioBufferSize,
		false,
		unsafe.Pointer(m.handle),
		readCallbackPtr,
		0,
		seekCallbackPtr,
	)
	if m.avioCtx == nil {
		avutil.Free(buffer)
		handles.Unregister(m.handle)
		return nil, errors.New("vidgrab: failed to create AVIOContext")
	}

	return m, nil
}

func (m *memoryIO) read(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memoryIO) seek(offset int64, whence int32) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if whence == avseekSize {
		return int64(len(m.data))
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.pos + offset
	case io.SeekEnd:
		pos = int64(len(m.data)) + offset
	default:
		return -1
	}
	if pos < 0 || pos > int64(len(m.data)) {
		return -1
	}
	m.pos = pos
	return pos
}

// avio returns the underlying AVIOContext pointer.
func (m *memoryIO) avio() avformat.IOContext {
	return m.avioCtx
}

// Close frees the AVIOContext and its buffer and releases the callback
// handle. Idempotent.
func (m *memoryIO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.avioCtx != nil {
		avformat.IOContextFree(&m.avioCtx)
	}
	if m.handle != 0 {
		handles.Unregister(m.handle)
		m.handle = 0
	}
	m.data = nil

	return nil
}
