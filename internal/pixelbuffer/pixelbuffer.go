// Package pixelbuffer implements a pre-allocated, bounded byte region used
// to hold one frame's worth of pixel data without per-frame allocation.
package pixelbuffer

import "fmt"

// Buffer is a fixed-capacity byte region. It never grows past the
// capacity it was created with; callers that try to copy more bytes than
// fit are silently truncated to capacity, matching the capture card's own
// "copy up to slot.capacity" behavior (spec.md §4.2 step 4).
type Buffer struct {
	data []byte
	len  int
}

// New allocates a Buffer with the given capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Capacity returns the buffer's fixed byte capacity.
func (b *Buffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Len returns the number of bytes written by the most recent CopyFrom or
// CopyBounded.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.len
}

// IsAllocated reports whether the buffer has any backing storage.
func (b *Buffer) IsAllocated() bool {
	return b != nil && len(b.data) > 0
}

// Bytes returns the portion of the buffer written by the last CopyFrom
// or CopyBounded. The returned slice aliases the buffer's storage and
// must not be retained past the next copy.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data[:b.len]
}

// CopyFrom copies up to len(src) bytes into the buffer, bounded by the
// buffer's capacity. It returns the number of bytes actually copied.
func (b *Buffer) CopyFrom(src []byte) int {
	if b == nil || len(b.data) == 0 {
		return 0
	}
	n := copy(b.data, src)
	b.len = n
	return n
}

// CopyBounded copies up to n bytes from src into the buffer, further
// bounded by both src's length and the buffer's capacity. It mirrors the
// capture callback's "copy up to w*h*bpp/8 bytes, bounded by slot.capacity"
// contract (spec.md §4.2 step 4).
func (b *Buffer) CopyBounded(src []byte, n int) (int, error) {
	if b == nil || len(b.data) == 0 {
		return 0, fmt.Errorf("pixelbuffer: buffer not allocated")
	}
	if n < 0 {
		return 0, fmt.Errorf("pixelbuffer: negative copy length %d", n)
	}
	if n > len(src) {
		n = len(src)
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	copied := copy(b.data[:n], src[:n])
	b.len = copied
	return copied, nil
}

// Reset clears the recorded length without releasing storage.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.len = 0
}
