// Package arena implements the bump allocator backing every resource
// loaded for the current part.
package arena

import "fmt"

// DefaultSize matches the source engine's working set for the
// largest observed part (§9 "Memory layout").
const DefaultSize = 1024 * 1024 * 7 / 4 // ~1.75 MiB

// Arena is a bump allocator over a fixed backing buffer. It never
// grows; resets move the high-water mark back to zero instead of
// freeing individual allocations.
type Arena struct {
	buf []byte
	off int
}

// New allocates a backing buffer of the given size.
func New(size int) *Arena {
	if size <= 0 {
		size = DefaultSize
	}
	return &Arena{buf: make([]byte, size)}
}

// Alloc carves out n bytes from the high-water mark and returns them
// zeroed. The returned slice is stable until the next Reset.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation size %d", n)
	}
	if a.off+n > len(a.buf) {
		return nil, fmt.Errorf("arena: out of space: have %d, want %d more (used %d/%d)",
			len(a.buf)-a.off, n, a.off, len(a.buf))
	}
	b := a.buf[a.off : a.off+n : a.off+n]
	clear(b)
	a.off += n
	return b, nil
}

// Reset moves the high-water mark back to zero. Pointers handed out
// by prior Alloc calls must not be used afterward.
func (a *Arena) Reset() { a.off = 0 }

// Used reports how many bytes are currently allocated.
func (a *Arena) Used() int { return a.off }

// Cap reports the arena's total size.
func (a *Arena) Cap() int { return len(a.buf) }
