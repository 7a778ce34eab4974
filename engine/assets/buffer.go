package assets

import (
	"bytes"
	"fmt"
	"io"
)

// Buffer is the immutable content of one asset. A Buffer may be shared by any number of
// goroutines; it stays valid after the cache is cleared.
type Buffer struct {
	path string
	data []byte
}

func newBuffer(path string, data []byte) *Buffer {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Buffer{path: path, data: cp}
}

// Path returns the canonical path the buffer was loaded from
func (b *Buffer) Path() string {
	return b.path
}

// Len returns the size of the content
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns a copy of the content
func (b *Buffer) Bytes() []byte {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

// Reader returns a reader over the content without copying
func (b *Buffer) Reader() io.ReadSeeker {
	return bytes.NewReader(b.data)
}

// Equal compares contents
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return bytes.Equal(b.data, other.data)
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer<%s, %d bytes>", b.path, len(b.data))
}
