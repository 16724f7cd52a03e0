package persistence

import (
	"encoding/binary"
	"fmt"
)

// SliceReader provides bounds-checked reads from a byte slice.
// It is used by mmap loaders to avoid intermediate allocations.
//
// With copy disabled, slice reads return views that alias the underlying
// bytes whenever they are suitably aligned; otherwise a copy is made.
type SliceReader struct {
	b    []byte
	off  int
	copy bool
}

// NewSliceReader creates a reader over b. When copy is false the returned
// slices may alias b and must not outlive it.
func NewSliceReader(b []byte, copy bool) *SliceReader {
	return &SliceReader{b: b, copy: copy}
}

// Offset returns the number of bytes consumed so far.
func (r *SliceReader) Offset() int64 {
	if r == nil {
		return 0
	}
	return int64(r.off)
}

// ReadBytes returns the next n bytes as a view.
func (r *SliceReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.b)-r.off {
		return nil, fmt.Errorf("sliceReader: out of bounds read (%d bytes at %d, len=%d)", n, r.off, len(r.b))
	}
	out := r.b[r.off : r.off+n : r.off+n]
	r.off += n
	return out, nil
}

// ReadUint32 reads a single little-endian uint32.
func (r *SliceReader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a single little-endian uint64.
func (r *SliceReader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Skip advances past n bytes.
func (r *SliceReader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// Remaining returns the unread bytes.
func (r *SliceReader) Remaining() []byte {
	if r.off >= len(r.b) {
		return nil
	}
	return r.b[r.off:]
}

// ReadUint32Slice reads count uint32 values, as a view or a copy.
func (r *SliceReader) ReadUint32Slice(count int) ([]uint32, error) {
	return readWords[uint32](r, count, "uint32")
}

// ReadFloat32Slice reads count float32 values, as a view or a copy.
func (r *SliceReader) ReadFloat32Slice(count int) ([]float32, error) {
	return readWords[float32](r, count, "float32")
}

func readWords[T word](r *SliceReader, count int, kind string) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	if count < 0 || count > (len(r.b)-r.off)/4 {
		return nil, fmt.Errorf("sliceReader: out of bounds read (%d %s at %d, len=%d)", count, kind, r.off, len(r.b))
	}
	bb, _ := r.ReadBytes(count * 4)
	return viewAs[T](bb, r.copy), nil
}
