package persistence

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrUnalignedAccess is returned when a slice cannot be reinterpreted in place.
var ErrUnalignedAccess = errors.New("unaligned memory access")

// Graph sections are written and viewed as raw host memory, which only
// matches the little-endian file layout on little-endian hosts.
func init() {
	if !littleEndian() {
		panic("roadnet/persistence: big-endian hosts are not supported")
	}
}

func littleEndian() bool {
	v := uint16(1)
	return *(*byte)(unsafe.Pointer(&v)) == 1
}

// word is a 4-byte element the raw slice helpers handle.
type word interface {
	~uint32 | ~float32
}

func aligned[T word](s []T) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))%4 == 0
}

func checkAligned[T word](s []T) error {
	if len(s) > 0 && !aligned(s) {
		return fmt.Errorf("%w: %T at 0x%x", ErrUnalignedAccess, s, uintptr(unsafe.Pointer(&s[0])))
	}
	return nil
}

// asBytes views s as its raw bytes.
func asBytes[T word](s []T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*4)
}

// viewAs reinterprets b, whose length is a multiple of 4, as a []T. It
// copies when b is not suitably aligned or when clone is set.
func viewAs[T word](b []byte, clone bool) []T {
	n := len(b) / 4
	if n == 0 {
		return nil
	}
	if !clone && uintptr(unsafe.Pointer(&b[0]))%4 == 0 {
		return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
	}
	out := make([]T, n)
	copy(asBytes(out), b)
	return out
}
