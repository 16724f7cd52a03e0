package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Version is the current envelope format version.
	Version uint16 = 1
	// HeaderSize is the encoded size of Header. Payloads start 8-byte
	// aligned so uncompressed graphs can be viewed in place.
	HeaderSize = 32
)

// Magic identifies road network files.
var Magic = [4]byte{'R', 'N', 'E', 'T'}

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrTruncated      = errors.New("truncated payload")
)

// Header is the 32-byte header at the start of every network file.
type Header struct {
	Magic            [4]byte
	Version          uint16
	Compression      Compression
	Flags            uint8 // caller defined
	PayloadSize      uint64
	UncompressedSize uint64
	Checksum         uint32 // CRC32 of the stored payload
	Reserved         [4]byte
}

func (h *Header) validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: got %q", ErrInvalidMagic, h.Magic[:])
	}
	if h.Version != Version {
		return fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	if h.PayloadSize > math.MaxInt || h.UncompressedSize > math.MaxInt {
		return fmt.Errorf("%w: payload size %d", ErrTruncated, h.PayloadSize)
	}
	return nil
}

// WriteEnvelope buffers the payload produced by fn, compresses it and writes
// header plus payload to w. The returned header reflects the compression
// actually applied.
func WriteEnvelope(w io.Writer, c Compression, flags uint8, fn func(io.Writer) error) (Header, error) {
	var payload bytes.Buffer
	if err := fn(&payload); err != nil {
		return Header{}, err
	}

	stored, applied, err := compress(payload.Bytes(), c)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Magic:            Magic,
		Version:          Version,
		Compression:      applied,
		Flags:            flags,
		PayloadSize:      uint64(len(stored)),
		UncompressedSize: uint64(payload.Len()),
		Checksum:         CalculateChecksum(stored),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return Header{}, err
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadEnvelope reads a header and its payload from r, verifies the checksum
// and returns the uncompressed payload.
func ReadEnvelope(r io.Reader) (Header, []byte, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, nil, err
	}
	if err := h.validate(); err != nil {
		return Header{}, nil, err
	}

	cr := NewChecksumReader(r)
	stored := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(cr, stored); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if err := cr.Verify(h.Checksum); err != nil {
		return Header{}, nil, err
	}

	payload, err := decompress(stored, h.Compression, int(h.UncompressedSize))
	if err != nil {
		return Header{}, nil, err
	}
	return h, payload, nil
}

// OpenEnvelope parses an envelope held in memory. Uncompressed payloads are
// returned as a view into b; compressed ones are decoded into a new buffer.
func OpenEnvelope(b []byte) (Header, []byte, error) {
	if len(b) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(b))
	}

	var h Header
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return Header{}, nil, err
	}
	if err := h.validate(); err != nil {
		return Header{}, nil, err
	}
	if h.PayloadSize > uint64(len(b)-HeaderSize) {
		return Header{}, nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, h.PayloadSize, len(b)-HeaderSize)
	}

	stored := b[HeaderSize : HeaderSize+int(h.PayloadSize)]
	if sum := CalculateChecksum(stored); sum != h.Checksum {
		return Header{}, nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	payload, err := decompress(stored, h.Compression, int(h.UncompressedSize))
	if err != nil {
		return Header{}, nil, err
	}
	return h, payload, nil
}
