package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// SectionReader is the read side shared by the streaming Reader and the
// zero-copy SliceReader. Graph decoders are written against it so the same
// code path serves files, buffers and memory-mapped regions.
type SectionReader interface {
	ReadUint64() (uint64, error)
	ReadUint32Slice(count int) ([]uint32, error)
	ReadFloat32Slice(count int) ([]float32, error)
	Skip(n int) error
	Offset() int64
}

// Writer writes raw little-endian sections and counts the bytes written.
type Writer struct {
	w       io.Writer
	written int64
	scratch [8]byte
}

// NewWriter creates a new section writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes written so far.
func (bw *Writer) Written() int64 {
	return bw.written
}

func (bw *Writer) write(p []byte) error {
	n, err := bw.w.Write(p)
	bw.written += int64(n)
	return err
}

// WriteUint64 writes a single little-endian uint64.
func (bw *Writer) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(bw.scratch[:], v)
	return bw.write(bw.scratch[:])
}

// WriteUint32 writes a single little-endian uint32.
func (bw *Writer) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(bw.scratch[:4], v)
	return bw.write(bw.scratch[:4])
}

// WriteFloat32Slice writes a float32 slice as raw bytes.
func (bw *Writer) WriteFloat32Slice(vec []float32) error {
	return writeWords(bw, vec)
}

// WriteUint32Slice writes a uint32 slice as raw bytes.
func (bw *Writer) WriteUint32Slice(slice []uint32) error {
	return writeWords(bw, slice)
}

func writeWords[T word](bw *Writer, s []T) error {
	if len(s) == 0 {
		return nil
	}
	if err := checkAligned(s); err != nil {
		return err
	}
	return bw.write(asBytes(s))
}

// WriteZeros writes n zero bytes.
func (bw *Writer) WriteZeros(n int) error {
	clear(bw.scratch[:])
	for n > 0 {
		k := min(n, len(bw.scratch))
		if err := bw.write(bw.scratch[:k]); err != nil {
			return err
		}
		n -= k
	}
	return nil
}

// Reader reads raw little-endian sections from a stream. Every slice it
// returns is freshly allocated.
type Reader struct {
	r       io.Reader
	off     int64
	scratch [8]byte
}

// NewReader creates a new section reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (br *Reader) Offset() int64 {
	return br.off
}

func (br *Reader) readFull(p []byte) error {
	n, err := io.ReadFull(br.r, p)
	br.off += int64(n)
	return err
}

// ReadUint64 reads a single little-endian uint64.
func (br *Reader) ReadUint64() (uint64, error) {
	if err := br.readFull(br.scratch[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(br.scratch[:]), nil
}

// ReadUint32 reads a single little-endian uint32.
func (br *Reader) ReadUint32() (uint32, error) {
	if err := br.readFull(br.scratch[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(br.scratch[:4]), nil
}

// ReadFloat32Slice reads a float32 slice.
func (br *Reader) ReadFloat32Slice(count int) ([]float32, error) {
	return readChunked[float32](br, count)
}

// ReadUint32Slice reads a uint32 slice.
func (br *Reader) ReadUint32Slice(count int) ([]uint32, error) {
	return readChunked[uint32](br, count)
}

// readChunkWords bounds each allocation step of a streamed slice, so a
// corrupt count fails at end of input instead of allocating it upfront.
const readChunkWords = 64 << 10

func readChunked[T word](br *Reader, count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative slice length %d", count)
	}
	if count == 0 {
		return nil, nil
	}
	out := make([]T, 0, min(count, readChunkWords))
	for len(out) < count {
		n := min(count-len(out), readChunkWords)
		out = slices.Grow(out, n)
		if err := br.readFull(asBytes(out[len(out) : len(out)+n])); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		out = out[:len(out)+n]
	}
	return out, nil
}

// Skip discards n bytes.
func (br *Reader) Skip(n int) error {
	m, err := io.CopyN(io.Discard, br.r, int64(n))
	br.off += m
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// SaveToFile writes to a temp file in the target directory, syncs it and
// renames it into place.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// LoadFromFile is a helper to load data from a file.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return readFunc(bufio.NewReaderSize(f, 256*1024))
}
