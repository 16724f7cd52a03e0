package persistence

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadOf(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 7)
	}
	return p
}

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := payloadOf(4096)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			h, err := WriteEnvelope(&buf, c, 3, func(w io.Writer) error {
				_, err := w.Write(payload)
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, c, h.Compression)
			assert.Equal(t, uint8(3), h.Flags)
			assert.Equal(t, uint64(len(payload)), h.UncompressedSize)
			assert.Equal(t, HeaderSize+int(h.PayloadSize), buf.Len())

			rh, got, err := ReadEnvelope(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, h, rh)
			assert.Equal(t, payload, got)

			oh, got, err := OpenEnvelope(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, h, oh)
			assert.Equal(t, payload, got)
		})
	}
}

func TestEnvelopeIncompressibleStoredRaw(t *testing.T) {
	var buf bytes.Buffer
	h, err := WriteEnvelope(&buf, CompressionLZ4, 0, func(w io.Writer) error {
		_, err := w.Write([]byte{1, 2, 3})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, h.Compression)
}

func TestOpenEnvelopeUncompressedIsView(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteEnvelope(&buf, CompressionNone, 0, func(w io.Writer) error {
		_, err := w.Write([]byte{1, 2, 3, 4})
		return err
	})
	require.NoError(t, err)

	data := buf.Bytes()
	_, payload, err := OpenEnvelope(data)
	require.NoError(t, err)
	assert.Same(t, &data[HeaderSize], &payload[0])
}

func TestEnvelopeErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteEnvelope(&buf, CompressionZstd, 0, func(w io.Writer) error {
		_, err := w.Write(payloadOf(1024))
		return err
	})
	require.NoError(t, err)
	good := buf.Bytes()

	t.Run("magic", func(t *testing.T) {
		b := bytes.Clone(good)
		b[0] = 'X'
		_, _, err := OpenEnvelope(b)
		assert.ErrorIs(t, err, ErrInvalidMagic)
		_, _, err = ReadEnvelope(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		b := bytes.Clone(good)
		b[4] = 99
		_, _, err := OpenEnvelope(b)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("checksum", func(t *testing.T) {
		b := bytes.Clone(good)
		b[len(b)-1] ^= 0xFF
		_, _, err := OpenEnvelope(b)
		assert.True(t, IsChecksumMismatch(err))
		_, _, err = ReadEnvelope(bytes.NewReader(b))
		assert.True(t, IsChecksumMismatch(err))
	})

	t.Run("truncated", func(t *testing.T) {
		b := good[:len(good)-10]
		_, _, err := OpenEnvelope(b)
		assert.ErrorIs(t, err, ErrTruncated)
		_, _, err = ReadEnvelope(bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrTruncated)
		_, _, err = OpenEnvelope(good[:10])
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("snappy")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}
