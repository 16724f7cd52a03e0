package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.rnet")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestOpen(t *testing.T) {
	content := []byte("RNET payload")
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.NoError(t, m.Advise(AccessRandom))
	assert.NoError(t, m.Advise(AccessWillNeed))
}

func TestReadAt(t *testing.T) {
	m, err := Open(writeFile(t, []byte("RNET payload")))
	require.NoError(t, err)
	defer m.Close()

	tests := []struct {
		name    string
		size    int
		off     int64
		want    string
		wantErr error
	}{
		{"Inside", 4, 0, "RNET", nil},
		{"Partial", 10, 5, "payload", io.EOF},
		{"Beyond", 4, 100, "", io.EOF},
		{"Negative", 4, -1, "", ErrInvalidOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			n, err := m.ReadAt(buf, tt.off)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}

func TestEmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Advise(AccessSequential))
	assert.NoError(t, m.Close())
}

func TestClosed(t *testing.T) {
	m, err := Open(writeFile(t, []byte("data")))
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
