package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roadnet/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket,
		WithPrefix(fmt.Sprintf("test-roadnet-%d/", time.Now().UnixNano())),
		WithRegion(os.Getenv("AWS_REGION")),
	)
	require.NoError(t, err)

	name := "lux.rnet"
	data := make([]byte, 1024*1024)
	_, _ = rand.Read(data)

	w, err := store.Create(ctx, name)
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	require.NoError(t, w.Close())

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, blobs, name)

	r, err := store.Open(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), r.Size())

	buf := make([]byte, 100)
	n, err = r.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, data[:100], buf[:n])

	rc, err := r.ReadRange(ctx, 500, 100)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data[500:600], part)

	all, err := blobstore.ReadAll(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, data, all)
	require.NoError(t, r.Close())

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
