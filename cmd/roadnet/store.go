package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/roadnet/blobstore"
	"github.com/hupe1980/roadnet/blobstore/minio"
	"github.com/hupe1980/roadnet/blobstore/s3"
)

// openStore resolves a store location. MinIO credentials come from
// MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_SECURE.
func openStore(ctx context.Context, location string) (blobstore.BlobStore, error) {
	if !strings.Contains(location, "://") {
		return blobstore.NewLocalStore(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", location, err)
	}
	prefix := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(u.Path), nil
	case "s3":
		store, err := s3.New(ctx, u.Host, s3.WithPrefix(prefix))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		secure, _ := strconv.ParseBool(os.Getenv("MINIO_SECURE"))
		store, err := minio.Dial(ctx, minio.Config{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Secure:    secure,
			Bucket:    u.Host,
			Prefix:    prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("store %q: unsupported scheme %q", location, u.Scheme)
	}
}
