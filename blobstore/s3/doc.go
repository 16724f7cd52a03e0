// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("networks/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	router, err := roadnet.Open(ctx, store, "lux.rnet")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for large snapshots
//   - CRC32C checksums on upload
//   - Automatic pagination for listing
package s3
