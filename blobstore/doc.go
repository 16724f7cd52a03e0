// Package blobstore abstracts where network snapshots and score tables live.
//
// A BlobStore holds immutable named blobs. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-process, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs that can expose their bytes without copying implement Mappable;
// ReadAll uses it so a locally stored snapshot is loaded zero-copy.
package blobstore
