// Package persistence provides raw binary IO for road networks and the
// network file envelope.
//
// Platform requirements:
//   - Endianness: little-endian (amd64, arm64 and most other targets)
//   - Alignment: 4-byte for float32/uint32 views
//
// Slices are written and read as raw memory, so a serialized graph can be
// memory-mapped and viewed in place. Views fall back to copies when the
// source is misaligned, and the package refuses to load on big-endian hosts.
package persistence
