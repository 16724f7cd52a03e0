// Package mmap maps network snapshot files read-only so the graph can view
// them in place instead of copying them onto the heap.
//
//	m, err := mmap.Open("network.rnet")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom) // route searches jump around the edge array
//	hdr, payload, err := persistence.OpenEnvelope(m.Bytes())
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; Advise is a no-op there.
//
// Bytes and ReadAt are safe for concurrent use. Close is idempotent, but no
// slice obtained from Bytes may be touched after it returns.
package mmap
