package roadnet

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/roadnet/blobstore"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/persistence"
	"github.com/hupe1980/roadnet/profile"
	"github.com/hupe1980/roadnet/resource"
	"github.com/hupe1980/roadnet/scores"
)

// FlagGraph marks envelopes whose payload is a serialized graph.
const FlagGraph uint8 = 1 << 0

// Save writes the graph as a network snapshot named name. The write is
// discarded if it fails part way.
func (r *Router) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.leave()
	start := time.Now()
	n, err := SaveGraph(ctx, store, name, r.graph, r.opts.compression, r.opts.resources)
	r.opts.metricsCollector.RecordSave(n, time.Since(start), err)
	r.opts.logger.LogSave(ctx, name, n, err)
	return translateError(err)
}

// SaveGraph writes g as a network snapshot and returns the snapshot size.
// rc may be nil.
func SaveGraph(ctx context.Context, store blobstore.BlobStore, name string, g *graph.Graph, c persistence.Compression, rc *resource.Controller) (int64, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	h, err := persistence.WriteEnvelope(resource.NewRateLimitedWriter(ctx, w, rc), c, FlagGraph, func(pw io.Writer) error {
		_, err := g.Serialize(pw)
		return err
	})
	if err != nil {
		_ = blobstore.Abort(w)
		return 0, fmt.Errorf("save %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("save %s: %w", name, err)
	}
	return int64(persistence.HeaderSize) + int64(h.PayloadSize), nil
}

// Open loads the network snapshot name from store and creates a Router over
// it. Uncompressed snapshots in stores that support memory mapping are
// viewed in place; the Router keeps them open until Close.
func Open(ctx context.Context, store blobstore.BlobStore, name string, profiles *profile.Table, optFns ...Option) (*Router, error) {
	o := applyOptions(optFns)
	start := time.Now()

	r, size, err := open(ctx, store, name, profiles, o)
	o.metricsCollector.RecordLoad(size, time.Since(start), err)
	if err != nil {
		o.logger.LogLoad(ctx, name, 0, 0, false, err)
		return nil, err
	}
	o.logger.LogLoad(ctx, name, r.graph.VertexCount(), r.graph.EdgeCount(), r.closer != nil, nil)
	return r, nil
}

func open(ctx context.Context, store blobstore.BlobStore, name string, profiles *profile.Table, o options) (*Router, int64, error) {
	if profiles == nil {
		return nil, 0, ErrInvalidArgument
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, translateError(err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = blob.Close()
		}
	}()

	data, mapped, err := readBlob(ctx, blob, o.resources)
	if err != nil {
		return nil, 0, translateError(err)
	}

	h, payload, err := persistence.OpenEnvelope(data)
	if err != nil {
		return nil, 0, corruptError(name, err)
	}
	if h.Flags&FlagGraph == 0 {
		return nil, 0, &ErrCorrupt{Name: name, cause: fmt.Errorf("flags %#x carry no graph", h.Flags)}
	}

	g, _, err := graph.DeserializeBytes(payload, o.copyOnLoad)
	if err != nil {
		return nil, 0, corruptError(name, err)
	}

	reserved := int64(len(payload))
	if err := o.resources.AcquireMemory(ctx, reserved); err != nil {
		return nil, 0, err
	}

	r, err := newRouter(g, profiles, o)
	if err != nil {
		o.resources.ReleaseMemory(reserved)
		return nil, 0, err
	}
	r.reserved = reserved

	// the graph aliases the mapping only for uncompressed, uncopied loads
	if mapped && h.Compression == persistence.CompressionNone && !o.copyOnLoad {
		r.closer = blob
		keep = true
	}
	return r, int64(len(data)), nil
}

// readBlob returns the blob content and whether it is a view of mapped memory.
func readBlob(ctx context.Context, blob blobstore.Blob, rc *resource.Controller) ([]byte, bool, error) {
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		return data, err == nil, err
	}

	body, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, false, err
	}
	defer body.Close()

	data := make([]byte, blob.Size())
	if _, err := io.ReadFull(resource.NewRateLimitedReader(ctx, body, rc), data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// SaveScores writes the processed scores of t as JSON blob name.
func SaveScores(ctx context.Context, store blobstore.BlobStore, name string, t *scores.Table) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := t.Save(w); err != nil {
		_ = blobstore.Abort(w)
		return fmt.Errorf("save scores %s: %w", name, err)
	}
	return w.Close()
}

// LoadScores reads a score table written by SaveScores.
func LoadScores(ctx context.Context, store blobstore.BlobStore, name string, opts ...scores.Option) (*scores.Table, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, translateError(err)
	}
	defer blob.Close()

	body, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	t := scores.NewTable(opts...)
	if err := t.Load(body); err != nil {
		return nil, fmt.Errorf("load scores %s: %w", name, err)
	}
	return t, nil
}
