package scores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/roadnet/codec"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/persistence"
	"github.com/hupe1980/roadnet/search"
)

// DefaultRadius is the search radius in metres used to snap samples to edges.
const DefaultRadius float32 = 50

// Sample is a raw score reported at a location.
type Sample struct {
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
	Score     float32 `json:"score"`
}

// Coordinate returns the location of s.
func (s Sample) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// EdgeResolver finds the routable edge closest to a coordinate within
// radius metres. It returns search.ErrUnresolved when there is none.
// search.Resolver implements it.
type EdgeResolver interface {
	ResolveEdge(ctx context.Context, c geo.Coordinate, radius float32) (uint32, error)
}

// Option configures a Table.
type Option func(*Table)

// WithCodec sets the codec used by the JSON load and save methods.
func WithCodec(c codec.Codec) Option {
	return func(t *Table) {
		t.codec = c
	}
}

// Table is a concurrency-safe score table plus the log of raw samples it
// was built from.
//
// Searches read scores on every edge they relax, so lookups go to an
// immutable map behind an atomic pointer. Writers copy the map and publish
// the copy; a running search keeps the snapshot it started reading.
type Table struct {
	values atomic.Pointer[map[uint32]float32]
	mu     sync.Mutex // serializes writers of values

	rawMu sync.RWMutex
	raw   []Sample
	codec codec.Codec
}

// NewTable creates an empty table.
func NewTable(opts ...Option) *Table {
	t := &Table{
		codec: codec.Default,
	}
	t.publish(make(map[uint32]float32))
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) snapshot() map[uint32]float32 {
	return *t.values.Load()
}

func (t *Table) publish(m map[uint32]float32) {
	t.values.Store(&m)
}

// Score implements weight.ScoreSource.
func (t *Table) Score(edgeID uint32) (float32, bool) {
	s, ok := t.snapshot()[edgeID]
	return s, ok
}

// Set assigns the score of an edge, replacing any previous one.
func (t *Table) Set(edgeID uint32, score float32) {
	t.mu.Lock()
	next := maps.Clone(t.snapshot())
	next[edgeID] = score
	t.publish(next)
	t.mu.Unlock()
}

// Delete removes the score of an edge and reports whether it had one.
func (t *Table) Delete(edgeID uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.snapshot()[edgeID]; !ok {
		return false
	}
	next := maps.Clone(t.snapshot())
	delete(next, edgeID)
	t.publish(next)
	return true
}

// Len returns the number of scored edges.
func (t *Table) Len() int {
	return len(t.snapshot())
}

// Values returns a copy of the processed scores.
func (t *Table) Values() map[uint32]float32 {
	return maps.Clone(t.snapshot())
}

// Replace swaps in a new set of processed scores.
func (t *Table) Replace(values map[uint32]float32) {
	values = maps.Clone(values)
	if values == nil {
		values = make(map[uint32]float32)
	}
	t.mu.Lock()
	t.publish(values)
	t.mu.Unlock()
}

// Log appends a raw sample. It does not affect scores until Process runs.
func (t *Table) Log(latitude, longitude, score float32) {
	t.rawMu.Lock()
	t.raw = append(t.raw, Sample{Latitude: latitude, Longitude: longitude, Score: score})
	t.rawMu.Unlock()
}

// Samples returns a copy of the raw sample log.
func (t *Table) Samples() []Sample {
	t.rawMu.RLock()
	defer t.rawMu.RUnlock()
	return slices.Clone(t.raw)
}

// ProcessResult summarizes a Process run.
type ProcessResult struct {
	Samples    int `json:"samples"`
	Assigned   int `json:"assigned"`
	Duplicates int `json:"duplicates"`
	Unresolved int `json:"unresolved"`
}

// Process snaps every raw sample to the closest edge within radius metres
// (DefaultRadius when radius is not positive). An edge keeps the first
// score it ever received, including scores from earlier runs or loads.
// Scores assigned by a run become visible to Score when it returns.
// Samples that cannot be resolved are skipped. Errors other than
// unresolvable samples abort the run; assignments made so far stay.
func (t *Table) Process(ctx context.Context, r EdgeResolver, radius float32) (ProcessResult, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	samples := t.Samples()
	res := ProcessResult{Samples: len(samples)}

	t.mu.Lock()
	defer t.mu.Unlock()
	next := maps.Clone(t.snapshot())
	defer func() {
		if res.Assigned > 0 {
			t.publish(next)
		}
	}()

	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		edgeID, err := r.ResolveEdge(ctx, s.Coordinate(), radius)
		if err != nil {
			if errors.Is(err, search.ErrUnresolved) {
				res.Unresolved++
				continue
			}
			return res, fmt.Errorf("resolve sample at %v,%v: %w", s.Latitude, s.Longitude, err)
		}

		if _, ok := next[edgeID]; ok {
			res.Duplicates++
		} else {
			next[edgeID] = s.Score
			res.Assigned++
		}
	}
	return res, nil
}

// Save writes the processed scores as {"<edgeId>": score}.
func (t *Table) Save(w io.Writer) error {
	b, err := t.codec.Marshal(t.Values())
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Load replaces the processed scores with those read from r.
func (t *Table) Load(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var values map[uint32]float32
	if err := t.codec.Unmarshal(b, &values); err != nil {
		return fmt.Errorf("failed to decode scores: %w", err)
	}
	t.Replace(values)
	return nil
}

// SaveSamples writes the raw sample log as a JSON array.
func (t *Table) SaveSamples(w io.Writer) error {
	samples := t.Samples()
	if samples == nil {
		samples = []Sample{}
	}
	b, err := t.codec.Marshal(samples)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// LoadSamples replaces the raw sample log with the one read from r.
func (t *Table) LoadSamples(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var samples []Sample
	if err := t.codec.Unmarshal(b, &samples); err != nil {
		return fmt.Errorf("failed to decode samples: %w", err)
	}
	t.rawMu.Lock()
	t.raw = samples
	t.rawMu.Unlock()
	return nil
}

// SaveFile atomically writes the processed scores to path.
func (t *Table) SaveFile(path string) error {
	return persistence.SaveToFile(path, t.Save)
}

// LoadFile loads processed scores from path.
func (t *Table) LoadFile(path string) error {
	return persistence.LoadFromFile(path, t.Load)
}

// SaveSamplesFile atomically writes the raw sample log to path.
func (t *Table) SaveSamplesFile(path string) error {
	return persistence.SaveToFile(path, t.SaveSamples)
}

// LoadSamplesFile loads the raw sample log from path.
func (t *Table) LoadSamplesFile(path string) error {
	return persistence.LoadFromFile(path, t.LoadSamples)
}
