package graph

import (
	"slices"

	"github.com/hupe1980/roadnet/geo"
)

// shapeStore keeps per-edge intermediate coordinates. The index holds a
// (pointer, count) pair per edge slot into a shared coordinate stream of
// lat/lon pairs. Replacing a shape appends to the stream; the stale
// coordinates stay until compress.
type shapeStore struct {
	index       []uint32
	coordinates []float32
}

func newShapeStore(edgeCapacity int) *shapeStore {
	return &shapeStore{
		index: make([]uint32, 0, edgeCapacity*2),
	}
}

// count returns the number of coordinates in the stream.
func (s *shapeStore) count() int {
	return len(s.coordinates) / 2
}

// ensure makes room for edge slots [0, slots).
func (s *shapeStore) ensure(slots int) {
	if need := slots * 2; need > len(s.index) {
		s.index = append(s.index, make([]uint32, need-len(s.index))...)
	}
}

func (s *shapeStore) set(id uint32, shape []geo.Coordinate) {
	s.ensure(int(id) + 1)
	i := int(id) * 2
	if len(shape) == 0 {
		s.index[i] = 0
		s.index[i+1] = 0
		return
	}

	s.index[i] = uint32(s.count())
	s.index[i+1] = uint32(len(shape))
	for _, c := range shape {
		s.coordinates = append(s.coordinates, c.Latitude, c.Longitude)
	}
}

func (s *shapeStore) remove(id uint32) {
	if i := int(id) * 2; i+1 < len(s.index) {
		s.index[i] = 0
		s.index[i+1] = 0
	}
}

// get returns a copy of the shape of edge id, or nil when it has none.
func (s *shapeStore) get(id uint32) []geo.Coordinate {
	i := int(id) * 2
	if i+1 >= len(s.index) {
		return nil
	}
	ptr, n := int(s.index[i]), int(s.index[i+1])
	if n == 0 {
		return nil
	}

	shape := make([]geo.Coordinate, n)
	for i := range shape {
		shape[i] = geo.Coordinate{
			Latitude:  s.coordinates[(ptr+i)*2],
			Longitude: s.coordinates[(ptr+i)*2+1],
		}
	}
	return shape
}

// compress rewrites the stream so it only holds coordinates still
// referenced by the index, in edge order.
func (s *shapeStore) compress() {
	var coordinates []float32
	for id := 0; id*2+1 < len(s.index); id++ {
		ptr, n := int(s.index[id*2]), int(s.index[id*2+1])
		if n == 0 {
			continue
		}
		s.index[id*2] = uint32(len(coordinates) / 2)
		coordinates = append(coordinates, s.coordinates[ptr*2:(ptr+n)*2]...)
	}
	s.coordinates = coordinates
}

// truncate drops index entries for slots >= slots.
func (s *shapeStore) truncate(slots int) {
	if slots*2 < len(s.index) {
		s.index = s.index[:slots*2]
	}
}

// trim releases spare capacity.
func (s *shapeStore) trim() {
	s.index = shrink(s.index, len(s.index))
	s.coordinates = shrink(s.coordinates, len(s.coordinates))
}

// own replaces views into external memory by owned copies.
func (s *shapeStore) own() {
	s.index = slices.Clone(s.index)
	s.coordinates = slices.Clone(s.coordinates)
}
