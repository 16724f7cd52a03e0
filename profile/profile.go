// Package profile maps the profile ids stored in edge data to travel factors.
//
// Tables are usually loaded from YAML:
//
//	profiles:
//	  - id: 1
//	    name: residential
//	    speed: 30          # km/h, factor becomes seconds per metre
//	  - id: 2
//	    name: oneway
//	    factor: 0.08
//	    direction: forward
//
// An explicit factor wins over speed. A profile with neither is known but
// not accessible.
package profile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/roadnet/weight"
)

var (
	// ErrDuplicate is returned when two profiles share an id or a name.
	ErrDuplicate = errors.New("duplicate profile")
	// ErrInvalid is returned for a profile with out-of-range values.
	ErrInvalid = errors.New("invalid profile")
)

// Profile describes how one class of edges is travelled.
type Profile struct {
	ID     uint16  `yaml:"id"`
	Name   string  `yaml:"name"`
	Factor float32 `yaml:"factor,omitempty"`
	// Speed in km/h, used when Factor is zero.
	Speed     float32 `yaml:"speed,omitempty"`
	Direction string  `yaml:"direction,omitempty"`
}

// Resolve returns the weight factor of p.
func (p Profile) Resolve() (weight.Factor, error) {
	dir, err := weight.ParseDirection(p.Direction)
	if err != nil {
		return weight.NoFactor, fmt.Errorf("%w %d: %v", ErrInvalid, p.ID, err)
	}
	if p.Factor < 0 || p.Speed < 0 {
		return weight.NoFactor, fmt.Errorf("%w %d: negative factor or speed", ErrInvalid, p.ID)
	}

	switch {
	case p.Factor > 0:
		return weight.Factor{Value: p.Factor, Direction: dir}, nil
	case p.Speed > 0:
		return weight.Factor{Value: 1 / (p.Speed / 3.6), Direction: dir}, nil
	default:
		return weight.NoFactor, nil
	}
}

type document struct {
	Profiles []Profile `yaml:"profiles"`
}

// Table is an immutable profile table. It is safe for concurrent use.
type Table struct {
	profiles []Profile
	byName   map[string]uint16
	factors  map[uint16]weight.Factor
}

// New builds a table from profiles.
func New(profiles ...Profile) (*Table, error) {
	t := &Table{
		profiles: slices.Clone(profiles),
		byName:   make(map[string]uint16, len(profiles)),
		factors:  make(map[uint16]weight.Factor, len(profiles)),
	}

	for _, p := range profiles {
		if p.ID > weight.MaxProfile {
			return nil, fmt.Errorf("%w %d: id above %d", ErrInvalid, p.ID, weight.MaxProfile)
		}
		if _, ok := t.factors[p.ID]; ok {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicate, p.ID)
		}
		if p.Name != "" {
			if _, ok := t.byName[p.Name]; ok {
				return nil, fmt.Errorf("%w: name %q", ErrDuplicate, p.Name)
			}
			t.byName[p.Name] = p.ID
		}

		f, err := p.Resolve()
		if err != nil {
			return nil, err
		}
		t.factors[p.ID] = f
	}

	slices.SortFunc(t.profiles, func(a, b Profile) int { return int(a.ID) - int(b.ID) })
	return t, nil
}

// Load reads a YAML table from r.
func Load(r io.Reader) (*Table, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return New(doc.Profiles...)
}

// LoadFile reads a YAML table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Save writes t as YAML.
func (t *Table) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Profiles: t.profiles}); err != nil {
		return err
	}
	return enc.Close()
}

// Factor returns the factor of profile id, NoFactor when unknown. It has the
// signature of weight.FactorFunc.
func (t *Table) Factor(id uint16) weight.Factor {
	if f, ok := t.factors[id]; ok {
		return f
	}
	return weight.NoFactor
}

// Lookup returns the profile with the given name.
func (t *Table) Lookup(name string) (Profile, bool) {
	id, ok := t.byName[name]
	if !ok {
		return Profile{}, false
	}
	i, _ := slices.BinarySearchFunc(t.profiles, id, func(p Profile, id uint16) int { return int(p.ID) - int(id) })
	return t.profiles[i], true
}

// Profiles returns the profiles ordered by id.
func (t *Table) Profiles() []Profile {
	return slices.Clone(t.profiles)
}

// Len returns the number of profiles.
func (t *Table) Len() int {
	return len(t.profiles)
}

// Handler returns a default weight handler over t.
func (t *Table) Handler() *weight.Default {
	return weight.NewDefault(t.Factor)
}
