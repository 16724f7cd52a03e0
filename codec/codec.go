// Package codec centralizes JSON encoding of score tables, sample logs and
// API payloads.
//
// Files record nothing about the codec that wrote them, so every built-in
// codec must produce plain, interchangeable JSON.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "go-json":
		return GoJSON{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}
