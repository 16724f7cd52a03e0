package weight

// Default costs an edge as distance times the factor of its profile.
type Default struct {
	factors FactorFunc
}

// NewDefault creates a handler backed by factors.
func NewDefault(factors FactorFunc) *Default {
	return &Default{factors: factors}
}

// Calculate implements Handler.
func (d *Default) Calculate(profile uint16, distance float32, _ uint32) (float32, Factor) {
	f := d.factors(profile)
	return distance * f.Value, f
}

// Contracted implements Handler.
func (d *Default) Contracted(data uint32, _ uint32) WeightAndDir {
	return DecodeContracted(data)
}

// Add implements Handler.
func (d *Default) Add(weight float32, profile uint16, distance float32, edgeID uint32) (float32, Factor) {
	w, f := d.Calculate(profile, distance, edgeID)
	return weight + w, f
}
