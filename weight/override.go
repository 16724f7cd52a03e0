package weight

// ScoreSource supplies per-edge scores.
type ScoreSource interface {
	Score(edgeID uint32) (float32, bool)
}

// ScoreFunc adapts a function to ScoreSource.
type ScoreFunc func(edgeID uint32) (float32, bool)

// Score implements ScoreSource.
func (f ScoreFunc) Score(edgeID uint32) (float32, bool) {
	return f(edgeID)
}

// Override wraps a Handler and substitutes a score for the factor value of
// every edge that has one. Edges without a score get exactly the wrapped
// handler's result. The graph is never modified.
type Override struct {
	inner  Handler
	scores ScoreSource
}

// NewOverride decorates inner with scores.
func NewOverride(inner Handler, scores ScoreSource) *Override {
	return &Override{inner: inner, scores: scores}
}

// Calculate implements Handler.
func (o *Override) Calculate(profile uint16, distance float32, edgeID uint32) (float32, Factor) {
	w, f := o.inner.Calculate(profile, distance, edgeID)
	if s, ok := o.scores.Score(edgeID); ok {
		f.Value = s
		return distance * s, f
	}
	return w, f
}

// Contracted implements Handler. A score replaces the contracted weight.
func (o *Override) Contracted(data uint32, edgeID uint32) WeightAndDir {
	wd := o.inner.Contracted(data, edgeID)
	if s, ok := o.scores.Score(edgeID); ok {
		wd.Weight = s
	}
	return wd
}

// Add implements Handler.
func (o *Override) Add(weight float32, profile uint16, distance float32, edgeID uint32) (float32, Factor) {
	w, f := o.inner.Add(weight, profile, distance, edgeID)
	if s, ok := o.scores.Score(edgeID); ok {
		f.Value = s
		return weight + distance*s, f
	}
	return w, f
}
