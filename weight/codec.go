package weight

import (
	"errors"
	"fmt"
	"math"
)

// Edge data word: profile in the low 14 bits, distance in decimetres above.
const (
	profileBits = 14
	profileMask = 1<<profileBits - 1

	// MaxProfile is the highest profile id an edge data word can hold.
	MaxProfile = profileMask
	// MaxDistance is the longest edge, in metres, an edge data word can hold.
	MaxDistance = float32(maxDistanceUnits) / distancePrecision

	distancePrecision = 10
)

// Contracted data word: direction in the low 2 bits, weight in tenths above.
const (
	contractedDirBits = 2
	contractedDirMask = 1<<contractedDirBits - 1
	weightPrecision   = 10

	// MaxContractedWeight is the highest weight a contracted data word can hold.
	MaxContractedWeight = float32(maxContractedUnits) / weightPrecision

	maxContractedUnits = math.MaxUint32 >> contractedDirBits
	maxDistanceUnits   = math.MaxUint32 >> profileBits
)

var (
	ErrDistanceRange = errors.New("distance out of range")
	ErrProfileRange  = errors.New("profile out of range")
	ErrWeightRange   = errors.New("weight out of range")
)

// EncodeEdgeData packs a distance in metres and a profile id into one word.
// The distance is rounded to decimetres.
func EncodeEdgeData(distance float32, profile uint16) (uint32, error) {
	if distance < 0 || distance > MaxDistance || math.IsNaN(float64(distance)) {
		return 0, fmt.Errorf("%w: %v", ErrDistanceRange, distance)
	}
	if profile > MaxProfile {
		return 0, fmt.Errorf("%w: %d", ErrProfileRange, profile)
	}
	dm := toUnits(distance, distancePrecision, maxDistanceUnits)
	return dm<<profileBits | uint32(profile), nil
}

// DecodeEdgeData unpacks a word produced by EncodeEdgeData.
func DecodeEdgeData(data uint32) (distance float32, profile uint16) {
	return float32(data>>profileBits) / distancePrecision, uint16(data & profileMask)
}

// EncodeContracted packs a contracted weight and its direction into one word.
func EncodeContracted(weight float32, dir Direction) (uint32, error) {
	if weight < 0 || weight > MaxContractedWeight || math.IsNaN(float64(weight)) {
		return 0, fmt.Errorf("%w: %v", ErrWeightRange, weight)
	}
	if dir > Backward {
		return 0, fmt.Errorf("invalid direction %d", dir)
	}
	w := toUnits(weight, weightPrecision, maxContractedUnits)
	return w<<contractedDirBits | uint32(dir), nil
}

// toUnits rounds v to fixed point. The float32 maxima can round up past
// limit, so the result is clamped to it.
func toUnits(v float32, precision float64, limit uint32) uint32 {
	return uint32(min(math.Round(float64(v)*precision), float64(limit)))
}

// DecodeContracted unpacks a word produced by EncodeContracted.
func DecodeContracted(data uint32) WeightAndDir {
	return WeightAndDir{
		Weight:    float32(data>>contractedDirBits) / weightPrecision,
		Direction: Direction(data & contractedDirMask),
	}
}
