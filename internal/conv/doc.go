// Package conv provides bounds-checked integer conversions for values that
// come from outside the process: snapshot headers, score table keys, request
// parameters.
//
// Conversions that are safe by construction (loop indices over a graph whose
// size is already bounded) use plain casts instead.
package conv
