// Package compat scores how well two daters fit from their bio and mood
// embeddings.
package compat

import (
	"math"

	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
)

// Cosine returns dot(a,b) / (|a|·|b|), clamped to [-1, 1].
//
// An empty or all-zero vector yields 0 rather than NaN. Vectors of different
// lengths are an error; nothing is truncated.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, svcErr.DimensionMismatch(len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |sim| a hair past 1
	return math.Max(-1, math.Min(1, sim)), nil
}
