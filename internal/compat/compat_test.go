package compat

import (
	"errors"
	"math"
	"testing"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"self", []float64{0.3, -1.2, 4}, []float64{0.3, -1.2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 2}, []float64{-1, -2}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"empty", nil, []float64{1, 1}, 0},
		{"both empty", nil, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Cosine(tc.a, tc.b)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2, 3}, []float64{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, svcErr.ErrDimensionMismatch))
}

func TestScorerWeights(t *testing.T) {
	s := NewScorer(nil)
	a := &db.User{BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{1, 0}}
	b := &db.User{BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{0, 1}}

	got, err := s.Score(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-9)

	got, err = s.Score(a, a)
	require.NoError(t, err)
	assert.InDelta(t, s.Max(), got, 1e-9)
}

func TestScorerPropagatesMismatch(t *testing.T) {
	s := Scorer{BioWeight: 1, MoodWeight: 1}
	a := &db.User{BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{1}}
	b := &db.User{BioEmbedding: []float64{1, 0}, MoodEmbedding: []float64{1, 0}}

	_, err := s.Score(a, b)
	assert.ErrorIs(t, err, svcErr.ErrDimensionMismatch)
}
