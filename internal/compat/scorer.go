package compat

import (
	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/Saifkhan77806/LoveTown/internal/db"
)

// Reference weights.
const (
	DefaultBioWeight  = 5.0
	DefaultMoodWeight = 3.0
)

// Scorer combines bio and mood similarity into one score.
type Scorer struct {
	BioWeight  float64
	MoodWeight float64
}

func NewScorer(cfg *config.Config) Scorer {
	if cfg == nil {
		return Scorer{BioWeight: DefaultBioWeight, MoodWeight: DefaultMoodWeight}
	}
	return Scorer{BioWeight: cfg.Match.BioWeight, MoodWeight: cfg.Match.MoodWeight}
}

// Score returns BioWeight·cos(bio) + MoodWeight·cos(mood) for the pair.
func (s Scorer) Score(requester, candidate *db.User) (float64, error) {
	bio, err := Cosine(requester.BioEmbedding, candidate.BioEmbedding)
	if err != nil {
		return 0, err
	}
	mood, err := Cosine(requester.MoodEmbedding, candidate.MoodEmbedding)
	if err != nil {
		return 0, err
	}
	return s.BioWeight*bio + s.MoodWeight*mood, nil
}

// Max is the best score the scorer can produce.
func (s Scorer) Max() float64 { return s.BioWeight + s.MoodWeight }
