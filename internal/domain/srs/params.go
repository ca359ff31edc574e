package srs

import (
	"time"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// IntervalBand maps a review interval magnitude to the growth multiplier
// applied on a medium-quality response. Bands are checked in order; the
// first band whose UpToDays is >= the current interval wins.
type IntervalBand struct {
	UpToDays   float64
	Multiplier float64
}

// Params defines all configurable parameters of the scheduling engine.
type Params struct {
	// Ease factor limits shared by every transition.
	MinEaseFactor float64
	MaxEaseFactor float64

	// Learning phase: per-quality adjustments.
	LearningEaseAdjustment map[domain.ReviewQuality]float64
	LearningStep           map[domain.ReviewQuality]time.Duration
	LearningPositionOffset map[domain.ReviewQuality]int
	LearningPoints         map[domain.ReviewQuality]float64

	// Graduation policy.
	GraduationPoints       float64
	GraduationEaseBonus    float64
	GraduationIntervalDays float64

	// Review phase.
	LapseEasePenalty   float64
	LapseIntervalDays  float64
	MediumBands        []IntervalBand
	MediumFallbackMult float64
	EasyEarlyIntervals []float64 // Intervals for the first review-phase repetitions
	MaxIntervalDays    float64

	// Mastery thresholds (informational flag only).
	MasteryIntervalDays float64
	MasteryRepetitions  int
}

// NewDefaultParams returns the production parameters of the engine.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxEaseFactor: domain.MaxEaseFactor,

		LearningEaseAdjustment: map[domain.ReviewQuality]float64{
			domain.ReviewQualityHard:   -0.20,
			domain.ReviewQualityMedium: 0.05,
			domain.ReviewQualityEasy:   0.10,
		},

		// A hard card comes back almost immediately; easier cards are
		// pushed further out within the session.
		LearningStep: map[domain.ReviewQuality]time.Duration{
			domain.ReviewQualityHard:   1 * time.Minute,
			domain.ReviewQualityMedium: 10 * time.Minute,
			domain.ReviewQualityEasy:   60 * time.Minute,
		},

		LearningPositionOffset: map[domain.ReviewQuality]int{
			domain.ReviewQualityHard:   1,
			domain.ReviewQualityMedium: 5,
			domain.ReviewQualityEasy:   10,
		},

		LearningPoints: map[domain.ReviewQuality]float64{
			domain.ReviewQualityHard:   0, // resets accumulated points instead
			domain.ReviewQualityMedium: 0.5,
			domain.ReviewQualityEasy:   1.0,
		},

		GraduationPoints:       3.0,
		GraduationEaseBonus:    0.15,
		GraduationIntervalDays: 1,

		LapseEasePenalty:  -0.20,
		LapseIntervalDays: 1,

		// Young intervals still grow; mature intervals contract so the
		// card is seen again before it slips away entirely.
		MediumBands: []IntervalBand{
			{UpToDays: 3, Multiplier: 1.5},
			{UpToDays: 7, Multiplier: 1.2},
			{UpToDays: 21, Multiplier: 0.85},
		},
		MediumFallbackMult: 0.5,

		EasyEarlyIntervals: []float64{1, 3, 7},
		MaxIntervalDays:    365,

		MasteryIntervalDays: 21,
		MasteryRepetitions:  4,
	}
}
