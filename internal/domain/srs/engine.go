// Package srs implements the spaced repetition scheduling engine.
//
// The engine is a set of pure functions over domain.CardProgress: given the
// current record, a quality response, and a single clock reading, it returns
// a new record and reports whether the card graduated from the learning
// phase. It performs no I/O and reads the clock exactly once per transition,
// so it is safe to call from any goroutine.
//
// Cards move through two phases. In the learning phase a card cycles inside
// the current session at minute-scale delays until it has accumulated enough
// successful-review points to graduate. In the review phase the card follows
// an SM-2-derived day-scale schedule. A hard response in the review phase
// regresses the schedule but never sends the card back to the learning
// phase.
package srs

import (
	"time"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// SessionContext carries the per-session state the engine needs to place a
// re-queued learning card behind all currently pending ones.
type SessionContext struct {
	// MaxSessionPosition is the highest session position currently in use
	// across the active queue.
	MaxSessionPosition int
}

// clampEase keeps an ease factor inside the configured bounds.
func clampEase(ef float64, params *Params) float64 {
	if ef < params.MinEaseFactor {
		return params.MinEaseFactor
	}
	if ef > params.MaxEaseFactor {
		return params.MaxEaseFactor
	}
	return ef
}

// sm2EaseFactor applies the classic SM-2 ease update for quality level q
// (on the 0..5 scale) and clamps the result.
//
//	EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
func sm2EaseFactor(ef float64, q int, params *Params) float64 {
	diff := float64(5 - q)
	return clampEase(ef+(0.1-diff*(0.08+diff*0.02)), params)
}

// capInterval limits an interval to the configured maximum.
func capInterval(days float64, params *Params) float64 {
	if days > params.MaxIntervalDays {
		return params.MaxIntervalDays
	}
	return days
}

// intervalToDuration converts a fractional day count to a duration.
func intervalToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

// nextState computes the record that follows progress after a quality
// response. It returns the new record and whether this transition graduated
// the card from learning into review.
//
// A quality outside {hard, medium, easy} is a deliberate no-op: the input is
// returned as an unchanged copy so a defensive caller sees "nothing
// happened" rather than a corrupted record or a panic.
func nextState(
	progress *domain.CardProgress,
	quality domain.ReviewQuality,
	session SessionContext,
	now time.Time,
	params *Params,
) (*domain.CardProgress, bool) {
	if !quality.Valid() {
		return progress.Clone(), false
	}

	if progress.LearningPhase {
		return nextLearningState(progress, quality, session, now, params)
	}
	return nextReviewState(progress, quality, now, params), false
}

// nextLearningState handles a response while the card is drilled within the
// session. Hard responses reset the accumulated graduation points; medium
// and easy responses accrue partial or full credit and trigger the
// graduation check.
func nextLearningState(
	progress *domain.CardProgress,
	quality domain.ReviewQuality,
	session SessionContext,
	now time.Time,
	params *Params,
) (*domain.CardProgress, bool) {
	next := progress.Clone()
	next.Repetitions++
	last := now
	next.LastReviewAt = &last
	next.UpdatedAt = now

	next.EaseFactor = clampEase(progress.EaseFactor+params.LearningEaseAdjustment[quality], params)

	pos := session.MaxSessionPosition + params.LearningPositionOffset[quality]
	next.SessionPosition = &pos
	next.NextReviewAt = now.Add(params.LearningStep[quality])

	if quality == domain.ReviewQualityHard {
		next.HardPresses++
		next.SuccessfulReviews = 0
		next.IsMastered = mastered(next, params)
		return next, false
	}

	next.SuccessfulReviews += params.LearningPoints[quality]
	if next.SuccessfulReviews >= params.GraduationPoints {
		graduate(next, now, params)
		next.IsMastered = mastered(next, params)
		return next, true
	}

	next.IsMastered = mastered(next, params)
	return next, false
}

// graduate flips a learning record into the review phase. The record starts
// the review schedule at one day, earns a small ease bonus, and drops its
// session position; from here on IntervalDays drives the due date.
// Repetitions restart at zero so the progressive easy schedule begins from
// its first step.
func graduate(next *domain.CardProgress, now time.Time, params *Params) {
	next.LearningPhase = false
	next.SessionPosition = nil
	next.Repetitions = 0
	next.IntervalDays = params.GraduationIntervalDays
	next.EaseFactor = clampEase(next.EaseFactor+params.GraduationEaseBonus, params)
	next.NextReviewAt = now.Add(intervalToDuration(params.GraduationIntervalDays))
}

// nextReviewState handles a response for a graduated card.
func nextReviewState(
	progress *domain.CardProgress,
	quality domain.ReviewQuality,
	now time.Time,
	params *Params,
) *domain.CardProgress {
	next := progress.Clone()
	last := now
	next.LastReviewAt = &last
	next.UpdatedAt = now

	switch quality {
	case domain.ReviewQualityHard:
		// Full regression. The card stays in the review phase: re-entering
		// learning would flood the session queue with lapsed cards.
		next.Repetitions = 1
		next.IntervalDays = params.LapseIntervalDays
		next.EaseFactor = clampEase(progress.EaseFactor+params.LapseEasePenalty, params)
		next.HardPresses++
		next.SuccessfulReviews = 0

	case domain.ReviewQualityMedium:
		next.Repetitions++
		next.EaseFactor = sm2EaseFactor(progress.EaseFactor, 4, params)
		next.IntervalDays = capInterval(progress.IntervalDays*mediumMultiplier(progress.IntervalDays, params), params)

	case domain.ReviewQualityEasy:
		next.Repetitions++
		next.EaseFactor = sm2EaseFactor(progress.EaseFactor, 5, params)
		next.IntervalDays = capInterval(easyInterval(next.Repetitions, progress.IntervalDays, next.EaseFactor, params), params)
	}

	next.NextReviewAt = now.Add(intervalToDuration(next.IntervalDays))
	next.IsMastered = mastered(next, params)
	return next
}

// mediumMultiplier picks the growth multiplier for a medium response based
// on the magnitude of the current interval.
func mediumMultiplier(intervalDays float64, params *Params) float64 {
	for _, band := range params.MediumBands {
		if intervalDays <= band.UpToDays {
			return band.Multiplier
		}
	}
	return params.MediumFallbackMult
}

// easyInterval returns the progressive easy schedule: fixed steps for the
// first repetitions, then multiplicative growth by the updated ease factor.
func easyInterval(repetitions int, previousDays, newEase float64, params *Params) float64 {
	if repetitions >= 1 && repetitions <= len(params.EasyEarlyIntervals) {
		return params.EasyEarlyIntervals[repetitions-1]
	}
	return previousDays * newEase
}

// mastered reports whether the record crosses the mastery thresholds.
// The flag is informational and never gates scheduling.
func mastered(p *domain.CardProgress, params *Params) bool {
	return p.IntervalDays >= params.MasteryIntervalDays &&
		p.Repetitions >= params.MasteryRepetitions
}
