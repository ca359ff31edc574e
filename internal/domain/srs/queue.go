package srs

import (
	"math"
	"sort"
	"time"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// Priority returns the ordering key for a record in a mixed study queue.
// The queue is sorted descending by this value.
//
// Learning cards use math.MaxInt32 minus their session position, so a lower
// position sorts first and learning cards dominate any review card. Overdue
// review cards use whole hours overdue, so the longest-overdue card sorts
// first; a card that is exactly due (or not yet due) gets priority 0 and
// sorts last among review cards.
//
// The two ranges interleave only by absolute magnitude. This is the
// behavior the rest of the system depends on for which card a user sees
// first; do not replace it with a scheme that ranks phases explicitly.
func Priority(p *domain.CardProgress, now time.Time) int {
	if p.LearningPhase {
		pos := 0
		if p.SessionPosition != nil {
			pos = *p.SessionPosition
		}
		return math.MaxInt32 - pos
	}

	hoursOverdue := int(now.Sub(p.NextReviewAt).Hours())
	if hoursOverdue < 0 {
		return 0
	}
	return hoursOverdue
}

// BuildQueue merges learning-phase records (always eligible within the
// session, regardless of due time) with overdue review records into one
// presentation order. The sort is stable, so records with equal priority
// keep their insertion order; session positions are assigned densely and
// monotonically, which makes insertion order the natural tie-break.
//
// BuildQueue is a pure sort over already-fetched records. Filtering by due
// time is the storage layer's job.
func BuildQueue(learning, due []*domain.CardProgress, now time.Time) []*domain.CardProgress {
	queue := make([]*domain.CardProgress, 0, len(learning)+len(due))
	queue = append(queue, learning...)
	queue = append(queue, due...)

	sort.SliceStable(queue, func(i, j int) bool {
		return Priority(queue[i], now) > Priority(queue[j], now)
	})

	return queue
}

// MaxSessionPosition returns the highest session position among the given
// records, or 0 if none of them carries one. Callers use it to seed the
// SessionContext for the next transition.
func MaxSessionPosition(records []*domain.CardProgress) int {
	max := 0
	for _, p := range records {
		if p.SessionPosition != nil && *p.SessionPosition > max {
			max = *p.SessionPosition
		}
	}
	return max
}
