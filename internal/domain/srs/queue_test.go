package srs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

func TestPriority_LearningDominatesReview(t *testing.T) {
	t.Parallel()

	learning := newLearningProgress(t, 3)

	// 50 hours overdue.
	review := newReviewProgress(5, 2, 2.2)
	review.NextReviewAt = testNow.Add(-50 * time.Hour)

	learningPriority := Priority(learning, testNow)
	reviewPriority := Priority(review, testNow)

	assert.Equal(t, math.MaxInt32-3, learningPriority)
	assert.Equal(t, 50, reviewPriority)
	assert.Greater(t, learningPriority, reviewPriority)
}

func TestPriority_LowerPositionSortsFirst(t *testing.T) {
	t.Parallel()

	front := newLearningProgress(t, 1)
	back := newLearningProgress(t, 9)

	assert.Greater(t, Priority(front, testNow), Priority(back, testNow))
}

func TestPriority_NotYetDueClampsToZero(t *testing.T) {
	t.Parallel()

	review := newReviewProgress(5, 2, 2.2)
	review.NextReviewAt = testNow.Add(6 * time.Hour)

	assert.Equal(t, 0, Priority(review, testNow))
}

func TestPriority_FractionalHoursTruncate(t *testing.T) {
	t.Parallel()

	review := newReviewProgress(5, 2, 2.2)
	review.NextReviewAt = testNow.Add(-90 * time.Minute)

	assert.Equal(t, 1, Priority(review, testNow))
}

func TestBuildQueue_OrdersByPriority(t *testing.T) {
	t.Parallel()

	learningBack := newLearningProgress(t, 7)
	learningFront := newLearningProgress(t, 2)

	slightlyOverdue := newReviewProgress(3, 1, 2.5)
	slightlyOverdue.NextReviewAt = testNow.Add(-2 * time.Hour)

	veryOverdue := newReviewProgress(10, 4, 2.5)
	veryOverdue.NextReviewAt = testNow.Add(-50 * time.Hour)

	queue := BuildQueue(
		[]*domain.CardProgress{learningBack, learningFront},
		[]*domain.CardProgress{slightlyOverdue, veryOverdue},
		testNow,
	)

	require.Len(t, queue, 4)
	assert.Same(t, learningFront, queue[0])
	assert.Same(t, learningBack, queue[1])
	assert.Same(t, veryOverdue, queue[2])
	assert.Same(t, slightlyOverdue, queue[3])
}

func TestBuildQueue_StableForEqualPriorities(t *testing.T) {
	t.Parallel()

	first := newReviewProgress(3, 1, 2.5)
	first.NextReviewAt = testNow.Add(-30 * time.Minute)
	second := newReviewProgress(3, 1, 2.5)
	second.NextReviewAt = testNow.Add(-45 * time.Minute)

	// Both truncate to 0 hours overdue; insertion order wins.
	queue := BuildQueue(nil, []*domain.CardProgress{first, second}, testNow)

	require.Len(t, queue, 2)
	assert.Same(t, first, queue[0])
	assert.Same(t, second, queue[1])
}

func TestBuildQueue_EmptyInputs(t *testing.T) {
	t.Parallel()

	queue := BuildQueue(nil, nil, testNow)
	assert.Empty(t, queue)
}

func TestMaxSessionPosition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, MaxSessionPosition(nil))

	review := newReviewProgress(5, 2, 2.2)
	assert.Equal(t, 0, MaxSessionPosition([]*domain.CardProgress{review}))

	records := []*domain.CardProgress{
		newLearningProgress(t, 4),
		newLearningProgress(t, 11),
		newLearningProgress(t, 2),
		review,
	}
	assert.Equal(t, 11, MaxSessionPosition(records))
}
