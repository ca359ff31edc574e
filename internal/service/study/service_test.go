package study

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/domain/srs"
	"github.com/ali-aktas/HocaLingo-sub003/internal/events"
)

// testFixture bundles the service with its in-memory dependencies.
type testFixture struct {
	svc           StudyService
	user          *domain.User
	card          *domain.Card
	progressStore *memProgressStore
	cardStore     *memCardStore
	dailyStore    *memDailyStore
	now           time.Time
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	user, err := domain.NewUser("learner@example.com", "a-long-enough-password")
	require.NoError(t, err)

	card, err := domain.NewCard("apple", "elma", "She ate an apple.", "A1", "en-tr")
	require.NoError(t, err)

	progressStore := newMemProgressStore()
	cardStore := newMemCardStore(card)
	userStore := newMemUserStore(user)
	dailyStore := newMemDailyStore()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	emitter.RegisterHandler(NewGoalTracker(dailyStore, slog.Default()))

	svc := NewStudyService(
		openStubDB(),
		userStore,
		cardStore,
		progressStore,
		dailyStore,
		srs.NewDefaultService(),
		emitter,
		20,
		slog.Default(),
	)
	svc.(*studyServiceImpl).timeFunc = func() time.Time { return now }

	return &testFixture{
		svc:           svc,
		user:          user,
		card:          card,
		progressStore: progressStore,
		cardStore:     cardStore,
		dailyStore:    dailyStore,
		now:           now,
	}
}

// seedReviewRecord inserts a graduated record directly into the store.
func (f *testFixture) seedReviewRecord(
	t *testing.T,
	cardID uuid.UUID,
	intervalDays float64,
	repetitions int,
	ease float64,
	nextReviewAt time.Time,
) *domain.CardProgress {
	t.Helper()

	progress := &domain.CardProgress{
		UserID:       f.user.ID,
		CardID:       cardID,
		Direction:    domain.DirectionTermToTranslation,
		Repetitions:  repetitions,
		IntervalDays: intervalDays,
		EaseFactor:   ease,
		IsSelected:   true,
		NextReviewAt: nextReviewAt,
		CreatedAt:    f.now.Add(-30 * 24 * time.Hour),
		UpdatedAt:    f.now.Add(-24 * time.Hour),
	}
	require.NoError(t, progress.Validate())
	require.NoError(t, f.progressStore.Create(context.Background(), progress))
	return progress
}

func TestSubmitAnswer_FirstExposureCreatesLearningRecord(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	result, err := f.svc.SubmitAnswer(
		ctx,
		f.user.ID,
		f.card.ID,
		domain.DirectionTermToTranslation,
		domain.ReviewQualityEasy,
	)
	require.NoError(t, err)

	p := result.Progress
	assert.False(t, result.Graduated)
	assert.True(t, p.LearningPhase)
	assert.Equal(t, 1, p.Repetitions)
	assert.InDelta(t, 1.0, p.SuccessfulReviews, 1e-9)
	assert.InDelta(t, 2.5, p.EaseFactor, 1e-9, "ease stays capped at the default")
	require.NotNil(t, p.SessionPosition)
	assert.Equal(t, f.now.Add(60*time.Minute), p.NextReviewAt)

	stored, err := f.progressStore.Get(ctx, f.user.ID, f.card.ID, domain.DirectionTermToTranslation)
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestSubmitAnswer_ThreeEasyAnswersGraduate(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	var result *AnswerResult
	var err error
	for i := 0; i < 3; i++ {
		result, err = f.svc.SubmitAnswer(
			ctx,
			f.user.ID,
			f.card.ID,
			domain.DirectionTermToTranslation,
			domain.ReviewQualityEasy,
		)
		require.NoError(t, err)

		if i < 2 {
			assert.False(t, result.Graduated, "answer %d must not graduate", i+1)
			assert.True(t, result.Progress.LearningPhase)
		}
	}

	p := result.Progress
	assert.True(t, result.Graduated, "third easy answer graduates")
	assert.False(t, p.LearningPhase)
	assert.Nil(t, p.SessionPosition)
	assert.Equal(t, 0, p.Repetitions, "review schedule restarts at zero")
	assert.InDelta(t, 1.0, p.IntervalDays, 1e-9)
	assert.InDelta(t, 2.5, p.EaseFactor, 1e-9)
	assert.Equal(t, f.now.Add(24*time.Hour), p.NextReviewAt)

	// The graduation event advanced the daily counter.
	summary, err := f.svc.DailyProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.GraduatedToday)
	assert.Equal(t, domain.DefaultDailyGoal, summary.DailyGoal)
	assert.False(t, summary.GoalReached)
}

func TestSubmitAnswer_InvalidQualityIsNoOp(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitAnswer(
		ctx,
		f.user.ID,
		f.card.ID,
		domain.DirectionTermToTranslation,
		domain.ReviewQualityMedium,
	)
	require.NoError(t, err)

	before, err := f.progressStore.Get(ctx, f.user.ID, f.card.ID, domain.DirectionTermToTranslation)
	require.NoError(t, err)

	result, err := f.svc.SubmitAnswer(
		ctx,
		f.user.ID,
		f.card.ID,
		domain.DirectionTermToTranslation,
		domain.ReviewQuality("banana"),
	)
	require.NoError(t, err)
	assert.False(t, result.Graduated)

	after, err := f.progressStore.Get(ctx, f.user.ID, f.card.ID, domain.DirectionTermToTranslation)
	require.NoError(t, err)
	assert.Equal(t, before, after, "record is untouched")
}

func TestSubmitAnswer_UnknownCard(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	_, err := f.svc.SubmitAnswer(
		context.Background(),
		f.user.ID,
		uuid.New(),
		domain.DirectionTermToTranslation,
		domain.ReviewQualityEasy,
	)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSubmitAnswer_InvalidDirection(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	_, err := f.svc.SubmitAnswer(
		context.Background(),
		f.user.ID,
		f.card.ID,
		domain.StudyDirection("sideways"),
		domain.ReviewQualityEasy,
	)
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestSubmitAnswer_ReviewHardRegresses(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	f.seedReviewRecord(t, f.card.ID, 10, 3, 2.0, f.now.Add(-time.Hour))

	result, err := f.svc.SubmitAnswer(
		ctx,
		f.user.ID,
		f.card.ID,
		domain.DirectionTermToTranslation,
		domain.ReviewQualityHard,
	)
	require.NoError(t, err)

	p := result.Progress
	assert.False(t, result.Graduated)
	assert.False(t, p.LearningPhase, "a lapse never returns the card to learning")
	assert.Equal(t, 1, p.Repetitions)
	assert.InDelta(t, 1.0, p.IntervalDays, 1e-9)
	assert.InDelta(t, 1.8, p.EaseFactor, 1e-9)
	assert.Equal(t, 1, p.HardPresses)
	assert.Zero(t, p.SuccessfulReviews)
	assert.Equal(t, f.now.Add(24*time.Hour), p.NextReviewAt)
}

func TestGetQueue_LearningBeforeOverdueReview(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	overdueCard, err := domain.NewCard("water", "su", "", "A1", "en-tr")
	require.NoError(t, err)
	futureCard, err := domain.NewCard("fire", "ates", "", "A1", "en-tr")
	require.NoError(t, err)
	require.NoError(t, f.cardStore.CreateMultiple(ctx, []*domain.Card{overdueCard, futureCard}))

	// Learning card at session position 3.
	pos := 3
	learning := &domain.CardProgress{
		UserID:          f.user.ID,
		CardID:          f.card.ID,
		Direction:       domain.DirectionTermToTranslation,
		EaseFactor:      2.5,
		LearningPhase:   true,
		SessionPosition: &pos,
		IsSelected:      true,
		NextReviewAt:    domain.EndOfDay(f.now),
		CreatedAt:       f.now,
		UpdatedAt:       f.now,
	}
	require.NoError(t, f.progressStore.Create(ctx, learning))

	// Review card 50 hours overdue and another not due until tomorrow.
	f.seedReviewRecord(t, overdueCard.ID, 5, 2, 2.2, f.now.Add(-50*time.Hour))
	f.seedReviewRecord(t, futureCard.ID, 5, 2, 2.2, f.now.Add(24*time.Hour))

	queue, err := f.svc.GetQueue(ctx, f.user.ID, 0)
	require.NoError(t, err)

	require.Len(t, queue, 2, "the card due tomorrow stays out")
	assert.Equal(t, f.card.ID, queue[0].Card.ID, "learning card outranks any review card")
	assert.Equal(t, overdueCard.ID, queue[1].Card.ID)
}

func TestGetQueue_RespectsLimit(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		card, err := domain.NewCard("term", "karsilik", "", "A1", "en-tr")
		require.NoError(t, err)
		require.NoError(t, f.cardStore.CreateMultiple(ctx, []*domain.Card{card}))
		f.seedReviewRecord(t, card.ID, 5, 2, 2.2, f.now.Add(-time.Duration(i+1)*24*time.Hour))
	}

	queue, err := f.svc.GetQueue(ctx, f.user.ID, 3)
	require.NoError(t, err)
	assert.Len(t, queue, 3)
}

func TestSelectCards_CreatesBothDirections(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SelectCards(ctx, f.user.ID, []uuid.UUID{f.card.ID}))

	for _, direction := range []domain.StudyDirection{
		domain.DirectionTermToTranslation,
		domain.DirectionTranslationToTerm,
	} {
		p, err := f.progressStore.Get(ctx, f.user.ID, f.card.ID, direction)
		require.NoError(t, err)
		assert.True(t, p.LearningPhase)
		assert.True(t, p.IsSelected)
		assert.Equal(t, 0, p.Repetitions)
		assert.Equal(t, domain.EndOfDay(f.now), p.NextReviewAt)
	}

	// Selecting again is idempotent.
	require.NoError(t, f.svc.SelectCards(ctx, f.user.ID, []uuid.UUID{f.card.ID}))
}

func TestSelectCards_UnknownCard(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	err := f.svc.SelectCards(context.Background(), f.user.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestSelectCards_EmptyList(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	err := f.svc.SelectCards(context.Background(), f.user.ID, nil)
	assert.ErrorIs(t, err, ErrNoCardsGiven)
}

func TestDeselectCard_RemovesFromQueue(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SelectCards(ctx, f.user.ID, []uuid.UUID{f.card.ID}))
	require.NoError(t, f.svc.DeselectCard(ctx, f.user.ID, f.card.ID))

	queue, err := f.svc.GetQueue(ctx, f.user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestDeselectCard_NotSelected(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	err := f.svc.DeselectCard(context.Background(), f.user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrCardNotSelected)
}

func TestDailyProgress_GoalReached(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)
	ctx := context.Background()

	for i := 0; i < domain.DefaultDailyGoal; i++ {
		_, err := f.dailyStore.Increment(ctx, f.user.ID, f.now)
		require.NoError(t, err)
	}

	summary, err := f.svc.DailyProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDailyGoal, summary.GraduatedToday)
	assert.True(t, summary.GoalReached)
}

func TestDailyProgress_UnknownUser(t *testing.T) {
	t.Parallel()

	f := newTestFixture(t)

	_, err := f.svc.DailyProgress(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
