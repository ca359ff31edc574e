package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/domain/srs"
	"github.com/ali-aktas/HocaLingo-sub003/internal/events"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db            *sql.DB
	userStore     store.UserStore
	cardStore     store.CardStore
	progressStore store.CardProgressStore
	dailyStore    store.DailyProgressStore
	srsService    srs.Service
	emitter       events.EventEmitter
	queueLimit    int
	timeFunc      func() time.Time // Injectable for testing
	logger        *slog.Logger
}

// NewStudyService creates a new StudyService implementation.
func NewStudyService(
	db *sql.DB,
	userStore store.UserStore,
	cardStore store.CardStore,
	progressStore store.CardProgressStore,
	dailyStore store.DailyProgressStore,
	srsService srs.Service,
	emitter events.EventEmitter,
	queueLimit int,
	logger *slog.Logger,
) StudyService {
	if db == nil {
		panic("db cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if dailyStore == nil {
		panic("dailyStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if queueLimit <= 0 {
		queueLimit = 20
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		db:            db,
		userStore:     userStore,
		cardStore:     cardStore,
		progressStore: progressStore,
		dailyStore:    dailyStore,
		srsService:    srsService,
		emitter:       emitter,
		queueLimit:    queueLimit,
		timeFunc:      func() time.Time { return time.Now().UTC() },
		logger:        logger.With(slog.String("component", "study_service")),
	}
}

// GetQueue implements StudyService.GetQueue.
func (s *studyServiceImpl) GetQueue(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]QueueEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

	if limit <= 0 || limit > s.queueLimit {
		limit = s.queueLimit
	}

	learning, err := s.progressStore.FindLearning(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning cards: %w", err)
	}

	due, err := s.progressStore.FindDue(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due cards: %w", err)
	}

	queue := srs.BuildQueue(learning, due, now)
	if len(queue) > limit {
		queue = queue[:limit]
	}

	entries, err := s.attachCards(ctx, queue)
	if err != nil {
		return nil, err
	}

	log.Debug("study queue built",
		slog.String("user_id", userID.String()),
		slog.Int("learning_count", len(learning)),
		slog.Int("due_count", len(due)),
		slog.Int("queue_size", len(entries)))

	return entries, nil
}

// attachCards resolves card content for an ordered list of progress
// records, preserving the queue order.
func (s *studyServiceImpl) attachCards(
	ctx context.Context,
	queue []*domain.CardProgress,
) ([]QueueEntry, error) {
	ids := make([]uuid.UUID, 0, len(queue))
	seen := make(map[uuid.UUID]bool, len(queue))
	for _, p := range queue {
		if !seen[p.CardID] {
			seen[p.CardID] = true
			ids = append(ids, p.CardID)
		}
	}

	cards, err := s.cardStore.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for queue: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	entries := make([]QueueEntry, 0, len(queue))
	for _, p := range queue {
		card, ok := byID[p.CardID]
		if !ok {
			// Card deleted from the catalog while progress survived.
			// Skip rather than fail the whole queue.
			continue
		}
		entries = append(entries, QueueEntry{Card: card, Progress: p})
	}

	return entries, nil
}

// SubmitAnswer implements StudyService.SubmitAnswer.
func (s *studyServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	quality domain.ReviewQuality,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}

	// An unrecognized quality never mutates the schedule. Return the
	// current record so the client sees current state.
	if !quality.Valid() {
		progress, err := s.progressStore.Get(ctx, userID, cardID, direction)
		if err != nil {
			if errors.Is(err, store.ErrProgressNotFound) {
				return nil, ErrCardNotSelected
			}
			return nil, fmt.Errorf("failed to get progress: %w", err)
		}
		log.Warn("ignoring answer with invalid quality",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("quality", string(quality)))
		return &AnswerResult{Progress: progress, Graduated: false}, nil
	}

	var result *AnswerResult
	err := s.runInTransaction(ctx, func(ctx context.Context, progressStore store.CardProgressStore, cardStore store.CardStore) error {
		progress, isNew, err := s.fetchOrSynthesize(ctx, progressStore, cardStore, userID, cardID, direction, now)
		if err != nil {
			return err
		}

		maxPos, err := progressStore.MaxSessionPosition(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get max session position: %w", err)
		}
		session := srs.SessionContext{MaxSessionPosition: maxPos}

		next, graduated, err := s.srsService.NextState(progress, quality, session, now)
		if err != nil {
			return fmt.Errorf("failed to compute next state: %w", err)
		}

		if isNew {
			if err := progressStore.Create(ctx, next); err != nil {
				return fmt.Errorf("failed to create progress: %w", err)
			}
		} else {
			if err := progressStore.Update(ctx, next); err != nil {
				return fmt.Errorf("failed to update progress: %w", err)
			}
		}

		result = &AnswerResult{Progress: next, Graduated: graduated}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	if result.Graduated {
		s.publishGraduation(ctx, userID, cardID, direction, now)
	}

	log.Debug("answer processed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("quality", string(quality)),
		slog.Bool("graduated", result.Graduated),
		slog.Float64("interval_days", result.Progress.IntervalDays),
		slog.Float64("ease_factor", result.Progress.EaseFactor))

	return result, nil
}

// fetchOrSynthesize locks and returns the existing progress record, or
// synthesizes a fresh learning-phase record on a card's first exposure.
// The bool result reports whether the record is new and needs Create
// rather than Update.
func (s *studyServiceImpl) fetchOrSynthesize(
	ctx context.Context,
	progressStore store.CardProgressStore,
	cardStore store.CardStore,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	now time.Time,
) (*domain.CardProgress, bool, error) {
	progress, err := progressStore.GetForUpdate(ctx, userID, cardID, direction)
	if err == nil {
		return progress, false, nil
	}
	if !errors.Is(err, store.ErrProgressNotFound) {
		return nil, false, fmt.Errorf("failed to get progress: %w", err)
	}

	if _, err := cardStore.GetByID(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, false, ErrCardNotFound
		}
		return nil, false, fmt.Errorf("failed to get card: %w", err)
	}

	maxPos, err := progressStore.MaxSessionPosition(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get max session position: %w", err)
	}

	progress, err = s.srsService.NewProgress(
		userID,
		cardID,
		direction,
		srs.SessionContext{MaxSessionPosition: maxPos},
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to synthesize progress: %w", err)
	}

	return progress, true, nil
}

// publishGraduation emits the graduation event after the transaction has
// committed. Losing the event costs one daily-goal tick, not schedule
// state, so a handler failure is logged and swallowed.
func (s *studyServiceImpl) publishGraduation(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	now time.Time,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewStudyEvent(events.EventCardGraduated, events.CardGraduatedPayload{
		UserID:      userID,
		CardID:      cardID,
		Direction:   direction,
		GraduatedAt: now,
	})
	if err != nil {
		log.Error("failed to build graduation event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit graduation event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
	}
}

// SelectCards implements StudyService.SelectCards.
func (s *studyServiceImpl) SelectCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.timeFunc()

	if len(cardIDs) == 0 {
		return ErrNoCardsGiven
	}

	directions := []domain.StudyDirection{
		domain.DirectionTermToTranslation,
		domain.DirectionTranslationToTerm,
	}

	err := s.runInTransaction(ctx, func(ctx context.Context, progressStore store.CardProgressStore, cardStore store.CardStore) error {
		cards, err := cardStore.GetByIDs(ctx, cardIDs)
		if err != nil {
			return fmt.Errorf("failed to load cards: %w", err)
		}
		if len(cards) != len(cardIDs) {
			return ErrCardNotFound
		}

		maxPos, err := progressStore.MaxSessionPosition(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get max session position: %w", err)
		}

		for _, card := range cards {
			for _, direction := range directions {
				maxPos++
				progress, err := s.srsService.NewProgress(
					userID,
					card.ID,
					direction,
					srs.SessionContext{MaxSessionPosition: maxPos - 1},
					now,
				)
				if err != nil {
					return fmt.Errorf("failed to build progress for card %s: %w", card.ID, err)
				}

				err = progressStore.Create(ctx, progress)
				if err == nil {
					continue
				}
				if errors.Is(err, store.ErrDuplicate) {
					// Previously deselected card: just flip it back on.
					if err := progressStore.SetSelected(ctx, userID, card.ID, true); err != nil {
						return fmt.Errorf("failed to reselect card %s: %w", card.ID, err)
					}
					maxPos--
					continue
				}
				return fmt.Errorf("failed to create progress for card %s: %w", card.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return ErrCardNotFound
		}
		log.Error("failed to select cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("card_count", len(cardIDs)))
		return err
	}

	log.Info("cards selected for study",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", len(cardIDs)))
	return nil
}

// DeselectCard implements StudyService.DeselectCard.
func (s *studyServiceImpl) DeselectCard(ctx context.Context, userID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.progressStore.SetSelected(ctx, userID, cardID, false)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return ErrCardNotSelected
		}
		log.Error("failed to deselect card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return err
	}

	return nil
}

// DailyProgress implements StudyService.DailyProgress.
func (s *studyServiceImpl) DailyProgress(
	ctx context.Context,
	userID uuid.UUID,
) (*DailyProgressSummary, error) {
	now := s.timeFunc()

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	count, err := s.dailyStore.Get(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily progress: %w", err)
	}

	return &DailyProgressSummary{
		Date:           now,
		GraduatedToday: count,
		DailyGoal:      user.DailyGoal,
		GoalReached:    count >= user.DailyGoal,
	}, nil
}

// runInTransaction runs the given function against transactional stores.
func (s *studyServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, store.CardProgressStore, store.CardStore) error,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(ctx, s.progressStore.WithTx(tx), s.cardStore.WithTx(tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
