package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
)

func testQueueEntry(t *testing.T, userID uuid.UUID) study.QueueEntry {
	t.Helper()

	card, err := domain.NewCard("elma", "apple", "Bir elma yedim.", "A1", "tr-en")
	require.NoError(t, err)

	progress, err := domain.NewCardProgress(
		userID,
		card.ID,
		domain.DirectionTermToTranslation,
		1,
		time.Now().UTC(),
	)
	require.NoError(t, err)

	return study.QueueEntry{Card: card, Progress: progress}
}

func TestStudyHandler_GetQueue(t *testing.T) {
	userID := uuid.New()

	t.Run("returns queue entries", func(t *testing.T) {
		entry := testQueueEntry(t, userID)
		service := &mockStudyService{
			getQueueFn: func(_ context.Context, gotUser uuid.UUID, limit int) ([]study.QueueEntry, error) {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, 5, limit)
				return []study.QueueEntry{entry}, nil
			},
		}
		handler := NewStudyHandler(service, testLogger(t))

		req := withUserID(httptest.NewRequest(http.MethodGet, "/study/queue?limit=5", nil), userID)
		rr := httptest.NewRecorder()
		handler.GetQueue(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp QueueResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, entry.Card.ID.String(), resp.Entries[0].Card.ID)
		assert.Equal(t, "elma", resp.Entries[0].Card.Term)
		assert.True(t, resp.Entries[0].Progress.LearningPhase)
	})

	t.Run("missing user ID is unauthorized", func(t *testing.T) {
		handler := NewStudyHandler(&mockStudyService{}, testLogger(t))

		req := httptest.NewRequest(http.MethodGet, "/study/queue", nil)
		rr := httptest.NewRecorder()
		handler.GetQueue(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid limit is bad request", func(t *testing.T) {
		handler := NewStudyHandler(&mockStudyService{}, testLogger(t))

		req := withUserID(httptest.NewRequest(http.MethodGet, "/study/queue?limit=abc", nil), userID)
		rr := httptest.NewRecorder()
		handler.GetQueue(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// answerRequest routes the request through a chi router so URL parameters
// resolve the way they do in production.
func answerRequest(
	t *testing.T,
	handler *StudyHandler,
	userID uuid.UUID,
	cardID string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Post("/study/cards/{id}/answer", handler.SubmitAnswer)

	req := withUserID(
		httptest.NewRequest(http.MethodPost, "/study/cards/"+cardID+"/answer", bytes.NewReader(encoded)),
		userID,
	)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestStudyHandler_SubmitAnswer(t *testing.T) {
	userID := uuid.New()
	cardID := uuid.New()

	t.Run("valid answer returns updated progress", func(t *testing.T) {
		entry := testQueueEntry(t, userID)
		service := &mockStudyService{
			submitAnswerFn: func(
				_ context.Context,
				gotUser, gotCard uuid.UUID,
				direction domain.StudyDirection,
				quality domain.ReviewQuality,
			) (*study.AnswerResult, error) {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, cardID, gotCard)
				assert.Equal(t, domain.DirectionTermToTranslation, direction)
				assert.Equal(t, domain.ReviewQualityEasy, quality)
				return &study.AnswerResult{Progress: entry.Progress, Graduated: true}, nil
			},
		}
		handler := NewStudyHandler(service, testLogger(t))

		rr := answerRequest(t, handler, userID, cardID.String(), SubmitAnswerRequest{
			Direction: "term_to_translation",
			Quality:   "easy",
		})

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AnswerResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.True(t, resp.Graduated)
		assert.Equal(t, entry.Progress.CardID.String(), resp.Progress.CardID)
	})

	t.Run("unknown quality is bad request", func(t *testing.T) {
		handler := NewStudyHandler(&mockStudyService{}, testLogger(t))

		rr := answerRequest(t, handler, userID, cardID.String(), SubmitAnswerRequest{
			Direction: "term_to_translation",
			Quality:   "impossible",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown direction is bad request", func(t *testing.T) {
		handler := NewStudyHandler(&mockStudyService{}, testLogger(t))

		rr := answerRequest(t, handler, userID, cardID.String(), SubmitAnswerRequest{
			Direction: "sideways",
			Quality:   "easy",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed card ID is bad request", func(t *testing.T) {
		handler := NewStudyHandler(&mockStudyService{}, testLogger(t))

		rr := answerRequest(t, handler, userID, "not-a-uuid", SubmitAnswerRequest{
			Direction: "term_to_translation",
			Quality:   "easy",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown card maps to not found", func(t *testing.T) {
		service := &mockStudyService{
			submitAnswerFn: func(
				_ context.Context,
				_, _ uuid.UUID,
				_ domain.StudyDirection,
				_ domain.ReviewQuality,
			) (*study.AnswerResult, error) {
				return nil, study.ErrCardNotFound
			},
		}
		handler := NewStudyHandler(service, testLogger(t))

		rr := answerRequest(t, handler, userID, cardID.String(), SubmitAnswerRequest{
			Direction: "term_to_translation",
			Quality:   "easy",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestStudyHandler_GetDailyProgress(t *testing.T) {
	userID := uuid.New()

	t.Run("returns summary", func(t *testing.T) {
		service := &mockStudyService{
			dailyProgressFn: func(_ context.Context, gotUser uuid.UUID) (*study.DailyProgressSummary, error) {
				assert.Equal(t, userID, gotUser)
				return &study.DailyProgressSummary{
					Date:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
					GraduatedToday: 10,
					DailyGoal:      10,
					GoalReached:    true,
				}, nil
			},
		}
		handler := NewStudyHandler(service, testLogger(t))

		req := withUserID(httptest.NewRequest(http.MethodGet, "/study/progress", nil), userID)
		rr := httptest.NewRecorder()
		handler.GetDailyProgress(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp DailyProgressResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "2025-06-01", resp.Date)
		assert.Equal(t, 10, resp.GraduatedToday)
		assert.True(t, resp.GoalReached)
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		service := &mockStudyService{
			dailyProgressFn: func(_ context.Context, _ uuid.UUID) (*study.DailyProgressSummary, error) {
				return nil, study.ErrUserNotFound
			},
		}
		handler := NewStudyHandler(service, testLogger(t))

		req := withUserID(httptest.NewRequest(http.MethodGet, "/study/progress", nil), userID)
		rr := httptest.NewRecorder()
		handler.GetDailyProgress(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
