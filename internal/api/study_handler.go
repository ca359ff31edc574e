package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/api/middleware"
	"github.com/ali-aktas/HocaLingo-sub003/internal/api/shared"
	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
)

// StudyHandler handles study-session HTTP requests: the queue, answer
// submission, and daily progress.
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(studyService study.StudyService, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// GetQueue handles GET /study/queue requests. An optional "limit" query
// parameter caps the number of entries returned.
func (h *StudyHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.studyService.GetQueue(r.Context(), userID, limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to build study queue"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("study queue built",
		slog.String("user_id", userID.String()),
		slog.Int("entries", len(entries)))
	shared.RespondWithJSON(w, r, http.StatusOK, queueToResponse(entries))
}

// SubmitAnswer handles POST /study/cards/{id}/answer requests.
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.studyService.SubmitAnswer(
		r.Context(),
		userID,
		cardID,
		domain.StudyDirection(req.Direction),
		domain.ReviewQuality(req.Quality),
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to process answer"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("answer processed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("quality", req.Quality),
		slog.Bool("graduated", result.Graduated))
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Progress:  progressToResponse(result.Progress),
		Graduated: result.Graduated,
	})
}

// GetDailyProgress handles GET /study/progress requests.
func (h *StudyHandler) GetDailyProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	summary, err := h.studyService.DailyProgress(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get daily progress"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DailyProgressResponse{
		Date:           summary.Date.Format(time.DateOnly),
		GraduatedToday: summary.GraduatedToday,
		DailyGoal:      summary.DailyGoal,
		GoalReached:    summary.GoalReached,
	})
}
