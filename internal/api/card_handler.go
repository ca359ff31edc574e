package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/api/middleware"
	"github.com/ali-aktas/HocaLingo-sub003/internal/api/shared"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// CardHandler handles card browsing and study-set membership requests.
type CardHandler struct {
	cardStore    store.CardStore
	studyService study.StudyService
	logger       *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(
	cardStore store.CardStore,
	studyService study.StudyService,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cardStore:    cardStore,
		studyService: studyService,
		logger:       logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /cards requests. The required "level" query
// parameter filters by CEFR level; "limit" and "offset" page through the
// results.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	level := r.URL.Query().Get("level")
	if level == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing level parameter")
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid offset parameter")
		return
	}

	cards, err := h.cardStore.ListByLevel(r.Context(), level, limit, offset)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list cards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("cards listed",
		slog.String("level", level),
		slog.Int("count", len(cards)))

	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// SelectCards handles POST /cards/select requests, adding the given cards
// to the authenticated user's study set.
func (h *CardHandler) SelectCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SelectCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.studyService.SelectCards(r.Context(), userID, req.CardIDs); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to select cards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("cards selected",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(req.CardIDs)))
	w.WriteHeader(http.StatusNoContent)
}

// DeselectCard handles DELETE /cards/{id}/select requests, retiring the
// card from the authenticated user's queue.
func (h *CardHandler) DeselectCard(w http.ResponseWriter, r *http.Request) {
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

	if err := h.studyService.DeselectCard(r.Context(), userID, cardID); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to deselect card"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("card deselected",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, errors.New("negative value")
	}
	return parsed, nil
}
