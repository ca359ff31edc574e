package api

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/api/shared"
	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/auth"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withUserID puts a user ID into the request context the way the auth
// middleware does.
func withUserID(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// mockStudyService implements study.StudyService with per-test functions.
type mockStudyService struct {
	getQueueFn      func(ctx context.Context, userID uuid.UUID, limit int) ([]study.QueueEntry, error)
	submitAnswerFn  func(ctx context.Context, userID, cardID uuid.UUID, direction domain.StudyDirection, quality domain.ReviewQuality) (*study.AnswerResult, error)
	selectCardsFn   func(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) error
	deselectCardFn  func(ctx context.Context, userID, cardID uuid.UUID) error
	dailyProgressFn func(ctx context.Context, userID uuid.UUID) (*study.DailyProgressSummary, error)
}

var _ study.StudyService = (*mockStudyService)(nil)

func (m *mockStudyService) GetQueue(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]study.QueueEntry, error) {
	return m.getQueueFn(ctx, userID, limit)
}

func (m *mockStudyService) SubmitAnswer(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	quality domain.ReviewQuality,
) (*study.AnswerResult, error) {
	return m.submitAnswerFn(ctx, userID, cardID, direction, quality)
}

func (m *mockStudyService) SelectCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) error {
	return m.selectCardsFn(ctx, userID, cardIDs)
}

func (m *mockStudyService) DeselectCard(ctx context.Context, userID, cardID uuid.UUID) error {
	return m.deselectCardFn(ctx, userID, cardID)
}

func (m *mockStudyService) DailyProgress(
	ctx context.Context,
	userID uuid.UUID,
) (*study.DailyProgressSummary, error) {
	return m.dailyProgressFn(ctx, userID)
}

// mockJWTService implements auth.JWTService with canned tokens.
type mockJWTService struct {
	accessToken      string
	refreshToken     string
	generateErr      error
	validateFn       func(tokenString string) (*auth.Claims, error)
	validateRefresh  func(tokenString string) (*auth.Claims, error)
	generatedForUser uuid.UUID
}

var _ auth.JWTService = (*mockJWTService)(nil)

func (m *mockJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	m.generatedForUser = userID
	return m.accessToken, nil
}

func (m *mockJWTService) ValidateToken(_ context.Context, tokenString string) (*auth.Claims, error) {
	if m.validateFn != nil {
		return m.validateFn(tokenString)
	}
	return nil, auth.ErrInvalidToken
}

func (m *mockJWTService) GenerateRefreshToken(
	_ context.Context,
	userID uuid.UUID,
) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.refreshToken, nil
}

func (m *mockJWTService) ValidateRefreshToken(
	_ context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.validateRefresh != nil {
		return m.validateRefresh(tokenString)
	}
	return nil, auth.ErrInvalidRefreshToken
}

// mockUserStore implements store.UserStore backed by a map keyed on email.
type mockUserStore struct {
	users     map[string]*domain.User
	createErr error
}

var _ store.UserStore = (*mockUserStore)(nil)

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (s *mockUserStore) Create(_ context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	// Mimics the real store: the plaintext never survives Create.
	user.HashedPassword = "hashed:" + user.Password
	user.Password = ""
	s.users[user.Email] = user
	return nil
}

func (s *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *mockUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *mockUserStore) UpdateDailyGoal(_ context.Context, id uuid.UUID, goal int) error {
	for _, u := range s.users {
		if u.ID == id {
			u.DailyGoal = goal
			return nil
		}
	}
	return store.ErrUserNotFound
}

func (s *mockUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

// mockPasswordVerifier accepts passwords matching the mockUserStore's
// "hashed:" scheme.
type mockPasswordVerifier struct{}

func (mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword == "hashed:"+password {
		return nil
	}
	return errors.New("password mismatch")
}

// mockCardStore implements store.CardStore for the card listing endpoint.
type mockCardStore struct {
	cards   []*domain.Card
	listErr error
}

var _ store.CardStore = (*mockCardStore)(nil)

func (s *mockCardStore) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	s.cards = append(s.cards, cards...)
	return nil
}

func (s *mockCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (s *mockCardStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	var out []*domain.Card
	for _, id := range ids {
		for _, c := range s.cards {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s *mockCardStore) ListByLevel(
	_ context.Context,
	level string,
	limit, offset int,
) ([]*domain.Card, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*domain.Card
	for _, c := range s.cards {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *mockCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }
