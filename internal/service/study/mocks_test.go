package study

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// stubDriver is a minimal database/sql driver whose connections only know
// how to begin, commit, and roll back. It lets the service's transaction
// plumbing run against in-memory stores.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStub sync.Once

func openStubDB() *sql.DB {
	registerStub.Do(func() {
		sql.Register("studystub", stubDriver{})
	})
	db, err := sql.Open("studystub", "")
	if err != nil {
		panic(err)
	}
	return db
}

// progressKey identifies a progress record by its composite key.
type progressKey struct {
	userID    uuid.UUID
	cardID    uuid.UUID
	direction domain.StudyDirection
}

// memProgressStore is an in-memory CardProgressStore.
type memProgressStore struct {
	mu      sync.Mutex
	records map[progressKey]*domain.CardProgress
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{records: make(map[progressKey]*domain.CardProgress)}
}

func (m *memProgressStore) Create(_ context.Context, p *domain.CardProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey{p.UserID, p.CardID, p.Direction}
	if _, ok := m.records[key]; ok {
		return store.ErrDuplicate
	}
	m.records[key] = p.Clone()
	return nil
}

func (m *memProgressStore) Get(
	_ context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
) (*domain.CardProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[progressKey{userID, cardID, direction}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return p.Clone(), nil
}

func (m *memProgressStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
) (*domain.CardProgress, error) {
	return m.Get(ctx, userID, cardID, direction)
}

func (m *memProgressStore) Update(_ context.Context, p *domain.CardProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey{p.UserID, p.CardID, p.Direction}
	if _, ok := m.records[key]; !ok {
		return store.ErrProgressNotFound
	}
	m.records[key] = p.Clone()
	return nil
}

func (m *memProgressStore) FindLearning(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.CardProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.CardProgress
	for _, p := range m.records {
		if p.UserID == userID && p.IsSelected && p.LearningPhase {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (m *memProgressStore) FindDue(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.CardProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.CardProgress
	for _, p := range m.records {
		if p.UserID == userID && p.IsSelected && !p.LearningPhase && !p.NextReviewAt.After(now) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (m *memProgressStore) MaxSessionPosition(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, p := range m.records {
		if p.UserID == userID && p.LearningPhase && p.SessionPosition != nil && *p.SessionPosition > max {
			max = *p.SessionPosition
		}
	}
	return max, nil
}

func (m *memProgressStore) SetSelected(
	_ context.Context,
	userID, cardID uuid.UUID,
	selected bool,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for key, p := range m.records {
		if key.userID == userID && key.cardID == cardID {
			p.IsSelected = selected
			found = true
		}
	}
	if !found {
		return store.ErrProgressNotFound
	}
	return nil
}

func (m *memProgressStore) RecomputeMastery(
	_ context.Context,
	minIntervalDays float64,
	minRepetitions int,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, p := range m.records {
		want := !p.LearningPhase && p.IntervalDays >= minIntervalDays && p.Repetitions >= minRepetitions
		if p.IsMastered != want {
			p.IsMastered = want
			changed++
		}
	}
	return changed, nil
}

func (m *memProgressStore) WithTx(*sql.Tx) store.CardProgressStore { return m }

// memCardStore is an in-memory CardStore.
type memCardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Card
}

func newMemCardStore(cards ...*domain.Card) *memCardStore {
	m := &memCardStore{cards: make(map[uuid.UUID]*domain.Card)}
	for _, c := range cards {
		m.cards[c.ID] = c
	}
	return m
}

func (m *memCardStore) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cards {
		if _, ok := m.cards[c.ID]; ok {
			return store.ErrDuplicate
		}
		m.cards[c.ID] = c
	}
	return nil
}

func (m *memCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return c, nil
}

func (m *memCardStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Card{}
	for _, id := range ids {
		if c, ok := m.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCardStore) ListByLevel(
	_ context.Context,
	level string,
	limit, offset int,
) ([]*domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Card{}
	for _, c := range m.cards {
		if c.Level == level {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCardStore) WithTx(*sql.Tx) store.CardStore { return m }

// memUserStore is an in-memory UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	m := &memUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserStore) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) UpdateDailyGoal(_ context.Context, id uuid.UUID, goal int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.DailyGoal = goal
	return nil
}

func (m *memUserStore) WithTx(*sql.Tx) store.UserStore { return m }

// memDailyStore is an in-memory DailyProgressStore.
type memDailyStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemDailyStore() *memDailyStore {
	return &memDailyStore{counts: make(map[string]int)}
}

func dailyKey(userID uuid.UUID, ts time.Time) string {
	return fmt.Sprintf("%s|%s", userID, ts.UTC().Format("2006-01-02"))
}

func (m *memDailyStore) Increment(_ context.Context, userID uuid.UUID, ts time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dailyKey(userID, ts)
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memDailyStore) Get(_ context.Context, userID uuid.UUID, ts time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[dailyKey(userID, ts)], nil
}
