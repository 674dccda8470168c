//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/security"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

const (
	testKeyID         = "rzp_test_key"
	testKeySecret     = "key_secret_for_tests"
	testWebhookSecret = "webhook_secret_for_tests"
)

func signProof(orderID, paymentID string) string {
	return security.Sign(security.PaymentMessage(orderID, paymentID), testKeySecret)
}

// =============================
// Repositories
// =============================

// ---- Purchases ----

type MockPurchaseRepo struct {
	mu    sync.Mutex
	rows  map[string]*model.Purchase // by order id
	Calls int

	InsertFunc func(ctx context.Context, tx repository.Tx, p *model.Purchase) (bool, error)
}

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{rows: map[string]*model.Purchase{}}
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

// Insert mirrors the two unique constraints on purchases.
func (m *MockPurchaseRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Purchase) (bool, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.rows[p.OrderID]; ok {
		return false, nil
	}
	for _, r := range m.rows {
		if r.UserID == p.UserID && r.NoteID == p.NoteID && r.Status == model.PurchaseStatusCompleted {
			return false, nil
		}
	}
	cp := *p
	m.rows[p.OrderID] = &cp
	return true, nil
}

func (m *MockPurchaseRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockPurchaseRepo) ExistsCompleted(ctx context.Context, tx repository.Tx, userID, noteID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.NoteID == noteID && r.Status == model.PurchaseStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPurchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Purchase{}
	for _, r := range m.rows {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPurchaseRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// ---- Subscriptions ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Subscription // by order id

	CreatePendingFunc func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	ActivateFunc      func(ctx context.Context, tx repository.Tx, a model.Activation) (bool, error)
	FindInForceFunc   func(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error)
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{rows: map[string]*model.Subscription{}}
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func (m *MockSubscriptionRepo) CreatePending(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.CreatePendingFunc != nil {
		return m.CreatePendingFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.OrderID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *s
	m.rows[s.OrderID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) Activate(ctx context.Context, tx repository.Tx, a model.Activation) (bool, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[a.OrderID]
	if !ok || r.Status != model.SubscriptionStatusPending {
		return false, nil
	}
	pay := a.PaymentID
	r.Status = model.SubscriptionStatusActive
	r.StartDate, r.EndDate = a.StartDate, a.EndDate
	r.PaymentID = &pay
	return true, nil
}

func (m *MockSubscriptionRepo) InsertActive(ctx context.Context, tx repository.Tx, s *model.Subscription) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.OrderID]; ok {
		return false, nil
	}
	cp := *s
	m.rows[s.OrderID] = &cp
	return true, nil
}

func (m *MockSubscriptionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindInForce(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error) {
	if m.FindInForceFunc != nil {
		return m.FindInForceFunc(ctx, tx, userID, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.InForce(now) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) Get(orderID string) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[orderID]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// ---- Catalog ----

type MockNoteRepo struct {
	mu           sync.Mutex
	notes        map[string]*model.Note
	refs         map[string]string
	AssetRefHits int
}

func NewMockNoteRepo() *MockNoteRepo {
	return &MockNoteRepo{notes: map[string]*model.Note{}, refs: map[string]string{}}
}

var _ repository.NoteRepository = (*MockNoteRepo)(nil)

func (m *MockNoteRepo) Add(n *model.Note, fileRef string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = n
	if fileRef != "" {
		m.refs[n.ID] = fileRef
	}
}

func (m *MockNoteRepo) FindPublic(ctx context.Context, tx repository.Tx, id string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *MockNoteRepo) FindAssetRef(ctx context.Context, tx repository.Tx, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssetRefHits++
	r, ok := m.refs[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return r, nil
}

type MockProfileRepo struct {
	profiles map[string]*model.Profile
	Err      error
}

func NewMockProfileRepo(admins ...string) *MockProfileRepo {
	m := &MockProfileRepo{profiles: map[string]*model.Profile{}}
	for _, id := range admins {
		m.profiles[id] = &model.Profile{ID: id, Role: model.RoleAdmin}
	}
	return m
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func (m *MockProfileRepo) FindByID(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

type MockAppConfigRepo struct {
	mu     sync.Mutex
	values map[string]string
	GetErr error
}

func NewMockAppConfigRepo() *MockAppConfigRepo {
	return &MockAppConfigRepo{values: map[string]string{}}
}

var _ repository.AppConfigRepository = (*MockAppConfigRepo)(nil)

func (m *MockAppConfigRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *MockAppConfigRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// ---- Transactions ----

// MockTxManager runs fn immediately with NoTX unless WithTxFunc is set.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

type MockGateway struct {
	mu       sync.Mutex
	seq      int
	orders   map[string]*model.Order
	Requests []adapter.OrderRequest

	CreateOrderFunc func(ctx context.Context, req adapter.OrderRequest) (*model.Order, error)
	FetchOrderFunc  func(ctx context.Context, orderID string) (*model.Order, error)
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreateOrder(ctx context.Context, req adapter.OrderRequest) (*model.Order, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.seq++
	seq := m.seq
	m.mu.Unlock()
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	o := &model.Order{
		ID:       fmt.Sprintf("order_test%d", seq),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	m.Seed(o)
	return o, nil
}

// Seed stores an order as if it had been created and paid at the gateway.
func (m *MockGateway) Seed(o *model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orders == nil {
		m.orders = make(map[string]*model.Order)
	}
	cp := *o
	m.orders[o.ID] = &cp
}

func (m *MockGateway) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if m.FetchOrderFunc != nil {
		return m.FetchOrderFunc(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type MockSigner struct {
	PresignGetFunc func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

var _ adapter.AssetSigner = (*MockSigner)(nil)

func (m *MockSigner) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if m.PresignGetFunc != nil {
		return m.PresignGetFunc(ctx, bucket, key, ttl)
	}
	return fmt.Sprintf("https://signed.test/%s/%s?ttl=%d", bucket, key, int(ttl.Seconds())), nil
}

type MockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

var _ adapter.RateLimiter = (*MockLimiter)(nil)

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.AllowFunc(ctx, key, limit, window)
}
