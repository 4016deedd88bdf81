package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/logging"
	"github.com/rl1809/storefront/internal/port"
)

var testLog = logging.Discard()

// Mock KeyValueStore
type mockKV struct {
	mu        sync.Mutex
	data      map[string][]byte
	getErr    error
	deleteErr error
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, port.ErrNotFound
	}
	return v, nil
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.data, key)
	return nil
}

func (m *mockKV) Close() error { return nil }

func (m *mockKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func putSession(kv *mockKV, desc domain.SessionDescriptor) {
	data, _ := json.Marshal(desc)
	kv.data[port.KeySession] = data
}

// Mock OrderAPI
type mockOrderAPI struct {
	mu       sync.Mutex
	err      error
	receipt  json.RawMessage
	lines    [][]domain.OrderLine
	keys     []string
	myOrders domain.OrderPage
	all      domain.OrderPage
	byUser   domain.UserOrdersPage
	lastQ    domain.OrderQuery

	// entered and release, when set, park CreateOrder until the test lets it go
	entered chan struct{}
	release chan struct{}
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, lines []domain.OrderLine, key string) (json.RawMessage, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.lines = append(m.lines, lines)
	m.keys = append(m.keys, key)
	return m.receipt, nil
}

func (m *mockOrderAPI) MyOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error) {
	m.lastQ = q
	return m.myOrders, m.err
}

func (m *mockOrderAPI) AllOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error) {
	m.lastQ = q
	return m.all, m.err
}

func (m *mockOrderAPI) OrdersByUser(ctx context.Context, p domain.Page) (domain.UserOrdersPage, error) {
	return m.byUser, m.err
}

// Mock AuthAPI
type mockAuthAPI struct {
	desc       domain.SessionDescriptor
	err        error
	registered []domain.Registration
}

func (m *mockAuthAPI) Login(ctx context.Context, creds domain.Credentials) (domain.SessionDescriptor, error) {
	return m.desc, m.err
}

func (m *mockAuthAPI) Register(ctx context.Context, reg domain.Registration) error {
	if m.err != nil {
		return m.err
	}
	m.registered = append(m.registered, reg)
	return nil
}

// Mock CatalogAPI
type mockCatalogAPI struct {
	page     domain.ProductPage
	deleted  domain.ProductPage
	err      error
	lastQ    domain.ProductQuery
	deletes  []int64
	restores []int64
	updates  map[int64]domain.ProductInput
}

func (m *mockCatalogAPI) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	m.lastQ = q
	return m.page, m.err
}

func (m *mockCatalogAPI) ListDeleted(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	m.lastQ = q
	return m.deleted, m.err
}

func (m *mockCatalogAPI) AddProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	return domain.Product{ID: 99, Name: in.Name, Price: in.Price, Stocks: in.Stocks}, nil
}

func (m *mockCatalogAPI) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) error {
	if m.err != nil {
		return m.err
	}
	if m.updates == nil {
		m.updates = make(map[int64]domain.ProductInput)
	}
	m.updates[id] = in
	return nil
}

func (m *mockCatalogAPI) DeleteProduct(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockCatalogAPI) RestoreProduct(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.restores = append(m.restores, id)
	return nil
}

// Mock PointsAPI
type mockPointsAPI struct {
	balance int64
	result  domain.TransferResult
	err     error
	sent    []domain.TransferRequest
}

func (m *mockPointsAPI) Balance(ctx context.Context) (int64, error) {
	return m.balance, m.err
}

func (m *mockPointsAPI) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if m.err != nil {
		return domain.TransferResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return m.result, nil
}

var errBackendDown = errors.New("backend down")
