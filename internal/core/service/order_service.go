package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/metrics"
	"github.com/rl1809/storefront/internal/port"
)

type EmailSource interface {
	Email(ctx context.Context) string
}

// OrderService turns a cart into an order record. The order list is
// append-only and lives for the lifetime of the process.
type OrderService struct {
	api      port.OrderAPI
	cart     *CartStore
	sessions EmailSource
	log      logrus.FieldLogger
	busy     busy

	now    func() time.Time
	newKey func() string

	mu     sync.RWMutex
	orders []domain.Order
	lastID int64
}

func NewOrderService(api port.OrderAPI, cart *CartStore, sessions EmailSource, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		api:      api,
		cart:     cart,
		sessions: sessions,
		log:      log,
		now:      time.Now,
		newKey:   func() string { return uuid.NewString() },
	}
}

// Checkout submits the current cart to the backend, records the order and
// clears the cart. On failure the cart and order list are left untouched and
// the returned error is a *domain.UserError fit for display.
func (s *OrderService) Checkout(ctx context.Context) (domain.Order, error) {
	done := s.busy.enter()
	defer done()

	items := s.cart.Items()
	if len(items) == 0 {
		return domain.Order{}, &domain.UserError{Message: "your cart is empty", Err: ErrEmptyCart}
	}

	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.OrderLine{Name: item.Name, Quantity: item.Quantity})
	}
	total := domain.CartTotal(items)
	key := s.newKey()

	receipt, err := s.api.CreateOrder(ctx, lines, key)
	if err != nil {
		s.log.WithError(err).WithField("idempotency_key", key).Error("order submission failed")
		metrics.RecordCheckout(false)
		return domain.Order{}, userMessage(err, "order failed")
	}

	order := s.record(ctx, items, total, receipt)
	s.cart.ClearCart()
	metrics.RecordCheckout(true)

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "total": order.Total}).Info("order placed")
	return order, nil
}

// CreateOrder appends a local order record for the given snapshot.
func (s *OrderService) CreateOrder(ctx context.Context, snapshot []domain.LineItem, total int64) domain.Order {
	done := s.busy.enter()
	defer done()
	return s.record(ctx, snapshot, total, nil)
}

func (s *OrderService) record(ctx context.Context, snapshot []domain.LineItem, total int64, receipt json.RawMessage) domain.Order {
	cart := make([]domain.LineItem, len(snapshot))
	copy(cart, snapshot)

	email := s.sessions.Email(ctx)
	createdAt := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := createdAt.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	order := domain.Order{
		ID:        id,
		Email:     email,
		Cart:      cart,
		Total:     total,
		CreatedAt: createdAt,
		Receipt:   receipt,
	}
	s.orders = append(s.orders, order)
	return order
}

// Orders returns the local order history in the order it was created.
func (s *OrderService) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *OrderService) Busy() bool {
	return s.busy.active()
}
