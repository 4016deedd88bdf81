package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
)

func newOrderFixture() (*OrderService, *CartStore, *mockOrderAPI, *mockKV) {
	kv := newMockKV()
	putSession(kv, domain.SessionDescriptor{Token: "tok", Role: domain.RoleUser, Email: "buyer@shop.test"})

	sessions := NewSessionStore(kv, testLog)
	cart := NewCartStore(testLog)
	api := &mockOrderAPI{receipt: json.RawMessage(`{"id":7}`)}
	return NewOrderService(api, cart, sessions, testLog), cart, api, kv
}

func TestCheckout_Success(t *testing.T) {
	svc, cart, api, _ := newOrderFixture()
	cart.AddItem(candidate("A", 1000, 2))
	cart.AddItem(candidate("B", 500, 1))

	order, err := svc.Checkout(context.Background())
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.Total != 2500 {
		t.Errorf("expected total 2500, got %d", order.Total)
	}
	if order.Email != "buyer@shop.test" {
		t.Errorf("expected buyer email, got %q", order.Email)
	}
	if len(order.Cart) != 2 || string(order.Receipt) != `{"id":7}` {
		t.Errorf("unexpected order: %+v", order)
	}
	if len(cart.Items()) != 0 {
		t.Error("expected cart cleared")
	}
	if len(svc.Orders()) != 1 {
		t.Errorf("expected 1 order, got %d", len(svc.Orders()))
	}

	want := []domain.OrderLine{{Name: "B", Quantity: 1}, {Name: "A", Quantity: 2}}
	if len(api.lines) != 1 || len(api.lines[0]) != 2 || api.lines[0][0] != want[0] || api.lines[0][1] != want[1] {
		t.Errorf("unexpected lines sent: %+v", api.lines)
	}
	if api.keys[0] == "" {
		t.Error("expected idempotency key")
	}
	if svc.Busy() {
		t.Error("expected busy flag cleared")
	}
}

func TestCheckout_RemoteFailureLeavesState(t *testing.T) {
	svc, cart, api, _ := newOrderFixture()
	api.err = &domain.UserError{Message: "stock habis"}
	cart.AddItem(candidate("A", 1000, 2))
	before := cart.Items()

	_, err := svc.Checkout(context.Background())

	var ue *domain.UserError
	if !errors.As(err, &ue) || ue.Message != "stock habis" {
		t.Errorf("expected backend message, got %v", err)
	}
	if len(svc.Orders()) != 0 {
		t.Error("expected no order recorded")
	}
	if len(cart.Items()) != len(before) {
		t.Error("expected cart untouched")
	}
	if svc.Busy() {
		t.Error("expected busy flag cleared")
	}
}

func TestCheckout_GenericFailureMessage(t *testing.T) {
	svc, cart, api, _ := newOrderFixture()
	api.err = errBackendDown
	cart.AddItem(candidate("A", 1000, 1))

	_, err := svc.Checkout(context.Background())

	var ue *domain.UserError
	if !errors.As(err, &ue) || ue.Message != "order failed" {
		t.Errorf("expected generic message, got %v", err)
	}
	if !errors.Is(err, errBackendDown) {
		t.Error("expected cause to be preserved")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, api, _ := newOrderFixture()

	_, err := svc.Checkout(context.Background())
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
	if len(api.lines) != 0 {
		t.Error("expected no remote call")
	}
}

func TestCreateOrder_UnknownEmail(t *testing.T) {
	svc, _, _, kv := newOrderFixture()
	kv.data = map[string][]byte{}

	order := svc.CreateOrder(context.Background(), []domain.LineItem{{ID: 1, Name: "A", UnitPrice: 10, Quantity: 1}}, 10)
	if order.Email != "" {
		t.Errorf("expected empty attribution, got %q", order.Email)
	}
}

func TestCreateOrder_ChronologicalUniqueIDs(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, svc.CreateOrder(context.Background(), nil, int64(i)).ID)
	}

	orders := svc.Orders()
	for i := range orders {
		if orders[i].Total != int64(i) {
			t.Errorf("order %d out of append order", i)
		}
		if i > 0 && ids[i] <= ids[i-1] {
			t.Errorf("ids not increasing: %v", ids)
		}
	}
}

func TestCreateOrder_SnapshotIsCopied(t *testing.T) {
	svc, _, _, _ := newOrderFixture()
	snapshot := []domain.LineItem{{ID: 1, Name: "A", UnitPrice: 10, Quantity: 1}}

	svc.CreateOrder(context.Background(), snapshot, 10)
	snapshot[0].Quantity = 99

	if got := svc.Orders()[0].Cart[0].Quantity; got != 1 {
		t.Errorf("order mutated through caller slice, quantity %d", got)
	}
}

func TestCreateOrder_Concurrent(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.CreateOrder(context.Background(), nil, 1)
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, o := range svc.Orders() {
		if seen[o.ID] {
			t.Errorf("duplicate order id %d", o.ID)
		}
		seen[o.ID] = true
	}
	if len(seen) != 20 {
		t.Errorf("expected 20 orders, got %d", len(seen))
	}
}

func TestCheckout_BusyWhileInFlight(t *testing.T) {
	svc, cart, api, _ := newOrderFixture()
	api.entered = make(chan struct{})
	api.release = make(chan struct{})
	cart.AddItem(candidate("A", 1000, 1))

	if svc.Busy() {
		t.Fatal("expected idle before checkout")
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(context.Background())
		done <- err
	}()

	<-api.entered
	if !svc.Busy() {
		t.Error("expected busy while the order is being submitted")
	}
	close(api.release)

	if err := <-done; err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if svc.Busy() {
		t.Error("expected busy flag cleared after checkout")
	}
	if len(svc.Orders()) != 1 || len(cart.Items()) != 0 {
		t.Errorf("expected 1 order and empty cart, got %d orders and %d items", len(svc.Orders()), len(cart.Items()))
	}
}
