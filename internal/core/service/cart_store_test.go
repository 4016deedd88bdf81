package service

import (
	"reflect"
	"sync"
	"testing"

	"github.com/rl1809/storefront/internal/core/domain"
)

func candidate(name string, price int64, qty int) domain.ItemCandidate {
	return domain.ItemCandidate{Name: name, Picture: "http://img/" + name, UnitPrice: price, Quantity: qty}
}

func TestAddItem_NewestFirstWithIncreasingIDs(t *testing.T) {
	cart := NewCartStore(testLog)

	names := []string{"A", "B", "C", "D"}
	for _, n := range names {
		cart.AddItem(candidate(n, 100, 1))
	}

	items := cart.Items()
	if len(items) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(items))
	}
	for i, item := range items {
		want := names[len(names)-1-i]
		if item.Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, item.Name)
		}
		if i > 0 && item.ID >= items[i-1].ID {
			t.Errorf("ids not strictly decreasing from head: %d then %d", items[i-1].ID, item.ID)
		}
	}
	if items[len(items)-1].ID != 1 {
		t.Errorf("expected first id to be 1, got %d", items[len(items)-1].ID)
	}
}

func TestAddItem_SameNameIsNotMerged(t *testing.T) {
	cart := NewCartStore(testLog)
	first := cart.AddItem(candidate("A", 100, 1))
	second := cart.AddItem(candidate("A", 100, 1))

	if first.ID == second.ID {
		t.Error("expected distinct ids")
	}
	if len(cart.Items()) != 2 {
		t.Errorf("expected 2 line items, got %d", len(cart.Items()))
	}
}

func TestAddItem_ZeroQuantityStoredAsOne(t *testing.T) {
	cart := NewCartStore(testLog)
	item := cart.AddItem(candidate("A", 100, 0))
	if item.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", item.Quantity)
	}
}

func TestUpdateQuantity_UnknownIDIsNoop(t *testing.T) {
	cart := NewCartStore(testLog)
	cart.AddItem(candidate("A", 100, 1))
	cart.AddItem(candidate("B", 200, 3))

	before := cart.Items()
	cart.UpdateQuantity(42, 7)
	after := cart.Items()

	if !reflect.DeepEqual(before, after) {
		t.Errorf("cart changed: %+v -> %+v", before, after)
	}
}

func TestUpdateQuantity_ReplacesQuantity(t *testing.T) {
	cart := NewCartStore(testLog)
	item := cart.AddItem(candidate("A", 100, 1))

	cart.UpdateQuantity(item.ID, 5)

	got, ok := cart.Find(item.ID)
	if !ok || got.Quantity != 5 {
		t.Errorf("expected quantity 5, got %+v", got)
	}
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	cart := NewCartStore(testLog)
	item := cart.AddItem(candidate("A", 100, 2))

	cart.UpdateQuantity(item.ID, 0)

	if _, ok := cart.Find(item.ID); ok {
		t.Error("expected item to be removed")
	}
}

func TestRemoveItem_Idempotent(t *testing.T) {
	cart := NewCartStore(testLog)
	a := cart.AddItem(candidate("A", 100, 1))
	cart.AddItem(candidate("B", 100, 1))

	cart.RemoveItem(a.ID)
	once := cart.Items()
	cart.RemoveItem(a.ID)
	twice := cart.Items()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second remove changed cart: %+v -> %+v", once, twice)
	}
	if len(twice) != 1 || twice[0].Name != "B" {
		t.Errorf("unexpected cart: %+v", twice)
	}
}

func TestClearCart_ThenAdd(t *testing.T) {
	cart := NewCartStore(testLog)
	cart.AddItem(candidate("A", 100, 1))
	cart.AddItem(candidate("B", 100, 1))

	cart.ClearCart()
	x := cart.AddItem(candidate("X", 300, 1))

	items := cart.Items()
	if len(items) != 1 || items[0] != x {
		t.Errorf("expected singleton cart with X, got %+v", items)
	}
	if x.ID != 3 {
		t.Errorf("expected counter to keep running after clear, got id %d", x.ID)
	}
}

func TestDecrease_FromOneRemoves(t *testing.T) {
	cart := NewCartStore(testLog)
	item := cart.AddItem(candidate("A", 100, 2))

	cart.Decrease(item.ID)
	got, _ := cart.Find(item.ID)
	if got.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", got.Quantity)
	}

	cart.Decrease(item.ID)
	if _, ok := cart.Find(item.ID); ok {
		t.Error("expected item removed after decreasing from 1")
	}
	for _, it := range cart.Items() {
		if it.Quantity < 1 {
			t.Errorf("found item with quantity %d", it.Quantity)
		}
	}
}

func TestIncrease(t *testing.T) {
	cart := NewCartStore(testLog)
	item := cart.AddItem(candidate("A", 100, 1))
	cart.Increase(item.ID)
	cart.Increase(item.ID)

	got, _ := cart.Find(item.ID)
	if got.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", got.Quantity)
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	cart := NewCartStore(testLog)
	cart.AddItem(candidate("A", 100, 1))

	items := cart.Items()
	items[0].Quantity = 50

	if got := cart.Items()[0].Quantity; got != 1 {
		t.Errorf("store mutated through snapshot, quantity %d", got)
	}
}

func TestCartTotals_Scenario(t *testing.T) {
	cart := NewCartStore(testLog)
	cart.AddItem(candidate("A", 1000, 2))
	cart.AddItem(candidate("B", 500, 1))

	items := cart.Items()
	if total := domain.CartTotal(items); total != 2500 {
		t.Errorf("expected total 2500, got %d", total)
	}
	if count := domain.CartCount(items); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestAddItem_ConcurrentUniqueIDs(t *testing.T) {
	cart := NewCartStore(testLog)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart.AddItem(candidate("A", 100, 1))
		}()
	}
	wg.Wait()

	items := cart.Items()
	if len(items) != 50 {
		t.Fatalf("expected 50 items, got %d", len(items))
	}
	seen := make(map[int64]bool)
	for i, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate id %d", it.ID)
		}
		seen[it.ID] = true
		if i > 0 && it.ID >= items[i-1].ID {
			t.Errorf("order broken at %d", i)
		}
	}
	if cart.Busy() {
		t.Error("expected busy flag to settle")
	}
}

func TestIncreaseOrAdd(t *testing.T) {
	cart := NewCartStore(testLog)

	first := cart.IncreaseOrAdd(candidate("A", 100, 1))
	second := cart.IncreaseOrAdd(candidate("A", 100, 1))
	other := cart.IncreaseOrAdd(candidate("B", 200, 1))

	if second.ID != first.ID || second.Quantity != 2 {
		t.Errorf("expected same line bumped to 2, got %+v", second)
	}
	if other.ID == first.ID || other.Quantity != 1 {
		t.Errorf("expected new line for B, got %+v", other)
	}
	if len(cart.Items()) != 2 {
		t.Errorf("expected 2 lines, got %d", len(cart.Items()))
	}
}

func TestIncreaseOrAdd_ConcurrentRemove(t *testing.T) {
	cart := NewCartStore(testLog)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if item := cart.IncreaseOrAdd(candidate("A", 100, 1)); item.ID == 0 || item.Quantity < 1 {
				t.Errorf("got an empty line item: %+v", item)
			}
		}()
		go func() {
			defer wg.Done()
			if item, ok := cart.FindByName("A"); ok {
				cart.RemoveItem(item.ID)
			}
		}()
	}
	wg.Wait()
}
