package service

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/metrics"
)

// CartStore owns the in-memory cart. Items are kept newest first and every
// item has quantity >= 1.
type CartStore struct {
	log  logrus.FieldLogger
	busy busy

	mu     sync.RWMutex
	items  []domain.LineItem
	nextID int64
}

func NewCartStore(log logrus.FieldLogger) *CartStore {
	return &CartStore{log: log, nextID: 1}
}

// AddItem never merges with an existing item of the same name.
func (c *CartStore) AddItem(candidate domain.ItemCandidate) domain.LineItem {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	item := c.addLocked(candidate)
	c.mu.Unlock()

	metrics.RecordCartMutation("add")
	c.log.WithFields(logrus.Fields{"id": item.ID, "name": item.Name}).Debug("item added")
	return item
}

// IncreaseOrAdd bumps the line named like the candidate by one, or adds the
// candidate when no such line exists.
func (c *CartStore) IncreaseOrAdd(candidate domain.ItemCandidate) domain.LineItem {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Name == candidate.Name {
			c.items[i].Quantity++
			item := c.items[i]
			c.mu.Unlock()

			metrics.RecordCartMutation("update")
			return item
		}
	}
	item := c.addLocked(candidate)
	c.mu.Unlock()

	metrics.RecordCartMutation("add")
	c.log.WithFields(logrus.Fields{"id": item.ID, "name": item.Name}).Debug("item added")
	return item
}

func (c *CartStore) addLocked(candidate domain.ItemCandidate) domain.LineItem {
	quantity := candidate.Quantity
	if quantity < 1 {
		quantity = 1
	}

	item := domain.LineItem{
		ID:        c.nextID,
		Name:      candidate.Name,
		Picture:   candidate.Picture,
		UnitPrice: candidate.UnitPrice,
		Quantity:  quantity,
	}
	c.nextID++
	c.items = append([]domain.LineItem{item}, c.items...)
	return item
}

// UpdateQuantity sets the quantity of item id. A quantity below 1 removes the
// item. Unknown ids are ignored.
func (c *CartStore) UpdateQuantity(id int64, quantity int) {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		c.removeLocked(id)
		metrics.RecordCartMutation("remove")
		return
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = quantity
			break
		}
	}
	metrics.RecordCartMutation("update")
}

func (c *CartStore) Increase(id int64) {
	c.adjust(id, 1)
}

// Decrease lowers the quantity by one, removing the item when it was 1.
func (c *CartStore) Decrease(id int64) {
	c.adjust(id, -1)
}

func (c *CartStore) adjust(id int64, delta int) {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		quantity := c.items[i].Quantity + delta
		if quantity < 1 {
			c.removeLocked(id)
			metrics.RecordCartMutation("remove")
			return
		}
		c.items[i].Quantity = quantity
		metrics.RecordCartMutation("update")
		return
	}
}

func (c *CartStore) RemoveItem(id int64) {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	c.removeLocked(id)
	c.mu.Unlock()

	metrics.RecordCartMutation("remove")
}

func (c *CartStore) ClearCart() {
	done := c.busy.enter()
	defer done()

	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	metrics.RecordCartMutation("clear")
}

// Items returns a copy of the cart, newest first.
func (c *CartStore) Items() []domain.LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CartStore) Find(id int64) (domain.LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

func (c *CartStore) FindByName(name string) (domain.LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.Name == name {
			return item, true
		}
	}
	return domain.LineItem{}, false
}

func (c *CartStore) Busy() bool {
	return c.busy.active()
}

func (c *CartStore) removeLocked(id int64) {
	kept := c.items[:0:0]
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
}
