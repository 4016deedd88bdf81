package domain

import (
	"encoding/json"
	"time"
)

// Order is the local record of a completed checkout. It is never mutated
// after creation.
type Order struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Cart      []LineItem      `json:"cart"`
	Total     int64           `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	Receipt   json.RawMessage `json:"receipt,omitempty"`
}

// OrderLine is the shape the backend accepts when creating an order.
type OrderLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// RemoteOrder is an order as listed by the backend.
type RemoteOrder struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	Cart      []RemoteOrderLine `json:"cart"`
	Total     int64             `json:"total"`
	CreatedAt time.Time         `json:"createdAt"`
}

type RemoteOrderLine struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type OrderQuery struct {
	SortBy   string `validate:"omitempty,oneof=total createdAt"`
	OrderBy  string `validate:"omitempty,oneof=asc desc"`
	MinTotal int64  `validate:"gte=0"`
	MaxTotal int64  `validate:"gte=0"`
	Page
}

type OrderPage struct {
	Orders []RemoteOrder `json:"orders"`
	Total  int           `json:"total"`
}

// UserOrders is the admin view of orders grouped by customer.
type UserOrders struct {
	Email string `json:"email"`
	Cart  int    `json:"cart"`
	Total int64  `json:"total"`
}

type UserOrdersPage struct {
	Result []UserOrders `json:"result"`
	Total  int          `json:"total"`
}
