package port

import (
	"context"
	"encoding/json"

	"github.com/rl1809/storefront/internal/core/domain"
)

type AuthAPI interface {
	// Login exchanges credentials for a session descriptor
	Login(ctx context.Context, creds domain.Credentials) (domain.SessionDescriptor, error)

	// Register creates a new customer account
	Register(ctx context.Context, reg domain.Registration) error
}

type OrderAPI interface {
	// CreateOrder submits the cart lines and returns the backend's order representation
	CreateOrder(ctx context.Context, lines []domain.OrderLine, idempotencyKey string) (json.RawMessage, error)

	MyOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error)

	AllOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error)

	OrdersByUser(ctx context.Context, p domain.Page) (domain.UserOrdersPage, error)
}

type CatalogAPI interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)

	ListDeleted(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)

	AddProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)

	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) error

	// DeleteProduct soft-deletes; RestoreProduct undoes it
	DeleteProduct(ctx context.Context, id int64) error

	RestoreProduct(ctx context.Context, id int64) error
}

type PointsAPI interface {
	Balance(ctx context.Context) (int64, error)

	// Transfer moves points and returns the backend message and the sender's new balance
	Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error)
}
