package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type PricedLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

type PricedOrder struct {
	domain.RemoteOrder
	Lines []PricedLine `json:"lines"`
}

type OrderListing struct {
	Orders []PricedOrder `json:"orders"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
}

type UserOrdersListing struct {
	Result []domain.UserOrders `json:"result"`
	Total  int                 `json:"total"`
	Page   int                 `json:"page"`
	Pages  int                 `json:"pages"`
}

// HistoryService reads order history kept by the backend.
type HistoryService struct {
	orders  port.OrderAPI
	catalog port.CatalogAPI
	log     logrus.FieldLogger
}

func NewHistoryService(orders port.OrderAPI, catalog port.CatalogAPI, log logrus.FieldLogger) *HistoryService {
	return &HistoryService{orders: orders, catalog: catalog, log: log}
}

// MyOrders lists the customer's orders, pricing each line from the current
// catalog by product name.
func (h *HistoryService) MyOrders(ctx context.Context, q domain.OrderQuery) (OrderListing, error) {
	q.Page = normalizePage(q.Page)
	if err := validateInput(q); err != nil {
		return OrderListing{}, err
	}

	page, err := h.orders.MyOrders(ctx, q)
	if err != nil {
		h.log.WithError(err).Error("fetch my orders failed")
		return OrderListing{}, userMessage(err, "failed to fetch orders")
	}

	var products []domain.Product
	catalog, err := h.catalog.ListProducts(ctx, domain.ProductQuery{})
	if err != nil {
		h.log.WithError(err).Warn("fetch products for pricing failed")
	} else {
		products = catalog.Products
	}

	return orderListing(page, q.Page, products), nil
}

func (h *HistoryService) AllOrders(ctx context.Context, q domain.OrderQuery) (OrderListing, error) {
	q.Page = normalizePage(q.Page)
	if err := validateInput(q); err != nil {
		return OrderListing{}, err
	}

	page, err := h.orders.AllOrders(ctx, q)
	if err != nil {
		h.log.WithError(err).Error("fetch orders failed")
		return OrderListing{}, userMessage(err, "failed to fetch orders")
	}
	return orderListing(page, q.Page, nil), nil
}

func (h *HistoryService) OrdersByUser(ctx context.Context, p domain.Page) (UserOrdersListing, error) {
	p = normalizePage(p)

	page, err := h.orders.OrdersByUser(ctx, p)
	if err != nil {
		h.log.WithError(err).Error("fetch orders by user failed")
		return UserOrdersListing{}, userMessage(err, "failed to fetch orders")
	}

	result := page.Result
	if result == nil {
		result = []domain.UserOrders{}
	}
	return UserOrdersListing{
		Result: result,
		Total:  page.Total,
		Page:   p.Number,
		Pages:  domain.PageCount(page.Total, p.Limit),
	}, nil
}

func orderListing(page domain.OrderPage, p domain.Page, products []domain.Product) OrderListing {
	prices := make(map[string]int64, len(products))
	for _, prod := range products {
		prices[prod.Name] = prod.Price
	}

	orders := make([]PricedOrder, 0, len(page.Orders))
	for _, o := range page.Orders {
		lines := make([]PricedLine, 0, len(o.Cart))
		for _, l := range o.Cart {
			lines = append(lines, PricedLine{
				Name:     l.Name,
				Quantity: l.Quantity,
				Subtotal: prices[l.Name] * int64(l.Quantity),
			})
		}
		orders = append(orders, PricedOrder{RemoteOrder: o, Lines: lines})
	}

	return OrderListing{
		Orders: orders,
		Total:  page.Total,
		Page:   p.Number,
		Pages:  domain.PageCount(page.Total, p.Limit),
	}
}
