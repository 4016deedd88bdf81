package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const (
	defaultLimit = 10
	homeLimit    = 6
)

type ProductListing struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type CatalogService struct {
	api  port.CatalogAPI
	cart *CartStore
	log  logrus.FieldLogger
}

func NewCatalogService(api port.CatalogAPI, cart *CartStore, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{api: api, cart: cart, log: log}
}

func (c *CatalogService) ListProducts(ctx context.Context, q domain.ProductQuery) (ProductListing, error) {
	q.Page = normalizePage(q.Page)
	if err := validateInput(q); err != nil {
		return ProductListing{}, err
	}

	page, err := c.api.ListProducts(ctx, q)
	if err != nil {
		c.log.WithError(err).Error("fetch products failed")
		return ProductListing{}, userMessage(err, "failed to fetch products")
	}
	return listing(page, q.Page), nil
}

// Home returns the first products for the landing page. Failures yield an
// empty list.
func (c *CatalogService) Home(ctx context.Context) []domain.Product {
	page, err := c.api.ListProducts(ctx, domain.ProductQuery{Page: domain.Page{Limit: homeLimit, Number: 1}})
	if err != nil {
		c.log.WithError(err).Warn("fetch home products failed")
		return []domain.Product{}
	}
	if page.Products == nil {
		return []domain.Product{}
	}
	return page.Products
}

// AddToCart adds one unit of the product, or bumps the quantity when a line
// for it is already in the cart.
func (c *CatalogService) AddToCart(p domain.Product) domain.LineItem {
	return c.cart.IncreaseOrAdd(p.Candidate())
}

func (c *CatalogService) ListDeleted(ctx context.Context, q domain.ProductQuery) (ProductListing, error) {
	q.Page = normalizePage(q.Page)
	if err := validateInput(q); err != nil {
		return ProductListing{}, err
	}

	page, err := c.api.ListDeleted(ctx, q)
	if err != nil {
		c.log.WithError(err).Error("fetch deleted products failed")
		return ProductListing{}, userMessage(err, "failed to fetch deleted products")
	}
	return listing(page, q.Page), nil
}

func (c *CatalogService) AddProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := validateInput(in); err != nil {
		return domain.Product{}, err
	}
	p, err := c.api.AddProduct(ctx, in)
	if err != nil {
		c.log.WithError(err).WithField("name", in.Name).Error("add product failed")
		return domain.Product{}, userMessage(err, "failed to add product")
	}
	return p, nil
}

func (c *CatalogService) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if err := c.api.UpdateProduct(ctx, id, in); err != nil {
		c.log.WithError(err).WithField("product_id", id).Error("update product failed")
		return userMessage(err, "failed to update product")
	}
	return nil
}

func (c *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.api.DeleteProduct(ctx, id); err != nil {
		c.log.WithError(err).WithField("product_id", id).Error("delete product failed")
		return userMessage(err, "failed to delete product")
	}
	return nil
}

func (c *CatalogService) RestoreProduct(ctx context.Context, id int64) error {
	if err := c.api.RestoreProduct(ctx, id); err != nil {
		c.log.WithError(err).WithField("product_id", id).Error("restore product failed")
		return userMessage(err, "failed to restore product")
	}
	return nil
}

func normalizePage(p domain.Page) domain.Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Number <= 0 {
		p.Number = 1
	}
	return p
}

func listing(page domain.ProductPage, p domain.Page) ProductListing {
	products := page.Products
	if products == nil {
		products = []domain.Product{}
	}
	return ProductListing{
		Products: products,
		Total:    page.Total,
		Page:     p.Number,
		Pages:    domain.PageCount(page.Total, p.Limit),
	}
}
