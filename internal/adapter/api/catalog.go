package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/core/domain"
)

func productQuery(q domain.ProductQuery) url.Values {
	v := url.Values{}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.OrderBy != "" {
		v.Set("orderBy", q.OrderBy)
	}
	if q.MinPrice > 0 {
		v.Set("minPrice", fmt.Sprint(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		v.Set("maxPrice", fmt.Sprint(q.MaxPrice))
	}
	pageQuery(v, q.Page)
	return v
}

func (c *Client) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	var resp struct {
		Products struct {
			FullProducts []domain.Product `json:"fullProducts"`
			Total        int              `json:"total"`
		} `json:"products"`
	}
	req := request{endpoint: "product.list", method: http.MethodGet, path: "/product/", query: productQuery(q)}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.ProductPage{}, err
	}
	return domain.ProductPage{Products: resp.Products.FullProducts, Total: resp.Products.Total}, nil
}

func (c *Client) ListDeleted(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	var resp struct {
		Products struct {
			DeletedProducts []domain.Product `json:"deletedProducts"`
			Total           int              `json:"total"`
		} `json:"products"`
	}
	req := request{endpoint: "product.deleted", method: http.MethodGet, path: "/product/deleted", query: productQuery(q)}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.ProductPage{}, err
	}
	return domain.ProductPage{Products: resp.Products.DeletedProducts, Total: resp.Products.Total}, nil
}

func productForm(endpoint, method, path string, in domain.ProductInput) (request, error) {
	return multipartRequest(endpoint, method, path,
		[][2]string{
			{"name", in.Name},
			{"description", in.Description},
			{"price", fmt.Sprint(in.Price)},
			{"stocks", fmt.Sprint(in.Stocks)},
		},
		formFile{field: "picture", name: in.PictureName, data: in.Picture},
	)
}

// AddProduct accepts either {"product": {...}} or the bare product.
func (c *Client) AddProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	req, err := productForm("product.add", http.MethodPost, "/product/add", in)
	if err != nil {
		return domain.Product{}, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, req, &raw); err != nil {
		return domain.Product{}, err
	}
	if len(raw) == 0 {
		return domain.Product{Name: in.Name, Description: in.Description, Price: in.Price, Stocks: in.Stocks}, nil
	}

	var wrapped struct {
		Product *domain.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		return *wrapped.Product, nil
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product.add response: %w", err)
	}
	return p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) error {
	req, err := productForm("product.update", http.MethodPut, fmt.Sprintf("/product/%d/update", id), in)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	req := request{endpoint: "product.delete", method: http.MethodDelete, path: fmt.Sprintf("/product/%d/delete", id)}
	return c.do(ctx, req, nil)
}

func (c *Client) RestoreProduct(ctx context.Context, id int64) error {
	req := request{endpoint: "product.restore", method: http.MethodPatch, path: fmt.Sprintf("/product/%d/restore", id)}
	return c.do(ctx, req, nil)
}
