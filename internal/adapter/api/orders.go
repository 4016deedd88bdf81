package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (c *Client) CreateOrder(ctx context.Context, lines []domain.OrderLine, idempotencyKey string) (json.RawMessage, error) {
	req, err := c.jsonRequest("order.add", http.MethodPost, "/order/add", map[string]interface{}{"cart": lines})
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		req.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var receipt json.RawMessage
	if err := c.do(ctx, req, &receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func orderQuery(q domain.OrderQuery) url.Values {
	v := url.Values{}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.OrderBy != "" {
		v.Set("orderBy", q.OrderBy)
	}
	if q.MinTotal > 0 {
		v.Set("minTotal", fmt.Sprint(q.MinTotal))
	}
	if q.MaxTotal > 0 {
		v.Set("maxTotal", fmt.Sprint(q.MaxTotal))
	}
	pageQuery(v, q.Page)
	return v
}

func (c *Client) listOrders(ctx context.Context, endpoint, path string, q domain.OrderQuery) (domain.OrderPage, error) {
	var resp struct {
		Orders domain.OrderPage `json:"orders"`
	}
	req := request{endpoint: endpoint, method: http.MethodGet, path: path, query: orderQuery(q)}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.OrderPage{}, err
	}
	return resp.Orders, nil
}

func (c *Client) MyOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error) {
	return c.listOrders(ctx, "order.mine", "/order/my-orders", q)
}

func (c *Client) AllOrders(ctx context.Context, q domain.OrderQuery) (domain.OrderPage, error) {
	return c.listOrders(ctx, "order.all", "/order", q)
}

func (c *Client) OrdersByUser(ctx context.Context, p domain.Page) (domain.UserOrdersPage, error) {
	var resp struct {
		Orders domain.UserOrdersPage `json:"orders"`
	}
	v := url.Values{}
	pageQuery(v, p)
	req := request{endpoint: "order.by_user", method: http.MethodGet, path: "/order/group-by-user", query: v}
	if err := c.do(ctx, req, &resp); err != nil {
		return domain.UserOrdersPage{}, err
	}
	return resp.Orders, nil
}
