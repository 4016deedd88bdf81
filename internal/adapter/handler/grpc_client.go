package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// CartClient calls a CartService over an established connection.
type CartClient struct {
	conn grpc.ClientConnInterface
}

func NewCartClient(conn grpc.ClientConnInterface) *CartClient {
	return &CartClient{conn: conn}
}

// DialCart opens a plaintext connection that speaks the cart codec.
func DialCart(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	return grpc.NewClient(target, opts...)
}

func (c *CartClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.conn.Invoke(ctx, "/"+CartServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName))
}

func (c *CartClient) AddItem(ctx context.Context, in *AddItemRequest) (*AddItemResponse, error) {
	out := new(AddItemResponse)
	if err := c.invoke(ctx, "AddItem", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "UpdateQuantity", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) Increase(ctx context.Context, id int64) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "Increase", &ItemRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) Decrease(ctx context.Context, id int64) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "Decrease", &ItemRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) RemoveItem(ctx context.Context, id int64) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "RemoveItem", &ItemRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) ClearCart(ctx context.Context) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "ClearCart", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) ListItems(ctx context.Context) (*CartResponse, error) {
	out := new(CartResponse)
	if err := c.invoke(ctx, "ListItems", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) Checkout(ctx context.Context) (*CheckoutResponse, error) {
	out := new(CheckoutResponse)
	if err := c.invoke(ctx, "Checkout", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}
