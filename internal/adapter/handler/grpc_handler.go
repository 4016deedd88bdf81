package handler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const CartServiceName = "storefront.CartService"

type AddItemRequest struct {
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type ItemRequest struct {
	ID int64 `json:"id"`
}

type UpdateQuantityRequest struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type Empty struct{}

type AddItemResponse struct {
	Item domain.LineItem `json:"item"`
}

type CartResponse struct {
	Items []domain.LineItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

type CheckoutResponse struct {
	Order domain.Order `json:"order"`
}

// CartServer is the cart RPC surface.
type CartServer interface {
	AddItem(context.Context, *AddItemRequest) (*AddItemResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	Increase(context.Context, *ItemRequest) (*CartResponse, error)
	Decrease(context.Context, *ItemRequest) (*CartResponse, error)
	RemoveItem(context.Context, *ItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *Empty) (*CartResponse, error)
	ListItems(context.Context, *Empty) (*CartResponse, error)
	Checkout(context.Context, *Empty) (*CheckoutResponse, error)
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddItem", CartServer.AddItem),
		unary("UpdateQuantity", CartServer.UpdateQuantity),
		unary("Increase", CartServer.Increase),
		unary("Decrease", CartServer.Decrease),
		unary("RemoveItem", CartServer.RemoveItem),
		unary("ClearCart", CartServer.ClearCart),
		unary("ListItems", CartServer.ListItems),
		unary("Checkout", CartServer.Checkout),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/cart",
}

func RegisterCartServer(s grpc.ServiceRegistrar, srv CartServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(CartServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CartServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CartServer), ctx, req.(*Req))
			})
		},
	}
}

var _ CartServer = (*GRPCHandler)(nil)

type GRPCHandler struct {
	cart   *service.CartStore
	orders *service.OrderService
	log    logrus.FieldLogger
}

func NewGRPCHandler(cart *service.CartStore, orders *service.OrderService, log logrus.FieldLogger) *GRPCHandler {
	return &GRPCHandler{cart: cart, orders: orders, log: log}
}

func (h *GRPCHandler) cartResponse() *CartResponse {
	items := h.cart.Items()
	return &CartResponse{
		Items: items,
		Total: domain.CartTotal(items),
		Count: domain.CartCount(items),
	}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*AddItemResponse, error) {
	if req.Name == "" || req.Price < 0 {
		return nil, status.Error(codes.InvalidArgument, "missing required fields")
	}
	item := h.cart.AddItem(domain.ItemCandidate{
		Name:      req.Name,
		Picture:   req.Picture,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
	})
	return &AddItemResponse{Item: item}, nil
}

func (h *GRPCHandler) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	h.cart.UpdateQuantity(req.ID, req.Quantity)
	return h.cartResponse(), nil
}

func (h *GRPCHandler) Increase(ctx context.Context, req *ItemRequest) (*CartResponse, error) {
	h.cart.Increase(req.ID)
	return h.cartResponse(), nil
}

func (h *GRPCHandler) Decrease(ctx context.Context, req *ItemRequest) (*CartResponse, error) {
	h.cart.Decrease(req.ID)
	return h.cartResponse(), nil
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *ItemRequest) (*CartResponse, error) {
	h.cart.RemoveItem(req.ID)
	return h.cartResponse(), nil
}

func (h *GRPCHandler) ClearCart(ctx context.Context, _ *Empty) (*CartResponse, error) {
	h.cart.ClearCart()
	return h.cartResponse(), nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, _ *Empty) (*CartResponse, error) {
	return h.cartResponse(), nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, _ *Empty) (*CheckoutResponse, error) {
	order, err := h.orders.Checkout(ctx)
	if err != nil {
		return nil, checkoutStatus(err)
	}
	return &CheckoutResponse{Order: order}, nil
}

func checkoutStatus(err error) error {
	var uerr *domain.UserError
	if !errors.As(err, &uerr) {
		return status.Error(codes.Internal, "internal error")
	}
	if errors.Is(err, service.ErrEmptyCart) {
		return status.Error(codes.FailedPrecondition, uerr.Message)
	}
	return status.Error(codes.Aborted, uerr.Message)
}

// GuardInterceptor rejects calls the current session may not make.
func GuardInterceptor(guard *service.RouteGuard, required domain.Role) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		switch guard.Check(required).Outcome {
		case service.RedirectLogin:
			return nil, status.Error(codes.Unauthenticated, "login required")
		case service.RedirectHome:
			return nil, status.Error(codes.PermissionDenied, "not allowed")
		}
		return handler(ctx, req)
	}
}
