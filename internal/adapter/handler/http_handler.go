package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/metrics"
)

const maxUpload = 10 << 20

// Services bundles the stores and flows the handlers expose. All of them
// are created once per process and shared.
type Services struct {
	Sessions *service.SessionStore
	Guard    *service.RouteGuard
	Cart     *service.CartStore
	Orders   *service.OrderService
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	History  *service.HistoryService
	Points   *service.PointService
	Prefs    *service.PreferenceService
}

type HTTPHandler struct {
	svc Services
	log logrus.FieldLogger
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

type LoginHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginHTTPResponse struct {
	Landing string         `json:"landing"`
	Session domain.Session `json:"session"`
}

type QuantityHTTPRequest struct {
	Quantity int `json:"quantity"`
}

type ThemeHTTPRequest struct {
	Theme domain.Theme `json:"theme"`
}

type CartView struct {
	Items []domain.LineItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
	Busy  bool              `json:"busy"`
}

type HomeView struct {
	Session  domain.Session   `json:"session"`
	Theme    domain.Theme     `json:"theme"`
	Products []domain.Product `json:"products"`
}

type DashboardView struct {
	Session domain.Session `json:"session"`
	Theme   domain.Theme   `json:"theme"`
	Cart    CartView       `json:"cart"`
}

type PointsView struct {
	Balance int64 `json:"balance"`
}

func NewHTTPHandler(svc Services, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// Router wires the view routes, the JSON API, health and metrics.
func (h *HTTPHandler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	h.registerPages(r)
	h.registerAPI(r.PathPrefix("/api").Subrouter())
	return r
}

func (h *HTTPHandler) registerPages(r *mux.Router) {
	pages := r.Methods(http.MethodGet).Subrouter()
	pages.Use(h.pageGuard)

	pages.HandleFunc("/", h.homePage)
	pages.HandleFunc("/login", h.sessionPage)
	pages.HandleFunc("/register", h.sessionPage)

	pages.HandleFunc("/dashboard", h.dashboardPage)
	pages.HandleFunc("/products", h.ListProducts)
	pages.HandleFunc("/cart", h.GetCart)
	pages.HandleFunc("/orders", h.MyOrders)
	pages.HandleFunc("/transfer-point", h.GetPoints)

	pages.HandleFunc("/admin/dashboard", h.dashboardPage)
	pages.HandleFunc("/admin/products", h.ListProducts)
	pages.HandleFunc("/admin/product/add", h.sessionPage)
	pages.HandleFunc("/admin/products/deleted", h.ListDeleted)
	pages.HandleFunc("/admin/orders", h.AllOrders)
	pages.HandleFunc("/admin/orders/group-by-user", h.OrdersByUser)
}

func (h *HTTPHandler) registerAPI(r *mux.Router) {
	r.HandleFunc("/session", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/theme", h.GetTheme).Methods(http.MethodGet)
	r.HandleFunc("/theme", h.SetTheme).Methods(http.MethodPut)
	r.HandleFunc("/theme/toggle", h.ToggleTheme).Methods(http.MethodPost)

	user := r.NewRoute().Subrouter()
	user.Use(h.apiGuard(domain.RoleUser))
	user.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	user.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	user.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	user.HandleFunc("/cart/products", h.AddProductToCart).Methods(http.MethodPost)
	user.HandleFunc("/cart/items/{id:[0-9]+}", h.UpdateQuantity).Methods(http.MethodPut)
	user.HandleFunc("/cart/items/{id:[0-9]+}", h.RemoveItem).Methods(http.MethodDelete)
	user.HandleFunc("/cart/items/{id:[0-9]+}/increase", h.IncreaseItem).Methods(http.MethodPost)
	user.HandleFunc("/cart/items/{id:[0-9]+}/decrease", h.DecreaseItem).Methods(http.MethodPost)
	user.HandleFunc("/cart/checkout", h.Checkout).Methods(http.MethodPost)
	user.HandleFunc("/orders", h.MyOrders).Methods(http.MethodGet)
	user.HandleFunc("/orders/local", h.LocalOrders).Methods(http.MethodGet)
	user.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	user.HandleFunc("/points", h.GetPoints).Methods(http.MethodGet)
	user.HandleFunc("/points/transfer", h.TransferPoints).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.apiGuard(domain.RoleAdmin))
	admin.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	admin.HandleFunc("/products", h.AddProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/deleted", h.ListDeleted).Methods(http.MethodGet)
	admin.HandleFunc("/products/{id:[0-9]+}", h.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", h.DeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/products/{id:[0-9]+}/restore", h.RestoreProduct).Methods(http.MethodPost)
	admin.HandleFunc("/orders", h.AllOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/group-by-user", h.OrdersByUser).Methods(http.MethodGet)
}

// pageGuard redirects views the current session may not see.
func (h *HTTPHandler) pageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := h.svc.Guard.CheckPath(r.URL.Path)
		if !d.Allowed() {
			http.Redirect(w, r, d.Location, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) apiGuard(required domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := h.svc.Guard.Check(required)
			switch d.Outcome {
			case service.RedirectLogin:
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "login required", Redirect: d.Location})
				return
			case service.RedirectHome:
				writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "not allowed", Redirect: d.Location})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) homePage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HomeView{
		Session:  h.svc.Sessions.Snapshot(),
		Theme:    h.svc.Prefs.Theme(r.Context()),
		Products: h.svc.Catalog.Home(r.Context()),
	})
}

func (h *HTTPHandler) sessionPage(w http.ResponseWriter, r *http.Request) {
	h.GetSession(w, r)
}

func (h *HTTPHandler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DashboardView{
		Session: h.svc.Sessions.Snapshot(),
		Theme:   h.svc.Prefs.Theme(r.Context()),
		Cart:    h.cartView(),
	})
}

func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Sessions.Snapshot())
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginHTTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	landing, err := h.svc.Auth.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginHTTPResponse{Landing: landing, Session: h.svc.Sessions.Snapshot()})
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid form"})
		return
	}
	picture, pictureName, err := formFile(r, "picture")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid picture"})
		return
	}

	err = h.svc.Auth.Register(r.Context(), domain.Registration{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		Picture:     picture,
		PictureName: pictureName,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"redirect": domain.PathLogin})
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context()); err != nil {
		h.log.WithError(err).Warn("logout left persisted session behind")
	}
	writeJSON(w, http.StatusOK, h.svc.Sessions.Snapshot())
}

func (h *HTTPHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThemeHTTPRequest{Theme: h.svc.Prefs.Theme(r.Context())})
}

func (h *HTTPHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeHTTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.Prefs.SetTheme(r.Context(), req.Theme); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *HTTPHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.svc.Prefs.Toggle(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeHTTPRequest{Theme: theme})
}

func (h *HTTPHandler) cartView() CartView {
	items := h.svc.Cart.Items()
	return CartView{
		Items: items,
		Total: domain.CartTotal(items),
		Count: domain.CartCount(items),
		Busy:  h.svc.Cart.Busy() || h.svc.Orders.Busy(),
	}
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var candidate domain.ItemCandidate
	if !decodeBody(w, r, &candidate) {
		return
	}
	if candidate.Name == "" || candidate.UnitPrice < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required fields"})
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Cart.AddItem(candidate))
}

func (h *HTTPHandler) AddProductToCart(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if !decodeBody(w, r, &product) {
		return
	}
	if product.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing product name"})
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.Catalog.AddToCart(product))
}

func (h *HTTPHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityHTTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.svc.Cart.UpdateQuantity(pathID(r), req.Quantity)
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	h.svc.Cart.Increase(pathID(r))
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	h.svc.Cart.Decrease(pathID(r))
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.svc.Cart.RemoveItem(pathID(r))
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.Cart.ClearCart()
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Orders.Checkout(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) LocalOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Orders.Orders())
}

func (h *HTTPHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	q, err := orderQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	listing, err := h.svc.History.MyOrders(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *HTTPHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	q, err := orderQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	listing, err := h.svc.History.AllOrders(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *HTTPHandler) OrdersByUser(w http.ResponseWriter, r *http.Request) {
	p, err := pageParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	listing, err := h.svc.History.OrdersByUser(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := productQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	listing, err := h.svc.Catalog.ListProducts(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *HTTPHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	q, err := productQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	listing, err := h.svc.Catalog.ListDeleted(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *HTTPHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := productForm(w, r)
	if !ok {
		return
	}
	product, err := h.svc.Catalog.AddProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := productForm(w, r)
	if !ok {
		return
	}
	if err := h.svc.Catalog.UpdateProduct(r.Context(), pathID(r), in); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.DeleteProduct(r.Context(), pathID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) RestoreProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.RestoreProduct(r.Context(), pathID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.Points.Balance(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PointsView{Balance: balance})
}

func (h *HTTPHandler) TransferPoints(w http.ResponseWriter, r *http.Request) {
	var req domain.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.svc.Points.Transfer(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps service errors to a status; the body always carries the
// user-facing message.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var uerr *domain.UserError
	if errors.As(err, &uerr) {
		message = uerr.Message
		switch {
		case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmptyCart):
			status = http.StatusBadRequest
		case errors.Is(err, api.ErrUnauthorized):
			status = http.StatusUnauthorized
		default:
			status = http.StatusBadGateway
		}
	} else {
		h.log.WithError(err).Error("request failed")
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func productForm(w http.ResponseWriter, r *http.Request) (domain.ProductInput, bool) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid form"})
		return domain.ProductInput{}, false
	}

	price, err := int64Param(r.FormValue("price"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid price"})
		return domain.ProductInput{}, false
	}
	stocks, err := int64Param(r.FormValue("stocks"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid stocks"})
		return domain.ProductInput{}, false
	}
	picture, pictureName, err := formFile(r, "picture")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid picture"})
		return domain.ProductInput{}, false
	}

	return domain.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Stocks:      int(stocks),
		Picture:     picture,
		PictureName: pictureName,
	}, true
}

// formFile returns the uploaded file, or nil when the field is absent.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Filename, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
