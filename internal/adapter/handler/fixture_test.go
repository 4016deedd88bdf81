package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/rl1809/storefront/internal/adapter/api"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logging"
)

// fakeBackend imitates the shop backend for the handful of endpoints the
// handlers reach.
type fakeBackend struct {
	mu          sync.Mutex
	role        string
	failOrders  bool
	orderBodies []json.RawMessage
	points      int64
}

func (b *fakeBackend) router() http.Handler {
	r := mux.NewRouter()
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}

	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			reply(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		b.mu.Lock()
		role := b.role
		b.mu.Unlock()
		reply(w, http.StatusOK, `{"session":{"token":"tok","role":"`+role+`"}}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/product/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"products":{"fullProducts":[{"id":1,"name":"Mug","price":500},{"id":2,"name":"Tea","price":250}],"total":2}}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/product/add", func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		reply(w, http.StatusCreated, `{"product":{"id":3,"name":"`+r.FormValue("name")+`","price":`+r.FormValue("price")+`}}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/order/add", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failOrders {
			reply(w, http.StatusBadRequest, `{"message":"Out of stock"}`)
			return
		}
		var body json.RawMessage
		json.NewDecoder(r.Body).Decode(&body)
		b.orderBodies = append(b.orderBodies, body)
		reply(w, http.StatusCreated, `{"id":77}`)
	}).Methods(http.MethodPost)

	r.HandleFunc("/transfer-point/point", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, `{"point":`+jsonInt(b.points)+`}`)
	}).Methods(http.MethodGet)

	r.HandleFunc("/transfer-point", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount int64 `json:"amount"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		if req.Amount > b.points {
			reply(w, http.StatusBadRequest, `{"message":"Insufficient points"}`)
			return
		}
		b.points -= req.Amount
		reply(w, http.StatusOK, `{"message":"sent","transfer":{"sender":{"points":`+jsonInt(b.points)+`}}}`)
	}).Methods(http.MethodPost)

	return r
}

func (b *fakeBackend) setRole(role string) {
	b.mu.Lock()
	b.role = role
	b.mu.Unlock()
}

func (b *fakeBackend) setFailOrders(fail bool) {
	b.mu.Lock()
	b.failOrders = fail
	b.mu.Unlock()
}

func (b *fakeBackend) orders() []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]json.RawMessage(nil), b.orderBodies...)
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}

type fixture struct {
	backend *fakeBackend
	store   *storage.MemoryAdapter
	svc     Services
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := &fakeBackend{role: "user", points: 100}
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	log := logging.Discard()
	store := storage.NewMemoryAdapter()
	sessions := service.NewSessionStore(store, log)
	client := api.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, sessions.Token, log)
	cart := service.NewCartStore(log)

	svc := Services{
		Sessions: sessions,
		Guard:    service.NewRouteGuard(sessions),
		Cart:     cart,
		Orders:   service.NewOrderService(client, cart, sessions, log),
		Auth:     service.NewAuthService(client, store, sessions, log),
		Catalog:  service.NewCatalogService(client, cart, log),
		History:  service.NewHistoryService(client, client, log),
		Points:   service.NewPointService(client, log),
		Prefs:    service.NewPreferenceService(store, log),
	}

	return &fixture{
		backend: backend,
		store:   store,
		svc:     svc,
		router:  NewHTTPHandler(svc, log).Router(),
	}
}

func (f *fixture) login(t *testing.T, role string) {
	t.Helper()
	f.backend.setRole(role)

	if _, err := f.svc.Auth.Login(context.Background(), loginCreds()); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}
