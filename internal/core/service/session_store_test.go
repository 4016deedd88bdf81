package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

func TestHydrate_ValidSession(t *testing.T) {
	kv := newMockKV()
	putSession(kv, domain.SessionDescriptor{Token: "tok", Role: domain.RoleAdmin, Email: "a@shop.test"})

	store := NewSessionStore(kv, testLog)
	store.Hydrate(context.Background())

	s := store.Snapshot()
	if !s.IsAuthenticated || s.Role != domain.RoleAdmin {
		t.Errorf("expected authenticated admin, got %+v", s)
	}
}

func TestHydrate_FailsOpen(t *testing.T) {
	cases := map[string]func(kv *mockKV){
		"missing":      func(kv *mockKV) {},
		"corrupt json": func(kv *mockKV) { kv.data[port.KeySession] = []byte("{not json") },
		"no token":     func(kv *mockKV) { putSession(kv, domain.SessionDescriptor{Role: domain.RoleUser}) },
		"no role":      func(kv *mockKV) { putSession(kv, domain.SessionDescriptor{Token: "tok"}) },
		"unknown role": func(kv *mockKV) { putSession(kv, domain.SessionDescriptor{Token: "tok", Role: "root"}) },
		"read error":   func(kv *mockKV) { kv.getErr = errors.New("disk gone") },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			kv := newMockKV()
			setup(kv)

			store := NewSessionStore(kv, testLog)
			store.Hydrate(context.Background())

			if s := store.Snapshot(); s.IsAuthenticated || s.Role != domain.RoleNone {
				t.Errorf("expected logged out, got %+v", s)
			}
		})
	}
}

func TestHydrate_DoesNotWrite(t *testing.T) {
	kv := newMockKV()
	kv.data[port.KeySession] = []byte("garbage")

	store := NewSessionStore(kv, testLog)
	store.Hydrate(context.Background())

	if string(kv.data[port.KeySession]) != "garbage" {
		t.Error("hydrate modified persisted storage")
	}
}

func TestLogin_Immediate(t *testing.T) {
	store := NewSessionStore(newMockKV(), testLog)
	store.Login(domain.RoleUser)

	s := store.Snapshot()
	if !s.IsAuthenticated || s.Role != domain.RoleUser {
		t.Errorf("expected authenticated user, got %+v", s)
	}
}

func TestLogout_ClearsStateAndStorage(t *testing.T) {
	kv := newMockKV()
	putSession(kv, domain.SessionDescriptor{Token: "tok", Role: domain.RoleAdmin})

	store := NewSessionStore(kv, testLog)
	store.Login(domain.RoleAdmin)

	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if s := store.Snapshot(); s.IsAuthenticated || s.Role != domain.RoleNone {
		t.Errorf("expected logged out, got %+v", s)
	}
	if kv.has(port.KeySession) {
		t.Error("expected persisted session to be erased")
	}

	guard := NewRouteGuard(store)
	for _, r := range domain.Routes {
		if r.Public {
			continue
		}
		if d := guard.CheckPath(r.Path); d.Outcome != RedirectLogin {
			t.Errorf("%s: expected redirect to login, got %s", r.Path, d.Outcome)
		}
	}
}

func TestLogout_StorageFailureStillResets(t *testing.T) {
	kv := newMockKV()
	kv.deleteErr = errors.New("read-only")

	store := NewSessionStore(kv, testLog)
	store.Login(domain.RoleUser)

	if err := store.Logout(context.Background()); err == nil {
		t.Error("expected storage error to be reported")
	}
	if store.Snapshot().IsAuthenticated {
		t.Error("expected in-memory session reset")
	}
}

func TestEmail(t *testing.T) {
	kv := newMockKV()
	store := NewSessionStore(kv, testLog)

	if got := store.Email(context.Background()); got != "" {
		t.Errorf("expected empty email, got %q", got)
	}

	putSession(kv, domain.SessionDescriptor{Token: "tok", Role: domain.RoleUser, Email: "u@shop.test"})
	if got := store.Email(context.Background()); got != "u@shop.test" {
		t.Errorf("expected u@shop.test, got %q", got)
	}
	if got := store.Token(context.Background()); got != "tok" {
		t.Errorf("expected tok, got %q", got)
	}
}

func TestLogin_UnknownRoleRejected(t *testing.T) {
	store := NewSessionStore(newMockKV(), testLog)

	store.Login(domain.Role("superuser"))
	if s := store.Snapshot(); s.IsAuthenticated || s.Role != domain.RoleNone {
		t.Errorf("expected logged out after unknown role, got %+v", s)
	}

	store.Login(domain.RoleUser)
	store.Login(domain.RoleNone)
	if s := store.Snapshot(); !s.IsAuthenticated || s.Role != domain.RoleUser {
		t.Errorf("expected existing session kept, got %+v", s)
	}
}
