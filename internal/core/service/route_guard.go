package service

import (
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/metrics"
)

type Outcome string

const (
	Permit        Outcome = "permit"
	RedirectLogin Outcome = "redirect_login"
	RedirectHome  Outcome = "redirect_home"
)

type Decision struct {
	Outcome  Outcome
	Location string
}

func (d Decision) Allowed() bool {
	return d.Outcome == Permit
}

// Decide is the guard rule: logged out goes to login, wrong role goes home.
func Decide(s domain.Session, required domain.Role) Decision {
	if !s.IsAuthenticated {
		return Decision{Outcome: RedirectLogin, Location: domain.PathLogin}
	}
	if required != domain.RoleNone && s.Role != required {
		return Decision{Outcome: RedirectHome, Location: domain.PathHome}
	}
	return Decision{Outcome: Permit}
}

type SessionReader interface {
	Snapshot() domain.Session
}

type RouteGuard struct {
	sessions SessionReader
}

func NewRouteGuard(sessions SessionReader) *RouteGuard {
	return &RouteGuard{sessions: sessions}
}

func (g *RouteGuard) Check(required domain.Role) Decision {
	d := Decide(g.sessions.Snapshot(), required)
	metrics.RecordGuardDecision(string(d.Outcome))
	return d
}

// CheckPath looks the path up in the route table. Public and unknown paths
// are permitted.
func (g *RouteGuard) CheckPath(path string) Decision {
	route, ok := domain.LookupRoute(path)
	if !ok || route.Public {
		return Decision{Outcome: Permit}
	}
	return g.Check(route.RequiredRole)
}
