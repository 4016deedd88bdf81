package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// AuthService runs the login and registration flows around the SessionStore.
type AuthService struct {
	api      port.AuthAPI
	storage  port.KeyValueStore
	sessions *SessionStore
	log      logrus.FieldLogger
}

func NewAuthService(api port.AuthAPI, storage port.KeyValueStore, sessions *SessionStore, log logrus.FieldLogger) *AuthService {
	return &AuthService{api: api, storage: storage, sessions: sessions, log: log}
}

// Login authenticates against the backend, persists the session descriptor
// and returns the path the user should land on.
func (a *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if err := validateInput(creds); err != nil {
		return "", err
	}

	desc, err := a.api.Login(ctx, creds)
	if err != nil {
		a.log.WithError(err).WithField("email", creds.Email).Warn("login failed")
		return "", userMessage(err, "wrong email or password")
	}
	if desc.Token == "" || !desc.Role.Valid() {
		a.log.WithField("role", desc.Role).Warn("backend returned an unusable session")
		return "", &domain.UserError{Message: "login failed"}
	}
	if desc.Email == "" {
		desc.Email = creds.Email
	}

	if err := writeDescriptor(ctx, a.storage, desc); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	a.sessions.Login(desc.Role)

	a.log.WithFields(logrus.Fields{"email": desc.Email, "role": desc.Role}).Info("logged in")
	if desc.Role == domain.RoleAdmin {
		return "/admin/dashboard", nil
	}
	return domain.PathHome, nil
}

func (a *AuthService) Register(ctx context.Context, reg domain.Registration) error {
	if err := validateInput(reg); err != nil {
		return err
	}
	if err := a.api.Register(ctx, reg); err != nil {
		a.log.WithError(err).WithField("email", reg.Email).Warn("registration failed")
		return userMessage(err, "registration failed")
	}
	return nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		a.log.WithError(err).Error("logout could not erase persisted session")
		return err
	}
	a.log.Info("logged out")
	return nil
}
