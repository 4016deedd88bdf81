package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// PreferenceService keeps the theme choice in persisted storage.
type PreferenceService struct {
	storage port.KeyValueStore
	log     logrus.FieldLogger
}

func NewPreferenceService(storage port.KeyValueStore, log logrus.FieldLogger) *PreferenceService {
	return &PreferenceService{storage: storage, log: log}
}

// Theme returns the stored theme, light when unset or unreadable.
func (p *PreferenceService) Theme(ctx context.Context) domain.Theme {
	data, err := p.storage.Get(ctx, port.KeyTheme)
	if err != nil {
		if !errors.Is(err, port.ErrNotFound) {
			p.log.WithError(err).Warn("read theme failed")
		}
		return domain.ThemeLight
	}
	if domain.Theme(data) == domain.ThemeDark {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

func (p *PreferenceService) SetTheme(ctx context.Context, theme domain.Theme) error {
	if theme != domain.ThemeLight && theme != domain.ThemeDark {
		return &domain.UserError{Message: fmt.Sprintf("unknown theme %q", theme), Err: ErrInvalidInput}
	}
	if err := p.storage.Set(ctx, port.KeyTheme, []byte(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (p *PreferenceService) Toggle(ctx context.Context) (domain.Theme, error) {
	next := domain.ThemeDark
	if p.Theme(ctx) == domain.ThemeDark {
		next = domain.ThemeLight
	}
	return next, p.SetTheme(ctx, next)
}
