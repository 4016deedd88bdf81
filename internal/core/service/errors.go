package service

import (
	"errors"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidInput = errors.New("invalid input")
)

// userMessage keeps a backend-provided message when there is one and falls
// back to a generic message otherwise.
func userMessage(err error, fallback string) error {
	var ue *domain.UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue
	}
	return &domain.UserError{Message: fallback, Err: err}
}
