package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = fmt.Errorf("invalid user input: %w", apperrors.ErrValidation)
	// ErrAuthentication wraps authentication failures.
	ErrAuthentication = fmt.Errorf("authentication failed: %w", apperrors.ErrUnauthorized)
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrUnknownDecision):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrRoleNotSelfService),
		errors.Is(err, domain.ErrAdminOnly),
		errors.Is(err, domain.ErrRejected):
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, err)
	case errors.Is(err, ports.ErrInvalidCredentials),
		errors.Is(err, ports.ErrSessionNotFound),
		errors.Is(err, domain.ErrInactive):
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	case errors.Is(err, ports.ErrTooManyAttempts):
		return fmt.Errorf("%w: %w", apperrors.ErrRateLimited, err)
	case errors.Is(err, ports.ErrDuplicate),
		errors.Is(err, ports.ErrAdminExists):
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	}
	return err
}
