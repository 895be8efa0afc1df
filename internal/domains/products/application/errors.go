package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = fmt.Errorf("invalid product input: %w", apperrors.ErrValidation)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrEmptyLocation),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrMissingHandler):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrTransitionForbidden),
		errors.Is(err, domain.ErrCreateForbidden),
		errors.Is(err, domain.ErrInspectForbidden):
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, err)
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrNotInQualityCheck):
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidState, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	case errors.Is(err, ports.ErrVersionConflict),
		errors.Is(err, ports.ErrDuplicate),
		errors.Is(err, ports.ErrKeyReused),
		errors.Is(err, ports.ErrRegistrationInFlight):
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	}
	return err
}
