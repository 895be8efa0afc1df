package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = fmt.Errorf("invalid transaction input: %w", apperrors.ErrValidation)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrMissingProduct),
		errors.Is(err, domain.ErrMissingParty),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrMissingUpdatedBy),
		errors.Is(err, errInvalidQuery):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrUpdateForbidden),
		errors.Is(err, domain.ErrCreateForbidden):
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, err)
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, err)
	case errors.Is(err, ports.ErrVersionConflict),
		errors.Is(err, ports.ErrDuplicate):
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	}
	return err
}
