package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
	txdomain "github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

// ErrInvalidInput signals an unusable metrics query.
var ErrInvalidInput = fmt.Errorf("invalid metrics query: %w", apperrors.ErrValidation)

var errAdminOnly = errors.New("user analytics are restricted to admins")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, txdomain.ErrUnknownStatus):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, errAdminOnly):
		return fmt.Errorf("%w: %w", apperrors.ErrForbidden, err)
	}
	return err
}
