package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Verification is the admin review state of a business account.
type Verification string

const (
	VerificationPending  Verification = "pending"
	VerificationVerified Verification = "verified"
	VerificationRejected Verification = "rejected"
)

var (
	ErrRoleNotSelfService = errors.New("role cannot be chosen at public registration")
	ErrAdminOnly          = errors.New("only admins may do this")
	ErrRejected           = errors.New("account verification was rejected")
	ErrUnknownDecision    = errors.New("verification action must be verify or reject")
)

// SelfServiceRoles may be picked on the public registration form.
var SelfServiceRoles = []identity.Role{
	identity.RoleManufacturer,
	identity.RoleSupplier,
	identity.RoleDistributor,
	identity.RoleQualityInspector,
	identity.RoleCustomer,
}

// CheckSelfService rejects roles that are only granted by another admin.
func CheckSelfService(role identity.Role) error {
	for _, r := range SelfServiceRoles {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRoleNotSelfService, role)
}

// InitialVerification is pending for business roles that an admin must
// review and verified for everyone else.
func InitialVerification(role identity.Role) Verification {
	switch role {
	case identity.RoleManufacturer, identity.RoleSupplier, identity.RoleDistributor:
		return VerificationPending
	}
	return VerificationVerified
}

// Decision is an admin's verdict on a pending account.
type Decision string

const (
	DecisionVerify Decision = "verify"
	DecisionReject Decision = "reject"
)

// ParseDecision accepts verify or reject, case-insensitively.
func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionVerify, DecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDecision, raw)
}

// Review records an admin's decision on the account.
type Review struct {
	Decision   Decision
	Notes      string
	ReviewedBy identity.Reference
	ReviewedAt time.Time
}

// ApplyReview sets the verification state. Only admins may review, and a
// later review replaces an earlier one.
func (u *User) ApplyReview(admin identity.Actor, decision Decision, notes string, at time.Time) error {
	if !admin.Is(identity.RoleAdmin) {
		return ErrAdminOnly
	}
	switch decision {
	case DecisionVerify:
		u.Verification = VerificationVerified
	case DecisionReject:
		u.Verification = VerificationRejected
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDecision, decision)
	}
	u.LastReview = &Review{
		Decision:   decision,
		Notes:      strings.TrimSpace(notes),
		ReviewedBy: admin.Reference(),
		ReviewedAt: at,
	}
	return nil
}

// Rejected reports whether an admin turned the account down.
func (u *User) Rejected() bool {
	return u.Verification == VerificationRejected
}
