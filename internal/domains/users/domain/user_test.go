package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

func TestNewUser_HashesPassword(t *testing.T) {
	u, err := NewUser("u-1", " alice ", "Alice@Example.com", "s3cret!", identity.RoleSupplier)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "alice@example.com", u.Email)
	require.NotEqual(t, "s3cret!", u.PasswordHash)
	require.True(t, u.CheckPassword("s3cret!"))
	require.False(t, u.CheckPassword("wrong"))
	require.True(t, u.Active())
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("u", "", "a@b.c", "secret1", identity.RoleAdmin)
	require.ErrorIs(t, err, ErrEmptyUsername)
	_, err = NewUser("u", "bob", "nope", "secret1", identity.RoleAdmin)
	require.ErrorIs(t, err, ErrInvalidEmail)
	_, err = NewUser("u", "bob", "a@b.c", "abc", identity.RoleAdmin)
	require.ErrorIs(t, err, ErrWeakPassword)
	_, err = NewUser("u", "bob", "a@b.c", "secret1", identity.Role("pirate"))
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{ID: "u-1", Username: "acme"}
	require.Equal(t, identity.Reference{ID: "u-1", DisplayName: "acme"}, u.Reference())
	u.CompanyName = "Acme Forge"
	require.Equal(t, "Acme Forge", u.Actor().DisplayName)
}

func TestNewUser_InitialVerification(t *testing.T) {
	for role, want := range map[identity.Role]Verification{
		identity.RoleManufacturer:     VerificationPending,
		identity.RoleSupplier:         VerificationPending,
		identity.RoleDistributor:      VerificationPending,
		identity.RoleQualityInspector: VerificationVerified,
		identity.RoleCustomer:         VerificationVerified,
		identity.RoleAdmin:            VerificationVerified,
	} {
		u, err := NewUser("u-1", "bob", "bob@example.com", "secret1", role)
		require.NoError(t, err)
		require.Equal(t, want, u.Verification, role)
	}
}

func TestCheckSelfService(t *testing.T) {
	require.NoError(t, CheckSelfService(identity.RoleCustomer))
	require.NoError(t, CheckSelfService(identity.RoleQualityInspector))
	require.ErrorIs(t, CheckSelfService(identity.RoleAdmin), ErrRoleNotSelfService)
}

func TestUser_ApplyReview(t *testing.T) {
	admin := identity.Actor{ID: "u-admin", Role: identity.RoleAdmin, DisplayName: "Root"}
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	u, err := NewUser("u-1", "acme", "acme@example.com", "secret1", identity.RoleManufacturer)
	require.NoError(t, err)

	err = u.ApplyReview(identity.Actor{ID: "u-2", Role: identity.RoleManufacturer}, DecisionVerify, "", at)
	require.ErrorIs(t, err, ErrAdminOnly)
	require.Equal(t, VerificationPending, u.Verification)

	require.NoError(t, u.ApplyReview(admin, DecisionReject, " missing licence ", at))
	require.True(t, u.Rejected())
	require.Equal(t, &Review{Decision: DecisionReject, Notes: "missing licence", ReviewedBy: admin.Reference(), ReviewedAt: at}, u.LastReview)

	require.NoError(t, u.ApplyReview(admin, DecisionVerify, "", at))
	require.Equal(t, VerificationVerified, u.Verification)

	_, err = ParseDecision("approve")
	require.ErrorIs(t, err, ErrUnknownDecision)
	d, err := ParseDecision(" Verify ")
	require.NoError(t, err)
	require.Equal(t, DecisionVerify, d)
}
