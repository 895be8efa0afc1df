package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

func TestCheckTransition_Table(t *testing.T) {
	cases := []struct {
		name string
		role identity.Role
		from Status
		to   Status
		want error
	}{
		{"supplier takes manufactured stock", identity.RoleSupplier, StatusManufactured, StatusInSupply, nil},
		{"supplier takes checked stock", identity.RoleSupplier, StatusQualityCheck, StatusInSupply, nil},
		{"supplier cannot distribute", identity.RoleSupplier, StatusInSupply, StatusInDistribution, ErrTransitionNotAllowed},
		{"inspector pulls from manufactured", identity.RoleQualityInspector, StatusManufactured, StatusQualityCheck, nil},
		{"inspector pulls from supply", identity.RoleQualityInspector, StatusInSupply, StatusQualityCheck, nil},
		{"inspector pulls from distribution", identity.RoleQualityInspector, StatusInDistribution, StatusQualityCheck, nil},
		{"inspector cannot recheck", identity.RoleQualityInspector, StatusQualityCheck, StatusQualityCheck, ErrTransitionNotAllowed},
		{"inspector cannot reopen delivered", identity.RoleQualityInspector, StatusDelivered, StatusQualityCheck, ErrTransitionNotAllowed},
		{"distributor ships", identity.RoleDistributor, StatusInSupply, StatusInDistribution, nil},
		{"distributor delivers", identity.RoleDistributor, StatusInDistribution, StatusDelivered, nil},
		{"distributor cannot skip", identity.RoleDistributor, StatusManufactured, StatusDelivered, ErrTransitionNotAllowed},
		{"admin is not a wildcard", identity.RoleAdmin, StatusInSupply, StatusDelivered, ErrTransitionNotAllowed},
		{"admin has every listed edge", identity.RoleAdmin, StatusInDistribution, StatusDelivered, nil},
		{"delivered is terminal for admin", identity.RoleAdmin, StatusDelivered, StatusInDistribution, ErrTransitionNotAllowed},
		{"manufacturer has no edges", identity.RoleManufacturer, StatusManufactured, StatusInSupply, ErrTransitionForbidden},
		{"customer has no edges", identity.RoleCustomer, StatusInSupply, StatusInDistribution, ErrTransitionForbidden},
		{"distributor may delay", identity.RoleDistributor, StatusInDistribution, StatusDelayed, nil},
		{"supplier may not delay foreign stage", identity.RoleSupplier, StatusInDistribution, StatusDelayed, ErrTransitionNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.role, tc.from, tc.to, "")
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
			var te *TransitionError
			require.True(t, errors.As(err, &te))
			require.Equal(t, tc.from, te.From)
			require.Equal(t, tc.to, te.To)
		})
	}
}

func TestCheckTransition_UnknownTarget(t *testing.T) {
	require.ErrorIs(t, CheckTransition(identity.RoleAdmin, StatusInSupply, Status("lost"), ""), ErrUnknownStatus)
}

func TestAdminIsUnionOfRoleEdges(t *testing.T) {
	for role, byFrom := range baseEdges {
		for from, targets := range byFrom {
			for _, to := range targets {
				require.NoError(t, CheckTransition(identity.RoleAdmin, from, to, ""), "%s %s->%s", role, from, to)
			}
		}
	}
	for _, from := range Statuses {
		for _, to := range Statuses {
			if CheckTransition(identity.RoleAdmin, from, to, "") != nil || to == StatusDelayed {
				continue
			}
			granted := false
			for _, byFrom := range baseEdges {
				for _, target := range byFrom[from] {
					if target == to {
						granted = true
					}
				}
			}
			require.True(t, granted, "admin edge %s->%s not backed by any role", from, to)
		}
	}
}

func TestCheckTransition_DelayedResumesToPriorState(t *testing.T) {
	require.NoError(t, CheckTransition(identity.RoleDistributor, StatusDelayed, StatusInSupply, StatusInSupply))
	require.ErrorIs(t,
		CheckTransition(identity.RoleDistributor, StatusDelayed, StatusInDistribution, StatusInSupply),
		ErrTransitionNotAllowed)
	require.ErrorIs(t,
		CheckTransition(identity.RoleSupplier, StatusDelayed, StatusInDistribution, StatusInDistribution),
		ErrTransitionNotAllowed)
	require.NoError(t, CheckTransition(identity.RoleAdmin, StatusDelayed, StatusManufactured, StatusManufactured))
}

func TestAllowedTargets(t *testing.T) {
	require.Equal(t, []Status{StatusInSupply, StatusDelayed}, AllowedTargets(identity.RoleSupplier, StatusManufactured, ""))
	require.Equal(t, []Status{StatusInDistribution}, AllowedTargets(identity.RoleDistributor, StatusDelayed, StatusInDistribution))
	require.Empty(t, AllowedTargets(identity.RoleCustomer, StatusInSupply, ""))
	require.Empty(t, AllowedTargets(identity.RoleAdmin, StatusDelivered, ""))
}

func TestStatusHumanize(t *testing.T) {
	require.Equal(t, "In Distribution", StatusInDistribution.Humanize())
	require.Equal(t, "Manufactured", StatusManufactured.Humanize())
	s, err := ParseStatus(" Quality-Check ")
	require.NoError(t, err)
	require.Equal(t, StatusQualityCheck, s)
	_, err = ParseStatus("shipped")
	require.ErrorIs(t, err, ErrUnknownStatus)
}
