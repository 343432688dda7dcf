package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role    AssignmentRole
		view    bool
		write   bool
		approve bool
		admin   bool
	}{
		{RoleLead, true, true, true, true},
		{RoleTeamMember, true, true, false, false},
		{RoleReviewer, true, true, true, false},
		{RoleObserver, true, false, false, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			require.Equal(t, tc.view, tc.role.Has(CapView))
			require.Equal(t, tc.write, tc.role.Has(CapWrite))
			require.Equal(t, tc.approve, tc.role.Has(CapApprove))
			require.Equal(t, tc.admin, tc.role.Has(CapAdmin))
		})
	}

	t.Run("unknown role has nothing", func(t *testing.T) {
		bogus := AssignmentRole("CAPTAIN")
		require.False(t, bogus.Has(CapView))
		require.False(t, bogus.IsValid())
	})
}
