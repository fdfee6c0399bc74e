package godown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pipelineGodowns() []Godown {
	return []Godown{
		{ID: "g-main", Name: "Main Godown", Role: RoleIntake},
		{ID: "g-fabric", Name: "Fabric Godown", Role: RoleIntake},
		{ID: "g-cut", Name: "Cutting WIP", Role: RoleCuttingWIP},
		{ID: "g-sew", Name: "Sewing WIP", Role: RoleSewingWIP},
		{ID: "g-fin", Name: "Finishing WIP", Role: RoleFinishingWIP},
		{ID: "g-store", Name: "Overflow Store"},
	}
}

func TestNewResolverAcceptsMultipleIntakes(t *testing.T) {
	r, err := NewResolver(pipelineGodowns())
	require.NoError(t, err)

	ids, err := r.Locations(RoleIntake)
	require.NoError(t, err)
	require.Equal(t, []string{"g-main", "g-fabric"}, ids)
}

func TestNewResolverRejectsDuplicateWIPRole(t *testing.T) {
	gs := append(pipelineGodowns(), Godown{ID: "g-cut2", Name: "Second Cutting", Role: RoleCuttingWIP})
	_, err := NewResolver(gs)
	require.ErrorIs(t, err, ErrAmbiguousRole)
}

func TestNewResolverRejectsUnknownRole(t *testing.T) {
	_, err := NewResolver([]Godown{{ID: "g-x", Name: "X", Role: "PACKING_WIP"}})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestLocationsPreservesRoleOrder(t *testing.T) {
	r, err := NewResolver(pipelineGodowns())
	require.NoError(t, err)

	ids, err := r.Locations(RoleCuttingWIP, RoleSewingWIP)
	require.NoError(t, err)
	require.Equal(t, []string{"g-cut", "g-sew"}, ids)
}

func TestLocationsMissingRole(t *testing.T) {
	r, err := NewResolver([]Godown{{ID: "g-main", Name: "Main Godown", Role: RoleIntake}})
	require.NoError(t, err)

	_, err = r.Locations(RoleSewingWIP)
	require.ErrorIs(t, err, ErrRoleNotConfigured)
}

func TestDestination(t *testing.T) {
	r, err := NewResolver(pipelineGodowns())
	require.NoError(t, err)

	dest, err := r.Destination(RoleFinishingWIP)
	require.NoError(t, err)
	require.Equal(t, "g-fin", dest)

	r2, err := NewResolver(nil)
	require.NoError(t, err)
	_, err = r2.Destination(RoleFinishingWIP)
	require.ErrorIs(t, err, ErrRoleNotConfigured)
}

func TestInferRoleLegacyNames(t *testing.T) {
	cases := map[string]Role{
		"Main Godown":   RoleIntake,
		"FABRIC GODOWN": RoleIntake,
		"Cutting WIP":   RoleCuttingWIP,
		"sewing wip":    RoleSewingWIP,
		"Finishing Wip": RoleFinishingWIP,
		"Overflow":      RoleNone,
	}
	for name, want := range cases {
		require.Equal(t, want, InferRole(name), "name %q", name)
	}
}

func TestEqualNames(t *testing.T) {
	require.True(t, EqualNames("Main Godown", "main godown"))
	require.False(t, EqualNames("Main Godown", "Fabric Godown"))
}
