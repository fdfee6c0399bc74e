package godown

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Resolver maps production-stage roles to concrete godown identifiers. It is
// built once per configuration change and validated up front, so lookups at
// transaction time cannot surprise the caller.
type Resolver struct {
	byRole map[Role][]string
}

// NewResolver validates the configured godowns and builds a resolver.
// The intake role may be carried by several godowns, searched in configured
// order; each WIP role must be carried by exactly zero or one godown, since
// stage destinations have to be unambiguous.
func NewResolver(godowns []Godown) (*Resolver, error) {
	byRole := make(map[Role][]string)
	for _, g := range godowns {
		if !ValidRole(g.Role) {
			return nil, fmt.Errorf("%w: %q on godown %s", ErrUnknownRole, g.Role, g.ID)
		}
		if g.Role == RoleNone {
			continue
		}
		if g.Role != RoleIntake && len(byRole[g.Role]) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousRole, g.Role)
		}
		byRole[g.Role] = append(byRole[g.Role], g.ID)
	}
	return &Resolver{byRole: byRole}, nil
}

// Locations returns the godown ids carrying the given roles, concatenated in
// role order. It fails when any requested role has no godown.
func (r *Resolver) Locations(roles ...Role) ([]string, error) {
	var out []string
	for _, role := range roles {
		ids := r.byRole[role]
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotConfigured, role)
		}
		out = append(out, ids...)
	}
	return out, nil
}

// Destination returns the single godown id for a WIP role.
func (r *Resolver) Destination(role Role) (string, error) {
	ids := r.byRole[role]
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: %s", ErrRoleNotConfigured, role)
	}
	return ids[0], nil
}

var nameFold = cases.Fold()

// roleByName is the legacy name convention of the source configuration data.
var roleByName = map[string]Role{
	"main godown":   RoleIntake,
	"fabric godown": RoleIntake,
	"cutting wip":   RoleCuttingWIP,
	"sewing wip":    RoleSewingWIP,
	"finishing wip": RoleFinishingWIP,
}

// InferRole maps a godown name to a role using the legacy case-insensitive
// naming convention. It exists only to upgrade role-less snapshots; new
// configuration carries explicit roles.
func InferRole(name string) Role {
	if role, ok := roleByName[nameFold.String(name)]; ok {
		return role
	}
	return RoleNone
}

// EqualNames compares godown names under Unicode case folding.
func EqualNames(a, b string) bool {
	return nameFold.String(a) == nameFold.String(b)
}
