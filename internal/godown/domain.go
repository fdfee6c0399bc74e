package godown

import "errors"

// Role classifies a godown's place in the production pipeline. Plain storage
// godowns carry no role.
type Role string

const (
	RoleNone         Role = ""
	RoleIntake       Role = "INTAKE"
	RoleCuttingWIP   Role = "CUTTING_WIP"
	RoleSewingWIP    Role = "SEWING_WIP"
	RoleFinishingWIP Role = "FINISHING_WIP"
)

// Godown is a physical or logical storage/processing area.
type Godown struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

var (
	// ErrRoleNotConfigured occurs when no godown carries a required role.
	ErrRoleNotConfigured = errors.New("godown: no godown configured for role")
	// ErrAmbiguousRole occurs when more than one godown carries a WIP role.
	ErrAmbiguousRole = errors.New("godown: role assigned to more than one godown")
	// ErrUnknownRole indicates a role value outside the known set.
	ErrUnknownRole = errors.New("godown: unknown role")
	// ErrDuplicateName occurs when a godown name is already taken.
	ErrDuplicateName = errors.New("godown: name already in use")
	// ErrNotFound indicates a missing godown.
	ErrNotFound = errors.New("godown: not found")
	// ErrInUse occurs when deleting a godown that still holds stock.
	ErrInUse = errors.New("godown: godown still holds stock")
)

// ValidRole reports whether r is one of the known role values.
func ValidRole(r Role) bool {
	switch r {
	case RoleNone, RoleIntake, RoleCuttingWIP, RoleSewingWIP, RoleFinishingWIP:
		return true
	}
	return false
}
