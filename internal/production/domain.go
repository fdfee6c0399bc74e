package production

import (
	"errors"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
)

// Stage enumerates the production pipeline stages.
type Stage string

const (
	StageCutting   Stage = "CUTTING"
	StageSewing    Stage = "SEWING"
	StageFinishing Stage = "FINISHING"
)

// ValidStage reports whether s is a known stage.
func ValidStage(s Stage) bool {
	return s == StageCutting || s == StageSewing || s == StageFinishing
}

// WorkEntry records production work performed against a tracking number.
// Entries are immutable once recorded.
type WorkEntry struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	Date           string `json:"date"`
	TrackingNumber string `json:"trackingNumber"`
	Type           Stage  `json:"type"`

	// Cutting fields.
	LayerLength  float64            `json:"layerLength,omitempty"`
	NumLayers    int                `json:"numLayers,omitempty"`
	FabricColor  string             `json:"fabricColor,omitempty"`
	LayerWeight  float64            `json:"layerWeight,omitempty"`
	FabricUsedKg int                `json:"fabricUsedKg,omitempty"`
	DrawingPcs   int                `json:"drawingPcs,omitempty"`
	OutputItemID string             `json:"outputItemId,omitempty"`
	OutputStock  []ledger.StockLine `json:"outputStock,omitempty"`

	// Sewing/finishing fields.
	OperationID    string             `json:"operationId,omitempty"`
	Quantity       int                `json:"quantity,omitempty"`
	ProcessedStock []ledger.StockLine `json:"processedStock,omitempty"`
}

var (
	// ErrUnknownStage indicates a work entry with an unrecognised stage.
	ErrUnknownStage = errors.New("production: unknown stage")
	// ErrEmptyWork indicates a work entry without any stock movement.
	ErrEmptyWork = errors.New("production: work entry moves no stock")
)

// sourceRoles lists, in search order, the roles consumed by each stage.
// Sewing and finishing include their own destination because stock may
// already be partially staged there from a prior run.
var sourceRoles = map[Stage][]godown.Role{
	StageCutting:   {godown.RoleIntake},
	StageSewing:    {godown.RoleCuttingWIP, godown.RoleSewingWIP},
	StageFinishing: {godown.RoleSewingWIP, godown.RoleFinishingWIP},
}

// destinationRole names the WIP role each stage produces into.
var destinationRole = map[Stage]godown.Role{
	StageCutting:   godown.RoleCuttingWIP,
	StageSewing:    godown.RoleSewingWIP,
	StageFinishing: godown.RoleFinishingWIP,
}

// SourceLocations resolves the godown ids a stage consumes from, in the
// order they are drawn down.
func SourceLocations(r *godown.Resolver, s Stage) ([]string, error) {
	roles, ok := sourceRoles[s]
	if !ok {
		return nil, ErrUnknownStage
	}
	return r.Locations(roles...)
}
