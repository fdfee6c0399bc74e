package production

import (
	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
)

// Transformer applies work entries to the ledger: each stage consumes stock
// from its source godowns and produces into its destination godown. Apply is
// all-or-nothing per entry; on error the input ledger is returned unchanged
// semantics-wise because the candidate value is simply discarded.
type Transformer struct {
	resolver *godown.Resolver
}

// NewTransformer builds a Transformer over the configured godowns.
func NewTransformer(resolver *godown.Resolver) *Transformer {
	return &Transformer{resolver: resolver}
}

// Apply executes a work entry against the ledger and returns the new ledger.
func (t *Transformer) Apply(l ledger.Ledger, entry WorkEntry) (ledger.Ledger, error) {
	switch entry.Type {
	case StageCutting:
		return t.applyCutting(l, entry)
	case StageSewing, StageFinishing:
		return t.applyProcessing(l, entry)
	default:
		return nil, ErrUnknownStage
	}
}

// applyCutting consumes fabric (in kg, treated as the quantity unit of the
// fabric's stock line) from whichever intake godown holds it, then merges the
// cut pieces into the cutting WIP godown under the new output item.
func (t *Transformer) applyCutting(l ledger.Ledger, entry WorkEntry) (ledger.Ledger, error) {
	if entry.FabricUsedKg <= 0 || len(entry.OutputStock) == 0 {
		return nil, ErrEmptyWork
	}
	intake, err := t.resolver.Locations(sourceRoles[StageCutting]...)
	if err != nil {
		return nil, err
	}

	var source ledger.Entry
	next := l
	consumed := false
	for _, gid := range intake {
		src, ok := l.Find(entry.TrackingNumber, gid)
		if !ok {
			continue
		}
		if l.Available(entry.TrackingNumber, gid, entry.FabricColor, fabricSizeOf(src, entry.FabricColor)) == 0 {
			continue
		}
		size := fabricSizeOf(src, entry.FabricColor)
		next, err = l.Subtract(entry.TrackingNumber, gid, entry.FabricColor, size, entry.FabricUsedKg)
		if err != nil {
			return nil, err
		}
		source = src
		consumed = true
		break
	}
	if !consumed {
		return nil, ledger.ErrInsufficientStock
	}

	dest, err := t.resolver.Destination(destinationRole[StageCutting])
	if err != nil {
		return nil, err
	}
	prov := source.Provenance()
	prov.ItemID = entry.OutputItemID
	for _, line := range entry.OutputStock {
		next, err = next.Add(entry.TrackingNumber, dest, line.Color, line.Size, line.Quantity, prov)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// applyProcessing advances processed stock for sewing/finishing. Each
// requested line is consumed from the stage's source godowns in order, first
// exhausting one before drawing the remainder from the next; the same lines
// are then merged into the stage destination.
func (t *Transformer) applyProcessing(l ledger.Ledger, entry WorkEntry) (ledger.Ledger, error) {
	if len(entry.ProcessedStock) == 0 {
		return nil, ErrEmptyWork
	}
	sources, err := t.resolver.Locations(sourceRoles[entry.Type]...)
	if err != nil {
		return nil, err
	}
	dest, err := t.resolver.Destination(destinationRole[entry.Type])
	if err != nil {
		return nil, err
	}

	next := l
	var drawnFrom *ledger.Entry
	for _, line := range entry.ProcessedStock {
		if line.Quantity <= 0 {
			return nil, ledger.ErrInvalidQuantity
		}
		remaining := line.Quantity
		for _, gid := range sources {
			if remaining == 0 {
				break
			}
			avail := next.Available(entry.TrackingNumber, gid, line.Color, line.Size)
			if avail == 0 {
				continue
			}
			take := avail
			if take > remaining {
				take = remaining
			}
			if drawnFrom == nil {
				if src, ok := next.Find(entry.TrackingNumber, gid); ok {
					drawnFrom = &src
				}
			}
			next, err = next.Subtract(entry.TrackingNumber, gid, line.Color, line.Size, take)
			if err != nil {
				return nil, err
			}
			remaining -= take
		}
		if remaining > 0 {
			return nil, ledger.ErrInsufficientStock
		}
	}

	var prov ledger.Provenance
	if drawnFrom != nil {
		prov = drawnFrom.Provenance()
	}
	for _, line := range entry.ProcessedStock {
		next, err = next.Add(entry.TrackingNumber, dest, line.Color, line.Size, line.Quantity, prov)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// fabricSizeOf finds the size label of the fabric color's line; raw fabric is
// recorded with a single line per color whose size carries the unit label.
func fabricSizeOf(e ledger.Entry, color string) string {
	for _, line := range e.Stock {
		if line.Color == color {
			return line.Size
		}
	}
	return ""
}
