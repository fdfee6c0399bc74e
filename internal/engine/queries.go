package engine

import (
	"context"
	"sort"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

// GodownStock is one row of the stock summary: the total quantity a godown
// holds for a tracking number.
type GodownStock struct {
	GodownID   string             `json:"godownId"`
	GodownName string             `json:"godownName"`
	Role       godown.Role        `json:"role,omitempty"`
	ItemID     string             `json:"itemId"`
	Stock      []ledger.StockLine `json:"stock"`
	Total      int                `json:"total"`
}

// Godowns lists the configured godowns.
func (e *Engine) Godowns() []godown.Godown {
	return e.Snapshot().Godowns
}

// Items lists the item definitions.
func (e *Engine) Items() []masterdata.Item {
	return e.Snapshot().Items
}

// Vendors lists the vendor records.
func (e *Engine) Vendors() []masterdata.Vendor {
	return e.Snapshot().Vendors
}

// Customers lists the customer records.
func (e *Engine) Customers() []masterdata.Customer {
	return e.Snapshot().Customers
}

// SewingOperations lists operations, optionally filtered by tracking number.
func (e *Engine) SewingOperations(trackingNumber string) []masterdata.SewingOperation {
	ops := e.Snapshot().SewingOperations
	if trackingNumber == "" {
		return ops
	}
	var out []masterdata.SewingOperation
	for _, op := range ops {
		if op.TrackingNumber == trackingNumber {
			out = append(out, op)
		}
	}
	return out
}

// OperationRateTotals sums the configured operation rates per stage type
// for a tracking number, for costing screens.
func (e *Engine) OperationRateTotals(trackingNumber string) map[string]float64 {
	totals := make(map[string]float64)
	for _, op := range e.Snapshot().SewingOperations {
		if op.TrackingNumber != trackingNumber {
			continue
		}
		totals[op.Type] += op.Rate
	}
	return totals
}

// PurchaseOrders lists all purchase orders.
func (e *Engine) PurchaseOrders() []orders.PurchaseOrder {
	return e.Snapshot().PurchaseOrders
}

// SalesOrders lists all sales orders.
func (e *Engine) SalesOrders() []orders.SalesOrder {
	return e.Snapshot().SalesOrders
}

// InternalTransfers lists the recorded transfers.
func (e *Engine) InternalTransfers() []stocktx.InternalTransfer {
	return e.Snapshot().InternalTransfers
}

// GoodsOutwardRecords lists the recorded outward movements.
func (e *Engine) GoodsOutwardRecords() []stocktx.GoodsOutward {
	return e.Snapshot().GoodsOutward
}

// WorkEntries lists production work, optionally filtered by stage.
func (e *Engine) WorkEntries(stage production.Stage) []production.WorkEntry {
	entries := e.Snapshot().WorkEntries
	if stage == "" {
		return entries
	}
	var out []production.WorkEntry
	for _, w := range entries {
		if w.Type == stage {
			out = append(out, w)
		}
	}
	return out
}

// StockByTracking returns all ledger entries for a tracking number, served
// from the summary cache when warm.
func (e *Engine) StockByTracking(ctx context.Context, trackingNumber string) []ledger.Entry {
	if entries, ok := e.cache.Get(ctx, trackingNumber); ok {
		return entries
	}
	// The generation is captured under the same lock that guards the
	// snapshot, so a commit that lands after the read retires it and the
	// Set below cannot resurrect pre-commit stock.
	e.mu.Lock()
	generation := e.cache.Generation()
	entries := e.snap.Ledger.Clone().EntriesForTracking(trackingNumber)
	e.mu.Unlock()

	if entries != nil {
		if err := e.cache.Set(ctx, generation, trackingNumber, entries); err != nil {
			e.log.Warn("stock cache store failed", "trackingNumber", trackingNumber, "error", err)
		}
	}
	return entries
}

// StockSummary resolves every entry of a tracking number against the godown
// register, for stock screens that show the pipeline at a glance.
func (e *Engine) StockSummary(ctx context.Context, trackingNumber string) []GodownStock {
	entries := e.StockByTracking(ctx, trackingNumber)

	e.mu.Lock()
	names := make(map[string]godown.Godown, len(e.snap.Godowns))
	for _, g := range e.snap.Godowns {
		names[g.ID] = g
	}
	e.mu.Unlock()

	out := make([]GodownStock, 0, len(entries))
	for _, entry := range entries {
		g := names[entry.GodownID]
		out = append(out, GodownStock{
			GodownID:   entry.GodownID,
			GodownName: g.Name,
			Role:       g.Role,
			ItemID:     entry.ItemID,
			Stock:      entry.Stock,
			Total:      entry.TotalQuantity(),
		})
	}
	return out
}

// TrackingNumbersForStage lists tracking numbers that currently hold stock
// in the given stage's source godowns, i.e. work for that stage can be
// recorded against them. Sewing and finishing additionally require an
// operation of that type to be defined, since piece-rate work cannot be
// recorded without one; cutting needs no operation.
func (e *Engine) TrackingNumbersForStage(stage production.Stage) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sources, err := production.SourceLocations(e.resolver, stage)
	if err != nil {
		return nil, err
	}
	sourceSet := make(map[string]struct{}, len(sources))
	for _, id := range sources {
		sourceSet[id] = struct{}{}
	}

	var withOps map[string]struct{}
	if stage != production.StageCutting {
		withOps = make(map[string]struct{})
		for _, op := range e.snap.SewingOperations {
			if production.Stage(op.Type) == stage {
				withOps[op.TrackingNumber] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, entry := range e.snap.Ledger {
		if _, ok := sourceSet[entry.GodownID]; !ok {
			continue
		}
		if withOps != nil {
			if _, ok := withOps[entry.TrackingNumber]; !ok {
				continue
			}
		}
		if _, ok := seen[entry.TrackingNumber]; ok {
			continue
		}
		seen[entry.TrackingNumber] = struct{}{}
		out = append(out, entry.TrackingNumber)
	}
	sort.Strings(out)
	return out, nil
}
