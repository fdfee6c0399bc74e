package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hibiken/asynq"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/state"
)

// StockIntegrityJob scans the latest snapshot for ledger invariant
// violations: duplicate entry keys, non-positive stock lines, entries
// pointing at unknown godowns, broken role configuration and quantity
// conservation drift. Violations are logged rather than repaired; a
// snapshot is only ever written by the engine, so a violation means a bug
// worth investigating, not data to patch.
type StockIntegrityJob struct {
	store  state.Store
	logger *slog.Logger
}

// NewStockIntegrityJob constructs the job.
func NewStockIntegrityJob(store state.Store, logger *slog.Logger) *StockIntegrityJob {
	return &StockIntegrityJob{store: store, logger: logger}
}

// Handle processes TaskStockIntegrity tasks.
func (j *StockIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	snap, ok, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("jobs: load snapshot: %w", err)
	}
	if !ok {
		j.logger.Info("stock integrity scan skipped, no snapshot yet")
		return nil
	}

	violations := 0
	godownIDs := make(map[string]struct{}, len(snap.Godowns))
	for _, g := range snap.Godowns {
		godownIDs[g.ID] = struct{}{}
	}
	if _, err := godown.NewResolver(snap.Godowns); err != nil {
		violations++
		j.logger.Error("invalid godown configuration", "error", err)
	}

	seen := make(map[string]struct{}, len(snap.Ledger))
	for _, entry := range snap.Ledger {
		key := entry.TrackingNumber + "\x00" + entry.GodownID
		if _, dup := seen[key]; dup {
			violations++
			j.logger.Error("duplicate ledger entry", "trackingNumber", entry.TrackingNumber, "godownId", entry.GodownID)
		}
		seen[key] = struct{}{}

		if _, known := godownIDs[entry.GodownID]; !known {
			violations++
			j.logger.Error("ledger entry references unknown godown", "trackingNumber", entry.TrackingNumber, "godownId", entry.GodownID)
		}
		if len(entry.Stock) == 0 {
			violations++
			j.logger.Error("ledger entry without stock lines", "trackingNumber", entry.TrackingNumber, "godownId", entry.GodownID)
		}
		for _, line := range entry.Stock {
			if line.Quantity <= 0 {
				violations++
				j.logger.Error("non-positive stock line", "trackingNumber", entry.TrackingNumber, "godownId", entry.GodownID, "color", line.Color, "size", line.Size, "quantity", line.Quantity)
			}
		}
	}

	drifts := conservationDrift(snap)
	violations += len(drifts)
	for _, d := range drifts {
		j.logger.Error("stock conservation drift", "trackingNumber", d.TrackingNumber, "color", d.Color, "expected", d.Expected, "actual", d.Actual)
	}

	j.logger.Info("stock integrity scan finished", "entries", len(snap.Ledger), "violations", violations)
	return nil
}

// drift reports a (trackingNumber, color) whose ledger total no longer
// matches the quantity implied by the transaction history.
type drift struct {
	TrackingNumber string
	Color          string
	Expected       int
	Actual         int
}

// conservationDrift re-derives, per tracking number and color, the quantity
// the transaction history implies and compares it with the ledger. Received
// purchases add, dispatched sales and goods outward subtract, and cutting
// consumes fabric while producing garments. Internal transfers and
// sewing/finishing work only move stock between godowns, so they cancel out
// at this granularity. Conservation is checked per color rather than per
// color/size because cutting records the fabric it consumes by color and
// weight only.
func conservationDrift(snap state.Snapshot) []drift {
	type key struct{ tn, color string }
	expected := make(map[key]int)

	for _, po := range snap.PurchaseOrders {
		if po.Status != orders.PurchaseStatusReceived {
			continue
		}
		for _, item := range po.Items {
			expected[key{po.TrackingNumber, item.Color}] += item.Quantity
		}
	}
	for _, so := range snap.SalesOrders {
		if so.Status != orders.SalesStatusDispatched {
			continue
		}
		for _, item := range so.Items {
			expected[key{so.TrackingNumber, item.Color}] -= item.Quantity
		}
	}
	for _, o := range snap.GoodsOutward {
		for _, line := range o.Items {
			expected[key{o.TrackingNumber, line.Color}] -= line.Quantity
		}
	}
	for _, w := range snap.WorkEntries {
		if w.Type != production.StageCutting {
			continue
		}
		expected[key{w.TrackingNumber, w.FabricColor}] -= w.FabricUsedKg
		for _, line := range w.OutputStock {
			expected[key{w.TrackingNumber, line.Color}] += line.Quantity
		}
	}

	actual := make(map[key]int)
	for _, entry := range snap.Ledger {
		for _, line := range entry.Stock {
			actual[key{entry.TrackingNumber, line.Color}] += line.Quantity
		}
	}

	var out []drift
	for k, want := range expected {
		if got := actual[k]; got != want {
			out = append(out, drift{TrackingNumber: k.tn, Color: k.color, Expected: want, Actual: got})
		}
	}
	for k, got := range actual {
		if _, checked := expected[k]; !checked {
			out = append(out, drift{TrackingNumber: k.tn, Color: k.color, Expected: 0, Actual: got})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrackingNumber != out[j].TrackingNumber {
			return out[i].TrackingNumber < out[j].TrackingNumber
		}
		return out[i].Color < out[j].Color
	})
	return out
}
