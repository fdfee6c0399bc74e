package engine

import (
	"context"
	"fmt"

	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/state"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

const (
	idemModuleTransfer = "stock.transfer"
	idemModuleOutward  = "stock.outward"
)

// checkIdempotent reserves the challan number so a retried request cannot
// book the same movement twice. The reservation is released when the commit
// fails, since the movement never happened.
func (e *Engine) checkIdempotent(ctx context.Context, key, module string) (func(), error) {
	if e.idem == nil || key == "" {
		return func() {}, nil
	}
	if err := e.idem.CheckAndInsert(ctx, key, module); err != nil {
		return nil, err
	}
	return func() {
		if err := e.idem.Delete(ctx, key); err != nil {
			e.log.Warn("idempotency rollback failed", "key", key, "error", err)
		}
	}, nil
}

// RecordInternalTransfer books a stock movement between two godowns. The
// record is append-only; there is no update or reversal.
func (e *Engine) RecordInternalTransfer(ctx context.Context, actor string, t stocktx.InternalTransfer) (stocktx.InternalTransfer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasGodown(t.FromGodownID) || !e.hasGodown(t.ToGodownID) {
		return stocktx.InternalTransfer{}, fmt.Errorf("%w: godown", masterdata.ErrNotFound)
	}
	release, err := e.checkIdempotent(ctx, t.InternalChallanNumber, idemModuleTransfer)
	if err != nil {
		return stocktx.InternalTransfer{}, err
	}
	nextLedger, err := stocktx.ApplyTransfer(e.snap.Ledger, t)
	if err != nil {
		release()
		return stocktx.InternalTransfer{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.InternalTransfers = append(next.InternalTransfers, t)
	meta := map[string]any{"trackingNumber": t.TrackingNumber, "from": t.FromGodownID, "to": t.ToGodownID}
	if err := e.commit(ctx, next, nil, actor, "stock.transfer", "internal_transfer", t.InternalChallanNumber, meta); err != nil {
		release()
		return stocktx.InternalTransfer{}, err
	}
	return t, nil
}

// RecordGoodsOutward books stock leaving the operation outside a sales
// order. Append-only, like transfers.
func (e *Engine) RecordGoodsOutward(ctx context.Context, actor string, o stocktx.GoodsOutward) (stocktx.GoodsOutward, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasGodown(o.GodownID) {
		return stocktx.GoodsOutward{}, fmt.Errorf("%w: godown %s", masterdata.ErrNotFound, o.GodownID)
	}
	release, err := e.checkIdempotent(ctx, o.OutwardChallanNumber, idemModuleOutward)
	if err != nil {
		return stocktx.GoodsOutward{}, err
	}
	nextLedger, err := stocktx.ApplyOutward(e.snap.Ledger, o)
	if err != nil {
		release()
		return stocktx.GoodsOutward{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.GoodsOutward = append(next.GoodsOutward, o)
	meta := map[string]any{"trackingNumber": o.TrackingNumber, "party": o.PartyName}
	if err := e.commit(ctx, next, nil, actor, "stock.outward", "goods_outward", o.OutwardChallanNumber, meta); err != nil {
		release()
		return stocktx.GoodsOutward{}, err
	}
	return o, nil
}

// RecordWorkEntry books production work and moves stock through the
// pipeline. Cutting may define its output garment inline via newItem; the
// item is created in the same commit as the work that produces into it.
func (e *Engine) RecordWorkEntry(ctx context.Context, actor string, w production.WorkEntry, newItem *masterdata.Item) (production.WorkEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !production.ValidStage(w.Type) {
		return production.WorkEntry{}, production.ErrUnknownStage
	}
	if w.TrackingNumber == "" {
		return production.WorkEntry{}, fmt.Errorf("%w: tracking number required", masterdata.ErrValidation)
	}

	next := e.snap.Clone()
	switch w.Type {
	case production.StageCutting:
		if newItem != nil {
			if err := validateItem(*newItem); err != nil {
				return production.WorkEntry{}, err
			}
			newItem.ID = e.newID()
			next.Items = append(next.Items, *newItem)
			w.OutputItemID = newItem.ID
		}
		if !e.itemExists(next, w.OutputItemID) {
			return production.WorkEntry{}, fmt.Errorf("%w: output item %s", masterdata.ErrNotFound, w.OutputItemID)
		}
	case production.StageSewing, production.StageFinishing:
		op, ok := e.findOperation(w.OperationID)
		if !ok {
			return production.WorkEntry{}, fmt.Errorf("%w: operation %s", masterdata.ErrNotFound, w.OperationID)
		}
		if production.Stage(op.Type) != w.Type {
			return production.WorkEntry{}, fmt.Errorf("%w: operation %s belongs to stage %s", masterdata.ErrValidation, op.OperationName, op.Type)
		}
		if op.TrackingNumber != w.TrackingNumber {
			return production.WorkEntry{}, fmt.Errorf("%w: operation %s belongs to tracking number %s", masterdata.ErrValidation, op.OperationName, op.TrackingNumber)
		}
	}

	nextLedger, err := e.transformer.Apply(e.snap.Ledger, w)
	if err != nil {
		return production.WorkEntry{}, err
	}
	w.ID = e.newID()
	w.UserID = actor
	next.Ledger = nextLedger
	next.WorkEntries = append(next.WorkEntries, w)
	meta := map[string]any{"trackingNumber": w.TrackingNumber, "stage": w.Type}
	if err := e.commit(ctx, next, nil, actor, "production.record", "work_entry", w.ID, meta); err != nil {
		return production.WorkEntry{}, err
	}
	return w, nil
}

func (e *Engine) itemExists(snap state.Snapshot, id string) bool {
	for _, item := range snap.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) findOperation(id string) (masterdata.SewingOperation, bool) {
	for _, op := range e.snap.SewingOperations {
		if op.ID == id {
			return op, true
		}
	}
	return masterdata.SewingOperation{}, false
}
