package engine

import (
	"context"
	"fmt"

	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
)

func (e *Engine) hasGodown(id string) bool {
	for _, g := range e.snap.Godowns {
		if g.ID == id {
			return true
		}
	}
	return false
}

// priceItems recomputes line amounts and returns the order total.
func priceItems(items []orders.OrderItem) ([]orders.OrderItem, float64) {
	out := make([]orders.OrderItem, len(items))
	total := 0.0
	for i, item := range items {
		item.Amount = item.Rate * float64(item.Quantity)
		total += item.Amount
		out[i] = item
	}
	return out, total
}

// CreatePurchaseOrder records a purchase order and applies its ledger effect.
func (e *Engine) CreatePurchaseOrder(ctx context.Context, actor string, po orders.PurchaseOrder) (orders.PurchaseOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if po.TrackingNumber == "" {
		return orders.PurchaseOrder{}, fmt.Errorf("%w: tracking number required", masterdata.ErrValidation)
	}
	if !e.hasGodown(po.GodownID) {
		return orders.PurchaseOrder{}, fmt.Errorf("%w: godown %s", masterdata.ErrNotFound, po.GodownID)
	}
	po.ID = e.newID()
	po.Items, po.TotalAmount = priceItems(po.Items)

	nextLedger, err := orders.CreatePurchase(e.snap.Ledger, po)
	if err != nil {
		return orders.PurchaseOrder{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.PurchaseOrders = append(next.PurchaseOrders, po)
	meta := map[string]any{"trackingNumber": po.TrackingNumber, "status": po.Status}
	if err := e.commit(ctx, next, nil, actor, "purchase.create", "purchase_order", po.ID, meta); err != nil {
		return orders.PurchaseOrder{}, err
	}
	return po, nil
}

// UpdatePurchaseOrder replaces a purchase order, compensating its previous
// ledger effect before the new one is applied.
func (e *Engine) UpdatePurchaseOrder(ctx context.Context, actor string, po orders.PurchaseOrder) (orders.PurchaseOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, existing := range e.snap.PurchaseOrders {
		if existing.ID == po.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return orders.PurchaseOrder{}, orders.ErrNotFound
	}
	if !e.hasGodown(po.GodownID) {
		return orders.PurchaseOrder{}, fmt.Errorf("%w: godown %s", masterdata.ErrNotFound, po.GodownID)
	}
	prev := e.snap.PurchaseOrders[idx]
	po.Items, po.TotalAmount = priceItems(po.Items)

	nextLedger, err := orders.UpdatePurchase(e.snap.Ledger, prev, po)
	if err != nil {
		return orders.PurchaseOrder{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.PurchaseOrders[idx] = po
	meta := map[string]any{"trackingNumber": po.TrackingNumber, "status": po.Status}
	if err := e.commit(ctx, next, nil, actor, "purchase.update", "purchase_order", po.ID, meta); err != nil {
		return orders.PurchaseOrder{}, err
	}
	return po, nil
}

// DeletePurchaseOrder removes an order and reverses its ledger effect.
func (e *Engine) DeletePurchaseOrder(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, existing := range e.snap.PurchaseOrders {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return orders.ErrNotFound
	}
	nextLedger, err := orders.DeletePurchase(e.snap.Ledger, e.snap.PurchaseOrders[idx])
	if err != nil {
		return err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.PurchaseOrders = append(next.PurchaseOrders[:idx], next.PurchaseOrders[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "purchase.delete", "purchase_order", id, nil)
}

// CreateSalesOrder records a sales order and applies its ledger effect.
func (e *Engine) CreateSalesOrder(ctx context.Context, actor string, so orders.SalesOrder) (orders.SalesOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if so.TrackingNumber == "" {
		return orders.SalesOrder{}, fmt.Errorf("%w: tracking number required", masterdata.ErrValidation)
	}
	if !e.hasGodown(so.GodownID) {
		return orders.SalesOrder{}, fmt.Errorf("%w: godown %s", masterdata.ErrNotFound, so.GodownID)
	}
	so.ID = e.newID()
	so.Items, so.TotalAmount = priceItems(so.Items)

	nextLedger, err := orders.CreateSales(e.snap.Ledger, so)
	if err != nil {
		return orders.SalesOrder{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.SalesOrders = append(next.SalesOrders, so)
	meta := map[string]any{"trackingNumber": so.TrackingNumber, "status": so.Status}
	if err := e.commit(ctx, next, nil, actor, "sales.create", "sales_order", so.ID, meta); err != nil {
		return orders.SalesOrder{}, err
	}
	return so, nil
}

// UpdateSalesOrder replaces a sales order, compensating its previous ledger
// effect before the new one is applied.
func (e *Engine) UpdateSalesOrder(ctx context.Context, actor string, so orders.SalesOrder) (orders.SalesOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, existing := range e.snap.SalesOrders {
		if existing.ID == so.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return orders.SalesOrder{}, orders.ErrNotFound
	}
	if !e.hasGodown(so.GodownID) {
		return orders.SalesOrder{}, fmt.Errorf("%w: godown %s", masterdata.ErrNotFound, so.GodownID)
	}
	prev := e.snap.SalesOrders[idx]
	so.Items, so.TotalAmount = priceItems(so.Items)

	nextLedger, err := orders.UpdateSales(e.snap.Ledger, prev, so)
	if err != nil {
		return orders.SalesOrder{}, err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.SalesOrders[idx] = so
	meta := map[string]any{"trackingNumber": so.TrackingNumber, "status": so.Status}
	if err := e.commit(ctx, next, nil, actor, "sales.update", "sales_order", so.ID, meta); err != nil {
		return orders.SalesOrder{}, err
	}
	return so, nil
}

// DeleteSalesOrder removes an order and reverses its ledger effect.
func (e *Engine) DeleteSalesOrder(ctx context.Context, actor, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, existing := range e.snap.SalesOrders {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return orders.ErrNotFound
	}
	nextLedger, err := orders.DeleteSales(e.snap.Ledger, e.snap.SalesOrders[idx])
	if err != nil {
		return err
	}
	next := e.snap.Clone()
	next.Ledger = nextLedger
	next.SalesOrders = append(next.SalesOrders[:idx], next.SalesOrders[idx+1:]...)
	return e.commit(ctx, next, nil, actor, "sales.delete", "sales_order", id, nil)
}
