package orders

import (
	"errors"

	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

// The manager applies and reverses order ledger effects as pure
// ledger-in/ledger-out transitions. An update is always reverse-then-apply:
// the previous effect is compensated first and the new effect is evaluated
// against the post-reversal ledger, so editing an order N times leaves the
// ledger exactly as if only the final version had ever existed.

// CreatePurchase applies a new purchase order's ledger effect. The tracking
// number must not already exist anywhere in the ledger.
func CreatePurchase(l ledger.Ledger, po PurchaseOrder) (ledger.Ledger, error) {
	if len(po.Items) == 0 {
		return nil, ErrNoItems
	}
	if _, err := purchaseHasEffect(po.Status); err != nil {
		return nil, err
	}
	if l.HasTracking(po.TrackingNumber) {
		return nil, ErrDuplicateTracking
	}
	return applyPurchase(l, po)
}

// UpdatePurchase reverses the previous version's effect, then applies the
// new version against the post-reversal ledger.
func UpdatePurchase(l ledger.Ledger, prev, next PurchaseOrder) (ledger.Ledger, error) {
	if len(next.Items) == 0 {
		return nil, ErrNoItems
	}
	if _, err := purchaseHasEffect(next.Status); err != nil {
		return nil, err
	}
	reversed, err := reversePurchase(l, prev)
	if err != nil {
		return nil, err
	}
	return applyPurchase(reversed, next)
}

// DeletePurchase reverses the order's ledger effect.
func DeletePurchase(l ledger.Ledger, po PurchaseOrder) (ledger.Ledger, error) {
	return reversePurchase(l, po)
}

// CreateSales applies a new sales order's ledger effect.
func CreateSales(l ledger.Ledger, so SalesOrder) (ledger.Ledger, error) {
	if len(so.Items) == 0 {
		return nil, ErrNoItems
	}
	if _, err := salesHasEffect(so.Status); err != nil {
		return nil, err
	}
	return applySales(l, so)
}

// UpdateSales reverses the previous version's effect, then applies the new
// version against the post-reversal ledger.
func UpdateSales(l ledger.Ledger, prev, next SalesOrder) (ledger.Ledger, error) {
	if len(next.Items) == 0 {
		return nil, ErrNoItems
	}
	if _, err := salesHasEffect(next.Status); err != nil {
		return nil, err
	}
	reversed, err := reverseSales(l, prev)
	if err != nil {
		return nil, err
	}
	return applySales(reversed, next)
}

// DeleteSales reverses the order's ledger effect.
func DeleteSales(l ledger.Ledger, so SalesOrder) (ledger.Ledger, error) {
	return reverseSales(l, so)
}

// applyPurchase performs the forward effect: a RECEIVED order books a
// receipt into its godown; other statuses leave the ledger untouched.
func applyPurchase(l ledger.Ledger, po PurchaseOrder) (ledger.Ledger, error) {
	effect, err := purchaseHasEffect(po.Status)
	if err != nil {
		return nil, err
	}
	if !effect {
		return l, nil
	}
	prov := ledger.Provenance{
		ItemID:             po.ItemID,
		PartyChallanNumber: po.PartyChallanNumber,
		ChallanDate:        po.OrderDate,
	}
	return stocktx.Receipt(l, po.TrackingNumber, po.GodownID, prov, stockLines(po.Items))
}

// reversePurchase compensates a previously applied effect by subtracting the
// booked receipt. When downstream work already consumed the stock the
// subtraction would go negative, which is a reversal conflict rather than
// plain insufficiency.
func reversePurchase(l ledger.Ledger, po PurchaseOrder) (ledger.Ledger, error) {
	effect, err := purchaseHasEffect(po.Status)
	if err != nil {
		return nil, err
	}
	if !effect {
		return l, nil
	}
	next, err := stocktx.Dispatch(l, po.TrackingNumber, po.GodownID, stockLines(po.Items))
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientStock) {
			return nil, ErrReversalConflict
		}
		return nil, err
	}
	return next, nil
}

// applySales performs the forward effect: a DISPATCHED order draws its items
// out of the godown.
func applySales(l ledger.Ledger, so SalesOrder) (ledger.Ledger, error) {
	effect, err := salesHasEffect(so.Status)
	if err != nil {
		return nil, err
	}
	if !effect {
		return l, nil
	}
	return stocktx.Dispatch(l, so.TrackingNumber, so.GodownID, stockLines(so.Items))
}

// reverseSales adds a previously dispatched quantity back. The entry may
// have been pruned by the dispatch, so provenance is recovered from any
// sibling entry on the same tracking number.
func reverseSales(l ledger.Ledger, so SalesOrder) (ledger.Ledger, error) {
	effect, err := salesHasEffect(so.Status)
	if err != nil {
		return nil, err
	}
	if !effect {
		return l, nil
	}
	prov, _ := l.ProvenanceFor(so.TrackingNumber)
	return stocktx.Receipt(l, so.TrackingNumber, so.GodownID, prov, stockLines(so.Items))
}
