package stocktx

import "github.com/loomline-erp/loomline-erp/internal/ledger"

// Receipt merges items into the entry at (trackingNumber, godownID), creating
// it from prov when absent. Backing a RECEIVED purchase order.
func Receipt(l ledger.Ledger, trackingNumber, godownID string, prov ledger.Provenance, items []ledger.StockLine) (ledger.Ledger, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	next := l
	var err error
	for _, item := range items {
		next, err = next.Add(trackingNumber, godownID, item.Color, item.Size, item.Quantity, prov)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Dispatch subtracts items from the entry at (trackingNumber, godownID).
// Backing a DISPATCHED sales order.
func Dispatch(l ledger.Ledger, trackingNumber, godownID string, items []ledger.StockLine) (ledger.Ledger, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	next := l
	var err error
	for _, item := range items {
		next, err = next.Subtract(trackingNumber, godownID, item.Color, item.Size, item.Quantity)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// ApplyTransfer moves the transfer's items from its source godown to its
// destination. The whole transfer is atomic: the caller only sees the
// returned ledger when every line moved.
func ApplyTransfer(l ledger.Ledger, t InternalTransfer) (ledger.Ledger, error) {
	if t.FromGodownID == t.ToGodownID {
		return nil, ErrInvalidTransfer
	}
	if len(t.Items) == 0 {
		return nil, ErrNoItems
	}
	prov, _ := l.ProvenanceFor(t.TrackingNumber)
	next := l
	var err error
	for _, item := range t.Items {
		next, err = next.Subtract(t.TrackingNumber, t.FromGodownID, item.Color, item.Size, item.Quantity)
		if err != nil {
			return nil, err
		}
	}
	for _, item := range t.Items {
		next, err = next.Add(t.TrackingNumber, t.ToGodownID, item.Color, item.Size, item.Quantity, prov)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// ApplyOutward subtracts the outward's items from its godown entry.
func ApplyOutward(l ledger.Ledger, o GoodsOutward) (ledger.Ledger, error) {
	if len(o.Items) == 0 {
		return nil, ErrNoItems
	}
	next := l
	var err error
	for _, item := range o.Items {
		next, err = next.Subtract(o.TrackingNumber, o.GodownID, item.Color, item.Size, item.Quantity)
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}
