package ledger

// Ledger is the complete set of stock entries. Mutating operations return a
// new value and leave the receiver untouched; entries that are not affected
// by an operation are shared between the old and new values, so a failed
// transaction simply discards the candidate ledger.
type Ledger []Entry

// Find returns the entry for the (trackingNumber, godownID) pair.
func (l Ledger) Find(trackingNumber, godownID string) (Entry, bool) {
	if i := l.index(trackingNumber, godownID); i >= 0 {
		return l[i], true
	}
	return Entry{}, false
}

// HasTracking reports whether any entry exists for the tracking number.
func (l Ledger) HasTracking(trackingNumber string) bool {
	for _, e := range l {
		if e.TrackingNumber == trackingNumber {
			return true
		}
	}
	return false
}

// ProvenanceFor returns the descriptive fields of any existing entry sharing
// the tracking number, used when a transaction creates a sibling entry at a
// new godown.
func (l Ledger) ProvenanceFor(trackingNumber string) (Provenance, bool) {
	for _, e := range l {
		if e.TrackingNumber == trackingNumber {
			return e.Provenance(), true
		}
	}
	return Provenance{}, false
}

// Available returns the quantity on hand for one (color, size) line at a godown.
func (l Ledger) Available(trackingNumber, godownID, color, size string) int {
	entry, ok := l.Find(trackingNumber, godownID)
	if !ok {
		return 0
	}
	for _, line := range entry.Stock {
		if line.Color == color && line.Size == size {
			return line.Quantity
		}
	}
	return 0
}

// Add increases the (color, size) line of the entry by qty, creating the
// entry from prov and/or the line as needed. qty must be positive.
func (l Ledger) Add(trackingNumber, godownID, color, size string, qty int, prov Provenance) (Ledger, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	next := l.cloneHeaders()
	i := next.index(trackingNumber, godownID)
	if i < 0 {
		next = append(next, Entry{
			TrackingNumber:     trackingNumber,
			GodownID:           godownID,
			ItemID:             prov.ItemID,
			PartyChallanNumber: prov.PartyChallanNumber,
			ChallanDate:        prov.ChallanDate,
			Stock:              []StockLine{{Color: color, Size: size, Quantity: qty}},
		})
		return next, nil
	}
	entry := next[i]
	stock := make([]StockLine, len(entry.Stock), len(entry.Stock)+1)
	copy(stock, entry.Stock)
	found := false
	for j := range stock {
		if stock[j].Color == color && stock[j].Size == size {
			stock[j].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		stock = append(stock, StockLine{Color: color, Size: size, Quantity: qty})
	}
	entry.Stock = stock
	next[i] = entry
	return next, nil
}

// Subtract decreases the (color, size) line of the entry by qty. A line that
// reaches zero is pruned, and an entry left without lines is removed.
func (l Ledger) Subtract(trackingNumber, godownID, color, size string, qty int) (Ledger, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	i := l.index(trackingNumber, godownID)
	if i < 0 {
		return nil, ErrInsufficientStock
	}
	entry := l[i]
	lineIdx := -1
	for j, line := range entry.Stock {
		if line.Color == color && line.Size == size {
			lineIdx = j
			break
		}
	}
	if lineIdx < 0 || entry.Stock[lineIdx].Quantity < qty {
		return nil, ErrInsufficientStock
	}
	next := l.cloneHeaders()
	stock := make([]StockLine, len(entry.Stock))
	copy(stock, entry.Stock)
	stock[lineIdx].Quantity -= qty
	if stock[lineIdx].Quantity == 0 {
		stock = append(stock[:lineIdx], stock[lineIdx+1:]...)
	}
	if len(stock) == 0 {
		next = append(next[:i], next[i+1:]...)
		return next, nil
	}
	entry.Stock = stock
	next[i] = entry
	return next, nil
}

// EntriesForTracking returns all entries sharing a tracking number.
func (l Ledger) EntriesForTracking(trackingNumber string) []Entry {
	var out []Entry
	for _, e := range l {
		if e.TrackingNumber == trackingNumber {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy, safe to hand to callers outside the engine.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for i, e := range l {
		stock := make([]StockLine, len(e.Stock))
		copy(stock, e.Stock)
		e.Stock = stock
		out[i] = e
	}
	return out
}

func (l Ledger) index(trackingNumber, godownID string) int {
	for i, e := range l {
		if e.TrackingNumber == trackingNumber && e.GodownID == godownID {
			return i
		}
	}
	return -1
}

// cloneHeaders copies the entry slice without copying the per-entry stock
// slices; callers clone the stock of any entry they touch.
func (l Ledger) cloneHeaders() Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}
