package ledger

import "errors"

// StockLine holds the quantity of one color/size combination within an entry.
type StockLine struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Entry is the stock record for one tracking number at one godown. The pair
// (TrackingNumber, GodownID) is unique across the ledger, and an entry never
// exists with an empty stock list.
type Entry struct {
	TrackingNumber     string      `json:"trackingNumber"`
	GodownID           string      `json:"godownId"`
	ItemID             string      `json:"itemId"`
	PartyChallanNumber string      `json:"partyChallanNumber,omitempty"`
	ChallanDate        string      `json:"challanDate,omitempty"`
	Stock              []StockLine `json:"stock"`
}

// Provenance carries the descriptive fields stamped onto an entry when it is
// first created for a tracking number at a godown.
type Provenance struct {
	ItemID             string
	PartyChallanNumber string
	ChallanDate        string
}

// Provenance returns the entry's descriptive fields for reuse on derived entries.
func (e Entry) Provenance() Provenance {
	return Provenance{
		ItemID:             e.ItemID,
		PartyChallanNumber: e.PartyChallanNumber,
		ChallanDate:        e.ChallanDate,
	}
}

// TotalQuantity sums all stock lines of the entry.
func (e Entry) TotalQuantity() int {
	total := 0
	for _, line := range e.Stock {
		total += line.Quantity
	}
	return total
}

var (
	// ErrInsufficientStock occurs when a subtraction exceeds the available quantity.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrInvalidQuantity indicates a non-positive delta.
	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
)
