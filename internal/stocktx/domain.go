package stocktx

import (
	"errors"

	"github.com/loomline-erp/loomline-erp/internal/ledger"
)

// InternalTransfer is the append-only record of a stock movement between two
// godowns. Once recorded it is never edited or reversed.
type InternalTransfer struct {
	InternalChallanNumber string             `json:"internalChallanNumber"`
	Date                  string             `json:"date"`
	TrackingNumber        string             `json:"trackingNumber"`
	FromGodownID          string             `json:"fromGodownId"`
	ToGodownID            string             `json:"toGodownId"`
	Items                 []ledger.StockLine `json:"items"`
}

// GoodsOutward is the append-only record of stock leaving the operation
// outside of a sales order (job work, returns to party). Not reversible.
type GoodsOutward struct {
	OutwardChallanNumber string             `json:"outwardChallanNumber"`
	PartyName            string             `json:"partyName"`
	Date                 string             `json:"date"`
	TrackingNumber       string             `json:"trackingNumber"`
	GodownID             string             `json:"godownId"`
	Items                []ledger.StockLine `json:"items"`
}

var (
	// ErrInvalidTransfer occurs when source and destination godowns match.
	ErrInvalidTransfer = errors.New("stocktx: source and destination godown must differ")
	// ErrNoItems indicates a transaction without stock lines.
	ErrNoItems = errors.New("stocktx: transaction has no items")
)
