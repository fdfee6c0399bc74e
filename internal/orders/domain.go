package orders

import (
	"errors"

	"github.com/loomline-erp/loomline-erp/internal/ledger"
)

// Purchase order lifecycle statuses.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusReceived  PurchaseStatus = "RECEIVED"
	PurchaseStatusCancelled PurchaseStatus = "CANCELLED"
)

// Sales order lifecycle statuses.
type SalesStatus string

const (
	SalesStatusPending    SalesStatus = "PENDING"
	SalesStatusDispatched SalesStatus = "DISPATCHED"
	SalesStatusCancelled  SalesStatus = "CANCELLED"
)

// OrderItem is one priced color/size line of an order.
type OrderItem struct {
	Color    string  `json:"color"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// PurchaseOrder describes goods bought in against a tracking number.
type PurchaseOrder struct {
	ID                 string         `json:"id"`
	OrderNumber        string         `json:"purchaseOrderNumber"`
	VendorID           string         `json:"vendorId"`
	OrderDate          string         `json:"orderDate"`
	TrackingNumber     string         `json:"trackingNumber"`
	PartyChallanNumber string         `json:"partyChallanNumber"`
	ItemID             string         `json:"itemId"`
	GodownID           string         `json:"godownId"`
	Items              []OrderItem    `json:"items"`
	TotalAmount        float64        `json:"totalAmount"`
	Status             PurchaseStatus `json:"status"`
}

// SalesOrder describes goods sold out of a godown.
type SalesOrder struct {
	ID             string      `json:"id"`
	OrderNumber    string      `json:"salesOrderNumber"`
	CustomerID     string      `json:"customerId"`
	OrderDate      string      `json:"orderDate"`
	TrackingNumber string      `json:"trackingNumber"`
	GodownID       string      `json:"godownId"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	Status         SalesStatus `json:"status"`
}

var (
	// ErrNotFound indicates the referenced order does not exist.
	ErrNotFound = errors.New("orders: order not found")
	// ErrDuplicateTracking occurs when a new order reuses a tracking number
	// already present in the ledger.
	ErrDuplicateTracking = errors.New("orders: tracking number already exists in ledger")
	// ErrReversalConflict occurs when undoing an order's ledger effect would
	// drive a stock line negative, typically because downstream consumption
	// already happened.
	ErrReversalConflict = errors.New("orders: reversal would drive stock negative")
	// ErrUnknownStatus indicates a status outside the lifecycle table; it
	// exists so a newly added status cannot silently bypass reversal logic.
	ErrUnknownStatus = errors.New("orders: unknown status")
	// ErrNoItems indicates an order without lines.
	ErrNoItems = errors.New("orders: order has no items")
)

// purchaseHasEffect is the explicit status-to-ledger-effect table for
// purchase orders: only RECEIVED touches the ledger.
func purchaseHasEffect(s PurchaseStatus) (bool, error) {
	switch s {
	case PurchaseStatusReceived:
		return true, nil
	case PurchaseStatusPending, PurchaseStatusCancelled:
		return false, nil
	}
	return false, ErrUnknownStatus
}

// salesHasEffect is the equivalent table for sales orders: only DISPATCHED
// touches the ledger.
func salesHasEffect(s SalesStatus) (bool, error) {
	switch s {
	case SalesStatusDispatched:
		return true, nil
	case SalesStatusPending, SalesStatusCancelled:
		return false, nil
	}
	return false, ErrUnknownStatus
}

// stockLines converts order items to ledger stock lines.
func stockLines(items []OrderItem) []ledger.StockLine {
	lines := make([]ledger.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ledger.StockLine{Color: item.Color, Size: item.Size, Quantity: item.Quantity})
	}
	return lines
}
