package masterdata

import "errors"

// ItemSize names one size of an item color.
type ItemSize struct {
	Name string `json:"name"`
}

// ItemColor groups the sizes available for one color of an item.
type ItemColor struct {
	Name  string     `json:"name"`
	Sizes []ItemSize `json:"sizes"`
}

// Item is a garment or material definition.
type Item struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Colors []ItemColor `json:"colors"`
}

// Vendor is a supplier of fabric or services.
type Vendor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Customer is a buyer of finished goods.
type Customer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// SewingOperation is a priced operation defined per tracking number; sewing
// and finishing work entries reference one.
type SewingOperation struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"trackingNumber"`
	OperationName  string  `json:"operationName"`
	MachineType    string  `json:"machineType"`
	Rate           float64 `json:"rate"`
	Type           string  `json:"type"`
}

var (
	// ErrNotFound indicates a missing masterdata record.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrValidation indicates invalid masterdata input.
	ErrValidation = errors.New("masterdata: invalid input")
)
