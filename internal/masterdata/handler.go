package masterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomline-erp/loomline-erp/internal/platform/httpx"
	"github.com/loomline-erp/loomline-erp/internal/shared"
)

// Service abstracts the engine operations the handler needs.
type Service interface {
	Items() []Item
	CreateItem(ctx context.Context, actor string, item Item) (Item, error)
	UpdateItem(ctx context.Context, actor string, item Item) (Item, error)
	DeleteItem(ctx context.Context, actor, id string) error

	Vendors() []Vendor
	CreateVendor(ctx context.Context, actor string, v Vendor) (Vendor, error)
	UpdateVendor(ctx context.Context, actor string, v Vendor) (Vendor, error)
	DeleteVendor(ctx context.Context, actor, id string) error

	Customers() []Customer
	CreateCustomer(ctx context.Context, actor string, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, actor string, c Customer) (Customer, error)
	DeleteCustomer(ctx context.Context, actor, id string) error

	SewingOperations(trackingNumber string) []SewingOperation
	OperationRateTotals(trackingNumber string) map[string]float64
	CreateSewingOperation(ctx context.Context, actor string, op SewingOperation) (SewingOperation, error)
	UpdateSewingOperation(ctx context.Context, actor string, op SewingOperation) (SewingOperation, error)
	DeleteSewingOperation(ctx context.Context, actor, id string) error
}

// Handler manages master data endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Put("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})
	r.Route("/vendors", func(r chi.Router) {
		r.Get("/", h.listVendors)
		r.Post("/", h.createVendor)
		r.Put("/{id}", h.updateVendor)
		r.Delete("/{id}", h.deleteVendor)
	})
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
	})
	r.Route("/sewing-operations", func(r chi.Router) {
		r.Get("/", h.listOperations)
		r.Get("/rate-totals", h.operationRateTotals)
		r.Post("/", h.createOperation)
		r.Put("/{id}", h.updateOperation)
		r.Delete("/{id}", h.deleteOperation)
	})
}

type itemRequest struct {
	Name   string      `json:"name" validate:"required,max=200"`
	Colors []ItemColor `json:"colors" validate:"required,min=1"`
}

type partyRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
	Phone         string `json:"phone" validate:"max=50"`
	Address       string `json:"address" validate:"max=500"`
}

type operationRequest struct {
	TrackingNumber string  `json:"trackingNumber" validate:"required,max=100"`
	OperationName  string  `json:"operationName" validate:"required,max=200"`
	MachineType    string  `json:"machineType" validate:"max=100"`
	Rate           float64 `json:"rate" validate:"gte=0"`
	Type           string  `json:"type" validate:"required,oneof=SEWING FINISHING"`
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Items())
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &itemRequest{})
	if !ok {
		return
	}
	item, err := h.service.CreateItem(r.Context(), shared.ActorFromContext(r.Context()), Item{Name: req.Name, Colors: req.Colors})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &itemRequest{})
	if !ok {
		return
	}
	item := Item{ID: chi.URLParam(r, "id"), Name: req.Name, Colors: req.Colors}
	item, err := h.service.UpdateItem(r.Context(), shared.ActorFromContext(r.Context()), item)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Vendors())
}

func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &partyRequest{})
	if !ok {
		return
	}
	v := Vendor{Name: req.Name, ContactPerson: req.ContactPerson, Phone: req.Phone, Address: req.Address}
	v, err := h.service.CreateVendor(r.Context(), shared.ActorFromContext(r.Context()), v)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) updateVendor(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &partyRequest{})
	if !ok {
		return
	}
	v := Vendor{ID: chi.URLParam(r, "id"), Name: req.Name, ContactPerson: req.ContactPerson, Phone: req.Phone, Address: req.Address}
	v, err := h.service.UpdateVendor(r.Context(), shared.ActorFromContext(r.Context()), v)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) deleteVendor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteVendor(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Customers())
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &partyRequest{})
	if !ok {
		return
	}
	c := Customer{Name: req.Name, ContactPerson: req.ContactPerson, Phone: req.Phone, Address: req.Address}
	c, err := h.service.CreateCustomer(r.Context(), shared.ActorFromContext(r.Context()), c)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &partyRequest{})
	if !ok {
		return
	}
	c := Customer{ID: chi.URLParam(r, "id"), Name: req.Name, ContactPerson: req.ContactPerson, Phone: req.Phone, Address: req.Address}
	c, err := h.service.UpdateCustomer(r.Context(), shared.ActorFromContext(r.Context()), c)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.SewingOperations(r.URL.Query().Get("trackingNumber")))
}

func (h *Handler) operationRateTotals(w http.ResponseWriter, r *http.Request) {
	trackingNumber := r.URL.Query().Get("trackingNumber")
	if trackingNumber == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "trackingNumber query parameter is required")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.OperationRateTotals(trackingNumber))
}

func (h *Handler) createOperation(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &operationRequest{})
	if !ok {
		return
	}
	op := SewingOperation{
		TrackingNumber: req.TrackingNumber,
		OperationName:  req.OperationName,
		MachineType:    req.MachineType,
		Rate:           req.Rate,
		Type:           req.Type,
	}
	op, err := h.service.CreateSewingOperation(r.Context(), shared.ActorFromContext(r.Context()), op)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, op)
}

func (h *Handler) updateOperation(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(h, w, r, &operationRequest{})
	if !ok {
		return
	}
	op := SewingOperation{
		ID:             chi.URLParam(r, "id"),
		TrackingNumber: req.TrackingNumber,
		OperationName:  req.OperationName,
		MachineType:    req.MachineType,
		Rate:           req.Rate,
		Type:           req.Type,
	}
	op, err := h.service.UpdateSewingOperation(r.Context(), shared.ActorFromContext(r.Context()), op)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, op)
}

func (h *Handler) deleteOperation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSewingOperation(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode unmarshals and validates a request body; on failure it writes the
// problem response and reports false.
func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request, req *T) (*T, bool) {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return nil, false
	}
	return req, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("masterdata request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
