package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/platform/httpx"
	"github.com/loomline-erp/loomline-erp/internal/shared"
)

// Service abstracts the engine operations the handler needs.
type Service interface {
	PurchaseOrders() []PurchaseOrder
	CreatePurchaseOrder(ctx context.Context, actor string, po PurchaseOrder) (PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, actor string, po PurchaseOrder) (PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, actor, id string) error

	SalesOrders() []SalesOrder
	CreateSalesOrder(ctx context.Context, actor string, so SalesOrder) (SalesOrder, error)
	UpdateSalesOrder(ctx context.Context, actor string, so SalesOrder) (SalesOrder, error)
	DeleteSalesOrder(ctx context.Context, actor, id string) error
}

// Handler wires order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", h.listPurchases)
		r.Post("/", h.createPurchase)
		r.Put("/{id}", h.updatePurchase)
		r.Delete("/{id}", h.deletePurchase)
	})
	r.Route("/sales-orders", func(r chi.Router) {
		r.Get("/", h.listSales)
		r.Post("/", h.createSales)
		r.Put("/{id}", h.updateSales)
		r.Delete("/{id}", h.deleteSales)
	})
}

type purchaseRequest struct {
	OrderNumber        string         `json:"purchaseOrderNumber" validate:"required,max=100"`
	VendorID           string         `json:"vendorId" validate:"required"`
	OrderDate          string         `json:"orderDate" validate:"required"`
	TrackingNumber     string         `json:"trackingNumber" validate:"required,max=100"`
	PartyChallanNumber string         `json:"partyChallanNumber" validate:"max=100"`
	ItemID             string         `json:"itemId" validate:"required"`
	GodownID           string         `json:"godownId" validate:"required"`
	Items              []OrderItem    `json:"items" validate:"required,min=1,dive"`
	Status             PurchaseStatus `json:"status" validate:"required,oneof=PENDING RECEIVED CANCELLED"`
}

type salesRequest struct {
	OrderNumber    string      `json:"salesOrderNumber" validate:"required,max=100"`
	CustomerID     string      `json:"customerId" validate:"required"`
	OrderDate      string      `json:"orderDate" validate:"required"`
	TrackingNumber string      `json:"trackingNumber" validate:"required,max=100"`
	GodownID       string      `json:"godownId" validate:"required"`
	Items          []OrderItem `json:"items" validate:"required,min=1,dive"`
	Status         SalesStatus `json:"status" validate:"required,oneof=PENDING DISPATCHED CANCELLED"`
}

func (r purchaseRequest) order(id string) PurchaseOrder {
	return PurchaseOrder{
		ID:                 id,
		OrderNumber:        r.OrderNumber,
		VendorID:           r.VendorID,
		OrderDate:          r.OrderDate,
		TrackingNumber:     r.TrackingNumber,
		PartyChallanNumber: r.PartyChallanNumber,
		ItemID:             r.ItemID,
		GodownID:           r.GodownID,
		Items:              r.Items,
		Status:             r.Status,
	}
}

func (r salesRequest) order(id string) SalesOrder {
	return SalesOrder{
		ID:             id,
		OrderNumber:    r.OrderNumber,
		CustomerID:     r.CustomerID,
		OrderDate:      r.OrderDate,
		TrackingNumber: r.TrackingNumber,
		GodownID:       r.GodownID,
		Items:          r.Items,
		Status:         r.Status,
	}
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PurchaseOrders())
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), shared.ActorFromContext(r.Context()), req.order(""))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	po, err := h.service.UpdatePurchaseOrder(r.Context(), shared.ActorFromContext(r.Context()), req.order(chi.URLParam(r, "id")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePurchaseOrder(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.SalesOrders())
}

func (h *Handler) createSales(w http.ResponseWriter, r *http.Request) {
	var req salesRequest
	if !h.decode(w, r, &req) {
		return
	}
	so, err := h.service.CreateSalesOrder(r.Context(), shared.ActorFromContext(r.Context()), req.order(""))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, so)
}

func (h *Handler) updateSales(w http.ResponseWriter, r *http.Request) {
	var req salesRequest
	if !h.decode(w, r, &req) {
		return
	}
	so, err := h.service.UpdateSalesOrder(r.Context(), shared.ActorFromContext(r.Context()), req.order(chi.URLParam(r, "id")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, so)
}

func (h *Handler) deleteSales(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSalesOrder(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, masterdata.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateTracking):
		httpx.Problem(w, http.StatusConflict, "Duplicate Tracking Number", err.Error())
	case errors.Is(err, ErrReversalConflict):
		httpx.Problem(w, http.StatusConflict, "Reversal Conflict", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrUnknownStatus), errors.Is(err, ErrNoItems), errors.Is(err, masterdata.ErrValidation), errors.Is(err, ledger.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("order request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
