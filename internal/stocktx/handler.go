package stocktx

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
	InternalTransfers() []InternalTransfer
	RecordInternalTransfer(ctx context.Context, actor string, t InternalTransfer) (InternalTransfer, error)
	GoodsOutwardRecords() []GoodsOutward
	RecordGoodsOutward(ctx context.Context, actor string, o GoodsOutward) (GoodsOutward, error)
}

// Handler wires stock transaction endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers stock transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/internal-transfers", func(r chi.Router) {
		r.Get("/", h.listTransfers)
		r.Post("/", h.createTransfer)
	})
	r.Route("/goods-outward", func(r chi.Router) {
		r.Get("/", h.listOutward)
		r.Post("/", h.createOutward)
	})
}

type transferRequest struct {
	InternalChallanNumber string             `json:"internalChallanNumber" validate:"required,max=100"`
	Date                  string             `json:"date" validate:"required"`
	TrackingNumber        string             `json:"trackingNumber" validate:"required,max=100"`
	FromGodownID          string             `json:"fromGodownId" validate:"required"`
	ToGodownID            string             `json:"toGodownId" validate:"required"`
	Items                 []ledger.StockLine `json:"items" validate:"required,min=1,dive"`
}

type outwardRequest struct {
	OutwardChallanNumber string             `json:"outwardChallanNumber" validate:"required,max=100"`
	PartyName            string             `json:"partyName" validate:"required,max=200"`
	Date                 string             `json:"date" validate:"required"`
	TrackingNumber       string             `json:"trackingNumber" validate:"required,max=100"`
	GodownID             string             `json:"godownId" validate:"required"`
	Items                []ledger.StockLine `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.InternalTransfers())
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	t := InternalTransfer{
		InternalChallanNumber: req.InternalChallanNumber,
		Date:                  req.Date,
		TrackingNumber:        req.TrackingNumber,
		FromGodownID:          req.FromGodownID,
		ToGodownID:            req.ToGodownID,
		Items:                 req.Items,
	}
	t, err := h.service.RecordInternalTransfer(r.Context(), shared.ActorFromContext(r.Context()), t)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) listOutward(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.GoodsOutwardRecords())
}

func (h *Handler) createOutward(w http.ResponseWriter, r *http.Request) {
	var req outwardRequest
	if !h.decode(w, r, &req) {
		return
	}
	o := GoodsOutward{
		OutwardChallanNumber: req.OutwardChallanNumber,
		PartyName:            req.PartyName,
		Date:                 req.Date,
		TrackingNumber:       req.TrackingNumber,
		GodownID:             req.GodownID,
		Items:                req.Items,
	}
	o, err := h.service.RecordGoodsOutward(r.Context(), shared.ActorFromContext(r.Context()), o)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
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
	case errors.Is(err, masterdata.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Challan", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInvalidTransfer), errors.Is(err, ErrNoItems), errors.Is(err, ledger.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("stock transaction failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
