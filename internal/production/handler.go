package production

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/platform/httpx"
	"github.com/loomline-erp/loomline-erp/internal/shared"
)

// Service abstracts the engine operations the handler needs.
type Service interface {
	WorkEntries(stage Stage) []WorkEntry
	RecordWorkEntry(ctx context.Context, actor string, w WorkEntry, newItem *masterdata.Item) (WorkEntry, error)
	TrackingNumbersForStage(stage Stage) ([]string, error)
}

// Handler wires production endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/work-entries", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
	})
	r.Get("/stages/{stage}/tracking-numbers", h.trackingNumbers)
}

type workEntryRequest struct {
	Date           string `json:"date" validate:"required"`
	TrackingNumber string `json:"trackingNumber" validate:"required,max=100"`
	Type           Stage  `json:"type" validate:"required,oneof=CUTTING SEWING FINISHING"`

	LayerLength  float64            `json:"layerLength" validate:"gte=0"`
	NumLayers    int                `json:"numLayers" validate:"gte=0"`
	FabricColor  string             `json:"fabricColor" validate:"max=100"`
	LayerWeight  float64            `json:"layerWeight" validate:"gte=0"`
	FabricUsedKg int                `json:"fabricUsedKg" validate:"gte=0"`
	DrawingPcs   int                `json:"drawingPcs" validate:"gte=0"`
	OutputItemID string             `json:"outputItemId"`
	OutputStock  []ledger.StockLine `json:"outputStock" validate:"omitempty,dive"`
	NewItem      *masterdata.Item   `json:"newItem,omitempty"`

	OperationID    string             `json:"operationId"`
	Quantity       int                `json:"quantity" validate:"gte=0"`
	ProcessedStock []ledger.StockLine `json:"processedStock" validate:"omitempty,dive"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	stage := Stage(r.URL.Query().Get("stage"))
	if stage != "" && !ValidStage(stage) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Stage", string(stage))
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.WorkEntries(stage))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req workEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry := WorkEntry{
		Date:           req.Date,
		TrackingNumber: req.TrackingNumber,
		Type:           req.Type,
		LayerLength:    req.LayerLength,
		NumLayers:      req.NumLayers,
		FabricColor:    req.FabricColor,
		LayerWeight:    req.LayerWeight,
		FabricUsedKg:   req.FabricUsedKg,
		DrawingPcs:     req.DrawingPcs,
		OutputItemID:   req.OutputItemID,
		OutputStock:    req.OutputStock,
		OperationID:    req.OperationID,
		Quantity:       req.Quantity,
		ProcessedStock: req.ProcessedStock,
	}
	entry, err := h.service.RecordWorkEntry(r.Context(), shared.ActorFromContext(r.Context()), entry, req.NewItem)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) trackingNumbers(w http.ResponseWriter, r *http.Request) {
	stage := Stage(chi.URLParam(r, "stage"))
	if !ValidStage(stage) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Stage", string(stage))
		return
	}
	tns, err := h.service.TrackingNumbersForStage(stage)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if tns == nil {
		tns = []string{}
	}
	httpx.JSON(w, http.StatusOK, tns)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, masterdata.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, godown.ErrRoleNotConfigured):
		httpx.Problem(w, http.StatusConflict, "Pipeline Not Configured", err.Error())
	case errors.Is(err, ErrUnknownStage), errors.Is(err, ErrEmptyWork),
		errors.Is(err, masterdata.ErrValidation), errors.Is(err, ledger.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("work entry failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
