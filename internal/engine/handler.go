package engine

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/platform/httpx"
)

// Handler exposes read-only stock views over the engine.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a Handler instance.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// MountRoutes registers stock query routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/stock", func(r chi.Router) {
		r.Get("/{trackingNumber}", h.byTracking)
		r.Get("/{trackingNumber}/summary", h.summary)
	})
}

func (h *Handler) byTracking(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.StockByTracking(r.Context(), chi.URLParam(r, "trackingNumber"))
	if entries == nil {
		entries = []ledger.Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	rows := h.engine.StockSummary(r.Context(), chi.URLParam(r, "trackingNumber"))
	if rows == nil {
		rows = []GodownStock{}
	}
	httpx.JSON(w, http.StatusOK, rows)
}
