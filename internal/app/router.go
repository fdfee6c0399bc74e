package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loomline-erp/loomline-erp/internal/engine"
	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	GodownHandler     *godown.Handler
	MasterDataHandler *masterdata.Handler
	OrdersHandler     *orders.Handler
	StockTxHandler    *stocktx.Handler
	ProductionHandler *production.Handler
	StockHandler      *engine.Handler
	Pool              *pgxpool.Pool
}

// NewRouter constructs the chi.Router with Loomline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.Pool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.GodownHandler.MountRoutes(r)
		params.MasterDataHandler.MountRoutes(r)
		params.OrdersHandler.MountRoutes(r)
		params.StockTxHandler.MountRoutes(r)
		params.ProductionHandler.MountRoutes(r)
		params.StockHandler.MountRoutes(r)
	})

	return r
}
