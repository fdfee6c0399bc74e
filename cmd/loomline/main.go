package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loomline-erp/loomline-erp/internal/app"
	"github.com/loomline-erp/loomline-erp/internal/engine"
	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/masterdata"
	"github.com/loomline-erp/loomline-erp/internal/orders"
	"github.com/loomline-erp/loomline-erp/internal/platform/cache"
	"github.com/loomline-erp/loomline-erp/internal/platform/db"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/shared"
	"github.com/loomline-erp/loomline-erp/internal/state"
	"github.com/loomline-erp/loomline-erp/internal/stocktx"
	"github.com/loomline-erp/loomline-erp/jobs"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := state.NewPostgresStore(dbpool, cfg.SnapshotKeep)
	snap, ok, err := store.Load(ctx)
	if err != nil {
		logger.Error("load snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	if !ok {
		snap = state.Seed(uuid.NewString)
		if err := store.Save(ctx, snap); err != nil {
			logger.Error("seed snapshot", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("seeded initial snapshot", slog.Int("godowns", len(snap.Godowns)))
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	stockCache := ledger.NewSummaryCache(redisClient, cfg.StockCacheTTL)

	eng, err := engine.New(snap, engine.Deps{
		Store:       store,
		Audit:       auditLogger,
		Cache:       stockCache,
		Idempotency: idempotencyStore,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("init engine", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("init job client", slog.Any("error", err))
	} else {
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		if _, err := jobClient.EnqueueStockIntegrity(ctx); err != nil {
			logger.Warn("enqueue stock integrity", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		GodownHandler:     godown.NewHandler(logger, eng),
		MasterDataHandler: masterdata.NewHandler(logger, eng),
		OrdersHandler:     orders.NewHandler(logger, eng),
		StockTxHandler:    stocktx.NewHandler(logger, eng),
		ProductionHandler: production.NewHandler(logger, eng),
		StockHandler:      engine.NewHandler(eng),
		Pool:              dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
