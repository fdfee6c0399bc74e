package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomline-erp/loomline-erp/internal/godown"
	"github.com/loomline-erp/loomline-erp/internal/ledger"
	"github.com/loomline-erp/loomline-erp/internal/production"
	"github.com/loomline-erp/loomline-erp/internal/shared"
	"github.com/loomline-erp/loomline-erp/internal/state"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort abstracts duplicate-request detection for the append-only
// stock transactions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Deps groups the engine's collaborators. Audit, Cache and Idempotency are
// optional; absent ones degrade to no-ops.
type Deps struct {
	Store       state.Store
	Audit       AuditPort
	Cache       *ledger.SummaryCache
	Idempotency IdempotencyPort
	Logger      *slog.Logger
	NewID       func() string
}

// Engine owns the application state. It is the single writer: every mutating
// operation runs under its lock, builds a candidate snapshot, persists it and
// only then publishes it. Readers always see the last committed snapshot.
type Engine struct {
	mu          sync.Mutex
	snap        state.Snapshot
	resolver    *godown.Resolver
	transformer *production.Transformer

	store state.Store
	audit AuditPort
	cache *ledger.SummaryCache
	idem  IdempotencyPort
	log   *slog.Logger
	newID func() string
}

// New builds an engine over a loaded snapshot. The snapshot's godown
// configuration must form a valid pipeline.
func New(snap state.Snapshot, deps Deps) (*Engine, error) {
	snap.Normalize()
	resolver, err := godown.NewResolver(snap.Godowns)
	if err != nil {
		return nil, fmt.Errorf("engine: godown configuration: %w", err)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Engine{
		snap:        snap,
		resolver:    resolver,
		transformer: production.NewTransformer(resolver),
		store:       deps.Store,
		audit:       deps.Audit,
		cache:       deps.Cache,
		idem:        deps.Idempotency,
		log:         deps.Logger,
		newID:       deps.NewID,
	}, nil
}

// commit persists the candidate snapshot and publishes it. A non-nil
// resolver replaces the active one, for commits that changed the godown
// configuration. Audit and cache failures are logged but do not fail the
// commit; the snapshot is already durable at that point.
func (e *Engine) commit(ctx context.Context, next state.Snapshot, resolver *godown.Resolver, actor, action, entity, entityID string, meta map[string]any) error {
	if e.store != nil {
		if err := e.store.Save(ctx, next); err != nil {
			return fmt.Errorf("engine: persist snapshot: %w", err)
		}
	}
	e.snap = next
	if resolver != nil {
		e.resolver = resolver
		e.transformer = production.NewTransformer(resolver)
	}
	if e.audit != nil {
		log := shared.AuditLog{Actor: actor, Action: action, Entity: entity, EntityID: entityID, Meta: meta, At: time.Now()}
		if err := e.audit.Record(ctx, log); err != nil {
			e.log.Warn("audit record failed", "action", action, "error", err)
		}
	}
	if err := e.cache.Invalidate(ctx); err != nil {
		e.log.Warn("stock cache invalidation failed", "error", err)
	}
	e.log.Info("committed", "action", action, "entity", entity, "entity_id", entityID)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}
