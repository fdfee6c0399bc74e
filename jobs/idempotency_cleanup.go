package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/loomline-erp/loomline-erp/internal/shared"
)

const defaultIdempotencyRetention = 7 * 24 * time.Hour

// IdempotencyCleanupJob expires processed challan keys past the retention
// window.
type IdempotencyCleanupJob struct {
	store  *shared.IdempotencyStore
	logger *slog.Logger
}

// NewIdempotencyCleanupJob constructs the job.
func NewIdempotencyCleanupJob(store *shared.IdempotencyStore, logger *slog.Logger) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{store: store, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = defaultIdempotencyRetention
	}
	removed, err := j.store.Cleanup(ctx, retention)
	if err != nil {
		return err
	}
	j.logger.Info("idempotency keys cleaned",
		"removed", removed,
		"retention", retention.String())
	return nil
}
