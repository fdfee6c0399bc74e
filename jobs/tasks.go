package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockIntegrity is the task type for the ledger integrity scan.
	TaskStockIntegrity = "stock:integrity"
	// TaskIdempotencyCleanup is the task type for expiring processed
	// challan keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// NewStockIntegrityTask constructs an Asynq task for the integrity scan.
func NewStockIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskStockIntegrity, nil)
}

// IdempotencyCleanupPayload carries the retention window for key cleanup.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencyCleanupTask constructs an Asynq task for key cleanup.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
