package secondary

import (
	"context"
	"time"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// PresenceRepository keeps the registry of connected inference workers.
type PresenceRepository interface {
	// SaveWorker stores (or refreshes) a worker's presence entry.
	SaveWorker(ctx context.Context, worker *domain.WorkerPresence) error

	// GetWorker retrieves a worker's presence by ID; nil when absent.
	GetWorker(ctx context.Context, workerID string) (*domain.WorkerPresence, error)

	// GetAllWorkers lists every registered worker.
	GetAllWorkers(ctx context.Context) ([]*domain.WorkerPresence, error)

	// RemoveWorker drops a worker's presence entry.
	RemoveWorker(ctx context.Context, workerID string) error

	// RemoveInactiveWorkers prunes entries not seen since cutoffTime.
	RemoveInactiveWorkers(ctx context.Context, cutoffTime time.Time) error
}
