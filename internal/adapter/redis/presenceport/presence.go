package presenceport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

const (
	workerKeyPrefix  = "worker:"
	workerIndexKey   = "worker:index"
	workerExpiration = 5 * time.Minute
)

var _ secondary.PresenceRepository = (*PresenceRepository)(nil)

// PresenceRepository implements the PresenceRepository interface with Redis
type PresenceRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewPresenceRepository creates a new Redis presence repository
func NewPresenceRepository(redisClient *redis.Client, logger primary.Logger) *PresenceRepository {
	return &PresenceRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveWorker saves worker presence to Redis with expiration; refreshing an
// existing entry extends its TTL.
func (r *PresenceRepository) SaveWorker(ctx context.Context, worker *domain.WorkerPresence) error {
	worker.IsActive = true

	workerJSON, err := json.Marshal(worker)
	if err != nil {
		r.logger.Error("Failed to marshal worker presence", "error", err)
		return fmt.Errorf("failed to marshal worker presence: %w", err)
	}

	workerKey := fmt.Sprintf("%s%s", workerKeyPrefix, worker.ID)
	if err := r.redisClient.Set(ctx, workerKey, workerJSON, workerExpiration).Err(); err != nil {
		r.logger.Error("Failed to save worker presence", "error", err)
		return fmt.Errorf("failed to save worker presence: %w", err)
	}

	if err := r.redisClient.SAdd(ctx, workerIndexKey, worker.ID).Err(); err != nil {
		r.logger.Error("Failed to add worker to index", "error", err)
		return fmt.Errorf("failed to add worker to index: %w", err)
	}

	return nil
}

// GetWorker retrieves worker presence from Redis by ID
func (r *PresenceRepository) GetWorker(ctx context.Context, workerID string) (*domain.WorkerPresence, error) {
	workerKey := fmt.Sprintf("%s%s", workerKeyPrefix, workerID)
	workerJSON, err := r.redisClient.Get(ctx, workerKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get worker presence", "error", err)
		return nil, fmt.Errorf("failed to get worker presence: %w", err)
	}

	var worker domain.WorkerPresence
	if err := json.Unmarshal(workerJSON, &worker); err != nil {
		r.logger.Error("Failed to unmarshal worker presence", "error", err)
		return nil, fmt.Errorf("failed to unmarshal worker presence: %w", err)
	}

	return &worker, nil
}

// GetAllWorkers retrieves every registered worker from Redis.
func (r *PresenceRepository) GetAllWorkers(ctx context.Context) ([]*domain.WorkerPresence, error) {
	var cursor uint64
	var workerKeys []string
	var workers []*domain.WorkerPresence
	var err error

	// SCAN instead of KEYS so a large registry never blocks the server
	for {
		var keys []string
		keys, cursor, err = r.redisClient.Scan(ctx, cursor, workerKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker keys: %w", err)
		}
		for _, key := range keys {
			if key == workerIndexKey {
				continue
			}
			workerKeys = append(workerKeys, key)
		}
		if cursor == 0 {
			break
		}
	}

	if len(workerKeys) == 0 {
		return workers, nil
	}

	workerData, err := r.redisClient.MGet(ctx, workerKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve worker data: %w", err)
	}

	for _, data := range workerData {
		if data == nil {
			continue
		}
		var worker domain.WorkerPresence
		if err := json.Unmarshal([]byte(data.(string)), &worker); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker data: %w", err)
		}
		workers = append(workers, &worker)
	}

	return workers, nil
}

// RemoveWorker drops a worker's presence entry and its index membership
func (r *PresenceRepository) RemoveWorker(ctx context.Context, workerID string) error {
	workerKey := fmt.Sprintf("%s%s", workerKeyPrefix, workerID)
	if err := r.redisClient.Del(ctx, workerKey).Err(); err != nil {
		r.logger.Error("Failed to remove worker presence", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to remove worker presence: %w", err)
	}

	if err := r.redisClient.SRem(ctx, workerIndexKey, workerID).Err(); err != nil {
		r.logger.Error("Failed to remove worker from index", "workerId", workerID, "error", err)
		return fmt.Errorf("failed to remove worker from index: %w", err)
	}

	return nil
}

// RemoveInactiveWorkers prunes workers not seen since cutoffTime. Key
// expiration already handles crashed workers; this pass also clears stale
// index entries and entries whose last_seen fell behind the cutoff.
func (r *PresenceRepository) RemoveInactiveWorkers(ctx context.Context, cutoffTime time.Time) error {
	workerIDs, err := r.redisClient.SMembers(ctx, workerIndexKey).Result()
	if err != nil {
		r.logger.Error("Failed to get worker index", "error", err)
		return fmt.Errorf("failed to get worker index: %w", err)
	}

	for _, workerID := range workerIDs {
		worker, err := r.GetWorker(ctx, workerID)
		if err != nil {
			r.logger.Error("Failed to check worker", "workerId", workerID, "error", err)
			continue
		}

		if worker == nil {
			// Key already expired; only the index entry remains.
			if err := r.redisClient.SRem(ctx, workerIndexKey, workerID).Err(); err != nil {
				r.logger.Error("Failed to remove worker from index", "workerId", workerID, "error", err)
			}
			continue
		}

		if worker.LastSeen.Before(cutoffTime) {
			if err := r.RemoveWorker(ctx, workerID); err != nil {
				r.logger.Error("Failed to remove inactive worker", "workerId", workerID, "error", err)
			}
		}
	}

	return nil
}
