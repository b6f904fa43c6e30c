package presenceengine

import (
	"context"
	"time"

	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
)

// PresenceEngine periodically prunes worker registry entries whose
// last_seen fell behind the inactivity window.
type PresenceEngine struct {
	PresenceCfg  *config.PresenceSvcCfg
	presenceRepo secondary.PresenceRepository
	logger       primary.Logger
}

func NewPresenceEngine(
	presenceCfg *config.PresenceSvcCfg,
	presenceRepo secondary.PresenceRepository,
	logger primary.Logger,
) *PresenceEngine {
	return &PresenceEngine{
		PresenceCfg:  presenceCfg,
		presenceRepo: presenceRepo,
		logger:       logger,
	}
}

// StartSweepEngine runs the sweep loop until ctx is cancelled.
func (e *PresenceEngine) StartSweepEngine(ctx context.Context) {
	ticker := time.NewTicker(e.PresenceCfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.sweep(ctx)
			}
		}
	}()
}

func (e *PresenceEngine) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-e.PresenceCfg.InactiveAfter)
	if err := e.presenceRepo.RemoveInactiveWorkers(ctx, cutoff); err != nil {
		e.logger.Error("Presence sweep failed", "error", err)
		return
	}
	e.logger.Debug("Presence sweep completed", "cutoff", cutoff)
}
