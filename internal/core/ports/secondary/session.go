package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/signcall-2025.net/internal/domain"
)

// SessionRepository persists room occupation history. All writes are
// best-effort from the hub's point of view; failures must not affect
// routing.
type SessionRepository interface {
	// OpenSession records a room gaining its first member.
	OpenSession(ctx context.Context, session *domain.RoomSession) error

	// CloseSession stamps the end of a room occupation.
	CloseSession(ctx context.Context, sessionID uuid.UUID) error

	// IncrementCaptions bumps the caption counter for an open session.
	IncrementCaptions(ctx context.Context, sessionID uuid.UUID, delta int) error

	// UpdatePeakMembers raises the recorded peak member count.
	UpdatePeakMembers(ctx context.Context, sessionID uuid.UUID, members int) error

	// GetRecentSessions lists the most recently started sessions.
	GetRecentSessions(ctx context.Context, limit int) ([]*domain.RoomSession, error)
}
