// package sessionrepository contains the PostgreSQL implementation of the
// room session history store.
package sessionrepository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jmoiron/sqlx"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

var _ secondary.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements the SessionRepository interface with PostgreSQL
type SessionRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB, logger primary.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// OpenSession records a room gaining its first member
func (r *SessionRepository) OpenSession(ctx context.Context, session *domain.RoomSession) error {
	tbl := domain.GetRoomSessionTable()
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
	`,
		tbl.TableName(),
		tbl.ID, tbl.RoomID, tbl.StartedAt, tbl.CaptionCount, tbl.PeakMembers,
		tbl.ID,
		tbl.RoomID, tbl.RoomID,
		tbl.StartedAt, tbl.StartedAt,
		tbl.CaptionCount, tbl.CaptionCount,
		tbl.PeakMembers, tbl.PeakMembers,
	)

	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.RoomID,
		session.StartedAt,
		session.CaptionCount,
		session.PeakMembers,
	)

	if err != nil {
		r.logger.Error("Failed to open room session", "error", err)
		return fmt.Errorf("failed to open room session: %w", err)
	}

	return nil
}

// CloseSession stamps the end of a room occupation
func (r *SessionRepository) CloseSession(ctx context.Context, sessionID uuid.UUID) error {
	tbl := domain.GetRoomSessionTable()
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE %s = $2 AND %s IS NULL
	`, tbl.TableName(), tbl.EndedAt, tbl.ID, tbl.EndedAt)

	result, err := r.db.ExecContext(ctx, query, time.Now(), sessionID)
	if err != nil {
		r.logger.Error("Failed to close room session", "error", err)
		return fmt.Errorf("failed to close room session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return fmt.Errorf("error checking rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found or already closed: %s", sessionID)
	}

	return nil
}

// IncrementCaptions bumps the caption counter for an open session
func (r *SessionRepository) IncrementCaptions(ctx context.Context, sessionID uuid.UUID, delta int) error {
	tbl := domain.GetRoomSessionTable()
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + $1
		WHERE %s = $2
	`, tbl.TableName(), tbl.CaptionCount, tbl.CaptionCount, tbl.ID)

	_, err := r.db.ExecContext(ctx, query, delta, sessionID)
	if err != nil {
		r.logger.Error("Failed to increment caption count", "error", err)
		return fmt.Errorf("failed to increment caption count: %w", err)
	}

	return nil
}

// UpdatePeakMembers raises the recorded peak; GREATEST keeps the update
// monotonic without a read-modify-write round trip.
func (r *SessionRepository) UpdatePeakMembers(ctx context.Context, sessionID uuid.UUID, members int) error {
	tbl := domain.GetRoomSessionTable()
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = GREATEST(%s, $1)
		WHERE %s = $2
	`, tbl.TableName(), tbl.PeakMembers, tbl.PeakMembers, tbl.ID)

	_, err := r.db.ExecContext(ctx, query, members, sessionID)
	if err != nil {
		r.logger.Error("Failed to update peak members", "error", err)
		return fmt.Errorf("failed to update peak members: %w", err)
	}

	return nil
}

// GetRecentSessions lists the most recently started sessions
func (r *SessionRepository) GetRecentSessions(ctx context.Context, limit int) ([]*domain.RoomSession, error) {
	tbl := domain.GetRoomSessionTable()
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1
	`,
		tbl.ID, tbl.RoomID, tbl.StartedAt, tbl.EndedAt, tbl.CaptionCount, tbl.PeakMembers,
		tbl.TableName(),
		tbl.StartedAt,
	)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to get recent sessions", "error", err)
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domain.RoomSession, 0)
	for rows.Next() {
		var session domain.RoomSession
		var endedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.RoomID,
			&session.StartedAt,
			&endedAt,
			&session.CaptionCount,
			&session.PeakMembers,
		)

		if err != nil {
			r.logger.Error("Failed to scan session row", "error", err)
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}

		if endedAt.Valid {
			session.EndedAt = &endedAt.Time
		}

		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating session rows", "error", err)
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return sessions, nil
}
