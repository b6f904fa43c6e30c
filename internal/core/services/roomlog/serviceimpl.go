package roomlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

var _ IRoomLogService = (*RoomLogService)(nil)

// RoomLogService tracks which rooms currently have an open session row and
// forwards lifecycle events to the repository.
type RoomLogService struct {
	mu     sync.Mutex
	open   map[string]uuid.UUID
	peak   map[string]int
	repo   secondary.SessionRepository
	logger primary.Logger
}

// NewRoomLogService creates the service. repo may be nil when history is
// disabled; every method then degrades to a no-op.
func NewRoomLogService(repo secondary.SessionRepository, logger primary.Logger) *RoomLogService {
	return &RoomLogService{
		open:   make(map[string]uuid.UUID),
		peak:   make(map[string]int),
		repo:   repo,
		logger: logger,
	}
}

func (s *RoomLogService) MemberJoined(ctx context.Context, room string, members int) {
	if s.repo == nil || room == "" {
		return
	}

	s.mu.Lock()
	sessionID, ok := s.open[room]
	if !ok {
		sessionID = uuid.New()
		s.open[room] = sessionID
		s.peak[room] = 0
	}
	raisePeak := members > s.peak[room]
	if raisePeak {
		s.peak[room] = members
	}
	s.mu.Unlock()

	if !ok {
		session := &domain.RoomSession{
			ID:          sessionID,
			RoomID:      room,
			StartedAt:   time.Now(),
			PeakMembers: members,
		}
		if err := s.repo.OpenSession(ctx, session); err != nil {
			s.logger.Error("Failed to open room session", "room", room, "error", err)
		}
		return
	}
	if raisePeak {
		if err := s.repo.UpdatePeakMembers(ctx, sessionID, members); err != nil {
			s.logger.Error("Failed to update peak members", "room", room, "error", err)
		}
	}
}

func (s *RoomLogService) MemberLeft(ctx context.Context, room string, members int) {
	if s.repo == nil || room == "" || members > 0 {
		return
	}

	s.mu.Lock()
	sessionID, ok := s.open[room]
	delete(s.open, room)
	delete(s.peak, room)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := s.repo.CloseSession(ctx, sessionID); err != nil {
		s.logger.Error("Failed to close room session", "room", room, "error", err)
	}
}

func (s *RoomLogService) CaptionEmitted(ctx context.Context, room string) {
	if s.repo == nil || room == "" {
		return
	}

	s.mu.Lock()
	sessionID, ok := s.open[room]
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.repo.IncrementCaptions(ctx, sessionID, 1); err != nil {
		s.logger.Error("Failed to count caption", "room", room, "error", err)
	}
}
