package hub

import (
	"context"
	"sync"
	"time"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

var _ IHubService = (*HubService)(nil)

// bindNotification tells a just-paired worker which room it now serves.
type bindNotification struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

type entry struct {
	sess primary.Session
	info domain.ConnectionInfo
}

// HubService keeps every mutation of the live set, the idle pool and the
// room tags inside one mutex. Two clients joining the same empty room
// concurrently can therefore never claim the same idle worker.
type HubService struct {
	mu      sync.Mutex
	entries map[string]*entry
	idle    map[string]struct{}
	logger  primary.Logger
}

// NewHubService creates an empty session directory.
func NewHubService(logger primary.Logger) *HubService {
	return &HubService{
		entries: make(map[string]*entry),
		idle:    make(map[string]struct{}),
		logger:  logger,
	}
}

// Register adds a connection and runs the pairing policy. Clients do not
// wait: with no idle worker the client joins the room alone. Worker
// selection among several idle workers is arbitrary.
func (s *HubService) Register(ctx context.Context, sess primary.Session, role domain.Role, room string) {
	info := domain.ConnectionInfo{
		ID:          sess.ID(),
		Role:        role,
		Room:        room,
		RemoteAddr:  sess.RemoteAddr(),
		ConnectedAt: time.Now(),
	}

	var bound primary.Session
	s.mu.Lock()
	s.entries[sess.ID()] = &entry{sess: sess, info: info}

	switch {
	case role == domain.RoleWorker && room == "":
		s.idle[sess.ID()] = struct{}{}
	case role != domain.RoleWorker && room != "":
		// Pop any idle worker and assign it this room, atomically with
		// the pool removal.
		for id := range s.idle {
			delete(s.idle, id)
			worker := s.entries[id]
			worker.info.Room = room
			bound = worker.sess
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("connection registered", "id", sess.ID(), "role", role, "room", room)

	// Fire-and-forget: a failed bind delivery is logged, the pairing
	// stands. There is no acknowledgement or rollback.
	if bound != nil {
		if err := bound.Send(bindNotification{Type: "bind", RoomID: room}); err != nil {
			s.logger.Error("failed to deliver bind notification", "workerID", bound.ID(), "room", room, "error", err)
		} else {
			s.logger.Info("worker bound to room", "workerID", bound.ID(), "room", room)
		}
	}
}

// Unregister removes a connection. Safe to call multiple times and from
// any handler's disconnect path.
func (s *HubService) Unregister(ctx context.Context, sess primary.Session) (domain.ConnectionInfo, bool) {
	s.mu.Lock()
	e, ok := s.entries[sess.ID()]
	if !ok {
		s.mu.Unlock()
		return domain.ConnectionInfo{}, false
	}
	delete(s.entries, sess.ID())
	delete(s.idle, sess.ID())
	info := e.info
	s.mu.Unlock()

	s.logger.Info("connection unregistered", "id", info.ID, "role", info.Role, "room", info.Room)
	return info, true
}

// RoomOf returns the connection's current room tag.
func (s *HubService) RoomOf(sess primary.Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sess.ID()]; ok {
		return e.info.Room
	}
	return ""
}

// MembersOf snapshots the live members of a room. Callers iterate the
// snapshot, never the shared map, since sends may race with membership
// changes.
func (s *HubService) MembersOf(room string) []primary.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]primary.Session, 0)
	if room == "" {
		return members
	}
	for _, e := range s.entries {
		if e.info.Room == room {
			members = append(members, e.sess)
		}
	}
	return members
}

// MembersOfRole snapshots room members with the given role.
func (s *HubService) MembersOfRole(room string, role domain.Role) []primary.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]primary.Session, 0)
	if room == "" {
		return members
	}
	for _, e := range s.entries {
		if e.info.Room == room && e.info.Role == role {
			members = append(members, e.sess)
		}
	}
	return members
}

// RoomSize counts live members of a room.
func (s *HubService) RoomSize(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room == "" {
		return 0
	}
	count := 0
	for _, e := range s.entries {
		if e.info.Room == room {
			count++
		}
	}
	return count
}

// IdleWorkers counts pool entries.
func (s *HubService) IdleWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idle)
}
