package hub

import (
	"context"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/domain"
)

// IHubService is the session directory: the registry of live connections
// tagged with role and room, plus the idle-worker pool and the pairing
// logic that binds idle workers to newly joining clients.
type IHubService interface {
	// Register adds a connection. A roomless worker enters the idle pool;
	// a client joining a room claims an idle worker when one exists
	// (pop-and-assign is atomic) and the claimed worker is notified with a
	// fire-and-forget bind message.
	Register(ctx context.Context, sess primary.Session, role domain.Role, room string)

	// Unregister removes a connection from the live set, the idle pool and
	// its room. Idempotent: the second call reports ok=false and changes
	// nothing. The removed connection's info is returned for cleanup.
	Unregister(ctx context.Context, sess primary.Session) (domain.ConnectionInfo, bool)

	// RoomOf returns the room the connection is currently tagged with.
	RoomOf(sess primary.Session) string

	// MembersOf snapshots all live connections tagged with room.
	MembersOf(room string) []primary.Session

	// MembersOfRole snapshots room members filtered by role.
	MembersOfRole(room string, role domain.Role) []primary.Session

	// RoomSize counts live members of a room.
	RoomSize(room string) int

	// IdleWorkers counts workers not yet bound to a room.
	IdleWorkers() int
}
