package domain

import "time"

// Role tags a connection as an inference worker or a captioned client.
type Role string

const (
	RoleWorker Role = "worker"
	RoleClient Role = "client"
)

// Valid reports whether the role is one the hub accepts.
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleClient
}

// ConnectionInfo is the hub's view of one live transport session. Room is
// mutable: idle workers start roomless until pairing assigns one.
type ConnectionInfo struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Room        string    `json:"room"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}
