package domain

import "time"

// WorkerPresence is the registry entry kept for each connected inference
// worker.
type WorkerPresence struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	IpAddress string    `json:"ip_address"`
	LastSeen  time.Time `json:"last_seen"`
	IsActive  bool      `json:"is_active"`
}
