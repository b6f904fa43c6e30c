package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomSession records one occupation of a room, from first member joining
// until the room empties.
type RoomSession struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RoomID       string     `db:"room_id" json:"room_id"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	EndedAt      *time.Time `db:"ended_at" json:"ended_at"`
	CaptionCount int        `db:"caption_count" json:"caption_count"`
	PeakMembers  int        `db:"peak_members" json:"peak_members"`
}

type RoomSessionTable struct {
	ID           string
	RoomID       string
	StartedAt    string
	EndedAt      string
	CaptionCount string
	PeakMembers  string
}

func (t RoomSessionTable) TableName() string {
	return "room_sessions"
}

func GetRoomSessionTable() RoomSessionTable {
	return RoomSessionTable{
		ID:           "id",
		RoomID:       "room_id",
		StartedAt:    "started_at",
		EndedAt:      "ended_at",
		CaptionCount: "caption_count",
		PeakMembers:  "peak_members",
	}
}
