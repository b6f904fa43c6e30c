package domain

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The session repository builds its SQL from these constants, so they
// must stay in step with the db tags on RoomSession.
func TestRoomSessionTableMatchesStructTags(t *testing.T) {
	tbl := GetRoomSessionTable()

	tags := make(map[string]bool)
	rt := reflect.TypeOf(RoomSession{})
	for i := 0; i < rt.NumField(); i++ {
		tags[rt.Field(i).Tag.Get("db")] = true
	}

	columns := []string{
		tbl.ID,
		tbl.RoomID,
		tbl.StartedAt,
		tbl.EndedAt,
		tbl.CaptionCount,
		tbl.PeakMembers,
	}
	require.Len(t, tags, len(columns))
	for _, col := range columns {
		assert.True(t, tags[col], "column %q has no matching db tag", col)
	}
}

func TestRoomSessionTableName(t *testing.T) {
	assert.Equal(t, "room_sessions", GetRoomSessionTable().TableName())
}
