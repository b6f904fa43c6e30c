package roomlog

import "context"

// IRoomLogService records room occupation history. Every method is
// best-effort: persistence failures are logged and never surface to the
// routing path.
type IRoomLogService interface {
	// MemberJoined is called after a connection is tagged with a room;
	// members is the room size including the new member.
	MemberJoined(ctx context.Context, room string, members int)

	// MemberLeft is called after a connection leaves a room; members is
	// the remaining room size.
	MemberLeft(ctx context.Context, room string, members int)

	// CaptionEmitted bumps the caption counter of the room's open session.
	CaptionEmitted(ctx context.Context, room string)
}
