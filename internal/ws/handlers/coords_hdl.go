package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/services/hub"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/ws/connectionmanager"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
)

var _ primary.MessageHandler = (*CoordsHandler)(nil)

// CoordsHandler answers coordinate telemetry with an ack. This path is
// pure echo: it must keep working with no model loaded.
type CoordsHandler struct {
	Hub    hub.IHubService
	Logger primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *CoordsHandler) HandleMessage(ctx context.Context, sess primary.Session, payload []byte) error {
	var data defs.CoordsData
	if err := json.Unmarshal(payload, &data); err != nil {
		h.Logger.Error("Failed to parse coords payload", "error", err)
		connectionmanager.SendErrorMessage(sess, defs.CodeInvalidPayload, "Invalid coords data")
		return err
	}

	points := 0
	for _, hand := range data.Hands {
		points += len(hand)
	}

	ack := defs.CoordsAck{
		Type:   defs.TypeCoordsAck,
		CorrID: data.CorrID,
		Hands:  len(data.Hands),
		Count:  points,
	}
	if err := sess.Send(ack); err != nil {
		return fmt.Errorf("failed to send coords ack: %w", err)
	}

	// Debug caption so connected clients can see traffic is flowing.
	room := data.RoomID
	if room == "" {
		room = h.Hub.RoomOf(sess)
	}
	caption := defs.CaptionResult{
		Type:   defs.TypeCaption,
		Text:   fmt.Sprintf("좌표 수신: hands=%d, points=%d", ack.Hands, ack.Count),
		CorrID: data.CorrID,
	}
	for _, member := range h.Hub.MembersOfRole(room, domain.RoleClient) {
		if member.ID() == sess.ID() {
			continue
		}
		if err := member.Send(caption); err != nil {
			h.Logger.Error("Failed to send debug caption", "id", member.ID(), "error", err)
		}
	}

	return nil
}
