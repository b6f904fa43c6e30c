package handlers

import (
	"context"
	"encoding/json"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/services/caption"
	"gitlab.com/signcall-2025.net/internal/core/services/hub"
	"gitlab.com/signcall-2025.net/internal/core/services/roomlog"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/ws/connectionmanager"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
)

var _ primary.MessageHandler = (*HandLandmarksHandler)(nil)

// HandLandmarksHandler runs the single-frame classification path and fans
// the caption out to client-role members of the sender's room.
type HandLandmarksHandler struct {
	Hub        hub.IHubService
	CaptionSvc caption.ICaptionService
	RoomLog    roomlog.IRoomLogService
	Logger     primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *HandLandmarksHandler) HandleMessage(ctx context.Context, sess primary.Session, payload []byte) error {
	var data struct {
		Landmarks json.RawMessage `json:"landmarks"`
		RoomID    string          `json:"room_id"`
		CorrID    string          `json:"corr_id"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		h.Logger.Error("Failed to parse hand landmarks", "error", err)
		connectionmanager.SendErrorMessage(sess, defs.CodeInvalidPayload, "Invalid landmark data")
		return err
	}

	// The envelope parsed; a landmarks field that is not a hand list is a
	// shape error, answered separately from payload garbage.
	var looseHands []defs.LooseHand
	if len(data.Landmarks) > 0 {
		if err := json.Unmarshal(data.Landmarks, &looseHands); err != nil {
			h.Logger.Error("Unsupported landmark shape", "error", err)
			connectionmanager.SendErrorMessage(sess, defs.CodeUnsupportedShape, "unsupported landmark shape")
			return err
		}
	}

	hands := defs.Frames(looseHands)
	h.Logger.Debug("hand_landmarks received", "hands", len(hands))

	result, err := h.CaptionSvc.CaptionFrame(ctx, hands)
	if err != nil {
		h.Logger.Error("Single-frame inference failed", "error", err)
		connectionmanager.SendErrorMessage(sess, defs.CodeInferFailed, "inference_failed")
		return err
	}

	room := data.RoomID
	if room == "" {
		room = h.Hub.RoomOf(sess)
	}

	msg := defs.CaptionResult{
		Type:       defs.TypeCaption,
		Text:       result.Text,
		Confidence: result.Confidence,
		CorrID:     data.CorrID,
	}
	for _, member := range h.Hub.MembersOfRole(room, domain.RoleClient) {
		if member.ID() == sess.ID() {
			continue
		}
		if err := member.Send(msg); err != nil {
			h.Logger.Error("Failed to deliver caption", "id", member.ID(), "error", err)
		}
	}

	if !result.Suppressed {
		h.RoomLog.CaptionEmitted(ctx, room)
	}
	return nil
}
