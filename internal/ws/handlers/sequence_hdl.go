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

var _ primary.MessageHandler = (*SequenceHandler)(nil)

// SequenceHandler runs the multi-frame classification path. Each element
// of frame_sequence is one frame of the primary hand; length is coerced
// to the canonical window before feature extraction.
type SequenceHandler struct {
	Hub        hub.IHubService
	CaptionSvc caption.ICaptionService
	RoomLog    roomlog.IRoomLogService
	Logger     primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *SequenceHandler) HandleMessage(ctx context.Context, sess primary.Session, payload []byte) error {
	var data struct {
		FrameSequence json.RawMessage `json:"frame_sequence"`
		RoomID        string          `json:"room_id"`
		CorrID        string          `json:"corr_id"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		h.Logger.Error("Failed to parse landmark sequence", "error", err)
		connectionmanager.SendErrorMessage(sess, defs.CodeInvalidPayload, "Invalid sequence data")
		return err
	}

	var looseFrames []defs.LooseHand
	if len(data.FrameSequence) > 0 {
		if err := json.Unmarshal(data.FrameSequence, &looseFrames); err != nil {
			h.Logger.Error("Unsupported frame sequence shape", "error", err)
			connectionmanager.SendErrorMessage(sess, defs.CodeUnsupportedShape, "unsupported frame sequence shape")
			return err
		}
	}

	frames := defs.Frames(looseFrames)
	h.Logger.Debug("hand_landmarks_sequence received", "frames", len(frames))

	result, err := h.CaptionSvc.CaptionSequence(ctx, frames)
	if err != nil {
		h.Logger.Error("Sequence inference failed", "error", err)
		connectionmanager.SendErrorMessage(sess, defs.CodeSequenceFailed, "sequence_inference_failed")
		return err
	}

	room := data.RoomID
	if room == "" {
		room = h.Hub.RoomOf(sess)
	}

	msg := defs.CaptionResult{
		Type:       defs.TypeSubtitle,
		Text:       result.Text,
		Confidence: result.Confidence,
		CorrID:     data.CorrID,
	}
	for _, member := range h.Hub.MembersOfRole(room, domain.RoleClient) {
		if member.ID() == sess.ID() {
			continue
		}
		if err := member.Send(msg); err != nil {
			h.Logger.Error("Failed to deliver subtitle", "id", member.ID(), "error", err)
		}
	}

	if !result.Suppressed {
		h.RoomLog.CaptionEmitted(ctx, room)
	}
	return nil
}
