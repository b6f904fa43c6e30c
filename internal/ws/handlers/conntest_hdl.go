package handlers

import (
	"context"
	"encoding/json"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
)

var _ primary.MessageHandler = (*ConnectionTestHandler)(nil)

// ConnectionTestHandler answers a connectivity check directly to the
// sender; no room semantics.
type ConnectionTestHandler struct {
	Logger primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *ConnectionTestHandler) HandleMessage(ctx context.Context, sess primary.Session, payload []byte) error {
	var data defs.ConnectionTestData
	_ = json.Unmarshal(payload, &data)
	h.Logger.Debug("connection test received", "message", data.Message)

	return sess.Send(defs.ConnectionTestResponse{
		Type:    defs.TypeConnectionTestResponse,
		Message: "백엔드 연결 확인됨",
	})
}
