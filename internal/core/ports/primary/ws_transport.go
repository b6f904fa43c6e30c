package primary

import "context"

// Session is one live bidirectional connection as the hub sees it. The
// transport layer owns the socket; the hub only needs identity and a way
// to push messages.
type Session interface {
	ID() string
	RemoteAddr() string
	// Send marshals v and writes it to the peer. Safe for concurrent use.
	Send(v interface{}) error
	// SendRaw writes an already-encoded text payload verbatim.
	SendRaw(payload []byte) error
}

// MessageHandler handles one inbound message type on a session.
type MessageHandler interface {
	HandleMessage(ctx context.Context, sess Session, payload []byte) error
}
