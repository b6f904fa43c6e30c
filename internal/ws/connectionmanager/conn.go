package connectionmanager

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
)

var _ primary.Session = (*Conn)(nil)

// Conn wraps a websocket connection with an identity and a serialized
// writer. gorilla/websocket permits one concurrent writer, so every send
// goes through the write mutex.
type Conn struct {
	id      string
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// NewConn wraps an accepted websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		id: uuid.NewString(),
		ws: ws,
	}
}

// ID returns the connection's unique identity.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// Send marshals v as a JSON text message.
func (c *Conn) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// SendRaw writes an already-encoded text payload verbatim.
func (c *Conn) SendRaw(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write raw message: %w", err)
	}
	return nil
}

// Ping sends a transport-level ping frame.
func (c *Conn) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// ConnectionManager tracks live wrapped connections for shutdown.
type ConnectionManager struct {
	Connections map[string]*Conn
	ConnMutex   sync.RWMutex
	Logger      primary.Logger
}

// NewConnectionManager creates a new connection manager.
func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		Connections: make(map[string]*Conn),
		Logger:      logger,
	}
}

// Add tracks a connection.
func (cm *ConnectionManager) Add(conn *Conn) {
	cm.ConnMutex.Lock()
	cm.Connections[conn.ID()] = conn
	cm.ConnMutex.Unlock()
}

// Remove stops tracking a connection.
func (cm *ConnectionManager) Remove(connID string) {
	cm.ConnMutex.Lock()
	delete(cm.Connections, connID)
	cm.ConnMutex.Unlock()
}

// CloseAll closes every tracked connection.
func (cm *ConnectionManager) CloseAll() {
	cm.ConnMutex.Lock()
	defer cm.ConnMutex.Unlock()

	for id, conn := range cm.Connections {
		if err := conn.Close(); err != nil {
			cm.Logger.Error("Failed to close connection", "id", id, "error", err)
		}
	}
}

// SendErrorMessage sends a typed error reply to a session. Delivery
// failures are swallowed; the connection may already be closing.
func SendErrorMessage(sess primary.Session, code int, message string) {
	_ = sess.Send(defs.ErrorData{
		Type:    defs.TypeError,
		Code:    code,
		Message: message,
	})
}
