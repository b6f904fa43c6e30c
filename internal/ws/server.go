// package ws is the realtime transport: one goroutine per connection
// reading messages and dispatching them by type.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/core/services/auth"
	"gitlab.com/signcall-2025.net/internal/core/services/caption"
	"gitlab.com/signcall-2025.net/internal/core/services/hub"
	"gitlab.com/signcall-2025.net/internal/core/services/roomlog"
	"gitlab.com/signcall-2025.net/internal/domain"
	"gitlab.com/signcall-2025.net/internal/ws/connectionmanager"
	"gitlab.com/signcall-2025.net/internal/ws/defs"
	"gitlab.com/signcall-2025.net/internal/ws/handlers"
)

const pingInterval = 20 * time.Second

// WSServer accepts websocket connections from clients and inference
// workers and routes their messages.
type WSServer struct {
	address       string
	hubService    hub.IHubService
	authService   auth.IAuthService
	captionSvc    caption.ICaptionService
	roomLog       roomlog.IRoomLogService
	presenceRepo  secondary.PresenceRepository
	logger        primary.Logger
	connectionMgr *connectionmanager.ConnectionManager
	upgrader      websocket.Upgrader
	httpServer    *http.Server
	stopCh        chan struct{}
	handlers      map[string]primary.MessageHandler
}

// WSServerOption configures a WSServer
type WSServerOption func(*WSServer)

// WithAddress sets the server address
func WithAddress(address string) WSServerOption {
	return func(s *WSServer) {
		s.address = address
	}
}

// NewWSServer creates a new websocket server. presenceRepo may be nil
// when no registry is configured.
func NewWSServer(
	hubService hub.IHubService,
	authService auth.IAuthService,
	captionSvc caption.ICaptionService,
	roomLog roomlog.IRoomLogService,
	presenceRepo secondary.PresenceRepository,
	logger primary.Logger,
	options ...WSServerOption,
) *WSServer {
	server := &WSServer{
		address:       ":8001", // Default address
		hubService:    hubService,
		authService:   authService,
		captionSvc:    captionSvc,
		roomLog:       roomLog,
		presenceRepo:  presenceRepo,
		logger:        logger,
		connectionMgr: connectionmanager.NewConnectionManager(logger),
		stopCh:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from a separate origin in every
			// deployment we run; the token is the gate.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, option := range options {
		option(server)
	}

	server.setupMessageHandlers()

	return server
}

// setupMessageHandlers registers all message handlers
func (s *WSServer) setupMessageHandlers() {
	s.handlers = map[string]primary.MessageHandler{
		defs.TypeCoords:         &handlers.CoordsHandler{Hub: s.hubService, Logger: s.logger},
		defs.TypeHandLandmarks:  &handlers.HandLandmarksHandler{Hub: s.hubService, CaptionSvc: s.captionSvc, RoomLog: s.roomLog, Logger: s.logger},
		defs.TypeSequence:       &handlers.SequenceHandler{Hub: s.hubService, CaptionSvc: s.captionSvc, RoomLog: s.roomLog, Logger: s.logger},
		defs.TypeConnectionTest: &handlers.ConnectionTestHandler{Logger: s.logger},
	}
}

// Router exposes the endpoint; tests mount it on httptest servers.
func (s *WSServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ai", s.handleUpgrade)
	return r
}

// Start starts the websocket server
func (s *WSServer) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	s.logger.Info("WebSocket server listening", "address", s.address)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the websocket server
func (s *WSServer) Stop(ctx context.Context) error {
	close(s.stopCh)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down websocket server", "error", err)
		}
	}

	s.connectionMgr.CloseAll()
	return nil
}

// handleUpgrade validates the connect parameters, upgrades the socket and
// runs the connection's read loop.
func (s *WSServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	role := domain.Role(query.Get("role"))
	room := query.Get("room")

	if _, err := s.authService.Authenticate(r.Context(), query.Get("token"), role); err != nil {
		s.logger.Warn("Connection rejected", "role", role, "error", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := connectionmanager.NewConn(wsConn)
	s.connectionMgr.Add(conn)
	s.logger.Info("연결됨", "role", role, "room", room, "peer", conn.RemoteAddr())

	ctx := context.Background()
	s.hubService.Register(ctx, conn, role, room)

	if role == domain.RoleWorker {
		s.saveWorkerPresence(ctx, conn)
	}
	if room != "" {
		s.roomLog.MemberJoined(ctx, room, s.hubService.RoomSize(room))
	}

	wsConn.SetPongHandler(func(string) error {
		if role == domain.RoleWorker {
			s.saveWorkerPresence(context.Background(), conn)
		}
		return nil
	})

	done := make(chan struct{})
	go s.keepAlive(conn, done)

	s.readLoop(ctx, conn, wsConn)

	close(done)
	s.cleanup(conn)
}

// readLoop consumes messages until disconnect. One bad frame never drops
// the session; only a transport error ends the loop.
func (s *WSServer) readLoop(ctx context.Context, conn *connectionmanager.Conn, wsConn *websocket.Conn) {
	for {
		select {
		case <-s.stopCh:
			return
		default:
			_, raw, err := wsConn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("Read loop ended", "id", conn.ID(), "error", err)
				}
				return
			}
			s.dispatch(ctx, conn, raw)
		}
	}
}

// dispatch decodes the envelope and routes by type. Undecodable payloads
// and unknown types pass through to the sender's room verbatim so newer
// clients keep working against this hub.
func (s *WSServer) dispatch(ctx context.Context, conn *connectionmanager.Conn, raw []byte) {
	payload := bytes.TrimSpace(raw)

	// Old client compat: a bare JSON array is a hand_landmarks payload.
	if len(payload) > 0 && payload[0] == '[' {
		wrapped, err := json.Marshal(struct {
			Type      string          `json:"type"`
			Landmarks json.RawMessage `json:"landmarks"`
		}{defs.TypeHandLandmarks, json.RawMessage(payload)})
		if err == nil {
			payload = wrapped
		}
	}

	var env defs.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		s.broadcastRaw(conn, "", raw)
		return
	}

	handler, exists := s.handlers[env.Type]
	if !exists {
		s.broadcastRaw(conn, env.RoomID, payload)
		return
	}

	if err := handler.HandleMessage(ctx, conn, payload); err != nil {
		// The handler already answered the sender; keep the loop alive.
		s.logger.Error("Error handling message", "type", env.Type, "id", conn.ID(), "error", err)
	}
}

// broadcastRaw forwards a payload verbatim to the other members of the
// sender's room.
func (s *WSServer) broadcastRaw(conn *connectionmanager.Conn, room string, payload []byte) {
	if room == "" {
		room = s.hubService.RoomOf(conn)
	}
	for _, member := range s.hubService.MembersOf(room) {
		if member.ID() == conn.ID() {
			continue
		}
		if err := member.SendRaw(payload); err != nil {
			s.logger.Error("Failed to broadcast message", "id", member.ID(), "error", err)
		}
	}
}

// keepAlive pings the peer so dead connections surface as read errors.
func (s *WSServer) keepAlive(conn *connectionmanager.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

// cleanup runs exactly one unregistration per connection; the hub makes
// the second call a no-op.
func (s *WSServer) cleanup(conn *connectionmanager.Conn) {
	info, ok := s.hubService.Unregister(context.Background(), conn)
	s.connectionMgr.Remove(conn.ID())
	_ = conn.Close()
	if !ok {
		return
	}

	ctx := context.Background()
	if info.Role == domain.RoleWorker && s.presenceRepo != nil {
		if err := s.presenceRepo.RemoveWorker(ctx, info.ID); err != nil {
			s.logger.Error("Failed to remove worker presence", "workerID", info.ID, "error", err)
		}
	}
	if info.Room != "" {
		s.roomLog.MemberLeft(ctx, info.Room, s.hubService.RoomSize(info.Room))
	}

	s.logger.Info("Connection closed", "id", info.ID, "role", info.Role, "room", info.Room)
}

func (s *WSServer) saveWorkerPresence(ctx context.Context, conn *connectionmanager.Conn) {
	if s.presenceRepo == nil {
		return
	}
	presence := &domain.WorkerPresence{
		ID:        conn.ID(),
		Room:      s.hubService.RoomOf(conn),
		IpAddress: conn.RemoteAddr(),
		LastSeen:  time.Now(),
	}
	if err := s.presenceRepo.SaveWorker(ctx, presence); err != nil {
		s.logger.Error("Failed to save worker presence", "workerID", conn.ID(), "error", err)
	}
}
