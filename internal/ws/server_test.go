package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/services/auth"
	"gitlab.com/signcall-2025.net/internal/core/services/caption"
	"gitlab.com/signcall-2025.net/internal/core/services/feature"
	"gitlab.com/signcall-2025.net/internal/core/services/hub"
	"gitlab.com/signcall-2025.net/internal/core/services/roomlog"
	"gitlab.com/signcall-2025.net/internal/domain"

	"gitlab.com/signcall-2025.net/internal/adapter/crypto"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type fakeClassifier struct {
	scores []float32
}

func (f *fakeClassifier) InputShape() []int  { return []int{1, 10, feature.VectorAngleWidth} }
func (f *fakeClassifier) OutputShape() []int { return []int{1, len(f.scores)} }
func (f *fakeClassifier) Classify(ctx context.Context, tensor domain.Tensor) ([]float32, error) {
	return f.scores, nil
}

// newTestServer wires a full router with in-memory services, no redis, no
// database and a canned classifier.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := nopLogger{}

	clf := &fakeClassifier{scores: []float32{0.95, 0.02, 0.01, 0.01, 0.01}}
	extractor := feature.NewExtractor(clf, logger)
	captionSvc := caption.NewCaptionService(clf, extractor,
		&config.ModelConfig{Type: "auto", MinConfidence: 0.8},
		&config.HubConfig{CanonicalFrames: 10},
		logger)

	jwtCfg := &config.JwtConfig{Secret: ""}
	authSvc := auth.NewConnectAuthService(crypto.NewJWTService(jwtCfg), jwtCfg, logger)

	s := NewWSServer(
		hub.NewHubService(logger),
		authSvc,
		captionSvc,
		roomlog.NewRoomLogService(nil, logger),
		nil,
		logger,
	)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, role, room string) *websocket.Conn {
	t.Helper()
	target := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ai?role=" + role
	if room != "" {
		target += "&room=" + room
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

// roundTrip proves the peer's registration and read loop are live.
func roundTrip(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "connection_test"}))
	msg := readJSON(t, conn)
	require.Equal(t, "connection_test_response", msg["type"])
	assert.Equal(t, "백엔드 연결 확인됨", msg["message"])
}

func objectHand(points int) []map[string]float64 {
	hand := make([]map[string]float64, points)
	for i := range hand {
		hand[i] = map[string]float64{"x": float64(i) * 0.02, "y": float64(i) * 0.01}
	}
	return hand
}

func TestInvalidRoleRejectedAtHandshake(t *testing.T) {
	srv := newTestServer(t)

	target := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ai?role=banana"
	_, resp, err := websocket.DefaultDialer.Dial(target, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestPairingBindAndCaptionFanout(t *testing.T) {
	srv := newTestServer(t)

	worker := dial(t, srv, "worker", "")
	roundTrip(t, worker)

	client1 := dial(t, srv, "client", "R1")
	roundTrip(t, client1)

	// The pooled worker is claimed by the first client and told its room.
	bind := readJSON(t, worker)
	require.Equal(t, "bind", bind["type"])
	assert.Equal(t, "R1", bind["room_id"])

	client2 := dial(t, srv, "client", "R1")
	roundTrip(t, client2)

	payload := map[string]interface{}{
		"type":      "hand_landmarks",
		"landmarks": [][]map[string]float64{objectHand(21)},
		"corr_id":   "f-1",
	}
	require.NoError(t, client1.WriteJSON(payload))

	// The caption fans out to the other client, not back to the sender.
	msg := readJSON(t, client2)
	require.Equal(t, "caption", msg["type"])
	assert.Equal(t, "안녕하세요", msg["text"])
	assert.InDelta(t, 0.95, msg["confidence"].(float64), 1e-3)
	assert.Equal(t, "f-1", msg["corr_id"])
}

func TestSequencePathEmitsSubtitle(t *testing.T) {
	srv := newTestServer(t)

	client1 := dial(t, srv, "client", "R1")
	roundTrip(t, client1)
	client2 := dial(t, srv, "client", "R1")
	roundTrip(t, client2)

	frames := make([][]map[string]float64, 4)
	for i := range frames {
		frames[i] = objectHand(21)
	}
	require.NoError(t, client1.WriteJSON(map[string]interface{}{
		"type":           "hand_landmarks_sequence",
		"frame_sequence": frames,
	}))

	msg := readJSON(t, client2)
	require.Equal(t, "subtitle", msg["type"])
	assert.Equal(t, "안녕하세요", msg["text"])
}

func TestUnsupportedSequenceShapeGetsErrorReply(t *testing.T) {
	srv := newTestServer(t)

	client := dial(t, srv, "client", "R1")
	roundTrip(t, client)

	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type":           "hand_landmarks_sequence",
		"frame_sequence": map[string]interface{}{"frame": 1},
	}))

	msg := readJSON(t, client)
	require.Equal(t, "error", msg["type"])
	assert.Equal(t, float64(2004), msg["code"])

	roundTrip(t, client)
}

func TestCoordsAck(t *testing.T) {
	srv := newTestServer(t)

	client := dial(t, srv, "client", "")
	roundTrip(t, client)

	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type":  "coords",
		"hands": [][]map[string]float64{objectHand(21), objectHand(10)},
	}))

	ack := readJSON(t, client)
	require.Equal(t, "coords_ack", ack["type"])
	assert.Equal(t, float64(2), ack["hands"])
	assert.Equal(t, float64(31), ack["count"])
}

func TestGarbledPayloadBroadcastsVerbatim(t *testing.T) {
	srv := newTestServer(t)

	client1 := dial(t, srv, "client", "R1")
	roundTrip(t, client1)
	client2 := dial(t, srv, "client", "R1")
	roundTrip(t, client2)

	garbled := []byte(`{{{not json at all`)
	require.NoError(t, client1.WriteMessage(websocket.TextMessage, garbled))

	require.NoError(t, client2.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := client2.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, garbled, raw)

	// The sender's loop survives the bad frame.
	roundTrip(t, client1)
}

func TestUnknownTypeBroadcastsVerbatim(t *testing.T) {
	srv := newTestServer(t)

	client1 := dial(t, srv, "client", "R1")
	roundTrip(t, client1)
	client2 := dial(t, srv, "client", "R1")
	roundTrip(t, client2)

	require.NoError(t, client1.WriteJSON(map[string]interface{}{
		"type":    "future_feature",
		"room_id": "R1",
		"blob":    42,
	}))

	msg := readJSON(t, client2)
	assert.Equal(t, "future_feature", msg["type"])
	assert.Equal(t, float64(42), msg["blob"])
}

func TestBareArrayTreatedAsLandmarks(t *testing.T) {
	srv := newTestServer(t)

	client1 := dial(t, srv, "client", "R1")
	roundTrip(t, client1)
	client2 := dial(t, srv, "client", "R1")
	roundTrip(t, client2)

	hand, err := json.Marshal([][]map[string]float64{objectHand(21)})
	require.NoError(t, err)
	require.NoError(t, client1.WriteMessage(websocket.TextMessage, hand))

	msg := readJSON(t, client2)
	require.Equal(t, "caption", msg["type"])
	assert.Equal(t, "안녕하세요", msg["text"])
}

func TestInvalidLandmarksGetErrorReply(t *testing.T) {
	srv := newTestServer(t)

	client := dial(t, srv, "client", "R1")
	roundTrip(t, client)

	require.NoError(t, client.WriteJSON(map[string]interface{}{
		"type":      "hand_landmarks",
		"landmarks": "not-a-list",
	}))

	msg := readJSON(t, client)
	require.Equal(t, "error", msg["type"])
	assert.Equal(t, float64(2004), msg["code"])

	// Loop is still alive after the handler error.
	roundTrip(t, client)
}
