package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/signcall-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type fakeCaptionService struct{}

func (fakeCaptionService) CaptionFrame(ctx context.Context, hands []domain.Frame) (domain.Caption, error) {
	return domain.Caption{}, nil
}
func (fakeCaptionService) CaptionSequence(ctx context.Context, frames []domain.Frame) (domain.Caption, error) {
	return domain.Caption{}, nil
}
func (fakeCaptionService) ModelLoaded() bool           { return true }
func (fakeCaptionService) ModelType() domain.ModelType { return domain.ModelTypePhrase }

type fakePresenceRepo struct{}

func (fakePresenceRepo) SaveWorker(ctx context.Context, worker *domain.WorkerPresence) error {
	return nil
}
func (fakePresenceRepo) GetWorker(ctx context.Context, workerID string) (*domain.WorkerPresence, error) {
	if workerID != "w1" {
		return nil, nil
	}
	return &domain.WorkerPresence{ID: "w1", Room: "R1", LastSeen: time.Now()}, nil
}
func (fakePresenceRepo) GetAllWorkers(ctx context.Context) ([]*domain.WorkerPresence, error) {
	return []*domain.WorkerPresence{{ID: "w1", Room: "R1"}}, nil
}
func (fakePresenceRepo) RemoveWorker(ctx context.Context, workerID string) error { return nil }
func (fakePresenceRepo) RemoveInactiveWorkers(ctx context.Context, cutoffTime time.Time) error {
	return nil
}

type fakeSessionRepo struct{}

func (fakeSessionRepo) OpenSession(ctx context.Context, session *domain.RoomSession) error {
	return nil
}
func (fakeSessionRepo) CloseSession(ctx context.Context, sessionID uuid.UUID) error { return nil }
func (fakeSessionRepo) IncrementCaptions(ctx context.Context, sessionID uuid.UUID, delta int) error {
	return nil
}
func (fakeSessionRepo) UpdatePeakMembers(ctx context.Context, sessionID uuid.UUID, members int) error {
	return nil
}
func (fakeSessionRepo) GetRecentSessions(ctx context.Context, limit int) ([]*domain.RoomSession, error) {
	return []*domain.RoomSession{{ID: uuid.New(), RoomID: "R1", StartedAt: time.Now()}}, nil
}

func newTestRouter(t *testing.T) *httptest.Server {
	t.Helper()
	provider := NewServiceProvider(fakeCaptionService{}, fakePresenceRepo{}, fakeSessionRepo{}, "")
	s := NewServer(0, "test", *provider, nopLogger{})
	require.NoError(t, s.Init())

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// The operational endpoints live at exactly these paths.
func TestRoutePaths(t *testing.T) {
	srv := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(t, srv, "/ai/health").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/workers").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/workers/w1").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/rooms/sessions").StatusCode)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/api/workers").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/api/rooms/sessions").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/workers/missing").StatusCode)
}

func TestHealthBody(t *testing.T) {
	srv := newTestRouter(t)

	resp := get(t, srv, "/ai/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["model_loaded"])
	assert.Equal(t, "phrase", body["model_type"])
}

func TestWorkersListBody(t *testing.T) {
	srv := newTestRouter(t)

	resp := get(t, srv, "/api/workers")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Workers []domain.WorkerPresence `json:"workers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Workers, 1)
	assert.Equal(t, "w1", body.Workers[0].ID)
}
