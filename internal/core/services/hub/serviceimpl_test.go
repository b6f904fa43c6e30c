package hub

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/signcall-2025.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

// fakeSession records everything sent to it.
type fakeSession struct {
	id   string
	mu   sync.Mutex
	sent []interface{}
}

func (f *fakeSession) ID() string         { return f.id }
func (f *fakeSession) RemoteAddr() string { return "test:0" }

func (f *fakeSession) Send(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeSession) SendRaw(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeSession) messages() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interface{}, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestWorkerWithoutRoomJoinsIdlePool(t *testing.T) {
	s := NewHubService(nopLogger{})
	ctx := context.Background()

	worker := &fakeSession{id: "w1"}
	s.Register(ctx, worker, domain.RoleWorker, "")

	assert.Equal(t, 1, s.IdleWorkers())
	assert.Empty(t, s.RoomOf(worker))
}

func TestClientPairingBindsIdleWorker(t *testing.T) {
	s := NewHubService(nopLogger{})
	ctx := context.Background()

	worker := &fakeSession{id: "w1"}
	client := &fakeSession{id: "c1"}
	s.Register(ctx, worker, domain.RoleWorker, "")
	s.Register(ctx, client, domain.RoleClient, "R1")

	assert.Equal(t, 0, s.IdleWorkers())
	assert.Equal(t, "R1", s.RoomOf(worker))
	assert.Equal(t, "R1", s.RoomOf(client))

	msgs := worker.messages()
	require.Len(t, msgs, 1)
	bind, ok := msgs[0].(bindNotification)
	require.True(t, ok)
	assert.Equal(t, "bind", bind.Type)
	assert.Equal(t, "R1", bind.RoomID)
}

func TestClientWithoutIdleWorkerJoinsAlone(t *testing.T) {
	s := NewHubService(nopLogger{})
	client := &fakeSession{id: "c1"}

	s.Register(context.Background(), client, domain.RoleClient, "R1")

	assert.Equal(t, 1, s.RoomSize("R1"))
	assert.Equal(t, "R1", s.RoomOf(client))
}

func TestWorkerWithRoomBypassesPool(t *testing.T) {
	s := NewHubService(nopLogger{})
	worker := &fakeSession{id: "w1"}

	s.Register(context.Background(), worker, domain.RoleWorker, "R1")

	assert.Equal(t, 0, s.IdleWorkers())
	assert.Equal(t, "R1", s.RoomOf(worker))
}

func TestUnregisterIsIdempotent(t *testing.T) {
	s := NewHubService(nopLogger{})
	ctx := context.Background()

	worker := &fakeSession{id: "w1"}
	s.Register(ctx, worker, domain.RoleWorker, "")

	info, ok := s.Unregister(ctx, worker)
	require.True(t, ok)
	assert.Equal(t, "w1", info.ID)
	assert.Equal(t, 0, s.IdleWorkers())

	_, ok = s.Unregister(ctx, worker)
	assert.False(t, ok, "second unregister must be a no-op")
}

func TestConcurrentClientsClaimOneWorkerOnce(t *testing.T) {
	s := NewHubService(nopLogger{})
	ctx := context.Background()

	worker := &fakeSession{id: "w1"}
	s.Register(ctx, worker, domain.RoleWorker, "")

	clients := []*fakeSession{{id: "c1"}, {id: "c2"}}
	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *fakeSession) {
			defer wg.Done()
			s.Register(ctx, c, domain.RoleClient, "R1")
		}(c)
	}
	wg.Wait()

	// The single idle worker is claimed exactly once.
	assert.Equal(t, 0, s.IdleWorkers())
	assert.Len(t, worker.messages(), 1)
	assert.Equal(t, "R1", s.RoomOf(worker))
	assert.Equal(t, 3, s.RoomSize("R1"))
}

func TestMembersOfSnapshots(t *testing.T) {
	s := NewHubService(nopLogger{})
	ctx := context.Background()

	s.Register(ctx, &fakeSession{id: "c1"}, domain.RoleClient, "R1")
	s.Register(ctx, &fakeSession{id: "c2"}, domain.RoleClient, "R1")
	s.Register(ctx, &fakeSession{id: "w1"}, domain.RoleWorker, "R1")
	s.Register(ctx, &fakeSession{id: "c3"}, domain.RoleClient, "R2")

	assert.Len(t, s.MembersOf("R1"), 3)
	assert.Len(t, s.MembersOfRole("R1", domain.RoleClient), 2)
	assert.Len(t, s.MembersOfRole("R1", domain.RoleWorker), 1)
	assert.Empty(t, s.MembersOf(""))
	assert.Empty(t, s.MembersOf("nope"))
}
