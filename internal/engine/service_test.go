package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Igoorx/godfield-flash/internal/catalog"
	"github.com/Igoorx/godfield-flash/internal/domain"
	"github.com/Igoorx/godfield-flash/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memReplays хранит реплеи в памяти.
type memReplays struct {
	saved  chan *domain.ReplaySession
	loaded *domain.ReplaySession
}

func (m *memReplays) Save(rec *domain.ReplaySession) (string, error) {
	m.saved <- rec
	return "mem://" + rec.RoomID, nil
}

func (m *memReplays) Load(string) (*domain.ReplaySession, error) {
	if m.loaded == nil {
		return nil, errors.New("not found")
	}
	return m.loaded, nil
}

func newTestService(t *testing.T, deps ServiceDeps) (*Service, context.Context) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	if deps.NewBot == nil {
		deps.NewBot = swordBot(cat)
	}
	cfg := NewConfig()
	cfg.Seed = 7
	cfg.Training = true

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc := NewService(cfg, cat, deps)
	svc.Start(ctx)
	t.Cleanup(svc.Shutdown)
	return svc, ctx
}

func closed(ch <-chan struct{}) func() bool {
	return func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
}

func TestService_JoinAndList(t *testing.T) {
	svc, ctx := newTestService(t, ServiceDeps{})

	room, ann, err := svc.Join(ctx, api.JoinPayload{Name: "Ann"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Ann", ann.Name)

	_, bob, err := svc.Join(ctx, api.JoinPayload{RoomID: room.ID, Name: "Bob"}, "")
	require.NoError(t, err)
	assert.NotEqual(t, ann.ID, bob.ID)

	views := svc.ListRooms(ctx)
	require.Len(t, views, 1)
	assert.Equal(t, room.ID, views[0].ID)
	assert.Equal(t, 2, views[0].Players)
	assert.False(t, views[0].Playing)

	// Переподключение по токену возвращает того же игрока.
	_, again, err := svc.Join(ctx, api.JoinPayload{RoomID: room.ID}, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.ID, again.ID)

	dbg, err := svc.Debug(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, dbg.State.RoomID)
}

func TestService_JoinErrors(t *testing.T) {
	svc, ctx := newTestService(t, ServiceDeps{})

	_, _, err := svc.Join(ctx, api.JoinPayload{RoomID: "missing", Name: "Ann"}, "")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// Неудачный вход в новую комнату ее и закрывает.
	_, _, err = svc.Join(ctx, api.JoinPayload{Name: "Ann", Team: "TEAM9"}, "")
	assert.ErrorIs(t, err, ErrTeamMismatch)
	assert.Empty(t, svc.ListRooms(ctx))

	_, err = svc.Debug(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestService_CommandsStartMatch(t *testing.T) {
	svc, ctx := newTestService(t, ServiceDeps{})
	room, ann, err := svc.Join(ctx, api.JoinPayload{Name: "Ann"}, "")
	require.NoError(t, err)
	_, bob, err := svc.Join(ctx, api.JoinPayload{RoomID: room.ID, Name: "Bob"}, "")
	require.NoError(t, err)

	ready := api.ClientCommand{Action: "READY", Payload: json.RawMessage(`{"ready":true}`)}
	svc.ProcessCommand(room.ID, ann.ID, ready)
	svc.ProcessCommand(room.ID, bob.ID, ready)

	require.Eventually(t, func() bool {
		playing, err := Inspect(ctx, room, func(r *Room) bool { return r.playing })
		return err == nil && playing
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_RoomClosesWhenEveryoneLeaves(t *testing.T) {
	svc, ctx := newTestService(t, ServiceDeps{})
	room, ann, err := svc.Join(ctx, api.JoinPayload{Name: "Ann"}, "")
	require.NoError(t, err)

	svc.Disconnect(room.ID, ann.ID)
	require.Eventually(t, closed(room.Done()), 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return svc.Room(room.ID) == nil }, 2*time.Second, 10*time.Millisecond)
}

func TestService_ShutdownStopsRooms(t *testing.T) {
	svc, ctx := newTestService(t, ServiceDeps{})
	room, _, err := svc.Join(ctx, api.JoinPayload{Name: "Ann"}, "")
	require.NoError(t, err)

	svc.Shutdown()
	require.Eventually(t, closed(room.Done()), 2*time.Second, 10*time.Millisecond)
}

func TestService_PersistSavesReplayAndResult(t *testing.T) {
	store := &memReplays{saved: make(chan *domain.ReplaySession, 1)}
	results := make(chan MatchResult, 1)
	svc, _ := newTestService(t, ServiceDeps{
		Replays:  store,
		OnResult: func(res MatchResult) { results <- res },
	})

	rec := &domain.ReplaySession{RoomID: "r1", Seed: 3}
	svc.persist(MatchResult{RoomID: "r1", Seed: 3, Winners: []string{"a"}, Replay: rec})

	select {
	case got := <-store.saved:
		assert.Same(t, rec, got)
	case <-time.After(2 * time.Second):
		t.Fatal("replay was not saved")
	}
	select {
	case res := <-results:
		assert.Equal(t, []string{"a"}, res.Winners)
	case <-time.After(2 * time.Second):
		t.Fatal("result was not delivered")
	}
}

func TestService_Playback(t *testing.T) {
	svc, _ := newTestService(t, ServiceDeps{})
	_, err := svc.Playback("x.gfrp")
	assert.Error(t, err)

	store := &memReplays{loaded: &domain.ReplaySession{
		RoomID: "r1",
		Roster: []domain.ReplayPlayer{{ID: "a", Name: "A", Team: domain.TeamSingle}},
	}}
	svc, _ = newTestService(t, ServiceDeps{Replays: store})
	_, err = svc.Playback("x.gfrp")
	assert.ErrorIs(t, err, ErrReplayDiverged)
}
