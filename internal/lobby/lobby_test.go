package lobby

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodiniz/buracao/internal/game"
	"github.com/vodiniz/buracao/internal/models"
)

func newTestLobby() *Lobby {
	return New(Config{NextRoundDelay: -1})
}

func newUser(name string) models.User {
	return models.User{ID: uuid.New(), Username: name}
}

// drain decodes every queued event.
func drain(t *testing.T, ch chan []byte) []game.GameEvent {
	t.Helper()
	var out []game.GameEvent
	for {
		select {
		case data := <-ch:
			var ev game.GameEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasType(events []game.GameEvent, typ game.GameEventType) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestCreateRoomValidation(t *testing.T) {
	l := newTestLobby()

	_, err := l.CreateRoom("   ", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	r, err := l.CreateRoom(" Mesa 1 ", "")
	require.NoError(t, err)
	assert.Equal(t, "Mesa 1", r.Name)
	assert.False(t, r.Private())
	assert.Equal(t, r.ID, r.Game.RoomID)

	got, err := l.GetRoom(r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = l.GetRoom(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomStartsAtFour(t *testing.T) {
	l := newTestLobby()
	r, err := l.CreateRoom("Mesa", "")
	require.NoError(t, err)

	queues := make([]chan []byte, 4)
	for i := 0; i < 4; i++ {
		queues[i] = make(chan []byte, 64)
		_, p, err := l.JoinRoom(r.ID, newUser("jogador"+string(rune('1'+i))), "", queues[i])
		require.NoError(t, err)
		assert.Equal(t, i, p.Seat)
	}
	assert.Equal(t, 4, r.Attached())

	r.Game.Mu.Lock()
	started := r.Game.Started
	r.Game.Mu.Unlock()
	require.True(t, started)

	for i, ch := range queues {
		events := drain(t, ch)
		assert.True(t, hasType(events, game.EventWelcome), "queue %d", i)
		assert.True(t, hasType(events, game.EventRoundStart), "queue %d", i)
		assert.True(t, hasType(events, game.EventState), "queue %d", i)
	}

	_, _, err = l.JoinRoom(r.ID, newUser("late"), "", nil)
	assert.ErrorIs(t, err, ErrMatchInProgress)

	summaries := l.ListRooms()
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Started)
	assert.Equal(t, 4, summaries[0].Seated)
	assert.Equal(t, []string{"jogador1", "jogador2", "jogador3", "jogador4"}, summaries[0].Players)
}

func TestJoinRoomPassword(t *testing.T) {
	l := newTestLobby()
	r, err := l.CreateRoom("Privada", "segredo")
	require.NoError(t, err)
	assert.True(t, r.Private())

	_, _, err = l.JoinRoom(r.ID, newUser("ana"), "errado", nil)
	assert.ErrorIs(t, err, ErrBadPassword)

	_, p, err := l.JoinRoom(r.ID, newUser("ana"), "segredo", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Seat)

	_, _, err = l.JoinRoom(uuid.New(), newUser("bia"), "", nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomTwiceAndRejoin(t *testing.T) {
	l := newTestLobby()
	r, err := l.CreateRoom("Mesa", "")
	require.NoError(t, err)
	ana := newUser("ana")
	first := make(chan []byte, 64)

	_, _, err = l.JoinRoom(r.ID, ana, "", first)
	require.NoError(t, err)

	second := make(chan []byte, 64)
	_, _, err = l.JoinRoom(r.ID, ana, "", second)
	assert.ErrorIs(t, err, ErrAlreadySeated)
	assert.Equal(t, 1, r.Attached(), "a rejected join must not keep its queue")

	for _, name := range []string{"bia", "caio", "duda"} {
		_, _, err = l.JoinRoom(r.ID, newUser(name), "", nil)
		require.NoError(t, err)
	}

	l.LeaveRoom(r.ID, ana.ID)
	r.Game.Mu.Lock()
	assert.False(t, r.Game.Seats[0].Connected)
	r.Game.Mu.Unlock()

	_, p, err := l.JoinRoom(r.ID, ana, "", second)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Seat)
	assert.True(t, p.Connected)
	assert.True(t, hasType(drain(t, second), game.EventState))
}

func TestLeaveRoomBeforeStartFreesSeat(t *testing.T) {
	l := newTestLobby()
	r, err := l.CreateRoom("Mesa", "")
	require.NoError(t, err)
	ana, bia := newUser("ana"), newUser("bia")
	_, _, err = l.JoinRoom(r.ID, ana, "", nil)
	require.NoError(t, err)
	_, _, err = l.JoinRoom(r.ID, bia, "", nil)
	require.NoError(t, err)

	l.LeaveRoom(r.ID, ana.ID)
	r.Game.Mu.Lock()
	assert.Nil(t, r.Game.Seats[0])
	assert.Equal(t, 1, r.Game.SeatedCount())
	r.Game.Mu.Unlock()

	l.LeaveRoom(r.ID, bia.ID)
	_, err = l.GetRoom(r.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound, "an empty room is closed")
}

func TestQuickJoin(t *testing.T) {
	l := newTestLobby()
	private, err := l.CreateRoom("Privada", "x")
	require.NoError(t, err)

	r1, _, err := l.QuickJoin(newUser("ana"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, private.ID, r1.ID, "private rooms are skipped")

	for _, name := range []string{"bia", "caio", "duda"} {
		r, _, err := l.QuickJoin(newUser(name), nil)
		require.NoError(t, err)
		assert.Equal(t, r1.ID, r.ID)
	}

	r2, p, err := l.QuickJoin(newUser("edu"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r2.ID, "a started room is skipped")
	assert.Equal(t, 0, p.Seat)
	assert.Len(t, l.ListRooms(), 3)
}

func TestRoomQueues(t *testing.T) {
	l := newTestLobby()
	r, err := l.CreateRoom("Mesa", "")
	require.NoError(t, err)
	a, b := uuid.New(), uuid.New()
	chA, chB := make(chan []byte, 1), make(chan []byte, 4)
	r.Attach(a, chA)
	r.Attach(b, chB)

	r.broadcast(game.GameEvent{Type: game.EventChat, Message: "oi"})
	r.broadcast(game.GameEvent{Type: game.EventChat, Message: "dropped for a"})
	assert.Len(t, drain(t, chA), 1, "a full queue drops instead of blocking")
	assert.Len(t, drain(t, chB), 2)

	r.sendTo(b, game.GameEvent{Type: game.EventError, Message: "only b"})
	assert.Empty(t, drain(t, chA))
	events := drain(t, chB)
	require.Len(t, events, 1)
	assert.Equal(t, "only b", events[0].Message)

	stale := make(chan []byte, 1)
	assert.False(t, r.Detach(a, stale))
	assert.True(t, r.Detach(a, chA))
	assert.Equal(t, 1, r.Attached())
}

func TestRemoveRoomAndClose(t *testing.T) {
	l := newTestLobby()
	r1, _ := l.CreateRoom("um", "")
	_, _ = l.CreateRoom("dois", "")

	l.RemoveRoom(r1.ID)
	l.RemoveRoom(r1.ID)
	assert.Len(t, l.ListRooms(), 1)

	l.Close()
	assert.Empty(t, l.ListRooms())
}
