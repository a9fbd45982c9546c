package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomPlayerCount(s *Server, code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return 0
	}
	return len(room.players)
}

func roomExistsLocked(s *Server, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rooms[code]
	return ok
}

func TestDisconnectRemovalAfterGracePeriod(t *testing.T) {
	s := newTestServer(t)
	alice := newTestClient(t, s)
	bob := newTestClient(t, s)

	code := createTestRoom(t, s, alice, "Alice")
	joinTestRoom(t, s, bob, code, "Bob")
	recv[PlayersUpdatedMessage](t, alice)

	s.unregister(alice)

	// The seat is held open for the grace period.
	assert.Equal(t, 2, roomPlayerCount(s, code))

	require.Eventually(t, func() bool {
		return roomPlayerCount(s, code) == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.mu.Lock()
	room := s.rooms[code]
	require.Len(t, room.players, 1)
	assert.Equal(t, "Bob", room.players[0].Name)
	assert.True(t, room.players[0].IsHost)
	assert.Equal(t, bob.id, room.host)
	assert.Empty(t, s.timers)
	s.mu.Unlock()

	updated := recv[PlayersUpdatedMessage](t, bob)
	require.Len(t, updated.Players, 1)
	assert.Equal(t, "Bob", updated.Players[0].Name)
}

func TestDisconnectDeletesEmptyRoom(t *testing.T) {
	s := newTestServer(t)
	alice := newTestClient(t, s)

	code := createTestRoom(t, s, alice, "Alice")

	s.unregister(alice)

	require.Eventually(t, func() bool {
		return !roomExistsLocked(s, code)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRejoinWithinGracePeriod(t *testing.T) {
	s := newTestServer(t)
	alice := newTestClient(t, s)
	bob := newTestClient(t, s)

	code := createTestRoom(t, s, alice, "Alice")
	joinTestRoom(t, s, bob, code, "Bob")
	recv[PlayersUpdatedMessage](t, alice)

	s.dispatch(alice, ClientMessage{Type: "start-game", Category: "Sports"})
	recv[GameStartedMessage](t, alice)
	recv[GameStartedMessage](t, bob)

	s.mu.Lock()
	room := s.rooms[code]
	oldID := alice.id
	wasImposter := room.imposterID == oldID
	oldRole := room.roles[oldID]
	s.mu.Unlock()

	s.unregister(alice)

	// Same player, fresh connection identity.
	alice2 := newTestClient(t, s)
	s.dispatch(alice2, ClientMessage{Type: "rejoin-room", RoomCode: code, PlayerName: "Alice"})

	rejoined := recv[RejoinedRoomMessage](t, alice2)
	assert.Equal(t, code, rejoined.RoomCode)
	assert.Equal(t, StatePlaying, rejoined.GameState)
	assert.Equal(t, "Sports", rejoined.Category)
	require.Len(t, rejoined.Players, 2)

	recv[PlayersUpdatedMessage](t, alice2)
	recv[PlayersUpdatedMessage](t, bob)

	s.mu.Lock()
	// Host status, imposter status, and the role all follow the new
	// connection identity; no trace of the old one remains.
	assert.Equal(t, alice2.id, room.host)
	assert.Equal(t, wasImposter, room.imposterID == alice2.id)
	assert.Equal(t, oldRole, room.roles[alice2.id])
	assert.Nil(t, room.playerByID(oldID))
	assert.NotContains(t, room.roles, oldID)
	assert.Empty(t, s.timers)
	s.mu.Unlock()

	// The cancelled timer must never fire.
	time.Sleep(4 * s.cfg.gracePeriod)
	assert.Equal(t, 2, roomPlayerCount(s, code))

	// The reclaimed seat still answers role queries.
	s.dispatch(alice2, ClientMessage{Type: "get-my-role"})
	role := recv[RoleMessage](t, alice2)
	assert.Equal(t, wasImposter, role.IsImposter)
}

func TestRejoinFailures(t *testing.T) {
	s := newTestServer(t)
	alice := newTestClient(t, s)
	stranger := newTestClient(t, s)

	code := createTestRoom(t, s, alice, "Alice")

	s.dispatch(stranger, ClientMessage{Type: "rejoin-room", RoomCode: "XXXXXX", PlayerName: "Alice"})
	failed := recv[RejoinFailedMessage](t, stranger)
	assert.Equal(t, "Room no longer exists.", failed.Message)

	s.dispatch(stranger, ClientMessage{Type: "rejoin-room", RoomCode: code, PlayerName: "Mallory"})
	failed = recv[RejoinFailedMessage](t, stranger)
	assert.Equal(t, "Could not rejoin — please re-enter the room.", failed.Message)
}

func TestDisconnectWithoutRoomIsNoop(t *testing.T) {
	s := newTestServer(t)
	c := newTestClient(t, s)

	s.unregister(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Empty(t, s.timers)
}

func TestRoomCodesAreUnique(t *testing.T) {
	s := newTestServer(t)

	codes := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := newTestClient(t, s)
		code := createTestRoom(t, s, c, "Host")

		assert.Len(t, code, roomCodeLength)
		assert.False(t, codes[code], "duplicate room code %s", code)
		codes[code] = true
	}
}

func TestSlowClientIsEvicted(t *testing.T) {
	s := newTestServer(t)
	alice := newTestClient(t, s)

	// A client whose send buffer never drains.
	slow := &Client{send: make(chan any), id: newConnID()}
	s.register(slow)

	code := createTestRoom(t, s, alice, "Alice")
	joinTestRoom(t, s, newTestClient(t, s), code, "Bob")
	recv[PlayersUpdatedMessage](t, alice)

	slow.roomCode = code

	s.dispatch(alice, ClientMessage{Type: "chat-message", Text: "ping"})
	recv[ChatMessage](t, alice)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.clients, slow)
}
