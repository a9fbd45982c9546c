package main

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Room codes avoid 0/O and 1/I for readability.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

// Server owns every room and every connected client. All inbound events,
// and the grace-period timer callbacks, run their entire handler body under
// mu, so no two handlers ever interleave mid-mutation. That is what makes
// the identity remap in handleRejoinRoom atomic.
type Server struct {
	cfg     *Config
	catalog *Catalog

	mu      sync.Mutex
	clients map[*Client]bool
	rooms   map[string]*Room
	timers  map[string]*time.Timer // pending removals, keyed by connection ID
}

func newServer(cfg *Config, catalog *Catalog) *Server {
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		clients: make(map[*Client]bool),
		rooms:   make(map[string]*Room),
		timers:  make(map[string]*time.Timer),
	}
}

func (s *Server) register(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c] = true
}

// unregister handles the transport-level disconnect. The player keeps their
// seat for the grace period; only the expired timer actually removes them.
func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}

	roomCode := c.roomCode
	if roomCode == "" {
		return
	}
	if _, ok := s.rooms[roomCode]; !ok {
		return
	}

	connID := c.id
	s.timers[connID] = time.AfterFunc(s.cfg.gracePeriod, func() {
		s.expireRemoval(roomCode, connID)
	})
}

// expireRemoval fires when a disconnected player's grace period lapses
// without a rejoin.
func (s *Server) expireRemoval(roomCode, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A rejoin that won the lock first has already cancelled us.
	if _, ok := s.timers[connID]; !ok {
		return
	}
	delete(s.timers, connID)

	room, ok := s.rooms[roomCode]
	if !ok {
		return
	}

	wasHost := room.host == connID
	if !room.removePlayer(connID) {
		return
	}

	if len(room.players) == 0 {
		delete(s.rooms, roomCode)
		logf(s.cfg, "GAMES: Deleted empty room %s", roomCode)
		return
	}

	if wasHost {
		logf(s.cfg, "GAMES: Host left %s, promoted %q", roomCode, room.players[0].Name)
	}

	s.broadcastRoomLocked(room, PlayersUpdatedMessage{
		Type:    "players-updated",
		Players: room.snapshot(),
	}, nil)
}

func (s *Server) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "create-room":
		s.handleCreateRoom(c, msg)
	case "join-room":
		s.handleJoinRoom(c, msg)
	case "start-game":
		s.handleStartGame(c, msg)
	case "get-my-role":
		s.handleGetMyRole(c)
	case "chat-message":
		s.handleChat(c, msg)
	case "end-game":
		s.handleEndGame(c)
	case "play-again":
		s.handlePlayAgain(c)
	case "rejoin-room":
		s.handleRejoinRoom(c, msg)
	default:
		// ignore unknown types
	}
}

func (s *Server) handleCreateRoom(c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Please enter a name.",
		})
		return
	}

	code := s.newRoomCodeLocked()
	room := newRoom(code, c.id, name)
	s.rooms[code] = room

	c.roomCode = code
	c.playerName = name

	logf(s.cfg, "GAMES: %q created room %s", name, code)

	s.sendLocked(c, RoomCreatedMessage{
		Type:       "room-created",
		RoomCode:   code,
		Players:    room.snapshot(),
		Categories: s.catalog.Names(),
	})
}

func (s *Server) handleJoinRoom(c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(msg.PlayerName)
	if name == "" {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Please enter a name.",
		})
		return
	}

	room, ok := s.rooms[msg.RoomCode]
	if !ok {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Room not found. Check the code and try again.",
		})
		return
	}
	if room.state != StateLobby {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "A game is already in progress in this room.",
		})
		return
	}
	if room.playerByName(name) != nil {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "That name is already taken. Pick a different name.",
		})
		return
	}
	if len(room.players) >= s.cfg.maxPlayers {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: fmt.Sprintf("Room is full (max %d players).", s.cfg.maxPlayers),
		})
		return
	}

	room.addPlayer(c.id, name)
	c.roomCode = room.code
	c.playerName = name

	logf(s.cfg, "GAMES: %q joined room %s", name, room.code)

	s.sendLocked(c, RoomJoinedMessage{
		Type:       "room-joined",
		RoomCode:   room.code,
		Players:    room.snapshot(),
		Categories: s.catalog.Names(),
	})

	// The joiner already has the full snapshot from the ack above.
	s.broadcastRoomLocked(room, PlayersUpdatedMessage{
		Type:    "players-updated",
		Players: room.snapshot(),
	}, c)
}

func (s *Server) handleStartGame(c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomCode]
	if !ok {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Room not found. Please refresh and rejoin.",
		})
		return
	}

	// Non-hosts get no feedback; only the host UI exposes this control,
	// and silence leaks nothing to probing clients.
	if room.host != c.id {
		return
	}
	if room.state != StateLobby {
		return
	}

	if !s.catalog.Has(msg.Category) {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Invalid category.",
		})
		return
	}
	if len(room.players) < 2 {
		s.sendLocked(c, GameErrorMessage{
			Type:    "game-error",
			Message: "Need at least 2 players to start.",
		})
		return
	}

	room.start(msg.Category, s.catalog.Words(msg.Category))

	logf(s.cfg, "GAMES: Room %s started a round (category %q)", room.code, msg.Category)

	s.broadcastRoomLocked(room, GameStartedMessage{
		Type:     "game-started",
		Category: msg.Category,
	}, nil)
}

// handleGetMyRole replies privately so a role is only ever revealed to its
// own player, and only when they ask to see it.
func (s *Server) handleGetMyRole(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomCode]
	if !ok {
		return
	}

	role, ok := room.roles[c.id]
	if !ok {
		return
	}

	s.sendLocked(c, RoleMessage{
		Type:       "your-role",
		IsImposter: role.IsImposter,
		Word:       role.Word,
	})
}

func (s *Server) handleChat(c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomCode]
	if !ok || room.state == StateEnded {
		return
	}

	trimmed := strings.TrimSpace(msg.Text)
	if runes := []rune(trimmed); len(runes) > 200 {
		trimmed = string(runes[:200])
	}
	if trimmed == "" {
		return
	}

	s.broadcastRoomLocked(room, ChatMessage{
		Type: "chat-message",
		Name: c.playerName,
		Text: trimmed,
	}, nil)
}

func (s *Server) handleEndGame(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomCode]
	if !ok {
		return
	}

	// Only the imposter or the host may end the round; everyone else is
	// silently ignored.
	if room.imposterID != c.id && room.host != c.id {
		return
	}
	if room.state != StatePlaying {
		return
	}

	imposterName := room.end()

	logf(s.cfg, "GAMES: Room %s ended, imposter was %q", room.code, imposterName)

	s.broadcastRoomLocked(room, GameEndedMessage{
		Type:         "game-ended",
		SecretWord:   room.secretWord,
		ImposterName: imposterName,
		Category:     room.category,
	}, nil)
}

func (s *Server) handlePlayAgain(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[c.roomCode]
	if !ok || room.host != c.id {
		return
	}

	room.reset()

	logf(s.cfg, "GAMES: Room %s reset to lobby", room.code)

	s.broadcastRoomLocked(room, ResetGameMessage{
		Type:       "reset-game",
		Players:    room.snapshot(),
		Categories: s.catalog.Names(),
	}, nil)
}

func (s *Server) handleRejoinRoom(c *Client, msg ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[msg.RoomCode]
	if !ok {
		s.sendLocked(c, RejoinFailedMessage{
			Type:    "rejoin-failed",
			Message: "Room no longer exists.",
		})
		return
	}

	name := strings.TrimSpace(msg.PlayerName)
	existing := room.playerByName(name)
	if name == "" || existing == nil {
		s.sendLocked(c, RejoinFailedMessage{
			Type:    "rejoin-failed",
			Message: "Could not rejoin — please re-enter the room.",
		})
		return
	}

	oldID := existing.ID

	// Cancel the pending removal for the seat being reclaimed.
	if timer, ok := s.timers[oldID]; ok {
		timer.Stop()
		delete(s.timers, oldID)
	}

	room.migrateID(oldID, c.id)

	c.roomCode = room.code
	c.playerName = name

	logf(s.cfg, "GAMES: %q rejoined room %s", name, room.code)

	s.sendLocked(c, RejoinedRoomMessage{
		Type:       "rejoined-room",
		RoomCode:   room.code,
		Players:    room.snapshot(),
		Categories: s.catalog.Names(),
		GameState:  room.state,
		Category:   room.category,
	})

	s.broadcastRoomLocked(room, PlayersUpdatedMessage{
		Type:    "players-updated",
		Players: room.snapshot(),
	}, nil)
}

// newRoomCodeLocked generates a crypto-random room code, resampling on
// collision with an existing room.
func (s *Server) newRoomCodeLocked() string {
	max := byte(255 - (256 % len(roomCodeAlphabet)))

	for {
		buf := make([]byte, roomCodeLength*2)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		out := make([]byte, 0, roomCodeLength)
		for _, b := range buf {
			if b <= max {
				out = append(out, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
				if len(out) == roomCodeLength {
					break
				}
			}
		}
		if len(out) < roomCodeLength {
			continue
		}

		code := string(out)
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}

func (s *Server) roomExists(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rooms[code]
	return ok
}

// sendLocked delivers a message to one client, evicting it if its send
// buffer is full.
func (s *Server) sendLocked(c *Client, msg any) {
	if _, ok := s.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(s.clients, c)
		close(c.send)
	}
}

// broadcastRoomLocked delivers a message to every connected member of the
// room, skipping except if non-nil. Delivery is best-effort per client.
func (s *Server) broadcastRoomLocked(room *Room, msg any, except *Client) {
	for client := range s.clients {
		if client.roomCode != room.code || client == except {
			continue
		}

		select {
		case client.send <- msg:
		default:
			delete(s.clients, client)
			close(client.send)
		}
	}
}
