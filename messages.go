package main

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"`                 // "create-room", "join-room", "start-game", "get-my-role", "chat-message", "end-game", "play-again", "rejoin-room"
	PlayerName string `json:"playerName,omitempty"` // create-room / join-room / rejoin-room
	RoomCode   string `json:"roomCode,omitempty"`   // join-room / rejoin-room
	Category   string `json:"category,omitempty"`   // start-game
	Text       string `json:"text,omitempty"`       // chat-message
}

// PlayerInfo is the player shape sent over the wire.
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// RoomCreatedMessage acknowledges room creation to the creator.
type RoomCreatedMessage struct {
	Type       string       `json:"type"` // "room-created"
	RoomCode   string       `json:"roomCode"`
	Players    []PlayerInfo `json:"players"`
	Categories []string     `json:"categories"`
}

// RoomJoinedMessage acknowledges a successful join to the joiner.
type RoomJoinedMessage struct {
	Type       string       `json:"type"` // "room-joined"
	RoomCode   string       `json:"roomCode"`
	Players    []PlayerInfo `json:"players"`
	Categories []string     `json:"categories"`
}

// PlayersUpdatedMessage broadcasts the current player list.
type PlayersUpdatedMessage struct {
	Type    string       `json:"type"` // "players-updated"
	Players []PlayerInfo `json:"players"`
}

// GameStartedMessage announces a round; only the category is revealed.
type GameStartedMessage struct {
	Type     string `json:"type"` // "game-started"
	Category string `json:"category"`
}

// RoleMessage is sent only to the requesting player, never broadcast.
type RoleMessage struct {
	Type       string  `json:"type"` // "your-role"
	IsImposter bool    `json:"isImposter"`
	Word       *string `json:"word"` // nil for the imposter
}

// GameEndedMessage reveals the word and the imposter to the whole room.
type GameEndedMessage struct {
	Type         string `json:"type"` // "game-ended"
	SecretWord   string `json:"secretWord"`
	ImposterName string `json:"imposterName"`
	Category     string `json:"category"`
}

// ResetGameMessage returns the room to the lobby.
type ResetGameMessage struct {
	Type       string       `json:"type"` // "reset-game"
	Players    []PlayerInfo `json:"players"`
	Categories []string     `json:"categories"`
}

// GameErrorMessage is sent to a single client when a request fails.
type GameErrorMessage struct {
	Type    string `json:"type"` // "game-error"
	Message string `json:"message"`
}

// RejoinedRoomMessage is the full room snapshot sent to a reconnecting
// player. It includes the game state so the client can resume mid-round,
// but never the secret word or the imposter identity.
type RejoinedRoomMessage struct {
	Type       string       `json:"type"` // "rejoined-room"
	RoomCode   string       `json:"roomCode"`
	Players    []PlayerInfo `json:"players"`
	Categories []string     `json:"categories"`
	GameState  GameState    `json:"gameState"`
	Category   string       `json:"category"`
}

// RejoinFailedMessage is sent to a single client when rejoining fails.
type RejoinFailedMessage struct {
	Type    string `json:"type"` // "rejoin-failed"
	Message string `json:"message"`
}

// ChatMessage relays room chat, sender included.
type ChatMessage struct {
	Type string `json:"type"` // "chat-message"
	Name string `json:"name"`
	Text string `json:"text"`
}
