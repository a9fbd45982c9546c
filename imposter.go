// Imposter is a social deduction game: everyone in a room gets the same
// secret word except one player, the imposter, who gets nothing. Players
// talk around the word and try to sniff out who doesn't know it.
//
// Rooms are identified by a 6-character code and move through three states:
// lobby (players joining), playing (roles assigned, word hidden), and ended
// (word and imposter revealed). The host controls starting and resetting;
// either the host or the imposter can end a round early.

package main

import (
	"crypto/rand"
	"math/big"
)

// GameState is the phase a room is in. Operations are only legal in
// specific states; callers check the state before mutating.
type GameState string

const (
	StateLobby   GameState = "lobby"   // players joining, no roles assigned
	StatePlaying GameState = "playing" // round in progress, word hidden
	StateEnded   GameState = "ended"   // word and imposter revealed
)

// Player is one seat in a room. ID is the current connection identity and
// is rewritten when the player reconnects; Name is fixed for the life of
// the membership and unique within the room.
type Player struct {
	ID     string
	Name   string
	IsHost bool
}

// RoleAssignment is what a player is told about the round. The imposter's
// Word is nil; everyone else shares the secret word.
type RoleAssignment struct {
	IsImposter bool
	Word       *string
}

// Room holds one isolated game session. All fields are guarded by the
// owning Server's mutex; Room methods assume it is held.
type Room struct {
	code       string
	host       string // connection ID of the current host
	players    []*Player
	state      GameState
	category   string
	secretWord string
	imposterID string
	roles      map[string]RoleAssignment
}

func newRoom(code, hostID, hostName string) *Room {
	return &Room{
		code:  code,
		host:  hostID,
		state: StateLobby,
		players: []*Player{
			{ID: hostID, Name: hostName, IsHost: true},
		},
		roles: make(map[string]RoleAssignment),
	}
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) addPlayer(id, name string) {
	r.players = append(r.players, &Player{ID: id, Name: name})
}

// removePlayer drops the player with the given connection ID, discarding
// any role they held. If they were host, the earliest-joined remaining
// player is promoted. Returns whether anything changed.
func (r *Room) removePlayer(id string) bool {
	dst := r.players[:0]
	changed := false

	for _, p := range r.players {
		if p.ID == id {
			changed = true
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst

	if !changed {
		return false
	}

	delete(r.roles, id)

	if r.host == id && len(r.players) > 0 {
		r.host = r.players[0].ID
		r.players[0].IsHost = true
	}

	return true
}

// start transitions lobby → playing: one word drawn from the category's
// list, one player drawn as imposter, and a role built for every current
// player. The caller has already validated state, host, category, and
// player count.
func (r *Room) start(category string, words []string) {
	r.category = category
	r.secretWord = words[randomIndex(len(words))]
	r.imposterID = r.players[randomIndex(len(r.players))].ID
	r.state = StatePlaying
	r.roles = make(map[string]RoleAssignment, len(r.players))

	for _, p := range r.players {
		if p.ID == r.imposterID {
			r.roles[p.ID] = RoleAssignment{IsImposter: true}
		} else {
			word := r.secretWord
			r.roles[p.ID] = RoleAssignment{Word: &word}
		}
	}
}

// end transitions playing → ended and returns the imposter's display name
// for the reveal.
func (r *Room) end() string {
	r.state = StateEnded

	if p := r.playerByID(r.imposterID); p != nil {
		return p.Name
	}
	return "Unknown"
}

// reset returns the room to the lobby, discarding all round state but
// keeping the player list intact.
func (r *Room) reset() {
	r.state = StateLobby
	r.category = ""
	r.secretWord = ""
	r.imposterID = ""
	r.roles = make(map[string]RoleAssignment)
}

// migrateID rewrites every reference to oldID to newID in one step: the
// player's seat, the host marker, the imposter marker, and the role entry.
// Nothing else may touch the room between these writes, which the server's
// mutex guarantees.
func (r *Room) migrateID(oldID, newID string) {
	if p := r.playerByID(oldID); p != nil {
		p.ID = newID
	}
	if r.host == oldID {
		r.host = newID
	}
	if r.imposterID == oldID {
		r.imposterID = newID
	}
	if role, ok := r.roles[oldID]; ok {
		r.roles[newID] = role
		delete(r.roles, oldID)
	}
}

// snapshot returns the wire representation of the player list, in join
// order.
func (r *Room) snapshot() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerInfo{
			ID:     p.ID,
			Name:   p.Name,
			IsHost: p.IsHost,
		})
	}
	return players
}

// randomIndex returns a uniformly distributed value in [0, n) using
// crypto/rand. Word lists from operator-supplied catalogs can be
// arbitrarily long, so no fixed-width sampling.
func randomIndex(n int) int {
	if n <= 1 {
		return 0
	}

	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return int(v.Int64())
}
