package server

import (
	"errors"
	"sync"
	"time"

	"sword-duel-server/pkg/server/constants"
	"sword-duel-server/pkg/server/types"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrPlayerNotFound = errors.New("player not found in room")
)

// GamePhase tracks where a room is in its lifecycle:
//
//	forming -> ready -> counting -> active -> over
//
// A room in "over" persists until its players disconnect; there is no
// automatic rematch.
type GamePhase string

const (
	PhaseForming  GamePhase = "forming"
	PhaseReady    GamePhase = "ready"
	PhaseCounting GamePhase = "counting"
	PhaseActive   GamePhase = "active"
	PhaseOver     GamePhase = "over"
)

// Player is the authoritative server-side record for one combatant. Position
// and velocity are trusted client reports; health and the death flag are
// server-authoritative.
type Player struct {
	ID        string
	Name      string
	X         float64
	Y         float64
	VelocityX float64
	VelocityY float64
	Health    int
	IsDead    bool

	// Combat substates stay nil until the client reports them; the broadcast
	// snapshot fills idle defaults for nil entries.
	Shield *types.ShieldState
	Sword  *types.SwordState
	Hitbox *types.SwordHitbox
}

// Room is a two-player match container identified by a short code. All state
// mutation goes through its methods; the internal mutex guards the player map
// and phase against concurrent message handlers and the countdown goroutine.
type Room struct {
	Code string

	mu        sync.Mutex
	players   map[string]*Player
	order     []string // player ids in join order, drives spawn assignment
	phase     GamePhase
	countdown int

	countdownStop chan struct{}
	countdownWg   sync.WaitGroup
	stopOnce      sync.Once

	lastActive time.Time
}

// NewRoom creates an empty room with the given code.
func NewRoom(code string) *Room {
	return &Room{
		Code:       code,
		players:    make(map[string]*Player),
		phase:      PhaseForming,
		lastActive: time.Now(),
	}
}

// UpsertPlayer adds a player under the given id, or returns the existing one
// unchanged (join-game is idempotent on membership). Adding a third player
// fails with ErrRoomFull. The second successful add moves the room to ready.
func (r *Room) UpsertPlayer(playerID string, name string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, exists := r.players[playerID]; exists {
		return p, nil
	}
	if len(r.players) >= constants.MaxPlayersPerRoom {
		return nil, ErrRoomFull
	}

	p := &Player{
		ID:     playerID,
		Name:   name,
		Health: constants.PlayerStartingHealth,
	}
	r.players[playerID] = p
	r.order = append(r.order, playerID)

	if len(r.players) == constants.MaxPlayersPerRoom && r.phase == PhaseForming {
		r.phase = PhaseReady
	}
	r.lastActive = time.Now()
	return p, nil
}

// ApplyPlayerState overwrites a player's movement state with a trusted client
// report. Health is clamped to [0,100] and the death flag never reverts here;
// only an explicit respawn clears it. Returns false for unknown players.
func (r *Room) ApplyPlayerState(req types.PlayerStateRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[req.PlayerID]
	if !exists {
		return false
	}

	p.X = req.X
	p.Y = req.Y
	p.VelocityX = req.VelocityX
	p.VelocityY = req.VelocityY
	p.Health = clampHealth(req.Health)
	if !p.IsDead {
		p.IsDead = req.IsDead
	}
	if req.Shield != nil {
		shield := *req.Shield
		p.Shield = &shield
	}
	r.lastActive = time.Now()
	return true
}

// SetSwordSwing marks a player's sword as drawn and mid-swing, recording the
// client-computed hitbox.
func (r *Room) SetSwordSwing(playerID string, hitbox types.SwordHitbox) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return false
	}
	p.Sword = &types.SwordState{Active: true, IsSwinging: true, SwingAngle: hitbox.Angle}
	hb := hitbox
	hb.Visible = true
	p.Hitbox = &hb
	r.lastActive = time.Now()
	return true
}

// ClearSword resets a player's sword to its idle state.
func (r *Room) ClearSword(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return false
	}
	p.Sword = nil
	p.Hitbox = nil
	r.lastActive = time.Now()
	return true
}

// RemovePlayer removes a player from the room and returns the removed record
// plus the remaining player count.
func (r *Room) RemovePlayer(playerID string) (*Player, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return nil, len(r.players)
	}
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	// A ready room that loses its second player is back to waiting for one.
	if r.phase == PhaseReady && len(r.players) < constants.MaxPlayersPerRoom {
		r.phase = PhaseForming
	}
	r.lastActive = time.Now()
	return p, len(r.players)
}

// GetPlayer returns the player record for the given id.
func (r *Room) GetPlayer(playerID string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.players[playerID]
	return p, exists
}

// Open reports whether the room can accept a matchmade player: exactly one
// occupant and no match started or finished. Count and phase are checked under
// one lock so matchmaking never races a concurrent join or game over.
func (r *Room) Open() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 1 && r.phase == PhaseForming
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Phase() GamePhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// GameStarted reports whether a match is in progress: true from the start of
// the countdown until game over.
func (r *Room) GameStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameStartedLocked()
}

func (r *Room) gameStartedLocked() bool {
	return r.phase == PhaseCounting || r.phase == PhaseActive
}

func (r *Room) Countdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdown
}

// LastActive returns the time of the room's most recent state change.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func clampHealth(health int) int {
	if health < 0 {
		return 0
	}
	if health > constants.PlayerStartingHealth {
		return constants.PlayerStartingHealth
	}
	return health
}
