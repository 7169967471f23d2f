package types

import "encoding/json"

// Message represents a WebSocket message
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ShieldState is the client-reported shield posture. A player that has never
// reported one is broadcast as shielded at angle 0.
type ShieldState struct {
	Active bool    `json:"active"`
	Angle  float64 `json:"angle"`
}

// SwordState tracks whether a sword is drawn and mid-swing.
type SwordState struct {
	Active     bool    `json:"active"`
	IsSwinging bool    `json:"isSwinging"`
	SwingAngle float64 `json:"swingAngle"`
}

// SwordHitbox is the client-computed strike area relayed to the opponent.
type SwordHitbox struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
}

// PlayerSnapshot is the public view of one player, as broadcast to the room.
// Unset combat substates are filled with their idle defaults: clients must
// treat absence as "idle/shielded", never as unknown.
type PlayerSnapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	VelocityX float64     `json:"velocityX"`
	VelocityY float64     `json:"velocityY"`
	Health    int         `json:"health"`
	IsDead    bool        `json:"isDead"`
	Shield    ShieldState `json:"shield"`
	Sword     SwordState  `json:"sword"`
	Hitbox    SwordHitbox `json:"hitbox"`
}

// GameState is the full room snapshot sent after state-affecting joins and at
// countdown completion.
type GameState struct {
	Players     map[string]PlayerSnapshot `json:"players"`
	GameStarted bool                      `json:"gameStarted"`
	Countdown   int                       `json:"countdown"`
}

// Request structs (client -> server)

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRandomRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode"`
}

type JoinGameRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	RoomCode   string `json:"roomCode"`
}

// PlayerStateRequest is the client-authoritative movement report. The server
// trusts it wholesale, clamping health and never reviving a dead player.
type PlayerStateRequest struct {
	RoomCode  string       `json:"roomCode"`
	PlayerID  string       `json:"playerId"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	VelocityX float64      `json:"velocityX"`
	VelocityY float64      `json:"velocityY"`
	Health    int          `json:"health"`
	IsDead    bool         `json:"isDead"`
	Shield    *ShieldState `json:"shield,omitempty"`
}

// PlayerUpdateRequest carries pointer/aim position. Pure relay, no state.
type PlayerUpdateRequest struct {
	RoomCode string  `json:"roomCode"`
	PlayerID string  `json:"playerId"`
	MouseX   float64 `json:"mouseX"`
	MouseY   float64 `json:"mouseY"`
}

type SwordSwingRequest struct {
	RoomCode string      `json:"roomCode"`
	PlayerID string      `json:"playerId"`
	Hitbox   SwordHitbox `json:"hitbox"`
}

type SwordReleaseRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type PlayerHitRequest struct {
	RoomCode   string `json:"roomCode"`
	TargetID   string `json:"targetId"`
	AttackerID string `json:"attackerId"`
}

type PlayerDiedRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type PlayerRespawnRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// Response/event structs (server -> client)

type RoomCreatedResponse struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type RoomJoinedResponse struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type PlayerHitEvent struct {
	PlayerID   string `json:"playerId"`
	AttackerID string `json:"attackerId"`
	Damage     int    `json:"damage"`
}

type GameOverEvent struct {
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
}

type PlayerRespawnEvent struct {
	PlayerID string `json:"playerId"`
}

type PlayerDisconnectedEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}
