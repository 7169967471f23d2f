package server

import (
	"encoding/json"

	"sword-duel-server/pkg/server/types"
	"sword-duel-server/pkg/util"
)

// Snapshot builds the broadcast-ready projection of every player in the room.
// Combat substates a client has not reported yet are filled with their idle
// defaults: shield up at angle 0, sword sheathed, hitbox hidden. This is a
// protocol contract; clients must never see an absent substate.
func (r *Room) Snapshot() types.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make(map[string]types.PlayerSnapshot, len(r.players))
	for id, p := range r.players {
		snap := types.PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			X:         p.X,
			Y:         p.Y,
			VelocityX: p.VelocityX,
			VelocityY: p.VelocityY,
			Health:    p.Health,
			IsDead:    p.IsDead,
			Shield:    types.ShieldState{Active: true, Angle: 0},
		}
		if p.Shield != nil {
			snap.Shield = *p.Shield
		}
		if p.Sword != nil {
			snap.Sword = *p.Sword
		}
		if p.Hitbox != nil {
			snap.Hitbox = *p.Hitbox
		}
		players[id] = snap
	}

	return types.GameState{
		Players:     players,
		GameStarted: r.gameStartedLocked(),
		Countdown:   r.countdown,
	}
}

// broadcastGameState sends the full room snapshot to every connection in the
// room, the sender included.
func (s *Server) broadcastGameState(room *Room) {
	s.publishToRoom(room.Code, "gameState", room.Snapshot())
}

// publishToRoom sends a message to every connection bound to the room.
func (s *Server) publishToRoom(roomCode string, msgType string, payload any) {
	s.publish(roomCode, "", msgType, payload)
}

// publishToOthers sends a message to every connection in the room except the
// given one. Used for high-frequency relays so a player's own input is never
// echoed back.
func (s *Server) publishToOthers(roomCode string, excludeConnID string, msgType string, payload any) {
	s.publish(roomCode, excludeConnID, msgType, payload)
}

func (s *Server) publish(roomCode string, excludeConnID string, msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		Log.Errorf("publish: error marshalling %s payload: %v", msgType, err)
		return
	}

	connectionsToUpdate := make([]*Connection, 0)
	s.serverLock.Lock()
	for _, conn := range s.connectionsByRoom[roomCode] {
		if conn.ID == excludeConnID {
			continue
		}
		connectionsToUpdate = append(connectionsToUpdate, conn)
	}
	s.serverLock.Unlock()

	msg := types.Message{Type: msgType, Payload: data}
	for _, conn := range connectionsToUpdate {
		s.send(conn, msg)
	}
	s.metrics.IncBroadcasts()
}

// sendTo writes a single message to one connection.
func (s *Server) sendTo(conn *Connection, msgType string, payload any) {
	s.send(conn, types.Message{Type: msgType, Payload: util.Must(json.Marshal(payload))})
}

func (s *Server) send(conn *Connection, msg types.Message) {
	// Lock the connection before writing to prevent concurrent writes
	conn.WriteMutex.Lock()
	err := conn.connection.WriteJSON(msg)
	conn.WriteMutex.Unlock()
	if err != nil {
		Log.Debugf("Error sending %s to connection %s: %v", msg.Type, conn.ID, err)
	}
}
