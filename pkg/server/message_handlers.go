package server

import (
	"errors"

	"sword-duel-server/pkg/server/constants"
	"sword-duel-server/pkg/server/types"
	"sword-duel-server/pkg/util"
)

// handleCreateRoom creates a fresh room with the requesting player inside it
// and binds the connection to the new room.
func (s *Server) handleCreateRoom(conn *Connection, req types.CreateRoomRequest) {
	room := s.roomManager.CreateRoom()
	s.metrics.IncRoomsCreated()

	playerID := util.GeneratePlayerID()
	if _, err := room.UpsertPlayer(playerID, req.PlayerName); err != nil {
		// A brand-new room cannot be full; log and bail.
		Log.Errorf("handleCreateRoom: failed to add player to new room %s: %v", room.Code, err)
		return
	}

	s.bindConnection(conn, room.Code, playerID, req.PlayerName)

	s.sendTo(conn, "roomCreated", types.RoomCreatedResponse{
		RoomCode: room.Code,
		PlayerID: playerID,
	})
	Log.Infof("Player %s (%s) created room %s", playerID, req.PlayerName, room.Code)
}

// handleJoinRandomRoom places the player into the first open room, or falls
// back to creating a new one when no open room exists.
func (s *Server) handleJoinRandomRoom(conn *Connection, req types.JoinRandomRoomRequest) {
	room, found := s.roomManager.FindOpenRoom()
	if !found {
		s.handleCreateRoom(conn, types.CreateRoomRequest(req))
		return
	}
	s.joinExistingRoom(conn, room, req.PlayerName)
}

// handleJoinRoom joins a room by its code, rejecting with roomNotFound or
// roomFull events.
func (s *Server) handleJoinRoom(conn *Connection, req types.JoinRoomRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		s.sendTo(conn, "roomNotFound", struct{}{})
		return
	}
	s.joinExistingRoom(conn, room, req.PlayerName)
}

func (s *Server) joinExistingRoom(conn *Connection, room *Room, playerName string) {
	playerID := util.GeneratePlayerID()
	if _, err := room.UpsertPlayer(playerID, playerName); err != nil {
		if errors.Is(err, ErrRoomFull) {
			s.sendTo(conn, "roomFull", struct{}{})
			return
		}
		Log.Errorf("joinExistingRoom: failed to join room %s: %v", room.Code, err)
		return
	}

	s.bindConnection(conn, room.Code, playerID, playerName)

	s.sendTo(conn, "roomJoined", types.RoomJoinedResponse{
		RoomCode: room.Code,
		PlayerID: playerID,
	})
	Log.Infof("Player %s (%s) joined room %s", playerID, playerName, room.Code)
}

// handleJoinGame confirms a player's membership (idempotently), broadcasts
// the room snapshot, and starts the countdown once both players are present.
func (s *Server) handleJoinGame(conn *Connection, req types.JoinGameRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		Log.Debugf("handleJoinGame: room %s not found", req.RoomCode)
		return
	}

	if _, err := room.UpsertPlayer(req.PlayerID, req.PlayerName); err != nil {
		if errors.Is(err, ErrRoomFull) {
			s.sendTo(conn, "roomFull", struct{}{})
		}
		return
	}

	s.bindConnection(conn, room.Code, req.PlayerID, req.PlayerName)
	s.broadcastGameState(room)

	if room.PlayerCount() == constants.MaxPlayersPerRoom {
		s.startCountdown(room)
	}
}

// startCountdown kicks off the room's start sequence. The room itself rejects
// the request unless it is in the ready phase.
func (s *Server) startCountdown(room *Room) {
	started := room.StartCountdown(s.countdownInterval,
		func(value int) {
			s.publishToRoom(room.Code, "countdown", value)
		},
		func() {
			s.broadcastGameState(room)
		})
	if started {
		Log.Infof("Starting countdown in room %s", room.Code)
	}
}

// handlePlayerState applies a trusted movement overwrite and relays it to the
// other room member. Stale reports for unknown rooms or players are dropped.
func (s *Server) handlePlayerState(conn *Connection, req types.PlayerStateRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}
	if !room.ApplyPlayerState(req) {
		return
	}
	s.publishToOthers(room.Code, conn.ID, "playerState", req)
}

// handlePlayerUpdate relays pointer/aim positions. Pure relay, no state.
func (s *Server) handlePlayerUpdate(conn *Connection, req types.PlayerUpdateRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}
	s.publishToOthers(room.Code, conn.ID, "playerUpdate", req)
}

func (s *Server) handleSwordSwing(conn *Connection, req types.SwordSwingRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}
	if !room.SetSwordSwing(req.PlayerID, req.Hitbox) {
		return
	}
	s.publishToOthers(room.Code, conn.ID, "swordSwing", req)
}

func (s *Server) handleSwordRelease(conn *Connection, req types.SwordReleaseRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}
	if !room.ClearSword(req.PlayerID) {
		return
	}
	s.publishToOthers(room.Code, conn.ID, "swordRelease", req)
}

// handlePlayerHit adjudicates a reported hit. The hit event goes to the whole
// room whenever damage lands, and a game-over event follows when only one
// player remains alive.
func (s *Server) handlePlayerHit(conn *Connection, req types.PlayerHitRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}

	out := room.ApplyHit(req.AttackerID, req.TargetID, s.hitDamage)
	if !out.Applied {
		return
	}
	s.metrics.IncHitsApplied()

	s.publishToRoom(room.Code, "playerHit", types.PlayerHitEvent{
		PlayerID:   req.TargetID,
		AttackerID: req.AttackerID,
		Damage:     s.hitDamage,
	})

	if out.GameOver {
		s.publishGameOver(room, out)
	}
}

// handlePlayerDied handles a client self-reported death (fall or other
// environmental cause) and runs the same survivor evaluation as a lethal hit.
func (s *Server) handlePlayerDied(conn *Connection, req types.PlayerDiedRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}

	out := room.ApplyExplicitDeath(req.PlayerID)
	if out.GameOver {
		s.publishGameOver(room, out)
	}
}

func (s *Server) handlePlayerRespawn(conn *Connection, req types.PlayerRespawnRequest) {
	room, exists := s.roomManager.GetRoom(req.RoomCode)
	if !exists {
		return
	}
	if !room.Respawn(req.PlayerID) {
		return
	}
	s.publishToOthers(room.Code, conn.ID, "playerRespawn", types.PlayerRespawnEvent{
		PlayerID: req.PlayerID,
	})
}

func (s *Server) publishGameOver(room *Room, out HitOutcome) {
	s.publishToRoom(room.Code, "gameOver", types.GameOverEvent{
		WinnerID: out.WinnerID,
		LoserID:  out.LoserID,
	})
	Log.Infof("Game over in room %s: winner %s, loser %s", room.Code, out.WinnerID, out.LoserID)
}

// bindConnection points the connection at its room and player and subscribes
// it to the room's broadcast group. A rebinding connection is first removed
// from its previous group.
func (s *Server) bindConnection(conn *Connection, roomCode string, playerID string, playerName string) {
	if conn.RoomCode != "" && conn.RoomCode != roomCode {
		s.removeConnectionForRoom(conn)
	}
	conn.RoomCode = roomCode
	conn.PlayerID = playerID
	conn.PlayerName = playerName
	s.addConnectionForRoom(conn, roomCode)
}
