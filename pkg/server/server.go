package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"sword-duel-server/pkg/server/constants"
	"sword-duel-server/pkg/server/types"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultCountdownInterval = 1 * time.Second

	// Time to keep inactive rooms before cleanup
	RoomCleanupInterval = 1 * time.Minute
	RoomInactiveTimeout = 10 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for demo
	},
}

// Connection represents a WebSocket connection and its binding to a player
// and room. A connection holds at most one binding; a fresh join flow may
// rebind it.
type Connection struct {
	ID         string
	connection *websocket.Conn
	RoomCode   string
	PlayerID   string
	PlayerName string
	WriteMutex sync.Mutex
}

// Options configures a Server. Zero values fall back to production defaults.
type Options struct {
	CountdownInterval time.Duration
	HitDamage         int
}

// Server handles WebSocket connections and room state
type Server struct {
	// Map of roomCode -> connectionID -> connection
	connectionsByRoom map[string]map[string]*Connection

	// Mutex for server-wide operations
	serverLock sync.Mutex

	roomManager *RoomManager
	metrics     *ServerMetrics

	countdownInterval time.Duration
	hitDamage         int

	cleanupStop chan struct{}
}

// NewServer creates a new duel server and starts its cleanup worker.
func NewServer(opts Options) *Server {
	if opts.CountdownInterval <= 0 {
		opts.CountdownInterval = DefaultCountdownInterval
	}
	if opts.HitDamage <= 0 {
		opts.HitDamage = constants.SwordHitDamage
	}

	server := &Server{
		connectionsByRoom: make(map[string]map[string]*Connection),
		roomManager:       NewRoomManager(),
		metrics:           &ServerMetrics{},
		countdownInterval: opts.CountdownInterval,
		hitDamage:         opts.HitDamage,
		cleanupStop:       make(chan struct{}),
	}

	// Start the inactive room cleanup worker
	go server.runCleanupInactiveRooms()

	return server
}

// Close stops the server's background workers and cancels room countdowns.
func (s *Server) Close() {
	close(s.cleanupStop)
	for _, code := range s.roomManager.RoomCodes() {
		s.roomManager.RemoveRoom(code)
	}
}

// HandleWebSocket handles incoming WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("Error upgrading connection: %v", err)
		return
	}

	conn := &Connection{
		ID:         uuid.New().String(),
		connection: ws,
	}

	go s.handleConnection(conn)
}

// handleConnection processes messages from a WebSocket connection. Messages
// for one connection are handled strictly in arrival order.
func (s *Server) handleConnection(conn *Connection) {
	defer func() {
		s.handleDisconnect(conn)
		_ = conn.connection.Close()
	}()

	for {
		var msg types.Message
		err := conn.connection.ReadJSON(&msg)
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if conn.RoomCode != "" {
					Log.Infof("Connection %s closed normally from room %s", conn.ID, conn.RoomCode)
				}
			} else {
				Log.Debugf("Error reading message on connection %s: %v", conn.ID, err)
			}
			break
		}

		s.dispatch(conn, msg)
	}
}

// dispatch routes an inbound message to its handler. Payloads failing basic
// shape checks are dropped rather than read ad hoc.
func (s *Server) dispatch(conn *Connection, msg types.Message) {
	s.metrics.IncMessages()

	switch msg.Type {
	case "createRoom":
		var req types.CreateRoomRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling createRoom payload: %v", err)
			return
		}
		s.handleCreateRoom(conn, req)

	case "joinRandomRoom":
		var req types.JoinRandomRoomRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling joinRandomRoom payload: %v", err)
			return
		}
		s.handleJoinRandomRoom(conn, req)

	case "joinRoom":
		var req types.JoinRoomRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling joinRoom payload: %v", err)
			return
		}
		s.handleJoinRoom(conn, req)

	case "joinGame":
		var req types.JoinGameRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling joinGame payload: %v", err)
			return
		}
		s.handleJoinGame(conn, req)

	case "playerState":
		var req types.PlayerStateRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling playerState payload: %v", err)
			return
		}
		s.handlePlayerState(conn, req)

	case "playerUpdate":
		var req types.PlayerUpdateRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling playerUpdate payload: %v", err)
			return
		}
		s.handlePlayerUpdate(conn, req)

	case "swordSwing":
		var req types.SwordSwingRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling swordSwing payload: %v", err)
			return
		}
		s.handleSwordSwing(conn, req)

	case "swordRelease":
		var req types.SwordReleaseRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling swordRelease payload: %v", err)
			return
		}
		s.handleSwordRelease(conn, req)

	case "playerHit":
		var req types.PlayerHitRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling playerHit payload: %v", err)
			return
		}
		s.handlePlayerHit(conn, req)

	case "playerDied":
		var req types.PlayerDiedRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling playerDied payload: %v", err)
			return
		}
		s.handlePlayerDied(conn, req)

	case "playerRespawn":
		var req types.PlayerRespawnRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			Log.Warnf("Error unmarshalling playerRespawn payload: %v", err)
			return
		}
		s.handlePlayerRespawn(conn, req)

	default:
		Log.Warnf("Unknown message type: %s", msg.Type)
	}
}

// handleDisconnect runs the guaranteed cleanup for a closed connection:
// remove the player from its room, notify the remaining player, destroy the
// room once empty, and drop the connection binding.
func (s *Server) handleDisconnect(conn *Connection) {
	if conn.RoomCode == "" {
		return
	}

	Log.Infof("Handling disconnect for connection %s from room %s", conn.ID, conn.RoomCode)

	roomCode := conn.RoomCode
	playerID := conn.PlayerID
	s.removeConnectionForRoom(conn)

	room, exists := s.roomManager.GetRoom(roomCode)
	if !exists {
		return
	}

	removed, remaining := room.RemovePlayer(playerID)
	if remaining == 0 {
		s.roomManager.RemoveRoom(roomCode)
		Log.Infof("Removed empty room %s", roomCode)
		return
	}

	if removed != nil {
		s.publishToRoom(roomCode, "playerDisconnected", types.PlayerDisconnectedEvent{
			PlayerID:   removed.ID,
			PlayerName: removed.Name,
		})
	}
}

func (s *Server) addConnectionForRoom(conn *Connection, roomCode string) {
	s.serverLock.Lock()
	if _, exists := s.connectionsByRoom[roomCode]; !exists {
		s.connectionsByRoom[roomCode] = make(map[string]*Connection)
	}
	s.connectionsByRoom[roomCode][conn.ID] = conn
	s.serverLock.Unlock()
}

func (s *Server) removeConnectionForRoom(conn *Connection) {
	s.serverLock.Lock()
	if conns, exists := s.connectionsByRoom[conn.RoomCode]; exists {
		delete(conns, conn.ID)
		if len(conns) == 0 {
			delete(s.connectionsByRoom, conn.RoomCode)
		}
	}
	s.serverLock.Unlock()
	conn.RoomCode = ""
	conn.PlayerID = ""
}

// runCleanupInactiveRooms periodically removes rooms that have seen no
// activity. Empty rooms are removed synchronously on disconnect; this loop is
// the backstop for rooms abandoned without a clean disconnect.
func (s *Server) runCleanupInactiveRooms() {
	ticker := time.NewTicker(RoomCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.cleanupStop:
			return
		case <-ticker.C:
			s.cleanupInactiveRooms()
		}
	}
}

func (s *Server) cleanupInactiveRooms() {
	now := time.Now()
	for _, code := range s.roomManager.RoomCodes() {
		room, exists := s.roomManager.GetRoom(code)
		if !exists {
			continue
		}
		if room.PlayerCount() == 0 {
			s.roomManager.RemoveRoom(code)
			Log.Infof("Removed empty room: %s", code)
		} else if now.Sub(room.LastActive()) > RoomInactiveTimeout {
			s.roomManager.RemoveRoom(code)
			Log.Infof("Removed inactive room: %s", code)
		}
	}
}
