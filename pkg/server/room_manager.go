package server

import (
	"strings"
	"sync"

	"sword-duel-server/pkg/util"
)

// RoomManager owns every live room, keyed by room code. Codes are generated
// without a collision check; with a 4-character alphanumeric space this is an
// accepted, documented limitation rather than a guarded failure path.
type RoomManager struct {
	rooms    map[string]*Room
	roomLock sync.Mutex
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom creates and registers a new empty room under a fresh code.
func (m *RoomManager) CreateRoom() *Room {
	room := NewRoom(util.GenerateRoomCode())
	m.roomLock.Lock()
	m.rooms[room.Code] = room
	m.roomLock.Unlock()
	return room
}

func (m *RoomManager) GetRoom(roomCode string) (*Room, bool) {
	m.roomLock.Lock()
	room, exists := m.rooms[strings.ToUpper(roomCode)]
	m.roomLock.Unlock()
	return room, exists
}

// FindOpenRoom scans for a room with exactly one player whose match has never
// started. Finished rooms are excluded even when a disconnect leaves them with
// a free slot, since a joiner there could never be matched into a start.
// Iteration order is map order; matchmaking makes no fairness guarantee.
func (m *RoomManager) FindOpenRoom() (*Room, bool) {
	m.roomLock.Lock()
	defer m.roomLock.Unlock()

	for _, room := range m.rooms {
		if room.Open() {
			return room, true
		}
	}
	return nil, false
}

// RemoveRoom deletes a room from the registry and cancels any countdown still
// running for it.
func (m *RoomManager) RemoveRoom(roomCode string) {
	m.roomLock.Lock()
	room, exists := m.rooms[roomCode]
	delete(m.rooms, roomCode)
	m.roomLock.Unlock()

	if exists {
		room.StopCountdown()
	}
}

func (m *RoomManager) RoomCodes() []string {
	m.roomLock.Lock()
	defer m.roomLock.Unlock()

	var codes []string
	for code := range m.rooms {
		codes = append(codes, code)
	}
	return codes
}

func (m *RoomManager) RoomCount() int {
	m.roomLock.Lock()
	defer m.roomLock.Unlock()
	return len(m.rooms)
}
