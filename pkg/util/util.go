package util

import (
	"encoding/json"

	"github.com/google/uuid"
)

// GenerateRoomCode generates a random 4-character room code. Codes are drawn
// from 26 letters + 10 digits; collisions are not checked on creation.
func GenerateRoomCode() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	code := make([]byte, 4)
	for i := range code {
		code[i] = charset[uint32(uuid.New().ID()&0xFF)%uint32(len(charset))]
	}
	return string(code)
}

// GeneratePlayerID generates an opaque player identifier, unique within the
// process lifetime.
func GeneratePlayerID() string {
	return uuid.New().String()
}

// Must is a helper function to simplify error handling
func Must(data []byte, err error) json.RawMessage {
	if err != nil {
		panic(err)
	}
	return data
}
