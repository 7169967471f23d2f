package util

import (
	"strings"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		if len(code) != 4 {
			t.Fatalf("Expected 4-character code, got %q", code)
		}
		for _, c := range code {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("Code %q contains character outside the alphabet", code)
			}
		}
	}
}

func TestGeneratePlayerID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GeneratePlayerID()
		if id == "" {
			t.Fatal("Expected non-empty player id")
		}
		if seen[id] {
			t.Fatalf("Duplicate player id generated: %s", id)
		}
		seen[id] = true
	}
}
