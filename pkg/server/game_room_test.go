package server

import (
	"errors"
	"testing"

	"sword-duel-server/pkg/server/types"
)

func TestUpsertPlayer_CapacityAndPhase(t *testing.T) {
	room := NewRoom("AB12")

	if room.Phase() != PhaseForming {
		t.Errorf("Expected phase %s, got %s", PhaseForming, room.Phase())
	}

	p1, err := room.UpsertPlayer("p1", "Alice")
	if err != nil {
		t.Fatalf("Expected no error adding first player, got %v", err)
	}
	if p1.Health != 100 {
		t.Errorf("Expected starting health 100, got %d", p1.Health)
	}
	if room.Phase() != PhaseForming {
		t.Errorf("Expected phase %s with one player, got %s", PhaseForming, room.Phase())
	}

	if _, err := room.UpsertPlayer("p2", "Bob"); err != nil {
		t.Fatalf("Expected no error adding second player, got %v", err)
	}
	if room.Phase() != PhaseReady {
		t.Errorf("Expected phase %s with two players, got %s", PhaseReady, room.Phase())
	}

	if _, err := room.UpsertPlayer("p3", "Carol"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull adding third player, got %v", err)
	}
	if room.PlayerCount() != 2 {
		t.Errorf("Expected player count 2, got %d", room.PlayerCount())
	}

	// Upsert of an existing player is idempotent
	again, err := room.UpsertPlayer("p1", "Someone Else")
	if err != nil {
		t.Fatalf("Expected no error re-upserting player, got %v", err)
	}
	if again != p1 {
		t.Error("Expected re-upsert to return the existing player")
	}
	if again.Name != "Alice" {
		t.Errorf("Expected existing player name unchanged, got %s", again.Name)
	}
}

func TestApplyPlayerState(t *testing.T) {
	tests := []struct {
		name       string
		req        types.PlayerStateRequest
		wantOK     bool
		wantHealth int
		wantDead   bool
	}{
		{
			name:       "normal report",
			req:        types.PlayerStateRequest{PlayerID: "p1", X: 10, Y: 20, Health: 60},
			wantOK:     true,
			wantHealth: 60,
		},
		{
			name:       "negative health clamped to zero",
			req:        types.PlayerStateRequest{PlayerID: "p1", Health: -20},
			wantOK:     true,
			wantHealth: 0,
		},
		{
			name:       "excess health clamped to 100",
			req:        types.PlayerStateRequest{PlayerID: "p1", Health: 150},
			wantOK:     true,
			wantHealth: 100,
		},
		{
			name:       "death flag accepted",
			req:        types.PlayerStateRequest{PlayerID: "p1", Health: 0, IsDead: true},
			wantOK:     true,
			wantHealth: 0,
			wantDead:   true,
		},
		{
			name:   "unknown player ignored",
			req:    types.PlayerStateRequest{PlayerID: "ghost", Health: 50},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := NewRoom("AB12")
			if _, err := room.UpsertPlayer("p1", "Alice"); err != nil {
				t.Fatalf("UpsertPlayer failed: %v", err)
			}

			ok := room.ApplyPlayerState(tt.req)
			if ok != tt.wantOK {
				t.Errorf("ApplyPlayerState() = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			p, _ := room.GetPlayer("p1")
			if p.Health != tt.wantHealth {
				t.Errorf("Expected health %d, got %d", tt.wantHealth, p.Health)
			}
			if p.IsDead != tt.wantDead {
				t.Errorf("Expected IsDead %v, got %v", tt.wantDead, p.IsDead)
			}
		})
	}
}

func TestApplyPlayerState_DeathFlagNeverReverts(t *testing.T) {
	room := NewRoom("AB12")
	if _, err := room.UpsertPlayer("p1", "Alice"); err != nil {
		t.Fatalf("UpsertPlayer failed: %v", err)
	}

	room.ApplyPlayerState(types.PlayerStateRequest{PlayerID: "p1", Health: 0, IsDead: true})
	// A later stale report claiming the player is alive must not revive it
	room.ApplyPlayerState(types.PlayerStateRequest{PlayerID: "p1", Health: 80, IsDead: false})

	p, _ := room.GetPlayer("p1")
	if !p.IsDead {
		t.Error("Expected death flag to survive a stale alive report")
	}

	if !room.Respawn("p1") {
		t.Fatal("Respawn failed")
	}
	if p.IsDead {
		t.Error("Expected explicit respawn to clear the death flag")
	}
	if p.Health != 100 {
		t.Errorf("Expected respawn health 100, got %d", p.Health)
	}
}

func TestApplyPlayerState_StoresShield(t *testing.T) {
	room := NewRoom("AB12")
	if _, err := room.UpsertPlayer("p1", "Alice"); err != nil {
		t.Fatalf("UpsertPlayer failed: %v", err)
	}

	room.ApplyPlayerState(types.PlayerStateRequest{
		PlayerID: "p1",
		Health:   100,
		Shield:   &types.ShieldState{Active: false, Angle: 1.5},
	})

	p, _ := room.GetPlayer("p1")
	if p.Shield == nil {
		t.Fatal("Expected shield state to be stored")
	}
	if p.Shield.Active || p.Shield.Angle != 1.5 {
		t.Errorf("Expected shield {false, 1.5}, got %+v", p.Shield)
	}
}

func TestSwordSwingAndRelease(t *testing.T) {
	room := NewRoom("AB12")
	if _, err := room.UpsertPlayer("p1", "Alice"); err != nil {
		t.Fatalf("UpsertPlayer failed: %v", err)
	}

	hitbox := types.SwordHitbox{X: 5, Y: 6, Angle: 0.7}
	if !room.SetSwordSwing("p1", hitbox) {
		t.Fatal("SetSwordSwing failed for known player")
	}
	p, _ := room.GetPlayer("p1")
	if p.Sword == nil || !p.Sword.Active || !p.Sword.IsSwinging {
		t.Errorf("Expected active swinging sword, got %+v", p.Sword)
	}
	if p.Sword.SwingAngle != 0.7 {
		t.Errorf("Expected swing angle 0.7, got %v", p.Sword.SwingAngle)
	}
	if p.Hitbox == nil || !p.Hitbox.Visible {
		t.Errorf("Expected visible hitbox, got %+v", p.Hitbox)
	}

	if !room.ClearSword("p1") {
		t.Fatal("ClearSword failed for known player")
	}
	if p.Sword != nil || p.Hitbox != nil {
		t.Error("Expected sword state cleared on release")
	}

	if room.SetSwordSwing("ghost", hitbox) {
		t.Error("Expected SetSwordSwing to ignore unknown player")
	}
	if room.ClearSword("ghost") {
		t.Error("Expected ClearSword to ignore unknown player")
	}
}

func TestRemovePlayer(t *testing.T) {
	room := NewRoom("AB12")
	room.UpsertPlayer("p1", "Alice")
	room.UpsertPlayer("p2", "Bob")

	removed, remaining := room.RemovePlayer("p1")
	if removed == nil || removed.Name != "Alice" {
		t.Errorf("Expected removed player Alice, got %+v", removed)
	}
	if remaining != 1 {
		t.Errorf("Expected 1 remaining player, got %d", remaining)
	}

	removed, remaining = room.RemovePlayer("ghost")
	if removed != nil {
		t.Errorf("Expected nil for unknown player, got %+v", removed)
	}
	if remaining != 1 {
		t.Errorf("Expected remaining count unchanged, got %d", remaining)
	}

	_, remaining = room.RemovePlayer("p2")
	if remaining != 0 {
		t.Errorf("Expected empty room, got %d players", remaining)
	}
}

func TestRemovePlayer_PhaseReflectsMembership(t *testing.T) {
	// Losing the second player before the countdown starts returns the room
	// to forming, so it is open to matchmaking again.
	room := NewRoom("AB12")
	room.UpsertPlayer("p1", "Alice")
	room.UpsertPlayer("p2", "Bob")
	if room.Phase() != PhaseReady {
		t.Fatalf("Expected ready phase with 2 players, got %q", room.Phase())
	}

	room.RemovePlayer("p2")
	if room.Phase() != PhaseForming {
		t.Errorf("Expected forming phase after shrinking to 1 player, got %q", room.Phase())
	}
	if !room.Open() {
		t.Error("Expected room open to matchmaking after shrinking to 1 player")
	}

	// A finished room keeps its phase when a player leaves
	over := NewRoom("CD34")
	over.UpsertPlayer("p1", "Alice")
	over.UpsertPlayer("p2", "Bob")
	over.mu.Lock()
	over.phase = PhaseOver
	over.mu.Unlock()

	over.RemovePlayer("p2")
	if over.Phase() != PhaseOver {
		t.Errorf("Expected over phase preserved on disconnect, got %q", over.Phase())
	}
	if over.Open() {
		t.Error("Expected finished room closed to matchmaking")
	}
}

func TestSnapshot_FillsIdleDefaults(t *testing.T) {
	room := NewRoom("AB12")
	room.UpsertPlayer("p1", "Alice")

	snap := room.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("Expected 1 player in snapshot, got %d", len(snap.Players))
	}

	p := snap.Players["p1"]
	if !p.Shield.Active || p.Shield.Angle != 0 {
		t.Errorf("Expected default shield {active, 0}, got %+v", p.Shield)
	}
	if p.Sword.Active || p.Sword.IsSwinging || p.Sword.SwingAngle != 0 {
		t.Errorf("Expected idle sword defaults, got %+v", p.Sword)
	}
	if p.Hitbox.Visible {
		t.Errorf("Expected hidden hitbox default, got %+v", p.Hitbox)
	}
	if snap.GameStarted {
		t.Error("Expected gameStarted false before start")
	}
}

func TestSnapshot_PassesThroughReportedState(t *testing.T) {
	room := NewRoom("AB12")
	room.UpsertPlayer("p1", "Alice")
	room.ApplyPlayerState(types.PlayerStateRequest{
		PlayerID:  "p1",
		X:         42,
		Y:         43,
		VelocityX: 1,
		VelocityY: -1,
		Health:    55,
		Shield:    &types.ShieldState{Active: false, Angle: 2.1},
	})
	room.SetSwordSwing("p1", types.SwordHitbox{X: 50, Y: 51, Angle: 0.3})

	p := room.Snapshot().Players["p1"]
	if p.X != 42 || p.Y != 43 {
		t.Errorf("Expected position (42,43), got (%v,%v)", p.X, p.Y)
	}
	if p.Health != 55 {
		t.Errorf("Expected health 55, got %d", p.Health)
	}
	if p.Shield.Active || p.Shield.Angle != 2.1 {
		t.Errorf("Expected reported shield state, got %+v", p.Shield)
	}
	if !p.Sword.IsSwinging || !p.Hitbox.Visible {
		t.Errorf("Expected swinging sword with visible hitbox, got %+v %+v", p.Sword, p.Hitbox)
	}
}
