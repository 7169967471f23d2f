package server

import "sword-duel-server/pkg/server/constants"

// HitOutcome is the result of a combat adjudication. Handlers translate it
// into outbound events; the adjudication itself never touches the network.
type HitOutcome struct {
	Applied      bool
	TargetHealth int
	Died         bool
	GameOver     bool
	WinnerID     string
	LoserID      string
}

// ApplyHit applies damage from attacker to target. Hits referencing a missing
// attacker or target, or a target that is already dead, are silently ignored:
// damage is never applied to a dead player and no duplicate event results.
func (r *Room) ApplyHit(attackerID string, targetID string, damage int) HitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, exists := r.players[targetID]
	if !exists {
		return HitOutcome{}
	}
	if _, exists := r.players[attackerID]; !exists {
		return HitOutcome{}
	}
	if target.IsDead {
		return HitOutcome{}
	}

	target.Health -= damage
	if target.Health < 0 {
		target.Health = 0
	}

	out := HitOutcome{Applied: true, TargetHealth: target.Health}
	if target.Health == 0 {
		target.IsDead = true
		out.Died = true
		r.evaluateSurvivorsLocked(targetID, &out)
	}
	return out
}

// ApplyExplicitDeath marks a player dead without damage adjudication. This is
// the path for client self-reported deaths (fall or environmental causes) and
// runs the same survivor evaluation as a lethal hit.
func (r *Room) ApplyExplicitDeath(playerID string) HitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists || p.IsDead {
		return HitOutcome{}
	}

	p.IsDead = true
	out := HitOutcome{Applied: true, TargetHealth: p.Health, Died: true}
	r.evaluateSurvivorsLocked(playerID, &out)
	return out
}

// Respawn resets a player to full health and clears the death flag. It never
// changes the room phase; post-match and debug flows use it.
func (r *Room) Respawn(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists {
		return false
	}
	p.Health = constants.PlayerStartingHealth
	p.IsDead = false
	return true
}

// evaluateSurvivorsLocked checks whether exactly one living player remains
// and, if so, ends the match. A room already in the over phase never fires a
// second game over. Caller must hold r.mu.
func (r *Room) evaluateSurvivorsLocked(loserID string, out *HitOutcome) {
	if r.phase == PhaseOver {
		return
	}

	var alive []*Player
	for _, p := range r.players {
		if !p.IsDead {
			alive = append(alive, p)
		}
	}
	if len(alive) != 1 {
		return
	}

	r.phase = PhaseOver
	out.GameOver = true
	out.WinnerID = alive[0].ID
	out.LoserID = loserID
}
