package server

import (
	"time"

	"sword-duel-server/pkg/server/constants"
)

// StartCountdown begins the 3-2-1-0 start sequence for a ready room. The
// emit callback receives each countdown value once per tick interval; on
// reaching zero the ticker is cancelled, players are placed at their spawn
// points, the room goes active, and complete is invoked.
//
// Returns false if the room is not in the ready phase, so a duplicate
// join-game message never starts a second countdown.
func (r *Room) StartCountdown(interval time.Duration, emit func(value int), complete func()) bool {
	r.mu.Lock()
	if r.phase != PhaseReady {
		r.mu.Unlock()
		return false
	}
	r.phase = PhaseCounting
	r.countdown = constants.CountdownStart
	r.countdownStop = make(chan struct{})
	r.mu.Unlock()

	r.countdownWg.Add(1)
	go func() {
		defer r.countdownWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// The stored countdown is only advanced right before each emit, so a
		// gameState snapshot taken mid-interval always matches the value the
		// room last heard on the countdown event.
		next := constants.CountdownStart
		for {
			select {
			case <-r.countdownStop:
				return
			case <-ticker.C:
				r.mu.Lock()
				r.countdown = next
				r.mu.Unlock()

				emit(next)
				if next == 0 {
					r.finishCountdown()
					complete()
					return
				}
				next--
			}
		}
	}()
	return true
}

// StopCountdown cancels a running countdown, if any, and waits for its
// goroutine to exit. Called when the room is destroyed so a dangling timer
// never mutates a removed room. Safe to call more than once.
func (r *Room) StopCountdown() {
	r.mu.Lock()
	stop := r.countdownStop
	r.mu.Unlock()
	if stop == nil {
		return
	}
	r.stopOnce.Do(func() {
		close(stop)
	})
	r.countdownWg.Wait()
}

// finishCountdown places players at the fixed spawn points in join order and
// unlocks gameplay.
func (r *Room) finishCountdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	spawns := [constants.MaxPlayersPerRoom][2]float64{
		{constants.LeftSpawnX, constants.LeftSpawnY},
		{constants.RightSpawnX, constants.RightSpawnY},
	}
	for i, playerID := range r.order {
		if i >= len(spawns) {
			break
		}
		p, exists := r.players[playerID]
		if !exists {
			continue
		}
		p.X = spawns[i][0]
		p.Y = spawns[i][1]
		p.VelocityX = 0
		p.VelocityY = 0
	}
	r.phase = PhaseActive
	r.lastActive = time.Now()
}
