package constants

// Combat constants
const (
	PlayerStartingHealth = 100
	SwordHitDamage       = 15
)

// Spawn points assigned when the countdown reaches zero. The first player to
// have joined the room takes the left spawn, the second the right.
const (
	LeftSpawnX  = 250.0
	LeftSpawnY  = 300.0
	RightSpawnX = 750.0
	RightSpawnY = 300.0
)

// Room constants
const (
	MaxPlayersPerRoom = 2
	RoomCodeLength    = 4
	CountdownStart    = 3
)
