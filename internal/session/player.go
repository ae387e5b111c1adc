// Package session implements the per-group game engine: seating, role
// distribution, the speaking-turn rotation with countdown, and challenge
// arbitration. One Session owns all state for one group chat and serializes
// every operation, so independent groups run fully in parallel.
package session

// Player identifies a participant for the lifetime of one game.
type Player struct {
	ID   int64
	Name string
}
