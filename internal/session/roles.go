package session

import "math/rand"

// RoleCard pairs one player with their secret role.
type RoleCard struct {
	Player Player
	Role   string
}

// RoleAssignment is the outcome of one role distribution, ordered by seat.
type RoleAssignment []RoleCard

// RoleOf returns the role assigned to the given player.
func (a RoleAssignment) RoleOf(playerID int64) (string, bool) {
	for _, card := range a {
		if card.Player.ID == playerID {
			return card.Role, true
		}
	}
	return "", false
}

// DealRoles assigns the scenario's roles to players uniformly at random.
// The role pool is truncated or padded with the filler label so each player
// receives exactly one role and every pooled role is used exactly once.
// Player order is preserved; only the role pairing is shuffled.
func DealRoles(players []Player, roles []string, filler string) (RoleAssignment, error) {
	if len(roles) == 0 {
		return nil, ErrNoScenario
	}

	pool := make([]string, len(roles))
	copy(pool, roles)
	if len(pool) > len(players) {
		pool = pool[:len(players)]
	}
	for len(pool) < len(players) {
		pool = append(pool, filler)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	assignment := make(RoleAssignment, len(players))
	for i, p := range players {
		assignment[i] = RoleCard{Player: p, Role: pool[i]}
	}
	return assignment, nil
}
