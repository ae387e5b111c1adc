// Package scenario defines game scenario templates and their file-backed store.
package scenario

// Scenario is a named game template. The role list doubles as the seat
// capacity: a game of this scenario has exactly len(Roles) seats.
type Scenario struct {
	Name       string   `json:"-"`
	MinPlayers int      `json:"min_players"`
	Roles      []string `json:"roles"`
}

// Capacity returns the number of seats this scenario supports.
func (s Scenario) Capacity() int {
	return len(s.Roles)
}
