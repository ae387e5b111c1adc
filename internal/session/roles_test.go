package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDealRolesEmptyPool(t *testing.T) {
	_, err := DealRoles([]Player{{ID: 1}}, nil, "Citizen")
	assert.ErrorIs(t, err, ErrNoScenario)
}

func TestDealRolesExactCount(t *testing.T) {
	players := []Player{{ID: 1}, {ID: 2}, {ID: 3}}
	roles := []string{"Mafia", "Doctor", "Citizen"}

	assignment, err := DealRoles(players, roles, "Citizen")
	require.NoError(t, err)
	require.Len(t, assignment, 3)

	counts := make(map[string]int)
	for i, card := range assignment {
		assert.Equal(t, players[i].ID, card.Player.ID)
		counts[card.Role]++
	}
	assert.Equal(t, map[string]int{"Mafia": 1, "Doctor": 1, "Citizen": 1}, counts)
}

func TestDealRolesPadsWithFiller(t *testing.T) {
	players := []Player{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	assignment, err := DealRoles(players, []string{"Mafia"}, "Citizen")
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, card := range assignment {
		counts[card.Role]++
	}
	assert.Equal(t, 1, counts["Mafia"])
	assert.Equal(t, 3, counts["Citizen"])
}

func TestDealRolesTruncatesPool(t *testing.T) {
	players := []Player{{ID: 1}, {ID: 2}}
	assignment, err := DealRoles(players, []string{"A", "B", "C", "D"}, "Citizen")
	require.NoError(t, err)
	assert.Len(t, assignment, 2)
}

func TestRoleAssignmentLookup(t *testing.T) {
	assignment := RoleAssignment{
		{Player: Player{ID: 7}, Role: "Mafia"},
	}
	role, ok := assignment.RoleOf(7)
	require.True(t, ok)
	assert.Equal(t, "Mafia", role)
	_, ok = assignment.RoleOf(8)
	assert.False(t, ok)
}

// TestRoleBijectionProperty checks that every player gets exactly one role
// and the assigned multiset equals the padded/truncated pool, for any
// player count and role list.
func TestRoleBijectionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		playerCount := rapid.IntRange(1, 10).Draw(t, "playerCount")
		players := make([]Player, playerCount)
		for i := range players {
			players[i] = Player{ID: int64(i + 1), Name: fmt.Sprintf("p%d", i+1)}
		}

		roles := rapid.SliceOfN(rapid.SampledFrom(
			[]string{"Mafia", "Godfather", "Doctor", "Detective", "Citizen"},
		), 1, 10).Draw(t, "roles")
		const filler = "Townsperson"

		assignment, err := DealRoles(players, roles, filler)
		if err != nil {
			t.Fatalf("DealRoles failed: %v", err)
		}
		if len(assignment) != playerCount {
			t.Fatalf("got %d cards for %d players", len(assignment), playerCount)
		}

		// Expected multiset: pool truncated or padded to the player count.
		want := make(map[string]int)
		for i := 0; i < playerCount; i++ {
			if i < len(roles) {
				want[roles[i]]++
			} else {
				want[filler]++
			}
		}
		got := make(map[string]int)
		for i, card := range assignment {
			if card.Player.ID != players[i].ID {
				t.Fatalf("player order changed at index %d", i)
			}
			got[card.Role]++
		}
		for role, n := range want {
			if got[role] != n {
				t.Fatalf("role %q: got %d, want %d", role, got[role], n)
			}
		}
	})
}
