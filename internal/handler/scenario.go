package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/scenario"
)

// ScenarioHandler handles scenario management commands.
type ScenarioHandler struct {
	store *scenario.FileStore
}

// NewScenarioHandler creates a new ScenarioHandler.
func NewScenarioHandler(store *scenario.FileStore) *ScenarioHandler {
	return &ScenarioHandler{store: store}
}

// HandleList handles /scenarios.
func (h *ScenarioHandler) HandleList(c tele.Context) error {
	scenarios, err := h.store.Load()
	if err != nil {
		return c.Reply("❌ Could not read the scenario list.")
	}
	if len(scenarios) == 0 {
		return c.Reply("No scenarios yet. Add one with /addscenario <name> <min players> <role,role,...>")
	}
	var b strings.Builder
	b.WriteString("📝 Scenarios:\n")
	for _, name := range sortedScenarioNames(scenarios) {
		sc := scenarios[name]
		fmt.Fprintf(&b, "• %s — %d-%d players: %s\n", name, sc.MinPlayers, sc.Capacity(), strings.Join(sc.Roles, ", "))
	}
	return c.Reply(b.String())
}

// HandleAdd handles /addscenario <name> <min players> <role,role,...>.
func (h *ScenarioHandler) HandleAdd(c tele.Context) error {
	args := c.Args()
	if len(args) < 3 {
		return c.Reply("Usage: /addscenario <name> <min players> <role,role,...>")
	}
	name := args[0]
	minPlayers, err := strconv.Atoi(args[1])
	if err != nil || minPlayers < 1 {
		return c.Reply("❌ Minimum player count must be a positive number.")
	}
	roles := splitRoles(strings.Join(args[2:], " "))
	if len(roles) == 0 {
		return c.Reply("❌ The role list cannot be empty.")
	}
	if minPlayers > len(roles) {
		return c.Reply("❌ Minimum player count cannot exceed the number of roles.")
	}

	scenarios, err := h.store.Load()
	if err != nil {
		return c.Reply("❌ Could not read the scenario list.")
	}
	scenarios[name] = scenario.Scenario{Name: name, MinPlayers: minPlayers, Roles: roles}
	if err := h.store.Save(scenarios); err != nil {
		return c.Reply("❌ Could not save the scenario.")
	}
	return c.Reply(fmt.Sprintf("✅ Scenario %q saved: %d-%d players.", name, minPlayers, len(roles)))
}

// HandleDelete handles /delscenario <name>.
func (h *ScenarioHandler) HandleDelete(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /delscenario <name>")
	}
	name := args[0]

	scenarios, err := h.store.Load()
	if err != nil {
		return c.Reply("❌ Could not read the scenario list.")
	}
	if _, ok := scenarios[name]; !ok {
		return c.Reply("❌ No such scenario.")
	}
	delete(scenarios, name)
	if err := h.store.Save(scenarios); err != nil {
		return c.Reply("❌ Could not save the scenario list.")
	}
	return c.Reply(fmt.Sprintf("🗑 Scenario %q removed.", name))
}

func splitRoles(s string) []string {
	parts := strings.Split(s, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if role := strings.TrimSpace(p); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
