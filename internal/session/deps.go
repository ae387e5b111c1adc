package session

import (
	"time"

	"mafia-host-bot/internal/scenario"
)

// Notifier delivers session output to the chat platform. Implementations
// must be safe for use from the session's clock goroutine.
type Notifier interface {
	// NotifyGroup posts a message to the group chat.
	NotifyGroup(text string) error
	// NotifyPlayer sends a private message to one player. A non-nil error
	// means the player is unreachable; the session surfaces this to the
	// moderator instead of failing the operation.
	NotifyPlayer(p Player, text string) error
	// UpdateTurnMessage re-renders the single "current turn" message
	// in place.
	UpdateTurnMessage(text string) error
}

// AdminDirectory exposes the group's administrators, used to validate
// moderator candidates and cancellation rights.
type AdminDirectory interface {
	ListAdmins() ([]Player, error)
}

// ScenarioStore provides scenario definitions. The session reads a scenario
// once at selection time and treats it as immutable afterwards.
type ScenarioStore interface {
	Load() (map[string]scenario.Scenario, error)
	Save(map[string]scenario.Scenario) error
}

// Config carries the tunable timing and labeling knobs of a session.
type Config struct {
	// TurnDuration is the countdown for a normal speaking turn.
	TurnDuration time.Duration
	// ChallengeDuration is the countdown for a challenge turn.
	ChallengeDuration time.Duration
	// TickInterval is the cadence of "time remaining" updates.
	TickInterval time.Duration
	// FillerRole pads the role pool when more players are seated than the
	// scenario defines roles for.
	FillerRole string
}

// withDefaults fills zero values with the defaults observed in play:
// two-minute turns, one-minute challenges, ten-second ticks.
func (c Config) withDefaults() Config {
	if c.TurnDuration <= 0 {
		c.TurnDuration = 120 * time.Second
	}
	if c.ChallengeDuration <= 0 {
		c.ChallengeDuration = 60 * time.Second
	}
	if c.TickInterval <= 0 {
		c.TickInterval = 10 * time.Second
	}
	if c.FillerRole == "" {
		c.FillerRole = "Citizen"
	}
	return c
}
