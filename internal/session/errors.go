package session

import "errors"

// Seat errors
var (
	ErrSeatTaken      = errors.New("seat is already taken")
	ErrSeatOutOfRange = errors.New("seat number is out of range")
	ErrSeatVacant     = errors.New("seat is not occupied")
	ErrNotSeated      = errors.New("player holds no seat")
)

// Lobby errors
var (
	ErrNoScenario      = errors.New("no scenario selected")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrNoModerator     = errors.New("no moderator selected")
	ErrNotAdmin        = errors.New("player is not a group admin")
	ErrAlreadyJoined   = errors.New("player already joined")
	ErrNotJoined       = errors.New("player has not joined")
	ErrTooFewPlayers   = errors.New("not enough seated players")
)

// Phase and authorization errors
var (
	ErrGameInProgress    = errors.New("game is already in progress")
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
	ErrNotModerator      = errors.New("only the moderator may do this")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrRolesAlreadyDealt = errors.New("roles have already been distributed")
	ErrSessionCancelled  = errors.New("game has been cancelled")
)

// Turn and challenge errors
var (
	ErrNotActive           = errors.New("no round is active")
	ErrNotYourTurn         = errors.New("seat is not the active speaker")
	ErrSelfChallenge       = errors.New("cannot challenge your own seat")
	ErrNotAPlayer          = errors.New("challenger holds no seat")
	ErrDuplicateRequest    = errors.New("challenge already requested against this seat")
	ErrChallengesDisabled  = errors.New("challenges are disabled")
	ErrNoSuchRequest       = errors.New("no such challenge request")
	ErrNotActiveSeat       = errors.New("seat cannot be challenged right now")
	ErrChallengeTurnActive = errors.New("another challenge turn is already running")
)
