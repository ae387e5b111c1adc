package handler

import (
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/session"
)

// userMessage maps a session error to the text shown to the user. Every
// rejection gets a specific, actionable message.
func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrSeatTaken):
		return "❌ That seat is already taken."
	case errors.Is(err, session.ErrSeatOutOfRange):
		return "❌ That seat number does not exist in this scenario."
	case errors.Is(err, session.ErrSeatVacant):
		return "❌ That seat is empty."
	case errors.Is(err, session.ErrNotSeated):
		return "❌ You hold no seat."
	case errors.Is(err, session.ErrNoScenario):
		return "❌ Pick a scenario first."
	case errors.Is(err, session.ErrUnknownScenario):
		return "❌ No such scenario."
	case errors.Is(err, session.ErrNoModerator):
		return "❌ Pick a moderator first."
	case errors.Is(err, session.ErrNotAdmin):
		return "❌ The moderator must be a group admin."
	case errors.Is(err, session.ErrAlreadyJoined):
		return "❌ You are already in the game."
	case errors.Is(err, session.ErrNotJoined):
		return "❌ You are not in the game."
	case errors.Is(err, session.ErrTooFewPlayers):
		return "❌ Not enough seated players for this scenario."
	case errors.Is(err, session.ErrGameInProgress):
		return "❌ The game is already in progress."
	case errors.Is(err, session.ErrWrongPhase):
		return "❌ That is not possible right now."
	case errors.Is(err, session.ErrNotModerator):
		return "❌ Only the moderator can do that."
	case errors.Is(err, session.ErrNotAuthorized):
		return "❌ You are not allowed to do that."
	case errors.Is(err, session.ErrRolesAlreadyDealt):
		return "❌ Roles were already distributed this game."
	case errors.Is(err, session.ErrSessionCancelled):
		return "❌ The game has been cancelled."
	case errors.Is(err, session.ErrNotActive):
		return "❌ No round is running."
	case errors.Is(err, session.ErrNotYourTurn):
		return "❌ That seat is not speaking right now."
	case errors.Is(err, session.ErrSelfChallenge):
		return "❌ You cannot challenge yourself."
	case errors.Is(err, session.ErrNotAPlayer):
		return "❌ Only seated players can challenge."
	case errors.Is(err, session.ErrDuplicateRequest):
		return "❌ You already challenged this speaker."
	case errors.Is(err, session.ErrChallengesDisabled):
		return "❌ Challenges are disabled in this game."
	case errors.Is(err, session.ErrNoSuchRequest):
		return "❌ That challenge request no longer exists."
	case errors.Is(err, session.ErrNotActiveSeat):
		return "❌ That seat cannot be challenged right now."
	case errors.Is(err, session.ErrChallengeTurnActive):
		return "❌ A challenge turn is already running."
	default:
		return "❌ Something went wrong, please try again."
	}
}

// replyError answers a callback or replies to a message with the mapped
// error text.
func replyError(c tele.Context, err error) error {
	text := userMessage(err)
	if text == "❌ Something went wrong, please try again." {
		log.Error().Err(err).Str("input", c.Text()).Msg("Unexpected handler error")
	}
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Reply(text)
}
