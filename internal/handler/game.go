package handler

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/config"
	"mafia-host-bot/internal/notify"
	"mafia-host-bot/internal/scenario"
	"mafia-host-bot/internal/session"
)

// GameHandler handles game lifecycle commands and callbacks.
type GameHandler struct {
	cfg       *config.Config
	store     *scenario.FileStore
	manager   *session.Manager
	notifiers *notify.Registry

	lobbyMsgs sync.Map // chatID -> *tele.Message
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(cfg *config.Config, store *scenario.FileStore, manager *session.Manager, notifiers *notify.Registry) *GameHandler {
	return &GameHandler{
		cfg:       cfg,
		store:     store,
		manager:   manager,
		notifiers: notifiers,
	}
}

// HandleNewGame handles /newgame: drops any previous session for the chat
// and opens the scenario picker.
func (h *GameHandler) HandleNewGame(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	h.manager.Reset(chat.ID)
	h.lobbyMsgs.Delete(chat.ID)
	h.manager.GetOrCreate(chat.ID)

	scenarios, err := h.store.Load()
	if err != nil {
		return replyError(c, err)
	}
	if len(scenarios) == 0 {
		return c.Reply("❌ No scenarios defined yet. Add one with /addscenario.")
	}
	return c.Reply("🎮 New game! Pick a scenario:", BuildScenarioKeyboard(scenarios))
}

// HandleScenarioCallback handles a scenario selection button.
func (h *GameHandler) HandleScenarioCallback(c tele.Context, name string) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is being set up.")
	}
	if err := sess.SelectScenario(name); err != nil {
		return replyError(c, err)
	}

	admins, err := c.Bot().AdminsOf(c.Chat())
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", c.Chat().ID).Msg("Failed to list admins")
		return respond(c, "❌ Could not list the group admins.")
	}
	candidates := make([]session.Player, 0, len(admins))
	for _, m := range admins {
		if m.User.IsBot {
			continue
		}
		candidates = append(candidates, toPlayer(m.User))
	}
	if err := c.Edit(fmt.Sprintf("📝 Scenario: %s\nNow pick a moderator:", name), BuildModeratorKeyboard(candidates)); err != nil {
		return err
	}
	return respond(c, "")
}

// HandleModeratorCallback handles a moderator selection button.
func (h *GameHandler) HandleModeratorCallback(c tele.Context, param string) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is being set up.")
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return respond(c, "❌ Bad moderator selection.")
	}
	member, err := c.Bot().ChatMemberOf(c.Chat(), &tele.User{ID: id})
	if err != nil {
		return respond(c, "❌ Could not look up that admin.")
	}
	candidate := toPlayer(member.User)
	if err := sess.SelectModerator(candidate, toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	if err := c.Edit(fmt.Sprintf("🎩 Moderator: %s\nPlayers may now join.", candidate.Name)); err != nil {
		log.Debug().Err(err).Msg("Could not edit moderator message")
	}
	return h.updateLobby(c, sess)
}

// HandleJoinCallback handles the lobby join button.
func (h *GameHandler) HandleJoinCallback(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is being set up.")
	}
	seat, queued, err := sess.Join(toPlayer(c.Sender()))
	if err != nil {
		return replyError(c, err)
	}
	if err := h.updateLobby(c, sess); err != nil {
		return err
	}
	if queued {
		return respond(c, "🪑 All seats are taken - you are on the waiting list.")
	}
	return respond(c, fmt.Sprintf("✅ You joined with seat %d.", seat))
}

// HandleLeaveCallback handles the lobby leave button.
func (h *GameHandler) HandleLeaveCallback(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is being set up.")
	}
	if err := sess.Leave(toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	if err := h.updateLobby(c, sess); err != nil {
		return err
	}
	return respond(c, "✅ You left the game.")
}

// HandleSeat handles /seat <number>: claims, swaps, or toggles a seat.
func (h *GameHandler) HandleSeat(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is being set up.")
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /seat <number>")
	}
	seat, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Reply("Usage: /seat <number>")
	}
	if err := sess.TakeSeat(toPlayer(c.Sender()), seat); err != nil {
		return replyError(c, err)
	}
	return h.updateLobby(c, sess)
}

// HandleDeal handles /deal: distributes the secret roles.
func (h *GameHandler) HandleDeal(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is being set up.")
	}
	if err := sess.DistributeRoles(toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	return c.Reply("🎭 Roles are out! Check your private messages. Start the round with /round.")
}

// HandleRound handles /round [leadSeat]: starts a day round.
func (h *GameHandler) HandleRound(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is being set up.")
	}
	leadSeat := 0
	if args := c.Args(); len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Reply("Usage: /round [lead seat]")
		}
		leadSeat = n
	}
	// Each round gets a fresh pinned countdown message.
	h.notifiers.For(c.Chat().ID).ResetTurnMessage()
	if err := sess.StartRound(toPlayer(c.Sender()), leadSeat); err != nil {
		return replyError(c, err)
	}
	return nil
}

// HandleEndTurn ends the active turn, from the button or /next.
func (h *GameHandler) HandleEndTurn(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is running.")
	}
	_, seat, ok := sess.CurrentSpeaker()
	if !ok {
		return replyError(c, session.ErrNotActive)
	}
	if err := sess.EndTurn(seat, toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	return respond(c, "⏭ Turn ended.")
}

// HandleChallenge files a challenge request, from the button or /challenge.
func (h *GameHandler) HandleChallenge(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is running.")
	}
	target, ok := sess.ChallengeableSeat()
	if !ok {
		return replyError(c, session.ErrNotActiveSeat)
	}
	challenger := toPlayer(c.Sender())
	if err := sess.RequestChallenge(challenger, target); err != nil {
		return replyError(c, err)
	}
	if err := c.Send(
		fmt.Sprintf("⚔ Seat %d: rule on the challenge from %s.", target, challenger.Name),
		BuildResolveKeyboard(target, challenger.ID),
	); err != nil {
		return err
	}
	return respond(c, "⚔ Challenge requested.")
}

// HandleResolveCallback rules on a challenge request. The parameter is
// "<decision>_<targetSeat>_<challengerID>".
func (h *GameHandler) HandleResolveCallback(c tele.Context, param string) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return respond(c, "❌ No game is running.")
	}
	parts := strings.Split(param, "_")
	if len(parts) != 3 {
		return respond(c, "❌ Bad challenge ruling.")
	}
	decision, ok := parseDecision(parts[0])
	if !ok {
		return respond(c, "❌ Bad challenge ruling.")
	}
	targetSeat, err1 := strconv.Atoi(parts[1])
	challengerID, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil {
		return respond(c, "❌ Bad challenge ruling.")
	}
	if err := sess.ResolveChallenge(targetSeat, challengerID, decision, toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	if err := c.Delete(); err != nil {
		log.Debug().Err(err).Msg("Could not delete resolve prompt")
	}
	return respond(c, "")
}

// HandleNight handles /night: moves a finished round into the night phase.
func (h *GameHandler) HandleNight(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is running.")
	}
	if err := sess.BeginNight(toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	return nil
}

// HandleToggleChallenges handles /togglechallenges.
func (h *GameHandler) HandleToggleChallenges(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is running.")
	}
	enabled, err := sess.ToggleChallenges(toPlayer(c.Sender()))
	if err != nil {
		return replyError(c, err)
	}
	if enabled {
		return c.Reply("⚔ Challenges are now enabled.")
	}
	return c.Reply("🚫 Challenges are now disabled.")
}

// HandleCancel handles /cancelgame.
func (h *GameHandler) HandleCancel(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("❌ No game is running.")
	}
	if err := sess.Cancel(toPlayer(c.Sender())); err != nil {
		return replyError(c, err)
	}
	h.manager.Reset(c.Chat().ID)
	h.lobbyMsgs.Delete(c.Chat().ID)
	return nil
}

// HandleStatus handles /status: shows the lobby or round state.
func (h *GameHandler) HandleStatus(c tele.Context) error {
	sess, ok := h.sessionFor(c)
	if !ok {
		return c.Reply("No game in this chat. Start one with /newgame.")
	}
	snap := sess.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\n", snap.Phase)
	b.WriteString(renderRoster(snap))
	if speaker, seat, ok := sess.CurrentSpeaker(); ok {
		fmt.Fprintf(&b, "\n⏱ Speaking: %s (seat %d)", speaker.Name, seat)
	}
	return c.Reply(b.String())
}

// sessionFor returns the chat's session without creating one.
func (h *GameHandler) sessionFor(c tele.Context) (*session.Session, bool) {
	chat := c.Chat()
	if chat == nil {
		return nil, false
	}
	return h.manager.Get(chat.ID)
}

// updateLobby edits the roster message in place, sending it on first use.
func (h *GameHandler) updateLobby(c tele.Context, sess *session.Session) error {
	chat := c.Chat()
	text := renderRoster(sess.Snapshot())
	markup := BuildLobbyKeyboard()

	if v, ok := h.lobbyMsgs.Load(chat.ID); ok {
		msg := v.(*tele.Message)
		if edited, err := c.Bot().Edit(msg, text, markup); err == nil {
			h.lobbyMsgs.Store(chat.ID, edited)
			return nil
		}
		// Fall through and send a fresh message if the edit failed.
	}
	msg, err := c.Bot().Send(chat, text, markup)
	if err != nil {
		return err
	}
	h.lobbyMsgs.Store(chat.ID, msg)
	return nil
}

func renderRoster(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("📋 Game roster\n")
	if snap.ScenarioName != "" {
		fmt.Fprintf(&b, "Scenario: %s (%d-%d players)\n", snap.ScenarioName, snap.MinPlayers, snap.Capacity)
	}
	if snap.Moderator != "" {
		fmt.Fprintf(&b, "Moderator: %s\n", snap.Moderator)
	}
	if len(snap.Seated) == 0 {
		b.WriteString("\nNo players seated yet.\n")
	} else {
		b.WriteString("\n")
		for _, entry := range snap.Seated {
			fmt.Fprintf(&b, "%d. %s\n", entry.Seat, entry.Name)
		}
	}
	if len(snap.Waiting) > 0 {
		b.WriteString("\nWaiting list:\n")
		for i, name := range snap.Waiting {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}
	if !snap.ChallengesOn {
		b.WriteString("\n🚫 Challenges disabled\n")
	}
	return b.String()
}

func parseDecision(s string) (session.Decision, bool) {
	switch s {
	case "before":
		return session.DecisionBefore, true
	case "after":
		return session.DecisionAfter, true
	case "reject":
		return session.DecisionReject, true
	default:
		return 0, false
	}
}

func toPlayer(u *tele.User) session.Player {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return session.Player{ID: u.ID, Name: name}
}

// respond answers a callback, or replies when the update was a command.
func respond(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
	if text == "" {
		return nil
	}
	return c.Reply(text)
}
