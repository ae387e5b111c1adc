// Package handler provides Telegram bot command and callback handlers that
// bridge chat input to the game sessions.
package handler

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/scenario"
	"mafia-host-bot/internal/session"
)

const (
	// CallbackPrefix is the prefix for all game callback data.
	CallbackPrefix = "mafia_"
)

// EncodeCallback encodes an action and parameter into callback data.
func EncodeCallback(action string, param string) string {
	if param != "" {
		return fmt.Sprintf("%s%s_%s", CallbackPrefix, action, param)
	}
	return fmt.Sprintf("%s%s", CallbackPrefix, action)
}

// DecodeCallback decodes callback data into action and parameter.
func DecodeCallback(data string) (action string, param string) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", ""
	}
	content := strings.TrimPrefix(data, CallbackPrefix)
	parts := strings.SplitN(content, "_", 2)
	action = parts[0]
	if len(parts) > 1 {
		param = parts[1]
	}
	return action, param
}

// BuildLobbyKeyboard builds the join/leave controls under the lobby
// message.
func BuildLobbyKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	join := markup.Data("✅ Join", "", EncodeCallback("join", ""))
	leave := markup.Data("❌ Leave", "", EncodeCallback("leave", ""))
	markup.Inline(markup.Row(join, leave))
	return markup
}

// BuildScenarioKeyboard lists the stored scenarios as selection buttons.
func BuildScenarioKeyboard(scenarios map[string]scenario.Scenario) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(scenarios))
	for _, name := range sortedScenarioNames(scenarios) {
		sc := scenarios[name]
		label := fmt.Sprintf("%s (%d-%d players)", name, sc.MinPlayers, sc.Capacity())
		rows = append(rows, markup.Row(markup.Data(label, "", EncodeCallback("scenario", name))))
	}
	markup.Inline(rows...)
	return markup
}

// BuildModeratorKeyboard lists the group admins as moderator candidates.
func BuildModeratorKeyboard(admins []session.Player) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(admins))
	for _, admin := range admins {
		param := fmt.Sprintf("%d", admin.ID)
		rows = append(rows, markup.Row(markup.Data("🎩 "+admin.Name, "", EncodeCallback("moderator", param))))
	}
	markup.Inline(rows...)
	return markup
}

// BuildTurnKeyboard builds the controls shown under the pinned turn
// message. The active seat is resolved server-side, so the buttons carry
// no seat number.
func BuildTurnKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	end := markup.Data("⏭ End turn", "", EncodeCallback("endturn", ""))
	challenge := markup.Data("⚔ Challenge", "", EncodeCallback("challenge", ""))
	markup.Inline(markup.Row(end), markup.Row(challenge))
	return markup
}

// BuildResolveKeyboard builds the ruling buttons for one challenge request.
func BuildResolveKeyboard(targetSeat int, challengerID int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	param := func(decision string) string {
		return fmt.Sprintf("%s_%d_%d", decision, targetSeat, challengerID)
	}
	before := markup.Data("⚔ Before my turn", "", EncodeCallback("resolve", param("before")))
	after := markup.Data("⏳ After my turn", "", EncodeCallback("resolve", param("after")))
	reject := markup.Data("❌ Reject", "", EncodeCallback("resolve", param("reject")))
	markup.Inline(markup.Row(before), markup.Row(after), markup.Row(reject))
	return markup
}

// sortedScenarioNames keeps the button order stable across renders.
func sortedScenarioNames(scenarios map[string]scenario.Scenario) []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
