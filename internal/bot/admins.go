package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/session"
)

// ChatAdmins implements session.AdminDirectory for one group chat by
// querying Telegram's administrator list.
type ChatAdmins struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// NewChatAdmins creates an admin directory for the given chat.
func NewChatAdmins(bot *tele.Bot, chatID int64) *ChatAdmins {
	return &ChatAdmins{bot: bot, chat: &tele.Chat{ID: chatID}}
}

// ListAdmins returns the chat's human administrators.
func (a *ChatAdmins) ListAdmins() ([]session.Player, error) {
	members, err := a.bot.AdminsOf(a.chat)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat admins: %w", err)
	}
	admins := make([]session.Player, 0, len(members))
	for _, m := range members {
		if m.User == nil || m.User.IsBot {
			continue
		}
		name := strings.TrimSpace(m.User.FirstName + " " + m.User.LastName)
		if name == "" {
			name = m.User.Username
		}
		admins = append(admins, session.Player{ID: m.User.ID, Name: name})
	}
	return admins, nil
}
