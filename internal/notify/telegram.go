// Package notify delivers session output over Telegram using telebot.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/session"
)

// ErrUndeliverable marks a private message the platform refused to deliver,
// typically because the player never opened a chat with the bot.
var ErrUndeliverable = errors.New("message undeliverable")

// TelegramNotifier implements session.Notifier for one group chat. The
// "current turn" message is sent once, pinned, and then edited in place on
// every tick.
type TelegramNotifier struct {
	bot  *tele.Bot
	chat *tele.Chat

	mu       sync.Mutex
	turnMsg  *tele.Message
	turnText string
	markup   func() *tele.ReplyMarkup
}

// NewTelegram creates a notifier for the given chat. markup, if non-nil,
// supplies the inline keyboard attached to the turn message.
func NewTelegram(bot *tele.Bot, chatID int64, markup func() *tele.ReplyMarkup) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chat:   &tele.Chat{ID: chatID},
		markup: markup,
	}
}

// NotifyGroup posts a message to the group chat.
func (n *TelegramNotifier) NotifyGroup(text string) error {
	if _, err := n.bot.Send(n.chat, text); err != nil {
		return fmt.Errorf("failed to send group message: %w", err)
	}
	return nil
}

// NotifyPlayer sends a private message to the player. The returned error
// means undeliverable; the caller decides how to surface it.
func (n *TelegramNotifier) NotifyPlayer(p session.Player, text string) error {
	if _, err := n.bot.Send(&tele.User{ID: p.ID}, text); err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	return nil
}

// UpdateTurnMessage re-renders the single turn message. The first call
// sends and pins it; later calls edit it in place. Telegram rejects edits
// that do not change the text, which is not an error here.
func (n *TelegramNotifier) UpdateTurnMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var markup *tele.ReplyMarkup
	if n.markup != nil {
		markup = n.markup()
	}

	if n.turnMsg == nil {
		msg, err := n.bot.Send(n.chat, text, markup)
		if err != nil {
			return fmt.Errorf("failed to send turn message: %w", err)
		}
		n.turnMsg = msg
		n.turnText = text
		if err := n.bot.Pin(msg); err != nil {
			log.Debug().Err(err).Int64("chat_id", n.chat.ID).Msg("Could not pin turn message")
		}
		return nil
	}

	if text == n.turnText {
		return nil
	}
	msg, err := n.bot.Edit(n.turnMsg, text, markup)
	if err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("failed to edit turn message: %w", err)
	}
	n.turnMsg = msg
	n.turnText = text
	return nil
}

// ResetTurnMessage forgets the tracked turn message so the next update
// starts a new one (used when a round begins).
func (n *TelegramNotifier) ResetTurnMessage() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.turnMsg = nil
	n.turnText = ""
}
