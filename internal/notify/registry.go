package notify

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Registry hands out one TelegramNotifier per chat so the session factory
// and the handlers observe the same turn-message state.
type Registry struct {
	mu     sync.Mutex
	bot    *tele.Bot
	markup func() *tele.ReplyMarkup
	byChat map[int64]*TelegramNotifier
}

// NewRegistry creates a registry bound to the bot. markup supplies the
// inline keyboard attached to turn messages.
func NewRegistry(bot *tele.Bot, markup func() *tele.ReplyMarkup) *Registry {
	return &Registry{
		bot:    bot,
		markup: markup,
		byChat: make(map[int64]*TelegramNotifier),
	}
}

// For returns the chat's notifier, creating it on first use.
func (r *Registry) For(chatID int64) *TelegramNotifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byChat[chatID]
	if !ok {
		n = NewTelegram(r.bot, chatID, r.markup)
		r.byChat[chatID] = n
	}
	return n
}
