// Package bot provides the Telegram bot initialization and handler
// registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-host-bot/internal/config"
	"mafia-host-bot/internal/handler"
	"mafia-host-bot/internal/notify"
	"mafia-host-bot/internal/scenario"
	"mafia-host-bot/internal/session"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	store     *scenario.FileStore
	manager   *session.Manager
	notifiers *notify.Registry

	gameHandler     *handler.GameHandler
	scenarioHandler *handler.ScenarioHandler
}

// Dependencies holds everything the bot needs beyond Telegram itself.
type Dependencies struct {
	Config *config.Config
	Store  *scenario.FileStore
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	notifiers := notify.NewRegistry(teleBot, handler.BuildTurnKeyboard)

	sessionCfg := session.Config{
		TurnDuration:      deps.Config.Turns.Duration,
		ChallengeDuration: deps.Config.Turns.ChallengeDuration,
		TickInterval:      deps.Config.Turns.TickInterval,
		FillerRole:        deps.Config.Roles.Filler,
	}
	manager := session.NewManager(func(chatID int64) *session.Session {
		return session.New(
			chatID,
			sessionCfg,
			notifiers.For(chatID),
			NewChatAdmins(teleBot, chatID),
			deps.Store,
		)
	})

	b := &Bot{
		bot:       teleBot,
		cfg:       deps.Config,
		store:     deps.Store,
		manager:   manager,
		notifiers: notifiers,
	}

	b.gameHandler = handler.NewGameHandler(deps.Config, deps.Store, manager, notifiers)
	b.scenarioHandler = handler.NewScenarioHandler(deps.Store)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Game lifecycle
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/newgame", b.gameHandler.HandleNewGame)
	b.bot.Handle("/seat", b.gameHandler.HandleSeat)
	b.bot.Handle("/deal", b.gameHandler.HandleDeal)
	b.bot.Handle("/round", b.gameHandler.HandleRound)
	b.bot.Handle("/next", b.gameHandler.HandleEndTurn)
	b.bot.Handle("/challenge", b.gameHandler.HandleChallenge)
	b.bot.Handle("/night", b.gameHandler.HandleNight)
	b.bot.Handle("/togglechallenges", b.gameHandler.HandleToggleChallenges)
	b.bot.Handle("/cancelgame", b.gameHandler.HandleCancel)
	b.bot.Handle("/status", b.gameHandler.HandleStatus)

	// Scenario management
	b.bot.Handle("/scenarios", b.scenarioHandler.HandleList)
	b.bot.Handle("/addscenario", b.scenarioHandler.HandleAdd)
	b.bot.Handle("/delscenario", b.scenarioHandler.HandleDelete)

	// All inline keyboard presses route through one callback handler.
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleStart greets the chat and explains the commands.
func (b *Bot) handleStart(c tele.Context) error {
	return c.Reply("👋 Mafia host bot.\n" +
		"/newgame — set up a game\n" +
		"/seat <n> — pick a seat\n" +
		"/deal — distribute roles (moderator)\n" +
		"/round [lead seat] — start the day round (moderator)\n" +
		"/next — end the current turn\n" +
		"/challenge — challenge the speaker\n" +
		"/night — start the night phase (moderator)\n" +
		"/scenarios — manage scenarios")
}

// handleCallback routes inline keyboard presses to the game handlers.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data.
	data := strings.TrimPrefix(callback.Data, "\f")
	action, param := handler.DecodeCallback(data)
	log.Debug().Str("action", action).Str("param", param).Msg("Callback received")

	switch action {
	case "scenario":
		return b.gameHandler.HandleScenarioCallback(c, param)
	case "moderator":
		return b.gameHandler.HandleModeratorCallback(c, param)
	case "join":
		return b.gameHandler.HandleJoinCallback(c)
	case "leave":
		return b.gameHandler.HandleLeaveCallback(c)
	case "endturn":
		return b.gameHandler.HandleEndTurn(c)
	case "challenge":
		return b.gameHandler.HandleChallenge(c)
	case "resolve":
		return b.gameHandler.HandleResolveCallback(c, param)
	default:
		return nil
	}
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
