package bot

import (
	"errors"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"github.com/garajhub/garajhub-bot/config"
	"github.com/garajhub/garajhub-bot/session"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

// Main-menu reply keyboard labels. The back label doubles as the
// unconditional abort input inside every dialog flow.
const (
	buttonStartups   = "🌍 Startups"
	buttonMyStartups = "📌 My startups"
	buttonCreate     = "➕ Create startup"
	buttonProfile    = "👤 Profile"
	buttonAdminPanel = "⚙️ Admin panel"
)

type Bot struct {
	api      *telego.Bot
	storage  *storage.Storage
	sessions *session.Store
	flow     *workflow.Controller
	cfg      *config.Config
}

func New(api *telego.Bot, st *storage.Storage, sessions *session.Store, flow *workflow.Controller, cfg *config.Config) *Bot {
	return &Bot{
		api:      api,
		storage:  st,
		sessions: sessions,
		flow:     flow,
		cfg:      cfg,
	}
}

func (b *Bot) Run() error {
	botUser, err := b.api.GetMe()
	if err != nil {
		slog.Error("bot: Cannot retrieve api user", "error", err)
		return ErrGetMe
	}

	slog.Info("bot: Running as", "id", botUser.ID, "username", botUser.Username, "is_bot", botUser.IsBot)

	updates, err := b.api.UpdatesViaLongPolling(nil)
	if err != nil {
		slog.Error("bot: Cannot get update channel", "error", err)
		return ErrUpdatesChannel
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		slog.Error("bot: Cannot initialize bot handler", "error", err)
		return ErrHandlerInit
	}

	defer bh.Stop()
	defer b.api.StopLongPolling()

	bh.Use(b.userFillMiddleware)

	bh.Handle(b.startHandler, th.CommandEqual("start"))
	bh.Handle(b.startHandler, th.CommandEqual("help"))
	bh.Handle(b.profileHandler, th.TextEqual(buttonProfile))
	bh.Handle(b.startupsHandler, th.TextEqual(buttonStartups))
	bh.Handle(b.myStartupsHandler, th.TextEqual(buttonMyStartups))
	bh.Handle(b.createStartupHandler, th.TextEqual(buttonCreate))
	bh.Handle(b.adminPanelHandler, th.TextEqual(buttonAdminPanel))
	bh.Handle(b.callbackHandler, th.AnyCallbackQuery())
	bh.Handle(b.messageHandler, th.AnyMessage())

	bh.Start()

	return nil
}
