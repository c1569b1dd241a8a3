package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mymmrac/telego"

	"github.com/garajhub/garajhub-bot/admin"
	"github.com/garajhub/garajhub-bot/bot"
	"github.com/garajhub/garajhub-bot/config"
	"github.com/garajhub/garajhub-bot/session"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	flag.Parse()

	setLogLevel(*verbose, *veryVerbose)

	if err := godotenv.Load(); err != nil {
		slog.Warn("main: Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("main: Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Debug("main: Initializing storage", "db_path", cfg.DatabasePath)
	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	api, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		slog.Error("main: Failed to initialize Telegram API client", "error", err)
		os.Exit(1)
	}

	notifier := bot.NewNotifier(api, cfg.AdminID, cfg.ChannelUsername)
	flow := workflow.NewController(store, notifier)
	broadcaster := workflow.NewBroadcaster(store, notifier, cfg.BroadcastInterval)
	sessions := session.NewStore()

	server, err := admin.NewServer(cfg, store, flow, broadcaster)
	if err != nil {
		slog.Error("main: Failed to initialize admin API", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := server.Run(); err != nil {
			slog.Error("main: Admin API stopped", "error", err)
			os.Exit(1)
		}
	}()

	b := bot.New(api, store, sessions, flow, cfg)

	slog.Info("main: Starting bot...")
	if err := b.Run(); err != nil {
		slog.Error("main: Failed to start bot", "error", err)
		os.Exit(1)
	}

	select {}
}

// setLogLevel configures the logging level based on the provided flags
func setLogLevel(verbose, veryVerbose bool) {
	logLevel := slog.LevelWarn // Default level
	if veryVerbose {
		logLevel = slog.LevelDebug
	} else if verbose {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
