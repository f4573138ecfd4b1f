package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"picksBot/config"
	"picksBot/database"
	"picksBot/logging"
	"picksBot/scheduler"
	"picksBot/services"
	"picksBot/services/api"
	"picksBot/services/extService"
	"picksBot/services/interactionService"
	"picksBot/services/matching"
	"picksBot/services/metrics"
	"picksBot/services/pickService"
	"picksBot/services/postService"
	"picksBot/services/realtime"
	"picksBot/services/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupLogger(cfg.LogLevel, "picksBot")

	db, err := database.Connect(cfg.DatabaseURL, logging.GormLogger(cfg.LogLevel))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("auto migrate failed", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db, database.Migrations); err != nil {
		slog.Error("data migrations failed", "error", err)
		os.Exit(1)
	}

	for phrase, abbrev := range cfg.TeamAbbreviations {
		matching.RegisterAbbreviation(phrase, abbrev)
	}

	m := metrics.New()
	client := extService.NewClient(cfg.Sports,
		extService.WithOddsAPIKey(cfg.OddsAPIKey),
		extService.WithMetrics(m),
		extService.WithLocation(cfg.Location),
	)
	st := store.NewGormStore(db)

	picks := pickService.NewService(client, st, pickService.NewSessions(0, nil), m)
	posts := postService.NewService(st, m, postService.NewViews(0))
	hub := realtime.NewHub(st, m, time.Now())
	hub.Subscribe(posts.DeliverBatch)

	deps := &interactionService.Deps{
		Store:   st,
		Games:   client,
		Picks:   picks,
		Posts:   posts,
		Metrics: m,
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		slog.Error("error creating Discord session", "error", err)
		os.Exit(1)
	}

	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			services.HandleSlashCommand(s, i, deps)
		case discordgo.InteractionMessageComponent:
			interactionService.HandleComponentInteraction(s, i, deps)
		case discordgo.InteractionModalSubmit:
			interactionService.HandleModalSubmit(s, i, deps)
		}
	})
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if err := s.UpdateGameStatus(0, "Sharing Picks!"); err != nil {
			slog.Warn("failed to update status", "error", err)
		}
	})
	dg.Identify.Intents = discordgo.IntentsGuilds

	if err := dg.Open(); err != nil {
		slog.Error("error opening Discord session", "error", err)
		os.Exit(1)
	}
	defer dg.Close()

	if err := services.RegisterCommands(dg, cfg.Sports); err != nil {
		slog.Error("error registering commands", "error", err)
		os.Exit(1)
	}

	cronService, err := scheduler.SetupCron(scheduler.Jobs{
		Store:     st,
		Games:     client,
		Hub:       hub,
		Picks:     picks,
		Posts:     posts,
		Metrics:   m,
		OnSettled: interactionService.RefreshSharedPost(dg, deps),
	})
	if err != nil {
		slog.Error("error setting up cron", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(client, st, m), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("bot is running, press CTRL+C to exit")
	<-ctx.Done()

	slog.Info("shutting down")
	<-cronService.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
}
