package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omarshaarawi/scrimbot/internal/bot"
	"github.com/omarshaarawi/scrimbot/internal/config"
	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/repository/memory"
	"github.com/omarshaarawi/scrimbot/internal/scheduler"
	"github.com/omarshaarawi/scrimbot/internal/service"
	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg, err := config.NewDatabase()
		if err != nil {
			return err
		}
		db, err := repository.Open(dbCfg.Driver, dbCfg.DSN)
		if err != nil {
			return err
		}
		if err := repository.Migrate(db); err != nil {
			return err
		}
		slog.Info("Database migrated", "driver", dbCfg.Driver)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register slash commands with Discord",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		discordBot, err := bot.NewDiscordBot(cfg.Discord.Token, cfg.Discord.AppID, cfg.Discord.GuildID)
		if err != nil {
			return err
		}
		return discordBot.RegisterCommands()
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Send due scrim reminders once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sent, err := a.services.Reminders.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("Reminder sweep finished", "sent", sent)
		return nil
	},
}

type app struct {
	cfg        *config.Config
	discord    *bot.DiscordBot
	telegram   *bot.TelegramBot
	dispatcher *service.Dispatcher
	sched      *scheduler.Scheduler
	services   *service.Services
}

func newApp() (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}

	discordBot, err := bot.NewDiscordBot(cfg.Discord.Token, cfg.Discord.AppID, cfg.Discord.GuildID)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, discord: discordBot}

	var mirror service.Announcer
	if cfg.Telegram.Enabled() {
		a.telegram, err = bot.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Discord.GuildID)
		if err != nil {
			return nil, fmt.Errorf("error starting telegram mirror: %w", err)
		}
		mirror = a.telegram
	}

	platform := discordBot.Platform()
	a.dispatcher = service.NewDispatcher(platform, mirror)

	a.sched, err = scheduler.NewScheduler(loc)
	if err != nil {
		return nil, err
	}

	a.services = service.New(repository.NewGormStore(db), platform, a.dispatcher, a.sched, memory.NewRepository(), service.Options{
		Location:           loc,
		ChannelDeleteDelay: cfg.Scheduling.ChannelDeleteDelay,
		ReminderLead:       cfg.Scheduling.ReminderLead,
		ReminderWindow:     cfg.Scheduling.ReminderWindow,
		SettingsTTL:        cfg.Scheduling.SettingsCacheTTL,
	})
	return a, nil
}

func (a *app) close() {
	if err := a.sched.Stop(); err != nil {
		slog.Error("Error stopping scheduler", "error", err)
	}
	a.dispatcher.Wait()
}

func serve() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.sched.Start(ctx, a.services.Reminders, a.cfg.Scheduling.ReminderSchedule); err != nil {
		return err
	}

	go telemetry.Serve(ctx, a.cfg.HTTPAddr)

	if a.telegram != nil {
		go func() {
			if err := a.telegram.Start(ctx, a.services); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	if err := a.discord.RegisterCommands(); err != nil {
		return err
	}

	slog.Info("Starting scrimbot")
	if err := a.discord.Start(ctx, bot.NewHandler(a.services)); err != nil {
		return err
	}
	slog.Info("Shutting down gracefully...")
	return nil
}
