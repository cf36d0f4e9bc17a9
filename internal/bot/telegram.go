package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/scrimbot/internal/service"
)

// TelegramBot mirrors announcements into one Telegram chat and answers a
// few read-only commands about the configured guild.
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	guildID string
	scrims  *service.ScrimService
	stats   *service.StatsService
}

func NewTelegramBot(token string, chatID int64, guildID string) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &TelegramBot{
		bot:     bot,
		chatID:  chatID,
		guildID: guildID,
	}, nil
}

func (t *TelegramBot) Start(ctx context.Context, svc *service.Services) error {
	t.scrims, t.stats = svc.Scrims, svc.Stats

	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"
			msg.Text = telegramMarkdown(t.HandleCommand(ctx, update.Message.Command()))
			if _, err := t.bot.Send(msg); err != nil {
				slog.Error("Error sending message", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *TelegramBot) HandleCommand(ctx context.Context, command string) string {
	command = strings.ToLower(command)
	if t.guildID == "" && command != "start" && command != "help" {
		return "No Discord guild is configured for this chat."
	}

	switch command {
	case "start":
		return "Welcome to ScrimBot! Use /help to see available commands."
	case "help":
		return "Available commands:\n/scrims - Open scrim challenges\n/standings - Team standings"
	case "scrims":
		scrims, err := t.scrims.ListOpen(ctx, t.guildID)
		if err != nil {
			return fmt.Sprintf("Error fetching scrims: %v", err)
		}
		return service.FormatScrimList("📋 **Open scrims**", scrims)
	case "standings":
		stats, err := t.stats.Standings(ctx, t.guildID)
		if err != nil {
			return fmt.Sprintf("Error fetching standings: %v", err)
		}
		return service.FormatStandings(stats)
	}
	return "Unknown command. Use /help to see available commands."
}

// SendMessage posts an announcement to the configured chat.
func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		slog.Error("Chat ID not set")
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Error sending message", "error", err)
	}
	return err
}

// telegramMarkdown converts Discord bold to Telegram's legacy Markdown.
func telegramMarkdown(s string) string {
	return strings.ReplaceAll(s, "**", "*")
}
