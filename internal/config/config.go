package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Discord    Discord
	Telegram   Telegram
	Database   Database
	Scheduling Scheduling
	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":80"`
}

type Discord struct {
	Token   string `envconfig:"DISCORD_TOKEN" required:"true"`
	AppID   string `envconfig:"DISCORD_APP_ID" required:"true"`
	GuildID string `envconfig:"DISCORD_GUILD_ID"`
}

// Telegram is optional. Announcements are mirrored only when both fields are set.
type Telegram struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func (t Telegram) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type Database struct {
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DB_DSN" default:"scrimbot.db"`
}

type Scheduling struct {
	Timezone           string        `envconfig:"TIMEZONE" default:"America/Chicago"`
	ReminderSchedule   string        `envconfig:"REMINDER_SCHEDULE" default:"* * * * *"`
	ReminderLead       time.Duration `envconfig:"REMINDER_LEAD" default:"1h"`
	ReminderWindow     time.Duration `envconfig:"REMINDER_WINDOW" default:"5m"`
	ChannelDeleteDelay time.Duration `envconfig:"CHANNEL_DELETE_DELAY" default:"5s"`
	SettingsCacheTTL   time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"5m"`
}

func (s Scheduling) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NewDatabase reads only the database settings, for commands that never talk to Discord.
func NewDatabase() (*Database, error) {
	var d Database
	if err := envconfig.Process("", &d); err != nil {
		return nil, err
	}
	return &d, nil
}
