package service

import (
	"context"
	"time"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

type Button struct {
	Label  string
	Style  ButtonStyle
	Action models.ActionRequest
}

type Message struct {
	Content string
	Buttons []Button
}

// Platform is the chat service the bot runs on. Every call is an external
// side effect that may fail independently of the store.
type Platform interface {
	CreateRole(ctx context.Context, guildID, name string) (string, error)
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	SendDirect(ctx context.Context, userID string, msg Message) error
	PostMessage(ctx context.Context, channelID string, msg Message) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg Message) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	CreatePrivateChannel(ctx context.Context, guildID, name string, memberIDs []string) (string, error)
	GrantChannelAccess(ctx context.Context, channelID, userID string) error
	DeleteChannel(ctx context.Context, channelID string) error
}

// Notification is delivered to a user by DM when UserID is set, otherwise posted to ChannelID.
type Notification struct {
	UserID    string
	ChannelID string
	Message   Message
}

type Notifier interface {
	Notify(ctx context.Context, notes ...Notification)
	Announce(text string)
}

// Deferrer runs fn once after delay.
type Deferrer interface {
	After(delay time.Duration, name string, fn func()) error
}

func directTo(userIDs []string, msg Message) []Notification {
	notes := make([]Notification, 0, len(userIDs))
	for _, id := range userIDs {
		notes = append(notes, Notification{UserID: id, Message: msg})
	}
	return notes
}
