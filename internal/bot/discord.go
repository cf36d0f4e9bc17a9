package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/omarshaarawi/scrimbot/internal/service"
)

const interactionTimeout = 30 * time.Second

type DiscordBot struct {
	session *discordgo.Session
	appID   string
	guildID string
}

// NewDiscordBot creates the session. Nothing connects until Start.
func NewDiscordBot(token, appID, guildID string) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &DiscordBot{
		session: session,
		appID:   appID,
		guildID: guildID,
	}, nil
}

func (d *DiscordBot) Platform() *DiscordPlatform {
	return NewDiscordPlatform(d.session)
}

// RegisterCommands replaces the registered slash commands with Commands,
// for one guild when a guild id is configured and globally otherwise.
func (d *DiscordBot) RegisterCommands() error {
	registered, err := d.session.ApplicationCommandBulkOverwrite(d.appID, d.guildID, Commands)
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	slog.Info("Registered slash commands", "count", len(registered), "guild_id", d.guildID)
	return nil
}

func (d *DiscordBot) Start(ctx context.Context, handler *Handler) error {
	d.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Authorized on account", "username", r.User.Username)
	})
	d.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		d.onInteraction(ctx, handler, i)
	})

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}

	<-ctx.Done()
	return d.session.Close()
}

func (d *DiscordBot) onInteraction(ctx context.Context, handler *Handler, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(ctx, interactionTimeout)
	defer cancel()

	inv := invocationFrom(i)

	var reply *Reply
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		readOptions(inv, data)
		if !d.deferReply(i, handler.Public(data.Name)) {
			return
		}
		reply = handler.HandleCommand(ctx, data.Name, inv)

	case discordgo.InteractionMessageComponent:
		action, err := DecodeAction(i.MessageComponentData().CustomID)
		if err != nil {
			slog.Warn("Ignoring unknown component", "custom_id", i.MessageComponentData().CustomID)
			return
		}
		if !d.deferReply(i, PublicAction(action.Kind)) {
			return
		}
		reply = handler.HandleAction(ctx, action, inv)

	default:
		return
	}

	d.respond(ctx, i, inv, reply)
}

func (d *DiscordBot) deferReply(i *discordgo.InteractionCreate, public bool) bool {
	var flags discordgo.MessageFlags
	if !public {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := d.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err != nil {
		slog.Error("Failed to acknowledge interaction", "error", err)
		return false
	}
	return true
}

// respond fills in the deferred reply. When the interaction can no longer be
// answered the reply goes to the actor by DM instead.
func (d *DiscordBot) respond(ctx context.Context, i *discordgo.InteractionCreate, inv *Invocation, reply *Reply) {
	msg := service.Message{Content: reply.Content, Buttons: reply.Buttons}
	components, err := messageComponents(reply.Buttons)
	if err != nil {
		slog.Error("Failed to encode reply buttons", "error", err)
		components = []discordgo.MessageComponent{}
		msg.Buttons = nil
	}

	_, err = d.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &reply.Content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err == nil {
		return
	}

	slog.Warn("Failed to edit interaction reply, falling back to DM", "user_id", inv.ActorID, "error", err)
	if err := d.Platform().SendDirect(ctx, inv.ActorID, msg); err != nil {
		slog.Warn("Failed to deliver reply by DM", "user_id", inv.ActorID, "error", err)
	}
}

func invocationFrom(i *discordgo.InteractionCreate) *Invocation {
	inv := &Invocation{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Options:   make(map[string]string),
		UserNames: make(map[string]string),
	}

	if i.Member != nil && i.Member.User != nil {
		inv.ActorID = i.Member.User.ID
		inv.ActorName = memberName(i.Member, i.Member.User)
		inv.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
		inv.IsModerator = i.Member.Permissions&discordgo.PermissionModerateMembers != 0
	} else if i.User != nil {
		inv.ActorID = i.User.ID
		inv.ActorName = memberName(nil, i.User)
	}
	return inv
}

func readOptions(inv *Invocation, data discordgo.ApplicationCommandInteractionData) {
	for _, o := range data.Options {
		switch o.Type {
		case discordgo.ApplicationCommandOptionUser:
			id := o.UserValue(nil).ID
			inv.Options[o.Name] = id
			if data.Resolved != nil {
				inv.UserNames[id] = memberName(data.Resolved.Members[id], data.Resolved.Users[id])
			}
		case discordgo.ApplicationCommandOptionRole:
			inv.Options[o.Name] = o.RoleValue(nil, "").ID
		case discordgo.ApplicationCommandOptionChannel:
			inv.Options[o.Name] = o.ChannelValue(nil).ID
		case discordgo.ApplicationCommandOptionInteger:
			inv.Options[o.Name] = strconv.FormatInt(o.IntValue(), 10)
		case discordgo.ApplicationCommandOptionString:
			inv.Options[o.Name] = o.StringValue()
		}
	}
}

func memberName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
