package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/omarshaarawi/scrimbot/internal/service"
)

const scrimChannelPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles

// DiscordPlatform carries out service side effects through the Discord REST API.
type DiscordPlatform struct {
	session *discordgo.Session
}

func NewDiscordPlatform(session *discordgo.Session) *DiscordPlatform {
	return &DiscordPlatform{session: session}
}

func (p *DiscordPlatform) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	mentionable := true
	role, err := p.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("error creating role %q: %w", name, err)
	}
	return role.ID, nil
}

func (p *DiscordPlatform) DeleteRole(ctx context.Context, guildID, roleID string) error {
	return p.session.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) SendDirect(ctx context.Context, userID string, msg service.Message) error {
	ch, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error opening DM with %s: %w", userID, err)
	}
	_, err = p.PostMessage(ctx, ch.ID, msg)
	return err
}

func (p *DiscordPlatform) PostMessage(ctx context.Context, channelID string, msg service.Message) (string, error) {
	components, err := messageComponents(msg.Buttons)
	if err != nil {
		return "", err
	}
	m, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    msg.Content,
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (p *DiscordPlatform) EditMessage(ctx context.Context, channelID, messageID string, msg service.Message) error {
	components, err := messageComponents(msg.Buttons)
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Content:    &msg.Content,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (p *DiscordPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

// CreatePrivateChannel opens a text channel hidden from @everyone (whose role
// id is the guild id) and visible to the bot and memberIDs.
func (p *DiscordPlatform) CreatePrivateChannel(ctx context.Context, guildID, name string, memberIDs []string) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
	}
	if p.session.State != nil && p.session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: p.session.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: scrimChannelPermissions,
		})
	}
	for _, id := range memberIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: id, Type: discordgo.PermissionOverwriteTypeMember, Allow: scrimChannelPermissions,
		})
	}

	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("error creating channel %q: %w", name, err)
	}
	return ch.ID, nil
}

func (p *DiscordPlatform) GrantChannelAccess(ctx context.Context, channelID, userID string) error {
	return p.session.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember,
		scrimChannelPermissions, 0, discordgo.WithContext(ctx))
}

func (p *DiscordPlatform) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := p.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func buttonStyle(s service.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case service.ButtonSecondary:
		return discordgo.SecondaryButton
	case service.ButtonSuccess:
		return discordgo.SuccessButton
	case service.ButtonDanger:
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}

// messageComponents lays buttons out in one action row. An empty slice clears
// the components of an edited message.
func messageComponents(buttons []service.Button) ([]discordgo.MessageComponent, error) {
	if len(buttons) == 0 {
		return []discordgo.MessageComponent{}, nil
	}

	row := discordgo.ActionsRow{}
	for _, b := range buttons {
		id, err := EncodeAction(b.Action)
		if err != nil {
			return nil, err
		}
		row.Components = append(row.Components, discordgo.Button{
			Label:    b.Label,
			Style:    buttonStyle(b.Style),
			CustomID: id,
		})
	}
	return []discordgo.MessageComponent{row}, nil
}
