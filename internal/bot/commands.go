package bot

import "github.com/bwmarrin/discordgo"

var (
	guildOnly    = false
	minWins      = 0.0
	scrimIDOpt   = &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "scrim_id", Description: "6-digit scrim id", Required: true, MinLength: intPtr(6), MaxLength: 6}
	teamNameOpt  = &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Team name"}
	userOpt      = &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Player", Required: true}
	clearChoices = []*discordgo.ApplicationCommandOptionChoice{
		{Name: "all", Value: "all"},
		{Name: "open", Value: "open"},
		{Name: "accepted", Value: "accepted"},
		{Name: "finished", Value: "finished"},
		{Name: "cancelled", Value: "cancelled"},
	}
)

func intPtr(n int) *int { return &n }

// Commands is every slash command the bot registers. Each name has an entry in the handler's routing table.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:         "team_create",
		Description:  "Create a new team with you as leader",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Team name", Required: true, MaxLength: 50},
		},
	},
	{Name: "team_invite", Description: "Invite a player to your team", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{userOpt}},
	{Name: "team_kick", Description: "Remove a member from your team", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{userOpt}},
	{Name: "team_leave", Description: "Leave your current team", DMPermission: &guildOnly},
	{Name: "team_disband", Description: "Permanently delete your team", DMPermission: &guildOnly},
	{Name: "team_info", Description: "View team roster and record", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{teamNameOpt}},
	{Name: "team_history", Description: "View a team's recent results", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{teamNameOpt}},
	{Name: "statistics", Description: "View team statistics", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{teamNameOpt}},
	{Name: "standings", Description: "View the guild leaderboard", DMPermission: &guildOnly},
	{
		Name:         "temp_sub",
		Description:  "Invite a temporary substitute for one scrim",
		DMPermission: &guildOnly,
		Options:      []*discordgo.ApplicationCommandOption{userOpt, scrimIDOpt},
	},
	{
		Name:         "scrim_create",
		Description:  "Post a scrim challenge",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "YYYY-MM-DD", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "time", Description: "e.g. 7pm, 7:30pm or 19:30", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "games", Description: "Number of games", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "info", Description: "Anything else the other team should know"},
		},
	},
	{Name: "scrim_accept", Description: "Accept an open scrim challenge", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{scrimIDOpt}},
	{Name: "scrim_cancel", Description: "Cancel a scrim", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{scrimIDOpt}},
	{
		Name:         "scrim_finish",
		Description:  "Submit the score of a scrim",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			scrimIDOpt,
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "own_wins", Description: "Games your team won", Required: true, MinValue: &minWins},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "opponent_wins", Description: "Games the other team won", Required: true, MinValue: &minWins},
		},
	},
	{Name: "scrim_status", Description: "Show a scrim", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{scrimIDOpt}},
	{
		Name:         "scrim_find",
		Description:  "Find open scrims closest to a date and time",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "date", Description: "YYYY-MM-DD", Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: "time", Description: "e.g. 7pm or 19:30", Required: true},
		},
	},
	{Name: "scrim_list", Description: "View open scrim challenges", DMPermission: &guildOnly},
	{Name: "calendar", Description: "View your team's upcoming scrims", DMPermission: &guildOnly},
	{
		Name:         "scrim_clear",
		Description:  "Delete scrims with their posts and channels",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "Which scrims to clear", Choices: clearChoices},
		},
	},
	{Name: "scrim_reset", Description: "Put a scrim back to accepted", DMPermission: &guildOnly, Options: []*discordgo.ApplicationCommandOption{scrimIDOpt}},
	{
		Name:         "scrim_channel",
		Description:  "Set the channel scrim challenges are posted in",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Defaults to this channel",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
		},
	},
	{
		Name:         "set_verified_role",
		Description:  "Set the role given to verified teams",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Verified role", Required: true},
		},
	},
	{
		Name:         "verifyteam",
		Description:  "Give a team the verified role",
		DMPermission: &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "team", Description: "Team name", Required: true},
		},
	},
	{Name: "help", Description: "Show all available commands"},
}
