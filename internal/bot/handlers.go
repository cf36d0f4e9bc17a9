package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/service"
	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

// Invocation is a slash command or button press with the caller's context
// already pulled out of the platform payload.
type Invocation struct {
	GuildID     string
	ChannelID   string
	ActorID     string
	ActorName   string
	IsAdmin     bool
	IsModerator bool
	// Options holds every option as a string; user, role and channel options hold ids.
	Options map[string]string
	// UserNames maps the ids of user options to display names.
	UserNames map[string]string
}

func (inv *Invocation) opt(name string) string {
	return strings.TrimSpace(inv.Options[name])
}

func (inv *Invocation) intOpt(name string) (int, error) {
	n, err := strconv.Atoi(inv.opt(name))
	if err != nil {
		return 0, service.ErrInvalidScore
	}
	return n, nil
}

type Reply struct {
	Content   string
	Ephemeral bool
	Buttons   []service.Button
}

type command struct {
	run    func(ctx context.Context, inv *Invocation) (*Reply, error)
	public bool
}

type Handler struct {
	svc      *service.Services
	commands map[string]command
}

// NewHandler builds the routing table. It is not modified afterwards.
func NewHandler(svc *service.Services) *Handler {
	h := &Handler{svc: svc}
	h.commands = map[string]command{
		"team_create":       {run: h.teamCreate},
		"team_invite":       {run: h.teamInvite},
		"team_kick":         {run: h.teamKick},
		"team_leave":        {run: h.teamLeave},
		"team_disband":      {run: h.teamDisband},
		"team_info":         {run: h.teamInfo},
		"team_history":      {run: h.teamHistory},
		"statistics":        {run: h.statistics},
		"standings":         {run: h.standings, public: true},
		"temp_sub":          {run: h.tempSub},
		"scrim_create":      {run: h.scrimCreate},
		"scrim_accept":      {run: h.scrimAccept},
		"scrim_cancel":      {run: h.scrimCancel},
		"scrim_finish":      {run: h.scrimFinish, public: true},
		"scrim_status":      {run: h.scrimStatus},
		"scrim_find":        {run: h.scrimFind},
		"scrim_list":        {run: h.scrimList},
		"calendar":          {run: h.calendar},
		"scrim_clear":       {run: h.scrimClear},
		"scrim_reset":       {run: h.scrimReset},
		"scrim_channel":     {run: h.scrimChannel},
		"set_verified_role": {run: h.setVerifiedRole},
		"verifyteam":        {run: h.verifyTeam},
		"help":              {run: h.help},
	}
	return h
}

// Public reports whether the reply to a command is visible to the whole channel.
func (h *Handler) Public(name string) bool {
	return h.commands[name].public
}

// PublicAction reports whether the reply to a button press is visible to the whole channel.
func PublicAction(kind models.ActionKind) bool {
	return kind == models.ActionResultConfirm || kind == models.ActionResultReject
}

func (h *Handler) HandleCommand(ctx context.Context, name string, inv *Invocation) *Reply {
	cmd, ok := h.commands[name]
	if !ok {
		telemetry.InteractionsTotal.WithLabelValues("unknown", "unknown").Inc()
		return &Reply{Content: "Unknown command. Use /help to see available commands.", Ephemeral: true}
	}

	reply, err := cmd.run(ctx, inv)
	if err != nil {
		return failure(name, err)
	}
	telemetry.InteractionsTotal.WithLabelValues(name, "ok").Inc()
	reply.Ephemeral = !cmd.public
	return reply
}

func (h *Handler) HandleAction(ctx context.Context, a models.ActionRequest, inv *Invocation) *Reply {
	name := string(a.Kind)
	reply, err := h.runAction(ctx, a, inv)
	if err != nil {
		return failure(name, err)
	}
	telemetry.InteractionsTotal.WithLabelValues(name, "ok").Inc()
	reply.Ephemeral = !PublicAction(a.Kind)
	return reply
}

func (h *Handler) runAction(ctx context.Context, a models.ActionRequest, inv *Invocation) (*Reply, error) {
	switch a.Kind {
	case models.ActionScrimAccept:
		return h.acceptScrim(ctx, inv, a.Ref)
	case models.ActionScrimCancel:
		return h.cancelScrim(ctx, inv, a.Ref)
	case models.ActionResultConfirm:
		return h.confirmResult(ctx, inv, a.Ref)
	case models.ActionResultReject:
		return h.rejectResult(ctx, inv, a.Ref)
	case models.ActionInviteAccept:
		return h.acceptInvite(ctx, inv, a.Ref)
	case models.ActionInviteDecline:
		return h.declineInvite(ctx, inv, a.Ref)
	case models.ActionTempSubAccept:
		return h.acceptTempSub(ctx, inv, a.Ref)
	case models.ActionTempSubDecline:
		return h.declineTempSub(ctx, inv, a.Ref)
	case models.ActionDissolveConfirm:
		return h.confirmDissolve(ctx, inv, a.Ref)
	case models.ActionDissolveCancel:
		return h.cancelDissolve(ctx, inv, a.Ref)
	case models.ActionClearConfirm:
		return h.confirmClear(ctx, inv, a.Ref)
	case models.ActionClearCancel:
		return &Reply{Content: "👍 Nothing was cleared."}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
}

// failure turns an error into the reply the user sees. Domain errors carry
// their own message; anything else is logged and reported generically.
func failure(name string, err error) *Reply {
	kind := service.KindOf(err)
	telemetry.InteractionsTotal.WithLabelValues(name, kind.String()).Inc()

	var e *service.Error
	if errors.As(err, &e) {
		if kind == service.KindExternalSideEffect {
			slog.Warn("Interaction failed on a platform call", "interaction", name, "error", err)
		}
		return &Reply{Content: "❌ " + e.Message, Ephemeral: true}
	}
	slog.Error("Interaction failed", "interaction", name, "error", err)
	return &Reply{Content: "❌ Something went wrong. Please try again later.", Ephemeral: true}
}

func withWarnings(content string, warnings []string) string {
	if len(warnings) == 0 {
		return content
	}
	var sb strings.Builder
	sb.WriteString(content)
	sb.WriteString("\n")
	for _, w := range warnings {
		sb.WriteString("\n⚠️ " + w)
	}
	return sb.String()
}

func (h *Handler) teamCreate(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Roster.CreateTeam(ctx, inv.GuildID, inv.ActorID, inv.opt("name"))
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("✅ Team **%s** created! You are the team leader.\nInvite players with `/team_invite`.", res.Team.Name)
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) teamInvite(ctx context.Context, inv *Invocation) (*Reply, error) {
	target := inv.opt("user")
	if _, err := h.svc.Roster.InviteMember(ctx, inv.GuildID, inv.ActorID, target, inv.UserNames[target]); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("📨 Invite sent to <@%s>.", target)}, nil
}

func (h *Handler) teamKick(ctx context.Context, inv *Invocation) (*Reply, error) {
	target := inv.opt("user")
	res, err := h.svc.Roster.KickMember(ctx, inv.GuildID, inv.ActorID, target)
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("👢 <@%s> has been removed from **%s**.", target, res.Team.Name)
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) teamLeave(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Roster.LeaveTeam(ctx, inv.GuildID, inv.ActorID, inv.ActorName)
	if err != nil {
		return nil, err
	}

	switch {
	case res.NeedsConfirmation:
		ref := service.TeamRef(res.Team)
		return &Reply{
			Content: fmt.Sprintf("⚠️ You lead **%s**. Leaving will disband the team for all %d players, you included. Are you sure?",
				res.Team.Name, len(res.Team.RosterIDs())),
			Buttons: []service.Button{
				{Label: "Disband Team", Style: service.ButtonDanger, Action: models.ActionRequest{Kind: models.ActionDissolveConfirm, Ref: ref}},
				{Label: "Cancel", Style: service.ButtonSecondary, Action: models.ActionRequest{Kind: models.ActionDissolveCancel, Ref: ref}},
			},
		}, nil
	case res.Dissolved:
		return &Reply{Content: withWarnings(fmt.Sprintf("💥 You left and **%s** has been disbanded.", res.Team.Name), res.Warnings)}, nil
	}
	return &Reply{Content: withWarnings(fmt.Sprintf("👋 You left **%s**.", res.Team.Name), res.Warnings)}, nil
}

func (h *Handler) teamDisband(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Roster.DisbandTeam(ctx, inv.GuildID, inv.ActorID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: withWarnings(fmt.Sprintf("💥 **%s** has been disbanded.", res.Team.Name), res.Warnings)}, nil
}

func (h *Handler) teamInfo(ctx context.Context, inv *Invocation) (*Reply, error) {
	view, err := h.svc.Roster.TeamInfo(ctx, inv.GuildID, inv.ActorID, inv.opt("team"))
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatTeamInfo(view)}, nil
}

func (h *Handler) teamHistory(ctx context.Context, inv *Invocation) (*Reply, error) {
	hist, err := h.svc.Stats.TeamHistory(ctx, inv.GuildID, inv.ActorID, inv.opt("team"))
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatHistory(hist)}, nil
}

func (h *Handler) statistics(ctx context.Context, inv *Invocation) (*Reply, error) {
	stats, err := h.svc.Stats.TeamStatistics(ctx, inv.GuildID, inv.ActorID, inv.opt("team"), inv.IsModerator || inv.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatStats(stats)}, nil
}

func (h *Handler) standings(ctx context.Context, inv *Invocation) (*Reply, error) {
	stats, err := h.svc.Stats.Standings(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatStandings(stats)}, nil
}

func (h *Handler) tempSub(ctx context.Context, inv *Invocation) (*Reply, error) {
	target, scrimID := inv.opt("user"), inv.opt("scrim_id")
	if _, err := h.svc.Roster.InviteTempSub(ctx, inv.GuildID, inv.ActorID, target, inv.UserNames[target], scrimID); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("🔁 Temp sub request sent to <@%s> for scrim `%s`.", target, scrimID)}, nil
}

func (h *Handler) scrimCreate(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Scrims.CreateScrim(ctx, inv.GuildID, inv.ActorID, service.CreateScrimInput{
		Date:      inv.opt("date"),
		Time:      inv.opt("time"),
		Games:     inv.opt("games"),
		OtherInfo: inv.opt("info"),
	})
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("✅ Scrim `%s` created for %s at %s.", res.Scrim.ScrimID, res.Scrim.Date, res.Scrim.Time)
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) scrimAccept(ctx context.Context, inv *Invocation) (*Reply, error) {
	return h.acceptScrim(ctx, inv, inv.opt("scrim_id"))
}

func (h *Handler) acceptScrim(ctx context.Context, inv *Invocation, scrimID string) (*Reply, error) {
	res, err := h.svc.Scrims.AcceptScrim(ctx, inv.GuildID, inv.ActorID, scrimID)
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("⚔️ You accepted scrim `%s` against **%s**.", res.Scrim.ScrimID, res.Scrim.TeamName)
	if res.Scrim.ChannelID != "" {
		content += fmt.Sprintf(" Coordinate in <#%s>.", res.Scrim.ChannelID)
	}
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) scrimCancel(ctx context.Context, inv *Invocation) (*Reply, error) {
	return h.cancelScrim(ctx, inv, inv.opt("scrim_id"))
}

func (h *Handler) cancelScrim(ctx context.Context, inv *Invocation, scrimID string) (*Reply, error) {
	res, err := h.svc.Scrims.CancelScrim(ctx, service.CancelInput{
		GuildID:   inv.GuildID,
		ActorID:   inv.ActorID,
		ScrimID:   scrimID,
		ChannelID: inv.ChannelID,
		IsAdmin:   inv.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &Reply{Content: withWarnings(fmt.Sprintf("❌ Scrim `%s` cancelled.", res.Scrim.ScrimID), res.Warnings)}, nil
}

func (h *Handler) scrimFinish(ctx context.Context, inv *Invocation) (*Reply, error) {
	own, err := inv.intOpt("own_wins")
	if err != nil {
		return nil, err
	}
	opp, err := inv.intOpt("opponent_wins")
	if err != nil {
		return nil, err
	}

	res, err := h.svc.Scrims.SubmitResult(ctx, service.SubmitInput{
		GuildID:      inv.GuildID,
		ActorID:      inv.ActorID,
		ScrimID:      inv.opt("scrim_id"),
		OwnWins:      own,
		OpponentWins: opp,
	})
	if err != nil {
		return nil, err
	}
	return &Reply{Content: res.Prompt.Content, Buttons: res.Prompt.Buttons}, nil
}

func (h *Handler) confirmResult(ctx context.Context, inv *Invocation, ref string) (*Reply, error) {
	scrimID, seq, err := service.ParseProposalRef(ref)
	if err != nil {
		return nil, err
	}
	res, err := h.svc.Scrims.ConfirmResult(ctx, inv.GuildID, inv.ActorID, scrimID, seq)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: withWarnings(service.FormatFinished(res.Scrim, res.Result, res.ChannelClosed), res.Warnings)}, nil
}

func (h *Handler) rejectResult(ctx context.Context, inv *Invocation, ref string) (*Reply, error) {
	scrimID, seq, err := service.ParseProposalRef(ref)
	if err != nil {
		return nil, err
	}
	res, err := h.svc.Scrims.RejectConfirmation(ctx, inv.GuildID, inv.ActorID, scrimID, seq, inv.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("↩️ The result for scrim `%s` was rejected by <@%s>. Submit the correct score with `/scrim_finish`.",
		res.Scrim.ScrimID, inv.ActorID)}, nil
}

func (h *Handler) scrimStatus(ctx context.Context, inv *Invocation) (*Reply, error) {
	scrim, err := h.svc.Scrims.ScrimStatus(ctx, inv.GuildID, inv.opt("scrim_id"))
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatScrimStatus(scrim)}, nil
}

func (h *Handler) scrimFind(ctx context.Context, inv *Invocation) (*Reply, error) {
	scrims, err := h.svc.Scrims.FindNear(ctx, inv.GuildID, inv.opt("date"), inv.opt("time"))
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatScrimList("🔎 **Closest open scrims**", scrims)}, nil
}

func (h *Handler) scrimList(ctx context.Context, inv *Invocation) (*Reply, error) {
	scrims, err := h.svc.Scrims.ListOpen(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatScrimList("📋 **Open scrims**", scrims)}, nil
}

func (h *Handler) calendar(ctx context.Context, inv *Invocation) (*Reply, error) {
	team, scrims, err := h.svc.Scrims.Calendar(ctx, inv.GuildID, inv.ActorID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: service.FormatScrimList(fmt.Sprintf("📅 **%s upcoming scrims**", team.Name), scrims)}, nil
}

func (h *Handler) scrimClear(ctx context.Context, inv *Invocation) (*Reply, error) {
	filter := inv.opt("status")
	if filter == "" {
		filter = "all"
	}
	n, err := h.svc.Scrims.PrepareClear(ctx, inv.GuildID, inv.IsAdmin, filter)
	if err != nil {
		return nil, err
	}

	content := fmt.Sprintf("⚠️ This will delete %d scrim(s) matching `%s` together with their posts and channels.", n, filter)
	if filter == "all" || filter == "finished" {
		content += " Team statistics will be reset."
	}
	return &Reply{
		Content: content,
		Buttons: []service.Button{
			{Label: "Clear", Style: service.ButtonDanger, Action: models.ActionRequest{Kind: models.ActionClearConfirm, Ref: filter}},
			{Label: "Cancel", Style: service.ButtonSecondary, Action: models.ActionRequest{Kind: models.ActionClearCancel, Ref: filter}},
		},
	}, nil
}

func (h *Handler) confirmClear(ctx context.Context, inv *Invocation, filter string) (*Reply, error) {
	res, err := h.svc.Scrims.ConfirmClear(ctx, inv.GuildID, inv.IsAdmin, filter)
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("🧹 Deleted %d scrim(s).", res.Deleted)
	if res.StatsReset {
		content += " Team statistics were reset."
	}
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) scrimReset(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Scrims.ResetScrim(ctx, inv.GuildID, inv.opt("scrim_id"), inv.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("🔄 Scrim `%s` is back to accepted.", res.Scrim.ScrimID)}, nil
}

func (h *Handler) scrimChannel(ctx context.Context, inv *Invocation) (*Reply, error) {
	channelID := inv.opt("channel")
	if channelID == "" {
		channelID = inv.ChannelID
	}
	if err := h.svc.Settings.SetScrimChannel(ctx, inv.GuildID, inv.IsAdmin, channelID); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("✅ Scrim challenges will be posted in <#%s>.", channelID)}, nil
}

func (h *Handler) setVerifiedRole(ctx context.Context, inv *Invocation) (*Reply, error) {
	roleID := inv.opt("role")
	if err := h.svc.Settings.SetVerifiedRole(ctx, inv.GuildID, inv.IsAdmin, roleID); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("✅ Verified role set to <@&%s>.", roleID)}, nil
}

func (h *Handler) verifyTeam(ctx context.Context, inv *Invocation) (*Reply, error) {
	res, err := h.svc.Roster.VerifyTeam(ctx, inv.GuildID, inv.IsAdmin, inv.opt("team"))
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("✅ **%s** has been verified (%d players).", res.Team.Name, len(res.Team.RosterIDs()))
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) acceptInvite(ctx context.Context, inv *Invocation, inviteID string) (*Reply, error) {
	res, err := h.svc.Roster.AcceptInvite(ctx, inviteID, inv.ActorID, inv.ActorName)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: withWarnings(fmt.Sprintf("🎉 You joined **%s**!", res.Team.Name), res.Warnings)}, nil
}

func (h *Handler) declineInvite(ctx context.Context, inv *Invocation, inviteID string) (*Reply, error) {
	team, err := h.svc.Roster.DeclineInvite(ctx, inviteID, inv.ActorID, inv.ActorName)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("You declined the invite to **%s**.", team)}, nil
}

func (h *Handler) acceptTempSub(ctx context.Context, inv *Invocation, inviteID string) (*Reply, error) {
	res, err := h.svc.Roster.AcceptTempSub(ctx, inviteID, inv.ActorID, inv.ActorName)
	if err != nil {
		return nil, err
	}
	content := fmt.Sprintf("🔁 You are a temp sub for **%s** in scrim `%s` (%s at %s).",
		res.Team.Name, res.Scrim.ScrimID, res.Scrim.Date, res.Scrim.Time)
	return &Reply{Content: withWarnings(content, res.Warnings)}, nil
}

func (h *Handler) declineTempSub(ctx context.Context, inv *Invocation, inviteID string) (*Reply, error) {
	team, err := h.svc.Roster.DeclineTempSub(ctx, inviteID, inv.ActorID, inv.ActorName)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("You declined the temp sub request from **%s**.", team)}, nil
}

func (h *Handler) confirmDissolve(ctx context.Context, inv *Invocation, ref string) (*Reply, error) {
	res, err := h.svc.Roster.ConfirmDissolve(ctx, inv.ActorID, ref)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: withWarnings(fmt.Sprintf("💥 **%s** has been disbanded.", res.Team.Name), res.Warnings)}, nil
}

func (h *Handler) cancelDissolve(ctx context.Context, inv *Invocation, ref string) (*Reply, error) {
	team, err := h.svc.Roster.CancelDissolve(ctx, inv.ActorID, ref)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("👍 You are still leading **%s**.", team.Name)}, nil
}

const helpText = `**Team**
` + "`/team_create <name>`" + ` create a team with you as leader
` + "`/team_invite @user`" + ` invite a player (leader)
` + "`/team_kick @user`" + ` remove a member (leader)
` + "`/team_leave`" + ` leave your team
` + "`/team_disband`" + ` disband your team (leader)
` + "`/team_info [team]`" + ` roster and record
` + "`/team_history [team]`" + ` recent results
` + "`/temp_sub @user <scrim_id>`" + ` book a substitute for one scrim (leader)

**Scrims**
` + "`/scrim_create`" + ` post a challenge
` + "`/scrim_accept <scrim_id>`" + ` accept a challenge (leader)
` + "`/scrim_cancel <scrim_id>`" + ` cancel a scrim
` + "`/scrim_finish <scrim_id>`" + ` submit the score
` + "`/scrim_status <scrim_id>`" + ` show a scrim
` + "`/scrim_find <date> <time>`" + ` open scrims closest to a time
` + "`/scrim_list`" + ` open challenges
` + "`/calendar`" + ` your team's upcoming scrims

**Statistics**
` + "`/statistics [team]`" + ` team record
` + "`/standings`" + ` guild leaderboard

**Administrators**
` + "`/scrim_channel`" + `, ` + "`/set_verified_role`" + `, ` + "`/verifyteam`" + `, ` + "`/scrim_clear`" + `, ` + "`/scrim_reset`"

func (h *Handler) help(ctx context.Context, inv *Invocation) (*Reply, error) {
	return &Reply{Content: helpText}, nil
}
