package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
)

type RosterService struct {
	store    repository.Store
	platform Platform
	notifier Notifier
	resolver *Resolver
	settings *SettingsService
	stats    *StatsService
	newID    func() (string, error)
	now      func() time.Time
}

type TeamResult struct {
	Team     *models.Team
	Warnings []string
}

type LeaveResult struct {
	Team              *models.Team
	Left              bool
	Dissolved         bool
	NeedsConfirmation bool
	Warnings          []string
}

type TempSubResult struct {
	Team     *models.Team
	Scrim    *models.Scrim
	Warnings []string
}

type TeamView struct {
	Team  *models.Team
	Stats models.TeamStats
}

func (s *RosterService) leaderTeam(ctx context.Context, guildID, userID string) (*models.Team, error) {
	team, err := s.resolver.ResolveTeam(ctx, guildID, userID)
	if errors.Is(err, ErrNotInTeam) {
		return nil, ErrNotLeader
	}
	if err != nil {
		return nil, err
	}
	if !team.IsLeader(userID) {
		return nil, ErrNotLeader
	}
	return team, nil
}

func (s *RosterService) CreateTeam(ctx context.Context, guildID, actorID, name string) (*TeamResult, error) {
	name = strings.TrimSpace(name)
	if err := checkTeamName(name); err != nil {
		return nil, err
	}

	if _, err := s.resolver.ResolveTeam(ctx, guildID, actorID); err == nil {
		return nil, ErrAlreadyInTeam
	} else if !errors.Is(err, ErrNotInTeam) {
		return nil, err
	}

	if _, err := s.store.FindTeamByName(ctx, guildID, name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error checking team name: %w", err)
	}

	roleID, err := s.platform.CreateRole(ctx, guildID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoleCreation, err)
	}

	team := &models.Team{
		GuildID:   guildID,
		Name:      name,
		LeaderID:  actorID,
		RoleID:    roleID,
		CreatedAt: s.now(),
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := resolveTeam(ctx, tx, guildID, actorID); err == nil {
			return ErrAlreadyInTeam
		} else if !errors.Is(err, ErrNotInTeam) {
			return err
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			if errors.Is(err, repository.ErrAlreadyMember) {
				return ErrAlreadyInTeam
			}
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrNameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if derr := s.platform.DeleteRole(ctx, guildID, roleID); derr != nil {
			logOnly("delete_role", derr, "guild_id", guildID, "role_id", roleID)
		}
		return nil, err
	}

	res := &TeamResult{Team: team}
	var w warnings
	if err := s.platform.AddRole(ctx, guildID, actorID, roleID); err != nil {
		w.add("add_role", "Could not give you the team role.", err, "team", name, "user_id", actorID)
	}
	res.Warnings = w
	return res, nil
}

func (s *RosterService) InviteMember(ctx context.Context, guildID, leaderID, targetID, targetName string) (*models.Invite, error) {
	team, err := s.leaderTeam(ctx, guildID, leaderID)
	if err != nil {
		return nil, err
	}
	if targetID == leaderID {
		return nil, ErrSelfInvite
	}
	if _, err := s.resolver.ResolveTeam(ctx, guildID, targetID); err == nil {
		return nil, ErrTargetAlreadyTeamed
	} else if !errors.Is(err, ErrNotInTeam) {
		return nil, err
	}
	if team.IsFull() {
		return nil, ErrTeamFull
	}

	inv, err := s.addInvite(ctx, team, models.InviteMember, leaderID, targetID, targetName, "")
	if err != nil {
		return nil, err
	}

	msg := Message{
		Content: fmt.Sprintf("📨 You have been invited to join **%s** by <@%s>.", team.Name, leaderID),
		Buttons: []Button{
			{Label: "Accept", Style: ButtonSuccess, Action: models.ActionRequest{Kind: models.ActionInviteAccept, Ref: inv.InviteID}},
			{Label: "Decline", Style: ButtonDanger, Action: models.ActionRequest{Kind: models.ActionInviteDecline, Ref: inv.InviteID}},
		},
	}
	if err := s.deliverInvite(ctx, inv, msg); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *RosterService) addInvite(ctx context.Context, team *models.Team, kind models.InviteKind, leaderID, targetID, targetName, scrimID string) (*models.Invite, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating invite id: %w", err)
	}

	inv := models.Invite{
		InviteID:    id,
		Kind:        kind,
		TeamID:      team.ID,
		GuildID:     team.GuildID,
		UserID:      targetID,
		DisplayName: targetName,
		InvitedBy:   leaderID,
		ScrimID:     scrimID,
		InvitedAt:   s.now(),
	}
	if err := s.store.AddInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("error saving invite: %w", err)
	}
	return &inv, nil
}

// deliverInvite DMs the invite and withdraws it when the DM cannot be sent.
func (s *RosterService) deliverInvite(ctx context.Context, inv *models.Invite, msg Message) error {
	err := s.platform.SendDirect(ctx, inv.UserID, msg)
	if err == nil {
		return nil
	}

	logOnly("send_invite", err, "invite_id", inv.InviteID, "user_id", inv.UserID)
	if derr := s.store.DeleteInvite(ctx, inv.InviteID); derr != nil && !errors.Is(derr, repository.ErrNotFound) {
		return fmt.Errorf("error withdrawing undeliverable invite: %w", derr)
	}
	return fmt.Errorf("%w: %v", ErrInviteUndeliverable, err)
}

func (s *RosterService) findInvite(ctx context.Context, inviteID, actorID string, kind models.InviteKind) (*models.Invite, error) {
	inv, err := s.store.FindInvite(ctx, inviteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	if inv.Kind != kind {
		return nil, ErrInviteNotFound
	}
	if inv.UserID != actorID {
		return nil, ErrNotRecipient
	}
	return inv, nil
}

// AcceptInvite consumes the invite and adds the actor to the team. The invite
// is consumed even when the team filled up or the actor joined another team
// in the meantime.
func (s *RosterService) AcceptInvite(ctx context.Context, inviteID, actorID, actorName string) (*TeamResult, error) {
	inv, err := s.findInvite(ctx, inviteID, actorID, models.InviteMember)
	if err != nil {
		return nil, err
	}

	var team *models.Team
	var superseded error
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.DeleteInvite(ctx, inviteID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		t, err := tx.LockTeam(ctx, inv.TeamID)
		if errors.Is(err, repository.ErrNotFound) {
			superseded = ErrTeamNotFound
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := resolveTeam(ctx, tx, inv.GuildID, actorID); err == nil {
			superseded = ErrAlreadyInTeam
			return nil
		} else if !errors.Is(err, ErrNotInTeam) {
			return err
		}
		if t.IsFull() {
			superseded = ErrTeamFull
			return nil
		}

		member := models.Member{UserID: actorID, DisplayName: actorName, JoinedAt: s.now()}
		if err := tx.AddMember(ctx, t.ID, t.GuildID, member); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyInTeam
			}
			return err
		}
		t.Members = append(t.Members, member)
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if superseded != nil {
		return nil, superseded
	}

	var w warnings
	if team.RoleID != "" {
		if err := s.platform.AddRole(ctx, team.GuildID, actorID, team.RoleID); err != nil {
			w.add("add_role", "Could not give you the team role.", err, "team", team.Name, "user_id", actorID)
		}
	}
	s.grantScrimChannels(ctx, team, actorID, &w)

	s.notifier.Notify(ctx, Notification{
		UserID:  inv.InvitedBy,
		Message: Message{Content: fmt.Sprintf("✅ %s has joined **%s**.", displayName(actorName, actorID), team.Name)},
	})
	return &TeamResult{Team: team, Warnings: w}, nil
}

// grantScrimChannels opens the team's live scrim channels to a new member.
func (s *RosterService) grantScrimChannels(ctx context.Context, team *models.Team, userID string, w *warnings) {
	scrims, err := s.store.FindScrims(ctx, repository.ScrimFilter{
		GuildID:  team.GuildID,
		TeamName: team.Name,
		Statuses: models.EngagedStatuses,
	})
	if err != nil {
		w.add("grant_channel", "Could not open your team's scrim channels to you.", err, "team", team.Name)
		return
	}
	for _, scrim := range scrims {
		if scrim.ChannelID == "" {
			continue
		}
		if err := s.platform.GrantChannelAccess(ctx, scrim.ChannelID, userID); err != nil {
			w.add("grant_channel", fmt.Sprintf("Could not open the channel for scrim %s to you.", scrim.ScrimID), err,
				"scrim_id", scrim.ScrimID, "user_id", userID)
		}
	}
}

func (s *RosterService) DeclineInvite(ctx context.Context, inviteID, actorID, actorName string) (string, error) {
	return s.decline(ctx, inviteID, actorID, actorName, models.InviteMember)
}

func (s *RosterService) DeclineTempSub(ctx context.Context, inviteID, actorID, actorName string) (string, error) {
	return s.decline(ctx, inviteID, actorID, actorName, models.InviteTempSub)
}

// decline withdraws the invite and returns the inviting team's name when it still exists.
func (s *RosterService) decline(ctx context.Context, inviteID, actorID, actorName string, kind models.InviteKind) (string, error) {
	inv, err := s.findInvite(ctx, inviteID, actorID, kind)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInviteNotFound
		}
		return "", err
	}

	var teamName string
	if team, err := s.store.FindTeamByID(ctx, inv.TeamID); err == nil {
		teamName = team.Name
	}

	what := "the invite to join"
	if kind == models.InviteTempSub {
		what = fmt.Sprintf("the temp sub request for scrim `%s` with", inv.ScrimID)
	}
	s.notifier.Notify(ctx, Notification{
		UserID:  inv.InvitedBy,
		Message: Message{Content: fmt.Sprintf("❌ %s declined %s **%s**.", displayName(actorName, actorID), what, teamName)},
	})
	return teamName, nil
}

func (s *RosterService) KickMember(ctx context.Context, guildID, leaderID, targetID string) (*TeamResult, error) {
	team, err := s.leaderTeam(ctx, guildID, leaderID)
	if err != nil {
		return nil, err
	}
	if targetID == leaderID {
		return nil, ErrSelfKick
	}
	if !team.HasMember(targetID) {
		return nil, ErrNotAMember
	}

	if err := s.store.RemoveMember(ctx, team.ID, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAMember
		}
		return nil, err
	}
	team.Members = removeMember(team.Members, targetID)

	var w warnings
	if team.RoleID != "" {
		if err := s.platform.RemoveRole(ctx, guildID, targetID, team.RoleID); err != nil {
			w.add("remove_role", "Could not remove the team role from that user.", err, "team", team.Name, "user_id", targetID)
		}
	}
	s.notifier.Notify(ctx, Notification{
		UserID:  targetID,
		Message: Message{Content: fmt.Sprintf("👢 You have been removed from **%s**.", team.Name)},
	})
	return &TeamResult{Team: team, Warnings: w}, nil
}

// LeaveTeam removes a member. A leader alone on the team dissolves it; a
// leader with members gets NeedsConfirmation and must call ConfirmDissolve.
func (s *RosterService) LeaveTeam(ctx context.Context, guildID, actorID, actorName string) (*LeaveResult, error) {
	team, err := s.resolver.ResolveTeam(ctx, guildID, actorID)
	if err != nil {
		return nil, err
	}

	if !team.IsLeader(actorID) {
		if err := s.store.RemoveMember(ctx, team.ID, actorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotInTeam
			}
			return nil, err
		}
		team.Members = removeMember(team.Members, actorID)

		var w warnings
		if team.RoleID != "" {
			if err := s.platform.RemoveRole(ctx, guildID, actorID, team.RoleID); err != nil {
				w.add("remove_role", "Could not remove the team role from you.", err, "team", team.Name, "user_id", actorID)
			}
		}
		s.notifier.Notify(ctx, Notification{
			UserID:  team.LeaderID,
			Message: Message{Content: fmt.Sprintf("👋 %s has left **%s**.", displayName(actorName, actorID), team.Name)},
		})
		return &LeaveResult{Team: team, Left: true, Warnings: w}, nil
	}

	if len(team.Members) > 0 {
		if err := s.checkNoLiveScrims(ctx, s.store, team); err != nil {
			return nil, err
		}
		return &LeaveResult{Team: team, NeedsConfirmation: true}, nil
	}
	return s.dissolve(ctx, team)
}

// TeamRef is the reference carried by dissolve confirmation buttons.
func TeamRef(team *models.Team) string {
	return strconv.FormatUint(uint64(team.ID), 10)
}

func (s *RosterService) ConfirmDissolve(ctx context.Context, actorID, teamRef string) (*LeaveResult, error) {
	team, err := s.teamForDissolve(ctx, actorID, teamRef)
	if err != nil {
		return nil, err
	}
	return s.dissolve(ctx, team)
}

func (s *RosterService) CancelDissolve(ctx context.Context, actorID, teamRef string) (*models.Team, error) {
	return s.teamForDissolve(ctx, actorID, teamRef)
}

func (s *RosterService) teamForDissolve(ctx context.Context, actorID, teamRef string) (*models.Team, error) {
	id, err := strconv.ParseUint(teamRef, 10, 64)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	team, err := s.store.FindTeamByID(ctx, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	if !team.IsLeader(actorID) {
		return nil, ErrNotLeader
	}
	return team, nil
}

func (s *RosterService) DisbandTeam(ctx context.Context, guildID, leaderID string) (*LeaveResult, error) {
	team, err := s.leaderTeam(ctx, guildID, leaderID)
	if err != nil {
		return nil, err
	}
	return s.dissolve(ctx, team)
}

func (s *RosterService) checkNoLiveScrims(ctx context.Context, store repository.Store, team *models.Team) error {
	n, err := store.CountScrims(ctx, repository.ScrimFilter{
		GuildID:  team.GuildID,
		TeamName: team.Name,
		Statuses: models.LiveStatuses,
	})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrOpenScrimsExist
	}
	return nil
}

func (s *RosterService) dissolve(ctx context.Context, team *models.Team) (*LeaveResult, error) {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.checkNoLiveScrims(ctx, tx, team); err != nil {
			return err
		}
		if err := tx.DeleteTeam(ctx, team.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var w warnings
	if team.RoleID != "" {
		for _, id := range team.RosterIDs() {
			if err := s.platform.RemoveRole(ctx, team.GuildID, id, team.RoleID); err != nil {
				logOnly("remove_role", err, "team", team.Name, "user_id", id)
			}
		}
		if err := s.platform.DeleteRole(ctx, team.GuildID, team.RoleID); err != nil {
			w.add("delete_role", "Could not delete the team role.", err, "team", team.Name)
		}
	}

	msg := Message{Content: fmt.Sprintf("📢 **%s** has been disbanded by its leader.", team.Name)}
	s.notifier.Notify(ctx, directTo(team.MemberIDs(), msg)...)
	return &LeaveResult{Team: team, Dissolved: true, Warnings: w}, nil
}

func (s *RosterService) InviteTempSub(ctx context.Context, guildID, leaderID, targetID, targetName, scrimID string) (*models.Invite, error) {
	if !validScrimID(scrimID) {
		return nil, ErrInvalidScrimID
	}
	team, err := s.leaderTeam(ctx, guildID, leaderID)
	if err != nil {
		return nil, err
	}
	if targetID == leaderID {
		return nil, ErrSelfInvite
	}
	if team.HasMember(targetID) {
		return nil, ErrAlreadyOnRoster
	}

	scrim, err := s.store.FindScrim(ctx, guildID, scrimID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrScrimNotFound
	}
	if err != nil {
		return nil, err
	}
	if !scrim.Involves(team.Name) {
		return nil, ErrNotParticipant
	}
	if !scrim.IsLive() {
		return nil, ErrScrimNotLive
	}

	subs := team.TempSubsFor(scrimID)
	for _, sub := range subs {
		if sub.UserID == targetID {
			return nil, ErrAlreadyTempSub
		}
	}
	if len(subs) >= models.MaxTempSubsPerScrim {
		return nil, ErrTooManyTempSubs
	}

	inv, err := s.addInvite(ctx, team, models.InviteTempSub, leaderID, targetID, targetName, scrimID)
	if err != nil {
		return nil, err
	}

	msg := Message{
		Content: fmt.Sprintf("🔁 **%s** asked you to temp sub for scrim `%s` on %s at %s.",
			team.Name, scrimID, scrim.Date, scrim.Time),
		Buttons: []Button{
			{Label: "Accept", Style: ButtonSuccess, Action: models.ActionRequest{Kind: models.ActionTempSubAccept, Ref: inv.InviteID}},
			{Label: "Decline", Style: ButtonDanger, Action: models.ActionRequest{Kind: models.ActionTempSubDecline, Ref: inv.InviteID}},
		},
	}
	if err := s.deliverInvite(ctx, inv, msg); err != nil {
		return nil, err
	}
	return inv, nil
}

// AcceptTempSub consumes the temp-sub invite and registers the actor for
// that one scrim, subject to the per-scrim cap at the time of acceptance.
func (s *RosterService) AcceptTempSub(ctx context.Context, inviteID, actorID, actorName string) (*TempSubResult, error) {
	inv, err := s.findInvite(ctx, inviteID, actorID, models.InviteTempSub)
	if err != nil {
		return nil, err
	}

	var team *models.Team
	var scrim *models.Scrim
	var superseded error
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.DeleteInvite(ctx, inviteID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		t, err := tx.LockTeam(ctx, inv.TeamID)
		if errors.Is(err, repository.ErrNotFound) {
			superseded = ErrTeamNotFound
			return nil
		}
		if err != nil {
			return err
		}

		sc, err := tx.FindScrim(ctx, inv.GuildID, inv.ScrimID)
		if errors.Is(err, repository.ErrNotFound) {
			superseded = ErrScrimNotFound
			return nil
		}
		if err != nil {
			return err
		}
		if !sc.IsLive() {
			superseded = ErrScrimNotLive
			return nil
		}

		n, err := tx.CountTempSubs(ctx, t.ID, inv.ScrimID)
		if err != nil {
			return err
		}
		if n >= models.MaxTempSubsPerScrim {
			superseded = ErrTooManyTempSubs
			return nil
		}

		sub := models.TempSub{UserID: actorID, DisplayName: actorName, ScrimID: inv.ScrimID, JoinedAt: s.now()}
		if err := tx.AddTempSub(ctx, t.ID, t.GuildID, sub); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyTempSub
			}
			return err
		}
		t.ActiveTempSubs = append(t.ActiveTempSubs, sub)
		team, scrim = t, sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	if superseded != nil {
		return nil, superseded
	}

	var w warnings
	if scrim.ChannelID != "" {
		if err := s.platform.GrantChannelAccess(ctx, scrim.ChannelID, actorID); err != nil {
			w.add("grant_channel", "Could not open the scrim channel to you.", err, "scrim_id", scrim.ScrimID, "user_id", actorID)
		}
	}
	s.notifier.Notify(ctx, Notification{
		UserID: inv.InvitedBy,
		Message: Message{Content: fmt.Sprintf("✅ %s will temp sub for **%s** in scrim `%s`.",
			displayName(actorName, actorID), team.Name, scrim.ScrimID)},
	})
	return &TempSubResult{Team: team, Scrim: scrim, Warnings: w}, nil
}

// TeamInfo shows the actor's team when name is empty, otherwise the named team.
func (s *RosterService) TeamInfo(ctx context.Context, guildID, actorID, name string) (*TeamView, error) {
	var team *models.Team
	var err error
	if strings.TrimSpace(name) == "" {
		team, err = s.resolver.ResolveTeam(ctx, guildID, actorID)
	} else {
		team, err = s.resolver.TeamByName(ctx, guildID, name)
	}
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.Stats(ctx, guildID, team.Name)
	if err != nil {
		return nil, err
	}
	return &TeamView{Team: team, Stats: stats}, nil
}

// VerifyTeam gives the guild's verified role to the leader and every member of the named team.
func (s *RosterService) VerifyTeam(ctx context.Context, guildID string, isAdmin bool, name string) (*TeamResult, error) {
	if !isAdmin {
		return nil, ErrAdminRequired
	}
	settings, err := s.settings.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if settings.VerifiedRoleID == "" {
		return nil, ErrNoVerifiedRole
	}

	team, err := s.resolver.TeamByName(ctx, guildID, name)
	if err != nil {
		return nil, err
	}

	var w warnings
	for _, id := range team.RosterIDs() {
		if err := s.platform.AddRole(ctx, guildID, id, settings.VerifiedRoleID); err != nil {
			w.add("add_role", fmt.Sprintf("Could not verify <@%s>.", id), err, "team", team.Name, "user_id", id)
		}
	}
	return &TeamResult{Team: team, Warnings: w}, nil
}

func removeMember(members []models.Member, userID string) []models.Member {
	out := members[:0:0]
	for _, m := range members {
		if m.UserID != userID {
			out = append(out, m)
		}
	}
	return out
}

func displayName(name, userID string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("<@%s>", userID)
}
