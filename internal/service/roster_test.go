package service

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

func TestCreateTeam(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.Roster.CreateTeam(h.ctx, testGuild, "a1", "  Alpha  ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", res.Team.Name)
	assert.True(t, h.platform.hasRole("a1", res.Team.RoleID))

	_, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "a1", "Other")
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	_, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "b1", "Alpha")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "b1", "   ")
	assert.ErrorIs(t, err, ErrInvalidTeamName)

	_, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "b1", strings.Repeat("b", models.MaxTeamNameLength+1))
	assert.ErrorIs(t, err, ErrInvalidTeamName)

	res, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "b1", strings.Repeat("é", models.MaxTeamNameLength))
	require.NoError(t, err)
	assert.Equal(t, models.MaxTeamNameLength, utf8.RuneCountInString(res.Team.Name))
}

func TestCreateTeamRoleFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.platform.failCreateRole = true

	_, err := h.svc.Roster.CreateTeam(h.ctx, testGuild, "a1", "Alpha")
	assert.ErrorIs(t, err, ErrRoleCreation)
	assert.Equal(t, KindExternalSideEffect, KindOf(err))

	_, err = h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a1")
	assert.ErrorIs(t, err, ErrNotInTeam)
}

func TestMembershipIsExclusive(t *testing.T) {
	h := newHarness(t)
	alpha := h.team(t, "Alpha", "a1")
	h.team(t, "Bravo", "b1")

	invA, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "u1", "u1")
	require.NoError(t, err)
	invB, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "b1", "u1", "u1")
	require.NoError(t, err)

	_, err = h.svc.Roster.AcceptInvite(h.ctx, invA.InviteID, "u1", "u1")
	require.NoError(t, err)

	_, err = h.svc.Roster.AcceptInvite(h.ctx, invB.InviteID, "u1", "u1")
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	_, err = h.store.FindInvite(h.ctx, invB.InviteID)
	assert.Error(t, err, "a superseded invite is consumed")

	_, err = h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "b1", "b1")
	assert.ErrorIs(t, err, ErrTargetAlreadyTeamed)

	_, err = h.svc.Roster.CreateTeam(h.ctx, testGuild, "u1", "Charlie")
	assert.ErrorIs(t, err, ErrAlreadyInTeam)

	for _, user := range []string{"a1", "b1", "u1"} {
		teams, err := h.store.FindTeamsByMember(h.ctx, testGuild, user)
		require.NoError(t, err)
		assert.Len(t, teams, 1, user)
	}

	team, err := h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "u1")
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, team.ID)
}

func TestInviteRules(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1", "a2")

	_, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "a1", "")
	assert.ErrorIs(t, err, ErrSelfInvite)

	_, err = h.svc.Roster.InviteMember(h.ctx, testGuild, "a2", "x", "")
	assert.ErrorIs(t, err, ErrNotLeader)

	_, err = h.svc.Roster.InviteMember(h.ctx, testGuild, "nobody", "x", "")
	assert.ErrorIs(t, err, ErrNotLeader)

	inv, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "x", "x")
	require.NoError(t, err)

	_, err = h.svc.Roster.AcceptInvite(h.ctx, inv.InviteID, "y", "y")
	assert.ErrorIs(t, err, ErrNotRecipient)

	_, err = h.svc.Roster.AcceptTempSub(h.ctx, inv.InviteID, "x", "x")
	assert.ErrorIs(t, err, ErrInviteNotFound, "a member invite cannot be used as a temp-sub invite")

	res, err := h.svc.Roster.AcceptInvite(h.ctx, inv.InviteID, "x", "x")
	require.NoError(t, err)
	assert.True(t, res.Team.HasMember("x"))
	assert.True(t, h.platform.hasRole("x", res.Team.RoleID))
	assert.NotEmpty(t, h.notifier.directTo("a1"))

	_, err = h.svc.Roster.AcceptInvite(h.ctx, inv.InviteID, "x", "x")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteUndeliverableIsWithdrawn(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1")
	h.platform.failDM["x"] = true

	_, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "x", "x")
	assert.ErrorIs(t, err, ErrInviteUndeliverable)

	team, err := h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a1")
	require.NoError(t, err)
	assert.Empty(t, team.PendingInvites)
}

func TestTeamCapacity(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1", "m1", "m2", "m3", "m4", "m5")

	late, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "m6", "m6")
	require.NoError(t, err)
	extra, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "m7", "m7")
	require.NoError(t, err)

	_, err = h.svc.Roster.AcceptInvite(h.ctx, late.InviteID, "m6", "m6")
	require.NoError(t, err)

	_, err = h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "m8", "m8")
	assert.ErrorIs(t, err, ErrTeamFull)
	assert.Equal(t, KindCapacity, KindOf(err))

	_, err = h.svc.Roster.AcceptInvite(h.ctx, extra.InviteID, "m7", "m7")
	assert.ErrorIs(t, err, ErrTeamFull)

	team, err := h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a1")
	require.NoError(t, err)
	assert.Len(t, team.Members, models.MaxTeamMembers)
	assert.Empty(t, team.PendingInvites)
}

func TestDeclineInvite(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1")

	inv, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", "x", "x")
	require.NoError(t, err)

	name, err := h.svc.Roster.DeclineInvite(h.ctx, inv.InviteID, "x", "x")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)

	_, err = h.svc.Roster.DeclineInvite(h.ctx, inv.InviteID, "x", "x")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestKickMember(t *testing.T) {
	h := newHarness(t)
	team := h.team(t, "Alpha", "a1", "a2")

	_, err := h.svc.Roster.KickMember(h.ctx, testGuild, "a1", "a1")
	assert.ErrorIs(t, err, ErrSelfKick)

	_, err = h.svc.Roster.KickMember(h.ctx, testGuild, "a1", "stranger")
	assert.ErrorIs(t, err, ErrNotAMember)

	_, err = h.svc.Roster.KickMember(h.ctx, testGuild, "a2", "a1")
	assert.ErrorIs(t, err, ErrNotLeader)

	res, err := h.svc.Roster.KickMember(h.ctx, testGuild, "a1", "a2")
	require.NoError(t, err)
	assert.False(t, res.Team.HasMember("a2"))
	assert.False(t, h.platform.hasRole("a2", team.RoleID))
	assert.NotEmpty(t, h.notifier.directTo("a2"))

	_, err = h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a2")
	assert.ErrorIs(t, err, ErrNotInTeam)
}

func TestLeaveTeam(t *testing.T) {
	h := newHarness(t)
	team := h.team(t, "Alpha", "a1", "a2")

	res, err := h.svc.Roster.LeaveTeam(h.ctx, testGuild, "a2", "a2")
	require.NoError(t, err)
	assert.True(t, res.Left)
	assert.False(t, h.platform.hasRole("a2", team.RoleID))

	res, err = h.svc.Roster.LeaveTeam(h.ctx, testGuild, "a1", "a1")
	require.NoError(t, err)
	assert.True(t, res.Dissolved)

	_, err = h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a1")
	assert.ErrorIs(t, err, ErrNotInTeam)

	_, err = h.svc.Roster.LeaveTeam(h.ctx, testGuild, "a1", "a1")
	assert.ErrorIs(t, err, ErrNotInTeam)
}

func TestLeaderLeaveNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	team := h.team(t, "Alpha", "a1", "a2")
	ref := TeamRef(team)

	res, err := h.svc.Roster.LeaveTeam(h.ctx, testGuild, "a1", "a1")
	require.NoError(t, err)
	assert.True(t, res.NeedsConfirmation)
	assert.False(t, res.Dissolved)

	_, err = h.svc.Roster.ConfirmDissolve(h.ctx, "a2", ref)
	assert.ErrorIs(t, err, ErrNotLeader)

	_, err = h.svc.Roster.CancelDissolve(h.ctx, "a1", ref)
	require.NoError(t, err)

	res, err = h.svc.Roster.ConfirmDissolve(h.ctx, "a1", ref)
	require.NoError(t, err)
	assert.True(t, res.Dissolved)
	assert.NotEmpty(t, h.notifier.directTo("a2"))

	_, err = h.svc.Roster.ConfirmDissolve(h.ctx, "a1", ref)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestDisbandBlockedByLiveScrims(t *testing.T) {
	h := newHarness(t)
	team := h.team(t, "Alpha", "a1", "a2")
	scrim := h.openScrim(t, "a1")

	_, err := h.svc.Roster.DisbandTeam(h.ctx, testGuild, "a1")
	assert.ErrorIs(t, err, ErrOpenScrimsExist)

	_, err = h.svc.Roster.LeaveTeam(h.ctx, testGuild, "a1", "a1")
	assert.ErrorIs(t, err, ErrOpenScrimsExist)

	_, err = h.svc.Scrims.CancelScrim(h.ctx, CancelInput{GuildID: testGuild, ActorID: "a1", ScrimID: scrim.ScrimID})
	require.NoError(t, err)

	res, err := h.svc.Roster.DisbandTeam(h.ctx, testGuild, "a1")
	require.NoError(t, err)
	assert.True(t, res.Dissolved)
	assert.False(t, h.platform.hasRole("a2", team.RoleID))

	h.platform.mu.Lock()
	_, roleExists := h.platform.roles[team.RoleID]
	h.platform.mu.Unlock()
	assert.False(t, roleExists)

	_, err = h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a2")
	assert.ErrorIs(t, err, ErrNotInTeam)
}

func TestTempSubs(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)

	_, err := h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "a2", "", scrim.ScrimID)
	assert.ErrorIs(t, err, ErrAlreadyOnRoster)

	_, err = h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s1", "", "999999")
	assert.ErrorIs(t, err, ErrScrimNotFound)

	_, err = h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s1", "", "12")
	assert.ErrorIs(t, err, ErrInvalidScrimID)

	var invites []*models.Invite
	for _, user := range []string{"s1", "s2", "s3", "s4"} {
		inv, err := h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", user, user, scrim.ScrimID)
		require.NoError(t, err)
		invites = append(invites, inv)
	}

	for i, user := range []string{"s1", "s2", "s3"} {
		res, err := h.svc.Roster.AcceptTempSub(h.ctx, invites[i].InviteID, user, user)
		require.NoError(t, err)
		assert.Contains(t, h.platform.channels[scrim.ChannelID], user)
		assert.Len(t, res.Team.TempSubsFor(scrim.ScrimID), i+1)
	}

	_, err = h.svc.Roster.AcceptTempSub(h.ctx, invites[3].InviteID, "s4", "s4")
	assert.ErrorIs(t, err, ErrTooManyTempSubs)

	_, err = h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s5", "", scrim.ScrimID)
	assert.ErrorIs(t, err, ErrTooManyTempSubs)

	_, err = h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s1", "", scrim.ScrimID)
	assert.ErrorIs(t, err, ErrAlreadyTempSub)

	n, err := h.store.CountTempSubs(h.ctx, invites[0].TeamID, scrim.ScrimID)
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxTempSubsPerScrim, n)
}

func TestConcurrentTempSubAcceptsRespectCap(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)

	users := []string{"s1", "s2", "s3", "s4", "s5"}
	invites := make([]*models.Invite, len(users))
	for i, user := range users {
		inv, err := h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", user, user, scrim.ScrimID)
		require.NoError(t, err)
		invites[i] = inv
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, user := range users {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = h.svc.Roster.AcceptTempSub(h.ctx, invites[i].InviteID, user, user)
		}(i, user)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, ErrTooManyTempSubs)
	}
	assert.Equal(t, models.MaxTempSubsPerScrim, accepted)

	n, err := h.store.CountTempSubs(h.ctx, invites[0].TeamID, scrim.ScrimID)
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxTempSubsPerScrim, n)
}

func TestConcurrentInviteAcceptsRespectCapacity(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1", "m1", "m2", "m3", "m4")

	users := []string{"j1", "j2", "j3", "j4"}
	invites := make([]*models.Invite, len(users))
	for i, user := range users {
		inv, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "a1", user, user)
		require.NoError(t, err)
		invites[i] = inv
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, user := range users {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = h.svc.Roster.AcceptInvite(h.ctx, invites[i].InviteID, user, user)
		}(i, user)
	}
	wg.Wait()

	joined := 0
	for _, err := range errs {
		if err == nil {
			joined++
			continue
		}
		assert.ErrorIs(t, err, ErrTeamFull)
	}
	assert.Equal(t, 2, joined)

	team, err := h.svc.Resolver.ResolveTeam(h.ctx, testGuild, "a1")
	require.NoError(t, err)
	assert.Len(t, team.Members, models.MaxTeamMembers)
}

func TestTempSubForFinishedScrimIsRejected(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)

	inv, err := h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s1", "s1", scrim.ScrimID)
	require.NoError(t, err)

	_, err = h.svc.Scrims.CancelScrim(h.ctx, CancelInput{GuildID: testGuild, ActorID: "b1", ScrimID: scrim.ScrimID})
	require.NoError(t, err)

	_, err = h.svc.Roster.AcceptTempSub(h.ctx, inv.InviteID, "s1", "s1")
	assert.ErrorIs(t, err, ErrScrimNotLive)

	_, err = h.svc.Roster.InviteTempSub(h.ctx, testGuild, "a1", "s2", "s2", scrim.ScrimID)
	assert.ErrorIs(t, err, ErrScrimNotLive)
}

func TestAcceptInviteOpensLiveScrimChannels(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)

	inv, err := h.svc.Roster.InviteMember(h.ctx, testGuild, "b1", "b3", "b3")
	require.NoError(t, err)
	_, err = h.svc.Roster.AcceptInvite(h.ctx, inv.InviteID, "b3", "b3")
	require.NoError(t, err)

	assert.Contains(t, h.platform.channels[scrim.ChannelID], "b3")
}

func TestTeamInfoSuggestsName(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Phoenix Rising", "a1", "a2")

	view, err := h.svc.Roster.TeamInfo(h.ctx, testGuild, "a2", "")
	require.NoError(t, err)
	assert.Equal(t, "Phoenix Rising", view.Team.Name)

	view, err = h.svc.Roster.TeamInfo(h.ctx, testGuild, "x", "phoenix rising")
	require.NoError(t, err)
	assert.Equal(t, "Phoenix Rising", view.Team.Name)

	_, err = h.svc.Roster.TeamInfo(h.ctx, testGuild, "x", "Phoenix Risin")
	require.ErrorIs(t, err, ErrTeamNotFound)
	assert.Contains(t, err.Error(), `Did you mean "Phoenix Rising"?`)

	_, err = h.svc.Roster.TeamInfo(h.ctx, testGuild, "x", "zzz")
	require.ErrorIs(t, err, ErrTeamNotFound)
	assert.NotContains(t, err.Error(), "Did you mean")
}

func TestVerifyTeam(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1", "a2")

	_, err := h.svc.Roster.VerifyTeam(h.ctx, testGuild, false, "Alpha")
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = h.svc.Roster.VerifyTeam(h.ctx, testGuild, true, "Alpha")
	assert.ErrorIs(t, err, ErrNoVerifiedRole)

	require.NoError(t, h.svc.Settings.SetVerifiedRole(h.ctx, testGuild, true, "verified"))
	res, err := h.svc.Roster.VerifyTeam(h.ctx, testGuild, true, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, h.platform.hasRole("a1", "verified"))
	assert.True(t, h.platform.hasRole("a2", "verified"))
}
