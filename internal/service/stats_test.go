package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
)

func TestDeltaFor(t *testing.T) {
	assert.Equal(t, repository.StatsDelta{Wins: 1, GamesWon: 3, GamesLost: 1}, deltaFor(3, 1))
	assert.Equal(t, repository.StatsDelta{Losses: 1, GamesWon: 1, GamesLost: 3}, deltaFor(1, 3))
	assert.Equal(t, repository.StatsDelta{Draws: 1, GamesWon: 2, GamesLost: 2}, deltaFor(2, 2))
	assert.Equal(t, repository.StatsDelta{Draws: 1}, deltaFor(0, 0))
}

func TestTeamStatisticsVisibility(t *testing.T) {
	h := newHarness(t)
	h.team(t, "Alpha", "a1", "a2")
	h.team(t, "Bravo", "b1")

	st, err := h.svc.Stats.TeamStatistics(h.ctx, testGuild, "a2", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", st.TeamName)

	_, err = h.svc.Stats.TeamStatistics(h.ctx, testGuild, "a2", "Alpha", false)
	require.NoError(t, err)

	_, err = h.svc.Stats.TeamStatistics(h.ctx, testGuild, "a2", "Bravo", false)
	assert.ErrorIs(t, err, ErrModeratorRequired)

	st, err = h.svc.Stats.TeamStatistics(h.ctx, testGuild, "mod", "bravo", true)
	require.NoError(t, err)
	assert.Equal(t, "Bravo", st.TeamName)
}

func TestStandingsAndHistory(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)

	_, err := h.svc.Scrims.SubmitResult(h.ctx, SubmitInput{GuildID: testGuild, ActorID: "b1", ScrimID: scrim.ScrimID, OwnWins: 2, OpponentWins: 0})
	require.NoError(t, err)
	_, err = h.svc.Scrims.ConfirmResult(h.ctx, testGuild, "a1", scrim.ScrimID, 0)
	require.NoError(t, err)

	standings, err := h.svc.Stats.Standings(h.ctx, testGuild)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "Bravo", standings[0].TeamName)
	assert.Contains(t, FormatStandings(standings), "1. **Bravo**")

	hist, err := h.svc.Stats.TeamHistory(h.ctx, testGuild, "a2", "")
	require.NoError(t, err)
	assert.Equal(t, 1, hist.Stats.Losses)
	require.Len(t, hist.Recent, 1)
	assert.Contains(t, FormatHistory(hist), scrim.ScrimID)
}

func TestFormatStandingsFitsOneMessage(t *testing.T) {
	stats := make([]models.TeamStats, 60)
	for i := range stats {
		stats[i] = models.TeamStats{TeamName: fmt.Sprintf("Team %s %02d", strings.Repeat("x", 30), i), Wins: 60 - i}
	}

	out := FormatStandings(stats)
	assert.LessOrEqual(t, len(out), MaxMessageLength)
	assert.Contains(t, out, "1. **Team")
	assert.Regexp(t, `…and \d+ more teams\.$`, out)
	assert.NotContains(t, out, "60. **Team")

	out = FormatStandings(stats[:3])
	assert.NotContains(t, out, "more team")
	assert.Contains(t, out, "3. **Team")
}
