package service

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

func mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func mentions(userIDs []string) string {
	if len(userIDs) == 0 {
		return "none"
	}
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = mention(id)
	}
	return strings.Join(parts, ", ")
}

func FormatChallenge(s *models.Scrim) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚔️ **Scrim Request** `%s`\n\n", s.ScrimID))
	sb.WriteString(fmt.Sprintf("**Team:** %s\n", s.TeamName))
	sb.WriteString(fmt.Sprintf("**Leader:** %s\n", mention(s.TeamLeader)))
	sb.WriteString(fmt.Sprintf("**Date:** %s\n", s.Date))
	sb.WriteString(fmt.Sprintf("**Time:** %s\n", s.Time))
	sb.WriteString(fmt.Sprintf("**Games:** %s\n", s.Games))
	if s.OtherInfo != "" {
		sb.WriteString(fmt.Sprintf("**Info:** %s\n", s.OtherInfo))
	}
	return sb.String()
}

func FormatAcceptedPost(s *models.Scrim) string {
	return FormatChallenge(s) + fmt.Sprintf("\n✅ Accepted by **%s**", s.OpposingTeamName)
}

func FormatWelcome(s *models.Scrim) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👋 Welcome to scrim `%s`: **%s** vs **%s**\n\n", s.ScrimID, s.TeamName, s.OpposingTeamName))
	sb.WriteString(fmt.Sprintf("📅 %s at %s, %s games\n", s.Date, s.Time, s.Games))
	if s.OtherInfo != "" {
		sb.WriteString(fmt.Sprintf("ℹ️ %s\n", s.OtherInfo))
	}
	sb.WriteString(fmt.Sprintf("\n%s: %s\n", s.TeamName, mentions(append([]string{s.TeamLeader}, s.TeamMembers...))))
	sb.WriteString(fmt.Sprintf("%s: %s\n", s.OpposingTeamName, mentions(append([]string{s.OpposingTeamLeader}, s.OpposingTeamMembers...))))
	sb.WriteString(fmt.Sprintf("\nWhen you are done, report the score with `/scrim_finish scrim_id:%s`.", s.ScrimID))
	return sb.String()
}

func FormatCancelled(s *models.Scrim, actorID string) string {
	vs := s.TeamName
	if s.HasOpponent() {
		vs = fmt.Sprintf("%s vs %s", s.TeamName, s.OpposingTeamName)
	}
	return fmt.Sprintf("❌ Scrim `%s` (%s, %s at %s) was cancelled by %s.", s.ScrimID, vs, s.Date, s.Time, mention(actorID))
}

func scoreLine(s *models.Scrim, team1Wins, team2Wins int) string {
	if team1Wins == 0 && team2Wins == 0 {
		return "No scores recorded"
	}
	switch models.OutcomeOf(team1Wins, team2Wins) {
	case models.Team1Win:
		return fmt.Sprintf("**%s** won %d-%d", s.TeamName, team1Wins, team2Wins)
	case models.Team2Win:
		return fmt.Sprintf("**%s** won %d-%d", s.OpposingTeamName, team2Wins, team1Wins)
	}
	return fmt.Sprintf("Draw %d-%d", team1Wins, team2Wins)
}

func FormatProposal(s *models.Scrim, p models.Proposal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 **Result submitted** for scrim `%s`\n\n", s.ScrimID))
	sb.WriteString(fmt.Sprintf("%s %d - %d %s\n", s.TeamName, p.Team1Wins, p.Team2Wins, s.OpposingTeamName))
	sb.WriteString(scoreLine(s, p.Team1Wins, p.Team2Wins) + "\n\n")
	sb.WriteString(fmt.Sprintf("Submitted by %s. A member of the other team must confirm.", mention(p.InitiatingUserID)))
	return sb.String()
}

func FormatResultLine(s *models.Scrim, r models.Result) string {
	return fmt.Sprintf("🏁 Scrim %s finished: %s %d - %d %s", s.ScrimID, s.TeamName, r.Team1Wins, r.Team2Wins, s.OpposingTeamName)
}

func FormatFinished(s *models.Scrim, r models.Result, channelClosing bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 **Scrim `%s` finished**\n\n", s.ScrimID))
	sb.WriteString(fmt.Sprintf("%s %d - %d %s\n", s.TeamName, r.Team1Wins, r.Team2Wins, s.OpposingTeamName))
	sb.WriteString(scoreLine(s, r.Team1Wins, r.Team2Wins) + "\n")
	if channelClosing {
		sb.WriteString("\nThis channel will be deleted shortly.")
	}
	return sb.String()
}

func FormatScrimStatus(s *models.Scrim) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 **Scrim `%s`**\n\n", s.ScrimID))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", s.Status()))
	sb.WriteString(fmt.Sprintf("**Team:** %s\n", s.TeamName))
	if s.HasOpponent() {
		sb.WriteString(fmt.Sprintf("**Opponent:** %s\n", s.OpposingTeamName))
	}
	sb.WriteString(fmt.Sprintf("**When:** %s at %s\n", s.Date, s.Time))
	sb.WriteString(fmt.Sprintf("**Games:** %s\n", s.Games))

	switch ph := s.Phase.(type) {
	case models.ResultProposed:
		sb.WriteString(fmt.Sprintf("**Pending result:** %s %d - %d %s (submitted by %s)\n",
			s.TeamName, ph.Proposal.Team1Wins, ph.Proposal.Team2Wins, s.OpposingTeamName, ph.Proposal.InitiatingTeam))
	case models.Finished:
		sb.WriteString(fmt.Sprintf("**Result:** %s\n", scoreLine(s, ph.Result.Team1Wins, ph.Result.Team2Wins)))
	}
	return sb.String()
}

func FormatScrimList(title string, scrims []models.Scrim) string {
	if len(scrims) == 0 {
		return title + "\n\nNo scrims found."
	}

	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for _, s := range scrims {
		sb.WriteString(fmt.Sprintf("`%s` **%s**", s.ScrimID, s.TeamName))
		if s.HasOpponent() {
			sb.WriteString(fmt.Sprintf(" vs **%s**", s.OpposingTeamName))
		}
		sb.WriteString(fmt.Sprintf(" | %s %s | %s games", s.Date, s.Time, s.Games))
		if s.Status() != models.StatusOpen {
			sb.WriteString(fmt.Sprintf(" | %s", s.Status()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func FormatTeamInfo(v *TeamView) string {
	t := v.Team
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛡️ **%s**\n\n", t.Name))
	sb.WriteString(fmt.Sprintf("**Leader:** %s\n", mention(t.LeaderID)))
	sb.WriteString(fmt.Sprintf("**Members (%d/%d):** %s\n", len(t.Members), models.MaxTeamMembers, mentions(t.MemberIDs())))
	if len(t.ActiveTempSubs) > 0 {
		sb.WriteString("**Temp subs:**\n")
		for _, sub := range t.ActiveTempSubs {
			sb.WriteString(fmt.Sprintf("   %s for scrim `%s`\n", mention(sub.UserID), sub.ScrimID))
		}
	}
	sb.WriteString(fmt.Sprintf("**Record:** %d-%d-%d\n", v.Stats.Wins, v.Stats.Losses, v.Stats.Draws))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n", t.CreatedAt.Format("2006-01-02")))
	return sb.String()
}

func FormatStats(st models.TeamStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **%s Statistics**\n\n", st.TeamName))
	sb.WriteString(fmt.Sprintf("**Scrims played:** %d\n", st.TotalScrims))
	sb.WriteString(fmt.Sprintf("**Record:** %d-%d-%d (%.1f%% won)\n", st.Wins, st.Losses, st.Draws, st.ScrimWinRate()))
	sb.WriteString(fmt.Sprintf("**Games:** %d won, %d lost (%.1f%% won)\n", st.GamesWon, st.GamesLost, st.GameWinRate()))
	return sb.String()
}

func FormatHistory(h *History) string {
	var sb strings.Builder
	sb.WriteString(FormatStats(h.Stats))
	if len(h.Recent) == 0 {
		return sb.String()
	}

	sb.WriteString("\n**Recent scrims:**\n")
	for i := range h.Recent {
		s := &h.Recent[i]
		fin, ok := s.Phase.(models.Finished)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("`%s` %s: %s %d - %d %s\n",
			s.ScrimID, s.Date, s.TeamName, fin.Result.Team1Wins, fin.Result.Team2Wins, s.OpposingTeamName))
	}
	return sb.String()
}

// MaxMessageLength is Discord's per-message character limit.
const MaxMessageLength = 2000

// FormatStandings lists teams in rank order and stops before the reply would
// exceed MaxMessageLength, noting how many teams were left out.
func FormatStandings(stats []models.TeamStats) string {
	const header = "🏆 **Standings**\n\n"
	if len(stats) == 0 {
		return header + "No scrims have been finished yet."
	}

	var sb strings.Builder
	sb.WriteString(header)
	for i, st := range stats {
		entry := fmt.Sprintf("%d. **%s**\n   Record: %d-%d-%d\n   Games: %d-%d\n\n",
			i+1, st.TeamName, st.Wins, st.Losses, st.Draws, st.GamesWon, st.GamesLost)
		var more string
		if rest := len(stats) - i - 1; rest > 0 {
			more = standingsOverflow(rest)
		}
		if sb.Len()+len(entry)+len(more) > MaxMessageLength {
			sb.WriteString(standingsOverflow(len(stats) - i))
			return sb.String()
		}
		sb.WriteString(entry)
	}
	return sb.String()
}

func standingsOverflow(n int) string {
	if n == 1 {
		return "…and 1 more team."
	}
	return fmt.Sprintf("…and %d more teams.", n)
}

func FormatReminder(s *models.Scrim) string {
	return fmt.Sprintf("⏰ Reminder: scrim `%s` **%s** vs **%s** starts in about an hour (%s at %s).",
		s.ScrimID, s.TeamName, s.OpposingTeamName, s.Date, s.Time)
}
