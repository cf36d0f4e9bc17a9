package repository

import (
	"strings"
	"time"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

type teamRecord struct {
	ID        uint   `gorm:"primaryKey"`
	GuildID   string `gorm:"size:32;not null;uniqueIndex:idx_teams_guild_name"`
	Name      string `gorm:"size:64;not null;uniqueIndex:idx_teams_guild_name"`
	LeaderID  string `gorm:"size:32;not null;index"`
	RoleID    string `gorm:"size:32"`
	CreatedAt time.Time
	Members   []memberRecord  `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Invites   []inviteRecord  `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	TempSubs  []tempSubRecord `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

func (teamRecord) TableName() string { return "teams" }

// memberRecord is one user's place in a team. The leader has a row too, so
// idx_members_guild_user keeps every user in at most one team per guild.
type memberRecord struct {
	ID          uint   `gorm:"primaryKey"`
	TeamID      uint   `gorm:"not null;index"`
	GuildID     string `gorm:"size:32;not null;uniqueIndex:idx_members_guild_user"`
	UserID      string `gorm:"size:32;not null;uniqueIndex:idx_members_guild_user"`
	Leader      bool   `gorm:"not null;default:false"`
	DisplayName string `gorm:"size:100"`
	JoinedAt    time.Time
}

func (memberRecord) TableName() string { return "team_members" }

type inviteRecord struct {
	InviteID    string `gorm:"primaryKey;size:64"`
	TeamID      uint   `gorm:"not null;index"`
	Kind        string `gorm:"size:16;not null"`
	GuildID     string `gorm:"size:32;not null"`
	UserID      string `gorm:"size:32;not null;index"`
	DisplayName string `gorm:"size:100"`
	InvitedBy   string `gorm:"size:32"`
	ScrimID     string `gorm:"size:6"`
	InvitedAt   time.Time
}

func (inviteRecord) TableName() string { return "team_invites" }

type tempSubRecord struct {
	ID          uint   `gorm:"primaryKey"`
	TeamID      uint   `gorm:"not null;uniqueIndex:idx_temp_subs_team_scrim_user"`
	GuildID     string `gorm:"size:32;not null"`
	ScrimID     string `gorm:"size:6;not null;index;uniqueIndex:idx_temp_subs_team_scrim_user"`
	UserID      string `gorm:"size:32;not null;uniqueIndex:idx_temp_subs_team_scrim_user"`
	DisplayName string `gorm:"size:100"`
	JoinedAt    time.Time
}

func (tempSubRecord) TableName() string { return "temp_subs" }

type scrimRecord struct {
	ID                  uint   `gorm:"primaryKey"`
	ScrimID             string `gorm:"size:6;not null;uniqueIndex"`
	GuildID             string `gorm:"size:32;not null;index:idx_scrims_guild_status"`
	TeamName            string `gorm:"size:64;not null"`
	TeamLeader          string `gorm:"size:32;not null"`
	TeamMembers         string `gorm:"type:text"`
	OpposingTeamName    string `gorm:"size:64"`
	OpposingTeamLeader  string `gorm:"size:32"`
	OpposingTeamMembers string `gorm:"type:text"`
	Date                string `gorm:"size:10;not null"`
	Time                string `gorm:"size:16;not null"`
	TimeNormalized      string `gorm:"size:5;not null"`
	Games               string `gorm:"size:32"`
	OtherInfo           string `gorm:"type:text"`
	Status              string `gorm:"size:16;not null;index:idx_scrims_guild_status"`
	ProposalSeq         int    `gorm:"not null;default:0"`
	ProposedTeam1Wins   int
	ProposedTeam2Wins   int
	ProposedBy          string `gorm:"size:32"`
	ProposedByTeam      string `gorm:"size:64"`
	ProposedAt          *time.Time
	Team1Wins           int
	Team2Wins           int
	FinishedAt          *time.Time
	MessageID           string `gorm:"size:32"`
	PostChannelID       string `gorm:"size:32"`
	ChannelID           string `gorm:"size:32"`
	ReminderSent        bool   `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (scrimRecord) TableName() string { return "scrims" }

type statsRecord struct {
	ID          uint   `gorm:"primaryKey"`
	GuildID     string `gorm:"size:32;not null;uniqueIndex:idx_team_stats_guild_team"`
	TeamName    string `gorm:"size:64;not null;uniqueIndex:idx_team_stats_guild_team"`
	TotalScrims int    `gorm:"not null;default:0"`
	Wins        int    `gorm:"not null;default:0"`
	Losses      int    `gorm:"not null;default:0"`
	Draws       int    `gorm:"not null;default:0"`
	GamesWon    int    `gorm:"not null;default:0"`
	GamesLost   int    `gorm:"not null;default:0"`
	LastUpdated time.Time
}

func (statsRecord) TableName() string { return "team_stats" }

type settingRecord struct {
	GuildID   string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"primaryKey;size:32"`
	Value     string `gorm:"size:64"`
	UpdatedAt time.Time
}

func (settingRecord) TableName() string { return "guild_settings" }

func allRecords() []interface{} {
	return []interface{}{
		&teamRecord{},
		&memberRecord{},
		&inviteRecord{},
		&tempSubRecord{},
		&scrimRecord{},
		&statsRecord{},
		&settingRecord{},
	}
}

func (r *teamRecord) toModel() models.Team {
	team := models.Team{
		ID:        r.ID,
		GuildID:   r.GuildID,
		Name:      r.Name,
		LeaderID:  r.LeaderID,
		RoleID:    r.RoleID,
		CreatedAt: r.CreatedAt,
	}
	for _, m := range r.Members {
		team.Members = append(team.Members, models.Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		})
	}
	for i := range r.Invites {
		team.PendingInvites = append(team.PendingInvites, r.Invites[i].toModel())
	}
	for _, s := range r.TempSubs {
		team.ActiveTempSubs = append(team.ActiveTempSubs, models.TempSub{
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			ScrimID:     s.ScrimID,
			JoinedAt:    s.JoinedAt,
		})
	}
	return team
}

func (r *inviteRecord) toModel() models.Invite {
	return models.Invite{
		InviteID:    r.InviteID,
		Kind:        models.InviteKind(r.Kind),
		TeamID:      r.TeamID,
		GuildID:     r.GuildID,
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		InvitedBy:   r.InvitedBy,
		ScrimID:     r.ScrimID,
		InvitedAt:   r.InvitedAt,
	}
}

func newScrimRecord(s *models.Scrim) *scrimRecord {
	return &scrimRecord{
		ScrimID:             s.ScrimID,
		GuildID:             s.GuildID,
		TeamName:            s.TeamName,
		TeamLeader:          s.TeamLeader,
		TeamMembers:         joinIDs(s.TeamMembers),
		OpposingTeamName:    s.OpposingTeamName,
		OpposingTeamLeader:  s.OpposingTeamLeader,
		OpposingTeamMembers: joinIDs(s.OpposingTeamMembers),
		Date:                s.Date,
		Time:                s.Time,
		TimeNormalized:      s.TimeNormalized,
		Games:               s.Games,
		OtherInfo:           s.OtherInfo,
		Status:              string(s.Status()),
		MessageID:           s.MessageID,
		PostChannelID:       s.PostChannelID,
		ChannelID:           s.ChannelID,
		ReminderSent:        s.ReminderSent,
	}
}

func (r *scrimRecord) toModel() models.Scrim {
	s := models.Scrim{
		ScrimID:             r.ScrimID,
		GuildID:             r.GuildID,
		TeamName:            r.TeamName,
		TeamLeader:          r.TeamLeader,
		TeamMembers:         splitIDs(r.TeamMembers),
		OpposingTeamName:    r.OpposingTeamName,
		OpposingTeamLeader:  r.OpposingTeamLeader,
		OpposingTeamMembers: splitIDs(r.OpposingTeamMembers),
		Date:                r.Date,
		Time:                r.Time,
		TimeNormalized:      r.TimeNormalized,
		Games:               r.Games,
		OtherInfo:           r.OtherInfo,
		ProposalSeq:         r.ProposalSeq,
		MessageID:           r.MessageID,
		PostChannelID:       r.PostChannelID,
		ChannelID:           r.ChannelID,
		ReminderSent:        r.ReminderSent,
		CreatedAt:           r.CreatedAt,
	}

	switch models.Status(r.Status) {
	case models.StatusAccepted:
		s.Phase = models.Accepted{}
	case models.StatusResultProposed:
		p := models.Proposal{
			Seq:              r.ProposalSeq,
			Team1Wins:        r.ProposedTeam1Wins,
			Team2Wins:        r.ProposedTeam2Wins,
			InitiatingUserID: r.ProposedBy,
			InitiatingTeam:   r.ProposedByTeam,
		}
		if r.ProposedAt != nil {
			p.ProposedAt = *r.ProposedAt
		}
		s.Phase = models.ResultProposed{Proposal: p}
	case models.StatusFinished:
		res := models.Result{Team1Wins: r.Team1Wins, Team2Wins: r.Team2Wins}
		if r.FinishedAt != nil {
			res.FinishedAt = *r.FinishedAt
		}
		s.Phase = models.Finished{Result: res}
	case models.StatusCancelled:
		s.Phase = models.Cancelled{}
	default:
		s.Phase = models.Open{}
	}
	return s
}

// phaseColumns returns the column writes that move a scrim row into phase p.
func phaseColumns(p models.Phase, now time.Time) map[string]interface{} {
	cols := map[string]interface{}{
		"status":              string(p.Status()),
		"proposed_team1_wins": 0,
		"proposed_team2_wins": 0,
		"proposed_by":         "",
		"proposed_by_team":    "",
		"proposed_at":         nil,
		"updated_at":          now,
	}

	switch ph := p.(type) {
	case models.ResultProposed:
		cols["proposal_seq"] = ph.Proposal.Seq
		cols["proposed_team1_wins"] = ph.Proposal.Team1Wins
		cols["proposed_team2_wins"] = ph.Proposal.Team2Wins
		cols["proposed_by"] = ph.Proposal.InitiatingUserID
		cols["proposed_by_team"] = ph.Proposal.InitiatingTeam
		proposedAt := ph.Proposal.ProposedAt
		if proposedAt.IsZero() {
			proposedAt = now
		}
		cols["proposed_at"] = proposedAt
	case models.Finished:
		cols["team1_wins"] = ph.Result.Team1Wins
		cols["team2_wins"] = ph.Result.Team2Wins
		finishedAt := ph.Result.FinishedAt
		if finishedAt.IsZero() {
			finishedAt = now
		}
		cols["finished_at"] = finishedAt
	}
	return cols
}

func (r *statsRecord) toModel() models.TeamStats {
	return models.TeamStats{
		TeamName:    r.TeamName,
		GuildID:     r.GuildID,
		TotalScrims: r.TotalScrims,
		Wins:        r.Wins,
		Losses:      r.Losses,
		Draws:       r.Draws,
		GamesWon:    r.GamesWon,
		GamesLost:   r.GamesLost,
		LastUpdated: r.LastUpdated,
	}
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
