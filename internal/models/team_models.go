package models

import "time"

const (
	MaxTeamMembers      = 6
	MaxTempSubsPerScrim = 3
	MaxTeamNameLength   = 50
)

type Team struct {
	ID             uint
	GuildID        string
	Name           string
	LeaderID       string
	RoleID         string
	CreatedAt      time.Time
	Members        []Member
	PendingInvites []Invite
	ActiveTempSubs []TempSub
}

// Member is a regular roster entry. The leader is never listed here.
type Member struct {
	UserID      string
	DisplayName string
	JoinedAt    time.Time
}

type InviteKind string

const (
	InviteMember  InviteKind = "member"
	InviteTempSub InviteKind = "temp_sub"
)

type Invite struct {
	InviteID    string
	Kind        InviteKind
	TeamID      uint
	GuildID     string
	UserID      string
	DisplayName string
	InvitedBy   string
	ScrimID     string
	InvitedAt   time.Time
}

type TempSub struct {
	UserID      string
	DisplayName string
	ScrimID     string
	JoinedAt    time.Time
}

func (t *Team) IsLeader(userID string) bool {
	return t.LeaderID == userID
}

func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Includes reports whether userID is the leader or a regular member.
func (t *Team) Includes(userID string) bool {
	return t.IsLeader(userID) || t.HasMember(userID)
}

func (t *Team) IsFull() bool {
	return len(t.Members) >= MaxTeamMembers
}

// RosterIDs returns the leader followed by every regular member.
func (t *Team) RosterIDs() []string {
	ids := make([]string, 0, len(t.Members)+1)
	ids = append(ids, t.LeaderID)
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (t *Team) TempSubsFor(scrimID string) []TempSub {
	var subs []TempSub
	for _, s := range t.ActiveTempSubs {
		if s.ScrimID == scrimID {
			subs = append(subs, s)
		}
	}
	return subs
}

type TeamStats struct {
	TeamName    string
	GuildID     string
	TotalScrims int
	Wins        int
	Losses      int
	Draws       int
	GamesWon    int
	GamesLost   int
	LastUpdated time.Time
}

func (s TeamStats) GamesPlayed() int {
	return s.GamesWon + s.GamesLost
}

func (s TeamStats) ScrimWinRate() float64 {
	played := s.Wins + s.Losses + s.Draws
	if played == 0 {
		return 0
	}
	return float64(s.Wins) / float64(played) * 100
}

func (s TeamStats) GameWinRate() float64 {
	if s.GamesPlayed() == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed()) * 100
}

type GuildSettings struct {
	GuildID        string
	ScrimChannelID string
	VerifiedRoleID string
	LastUpdated    time.Time
}
