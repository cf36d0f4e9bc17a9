package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record changed concurrently")
	ErrDuplicate = errors.New("record already exists")

	// ErrAlreadyMember is the ErrDuplicate reported when a user would end up
	// in a second team of the same guild.
	ErrAlreadyMember = fmt.Errorf("%w: user already belongs to a team in this guild", ErrDuplicate)
)

// Store is the persistence contract used by the services. Calls made on the
// Store handed to a Transaction callback run inside that transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	FindTeamsByMember(ctx context.Context, guildID, userID string) ([]models.Team, error)
	FindTeamByName(ctx context.Context, guildID, name string) (*models.Team, error)
	FindTeamByID(ctx context.Context, teamID uint) (*models.Team, error)
	// LockTeam is FindTeamByID that also holds the team row lock until the
	// surrounding transaction ends.
	LockTeam(ctx context.Context, teamID uint) (*models.Team, error)
	ListTeamNames(ctx context.Context, guildID string) ([]string, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, teamID uint) error
	AddMember(ctx context.Context, teamID uint, guildID string, member models.Member) error
	RemoveMember(ctx context.Context, teamID uint, userID string) error

	AddInvite(ctx context.Context, invite models.Invite) error
	FindInvite(ctx context.Context, inviteID string) (*models.Invite, error)
	DeleteInvite(ctx context.Context, inviteID string) error
	AddTempSub(ctx context.Context, teamID uint, guildID string, sub models.TempSub) error
	CountTempSubs(ctx context.Context, teamID uint, scrimID string) (int64, error)
	PurgeTempSubs(ctx context.Context, guildID, scrimID string) (int64, error)

	ScrimIDExists(ctx context.Context, scrimID string) (bool, error)
	CreateScrim(ctx context.Context, scrim *models.Scrim) error
	FindScrim(ctx context.Context, guildID, scrimID string) (*models.Scrim, error)
	FindScrims(ctx context.Context, filter ScrimFilter) ([]models.Scrim, error)
	CountScrims(ctx context.Context, filter ScrimFilter) (int64, error)
	TransitionScrim(ctx context.Context, guildID, scrimID string, guard Guard, to models.Phase, opponent *Opponent) error
	SetScrimRefs(ctx context.Context, guildID, scrimID string, refs ScrimRefs) error
	ClaimReminder(ctx context.Context, guildID, scrimID string) error
	DeleteScrims(ctx context.Context, filter ScrimFilter) (int64, error)

	IncrementStats(ctx context.Context, guildID, teamName string, delta StatsDelta) error
	FindStats(ctx context.Context, guildID, teamName string) (*models.TeamStats, error)
	ListStats(ctx context.Context, guildID string) ([]models.TeamStats, error)
	ResetStats(ctx context.Context, guildID string) error

	FindSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)
	PutSetting(ctx context.Context, guildID, key, value string) error
}

// Guard is the precondition of a scrim transition. The update only applies
// when the stored status is one of From and, if ProposalSeq is set, the
// stored proposal sequence equals it.
type Guard struct {
	From        []models.Status
	ProposalSeq int
}

// Opponent is recorded when a scrim is accepted.
type Opponent struct {
	TeamName string
	LeaderID string
	Members  []string
}

// ScrimRefs holds platform ids learned after the fact. Empty fields are left unchanged.
type ScrimRefs struct {
	MessageID     string
	PostChannelID string
	ChannelID     string
}

type ScrimFilter struct {
	GuildID      string
	ScrimIDs     []string
	Statuses     []models.Status
	TeamName     string
	ReminderSent *bool
	Date         string
	NewestFirst  bool
	Limit        int
}

type StatsDelta struct {
	Wins      int
	Losses    int
	Draws     int
	GamesWon  int
	GamesLost int
}

const (
	SettingScrimChannel = "scrim_channel"
	SettingVerifiedRole = "verified_role"
)
