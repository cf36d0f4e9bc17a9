package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

func (s *GormStore) preloadTeam(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Where("leader = ?", false).Order("joined_at, id") }).
		Preload("Invites", func(db *gorm.DB) *gorm.DB { return db.Order("invited_at") }).
		Preload("TempSubs", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at, id") })
}

// FindTeamsByMember returns every team in the guild where userID is the leader
// or a member. More than one result means the membership invariant is broken.
func (s *GormStore) FindTeamsByMember(ctx context.Context, guildID, userID string) ([]models.Team, error) {
	db := s.conn(ctx)
	memberTeams := db.Model(&memberRecord{}).
		Select("team_id").
		Where("guild_id = ? AND user_id = ?", guildID, userID)

	var recs []teamRecord
	err := s.preloadTeam(db).
		Where("guild_id = ?", guildID).
		Where("leader_id = ? OR id IN (?)", userID, memberTeams).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("error finding teams for user %s: %w", userID, err)
	}

	teams := make([]models.Team, 0, len(recs))
	for i := range recs {
		teams = append(teams, recs[i].toModel())
	}
	return teams, nil
}

func (s *GormStore) FindTeamByName(ctx context.Context, guildID, name string) (*models.Team, error) {
	var rec teamRecord
	err := s.preloadTeam(s.conn(ctx)).
		Where("guild_id = ? AND name = ?", guildID, name).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	team := rec.toModel()
	return &team, nil
}

func (s *GormStore) FindTeamByID(ctx context.Context, teamID uint) (*models.Team, error) {
	var rec teamRecord
	if err := s.preloadTeam(s.conn(ctx)).First(&rec, teamID).Error; err != nil {
		return nil, translate(err)
	}
	team := rec.toModel()
	return &team, nil
}

func (s *GormStore) LockTeam(ctx context.Context, teamID uint) (*models.Team, error) {
	var rec teamRecord
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&rec, teamID).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.FindTeamByID(ctx, teamID)
}

func (s *GormStore) ListTeamNames(ctx context.Context, guildID string) ([]string, error) {
	var names []string
	err := s.conn(ctx).Model(&teamRecord{}).
		Where("guild_id = ?", guildID).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("error listing team names: %w", err)
	}
	return names, nil
}

// CreateTeam inserts the team together with the leader's membership row.
// A leader who already belongs to a team in the guild gets ErrAlreadyMember.
func (s *GormStore) CreateTeam(ctx context.Context, team *models.Team) error {
	rec := teamRecord{
		GuildID:   team.GuildID,
		Name:      team.Name,
		LeaderID:  team.LeaderID,
		RoleID:    team.RoleID,
		CreatedAt: team.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return translate(err)
		}
		leader := memberRecord{
			TeamID:   rec.ID,
			GuildID:  rec.GuildID,
			UserID:   rec.LeaderID,
			Leader:   true,
			JoinedAt: rec.CreatedAt,
		}
		return membershipError(tx.Create(&leader).Error)
	})
	if err != nil {
		return err
	}
	team.ID = rec.ID
	team.CreatedAt = rec.CreatedAt
	return nil
}

func membershipError(err error) error {
	err = translate(err)
	if errors.Is(err, ErrDuplicate) {
		return ErrAlreadyMember
	}
	return err
}

// DeleteTeam removes the team with its members, invites and temp subs.
func (s *GormStore) DeleteTeam(ctx context.Context, teamID uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&memberRecord{}, &inviteRecord{}, &tempSubRecord{}} {
			if err := tx.Where("team_id = ?", teamID).Delete(child).Error; err != nil {
				return fmt.Errorf("error deleting team %d children: %w", teamID, err)
			}
		}
		res := tx.Delete(&teamRecord{}, teamID)
		if res.Error != nil {
			return fmt.Errorf("error deleting team %d: %w", teamID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) AddMember(ctx context.Context, teamID uint, guildID string, member models.Member) error {
	rec := memberRecord{
		TeamID:      teamID,
		GuildID:     guildID,
		UserID:      member.UserID,
		DisplayName: member.DisplayName,
		JoinedAt:    member.JoinedAt,
	}
	if rec.JoinedAt.IsZero() {
		rec.JoinedAt = time.Now()
	}
	return membershipError(s.conn(ctx).Create(&rec).Error)
}

func (s *GormStore) RemoveMember(ctx context.Context, teamID uint, userID string) error {
	res := s.conn(ctx).
		Where("team_id = ? AND user_id = ? AND leader = ?", teamID, userID, false).
		Delete(&memberRecord{})
	if res.Error != nil {
		return fmt.Errorf("error removing member %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) AddInvite(ctx context.Context, invite models.Invite) error {
	rec := inviteRecord{
		InviteID:    invite.InviteID,
		TeamID:      invite.TeamID,
		Kind:        string(invite.Kind),
		GuildID:     invite.GuildID,
		UserID:      invite.UserID,
		DisplayName: invite.DisplayName,
		InvitedBy:   invite.InvitedBy,
		ScrimID:     invite.ScrimID,
		InvitedAt:   invite.InvitedAt,
	}
	if rec.InvitedAt.IsZero() {
		rec.InvitedAt = time.Now()
	}
	return translate(s.conn(ctx).Create(&rec).Error)
}

func (s *GormStore) FindInvite(ctx context.Context, inviteID string) (*models.Invite, error) {
	var rec inviteRecord
	if err := s.conn(ctx).Where("invite_id = ?", inviteID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	inv := rec.toModel()
	return &inv, nil
}

// DeleteInvite returns ErrNotFound when the invite was already consumed.
func (s *GormStore) DeleteInvite(ctx context.Context, inviteID string) error {
	res := s.conn(ctx).Where("invite_id = ?", inviteID).Delete(&inviteRecord{})
	if res.Error != nil {
		return fmt.Errorf("error deleting invite %s: %w", inviteID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) AddTempSub(ctx context.Context, teamID uint, guildID string, sub models.TempSub) error {
	rec := tempSubRecord{
		TeamID:      teamID,
		GuildID:     guildID,
		ScrimID:     sub.ScrimID,
		UserID:      sub.UserID,
		DisplayName: sub.DisplayName,
		JoinedAt:    sub.JoinedAt,
	}
	if rec.JoinedAt.IsZero() {
		rec.JoinedAt = time.Now()
	}
	return translate(s.conn(ctx).Create(&rec).Error)
}

func (s *GormStore) CountTempSubs(ctx context.Context, teamID uint, scrimID string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&tempSubRecord{}).
		Where("team_id = ? AND scrim_id = ?", teamID, scrimID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("error counting temp subs: %w", err)
	}
	return n, nil
}

func (s *GormStore) PurgeTempSubs(ctx context.Context, guildID, scrimID string) (int64, error) {
	res := s.conn(ctx).
		Where("guild_id = ? AND scrim_id = ?", guildID, scrimID).
		Delete(&tempSubRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("error purging temp subs for scrim %s: %w", scrimID, res.Error)
	}
	return res.RowsAffected, nil
}
