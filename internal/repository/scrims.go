package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

func (s *GormStore) ScrimIDExists(ctx context.Context, scrimID string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&scrimRecord{}).Where("scrim_id = ?", scrimID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("error checking scrim id %s: %w", scrimID, err)
	}
	return n > 0, nil
}

// CreateScrim returns ErrDuplicate when the scrim id is already taken.
func (s *GormStore) CreateScrim(ctx context.Context, scrim *models.Scrim) error {
	rec := newScrimRecord(scrim)
	if err := s.conn(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}
	scrim.CreatedAt = rec.CreatedAt
	return nil
}

func (s *GormStore) FindScrim(ctx context.Context, guildID, scrimID string) (*models.Scrim, error) {
	var rec scrimRecord
	err := s.conn(ctx).
		Where("guild_id = ? AND scrim_id = ?", guildID, scrimID).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	scrim := rec.toModel()
	return &scrim, nil
}

func (s *GormStore) applyFilter(db *gorm.DB, f ScrimFilter) *gorm.DB {
	if f.GuildID != "" {
		db = db.Where("guild_id = ?", f.GuildID)
	}
	if len(f.ScrimIDs) > 0 {
		db = db.Where("scrim_id IN ?", f.ScrimIDs)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", statusStrings(f.Statuses))
	}
	if f.TeamName != "" {
		db = db.Where("team_name = ? OR opposing_team_name = ?", f.TeamName, f.TeamName)
	}
	if f.ReminderSent != nil {
		db = db.Where("reminder_sent = ?", *f.ReminderSent)
	}
	if f.Date != "" {
		db = db.Where("date = ?", f.Date)
	}
	return db
}

func (s *GormStore) FindScrims(ctx context.Context, filter ScrimFilter) ([]models.Scrim, error) {
	db := s.applyFilter(s.conn(ctx).Model(&scrimRecord{}), filter)
	if filter.NewestFirst {
		db = db.Order("created_at DESC, id DESC")
	} else {
		db = db.Order("date, time_normalized, id")
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var recs []scrimRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error finding scrims: %w", err)
	}

	scrims := make([]models.Scrim, 0, len(recs))
	for i := range recs {
		scrims = append(scrims, recs[i].toModel())
	}
	return scrims, nil
}

func (s *GormStore) CountScrims(ctx context.Context, filter ScrimFilter) (int64, error) {
	var n int64
	if err := s.applyFilter(s.conn(ctx).Model(&scrimRecord{}), filter).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("error counting scrims: %w", err)
	}
	return n, nil
}

// TransitionScrim moves a scrim into phase `to` with a single conditional
// update. It returns ErrConflict when the guard no longer holds, which is
// how a concurrent transition that got there first is detected.
func (s *GormStore) TransitionScrim(ctx context.Context, guildID, scrimID string, guard Guard, to models.Phase, opponent *Opponent) error {
	cols := phaseColumns(to, time.Now())
	if opponent != nil {
		cols["opposing_team_name"] = opponent.TeamName
		cols["opposing_team_leader"] = opponent.LeaderID
		cols["opposing_team_members"] = joinIDs(opponent.Members)
	}

	db := s.conn(ctx).Model(&scrimRecord{}).
		Where("guild_id = ? AND scrim_id = ?", guildID, scrimID).
		Where("status IN ?", statusStrings(guard.From))
	if guard.ProposalSeq > 0 {
		db = db.Where("proposal_seq = ?", guard.ProposalSeq)
	}

	res := db.Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("error updating scrim %s: %w", scrimID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) SetScrimRefs(ctx context.Context, guildID, scrimID string, refs ScrimRefs) error {
	cols := map[string]interface{}{}
	if refs.MessageID != "" {
		cols["message_id"] = refs.MessageID
	}
	if refs.PostChannelID != "" {
		cols["post_channel_id"] = refs.PostChannelID
	}
	if refs.ChannelID != "" {
		cols["channel_id"] = refs.ChannelID
	}
	if len(cols) == 0 {
		return nil
	}

	res := s.conn(ctx).Model(&scrimRecord{}).
		Where("guild_id = ? AND scrim_id = ?", guildID, scrimID).
		Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("error saving refs for scrim %s: %w", scrimID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimReminder flips reminder_sent from false to true. ErrConflict means
// another sweep claimed it first.
func (s *GormStore) ClaimReminder(ctx context.Context, guildID, scrimID string) error {
	res := s.conn(ctx).Model(&scrimRecord{}).
		Where("guild_id = ? AND scrim_id = ? AND reminder_sent = ?", guildID, scrimID, false).
		Update("reminder_sent", true)
	if res.Error != nil {
		return fmt.Errorf("error claiming reminder for scrim %s: %w", scrimID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *GormStore) DeleteScrims(ctx context.Context, filter ScrimFilter) (int64, error) {
	if filter.GuildID == "" {
		return 0, fmt.Errorf("refusing to delete scrims without a guild")
	}
	res := s.applyFilter(s.conn(ctx), filter).Delete(&scrimRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("error deleting scrims: %w", res.Error)
	}
	return res.RowsAffected, nil
}
