package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

func (s *GormStore) FindSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	var recs []settingRecord
	if err := s.conn(ctx).Where("guild_id = ?", guildID).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error loading settings for guild %s: %w", guildID, err)
	}

	settings := &models.GuildSettings{GuildID: guildID, LastUpdated: time.Now()}
	for _, r := range recs {
		switch r.Name {
		case SettingScrimChannel:
			settings.ScrimChannelID = r.Value
		case SettingVerifiedRole:
			settings.VerifiedRoleID = r.Value
		}
	}
	return settings, nil
}

func (s *GormStore) PutSetting(ctx context.Context, guildID, key, value string) error {
	rec := settingRecord{GuildID: guildID, Name: key, Value: value, UpdatedAt: time.Now()}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("error saving setting %s: %w", key, err)
	}
	return nil
}
