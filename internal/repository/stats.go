package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

// IncrementStats adds delta to the team's counters, creating the row when
// missing. The increment happens in the database so concurrent finishes
// never lose an update.
func (s *GormStore) IncrementStats(ctx context.Context, guildID, teamName string, delta StatsDelta) error {
	now := time.Now()
	rec := statsRecord{
		GuildID:     guildID,
		TeamName:    teamName,
		TotalScrims: 1,
		Wins:        delta.Wins,
		Losses:      delta.Losses,
		Draws:       delta.Draws,
		GamesWon:    delta.GamesWon,
		GamesLost:   delta.GamesLost,
		LastUpdated: now,
	}

	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "team_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_scrims": gorm.Expr("team_stats.total_scrims + ?", 1),
			"wins":         gorm.Expr("team_stats.wins + ?", delta.Wins),
			"losses":       gorm.Expr("team_stats.losses + ?", delta.Losses),
			"draws":        gorm.Expr("team_stats.draws + ?", delta.Draws),
			"games_won":    gorm.Expr("team_stats.games_won + ?", delta.GamesWon),
			"games_lost":   gorm.Expr("team_stats.games_lost + ?", delta.GamesLost),
			"last_updated": now,
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("error updating stats for %s: %w", teamName, err)
	}
	return nil
}

func (s *GormStore) FindStats(ctx context.Context, guildID, teamName string) (*models.TeamStats, error) {
	var rec statsRecord
	err := s.conn(ctx).
		Where("guild_id = ? AND team_name = ?", guildID, teamName).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	stats := rec.toModel()
	return &stats, nil
}

// ListStats orders teams by scrim wins, then by games won.
func (s *GormStore) ListStats(ctx context.Context, guildID string) ([]models.TeamStats, error) {
	var recs []statsRecord
	err := s.conn(ctx).
		Where("guild_id = ?", guildID).
		Order("wins DESC, games_won DESC, team_name").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing stats: %w", err)
	}

	stats := make([]models.TeamStats, 0, len(recs))
	for i := range recs {
		stats = append(stats, recs[i].toModel())
	}
	return stats, nil
}

func (s *GormStore) ResetStats(ctx context.Context, guildID string) error {
	if err := s.conn(ctx).Where("guild_id = ?", guildID).Delete(&statsRecord{}).Error; err != nil {
		return fmt.Errorf("error resetting stats: %w", err)
	}
	return nil
}
