package service

import (
	"context"
	"time"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/repository/memory"
)

type SettingsService struct {
	store repository.Store
	repo  *memory.Repository
	ttl   time.Duration
}

func NewSettingsService(store repository.Store, repo *memory.Repository, ttl time.Duration) *SettingsService {
	return &SettingsService{store: store, repo: repo, ttl: ttl}
}

func (s *SettingsService) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	settings := s.repo.GetSettings(guildID)
	if settings == nil || time.Since(settings.LastUpdated) > s.ttl {
		fresh, err := s.store.FindSettings(ctx, guildID)
		if err != nil {
			return nil, err
		}
		s.repo.SaveSettings(fresh)
		return fresh, nil
	}
	return settings, nil
}

func (s *SettingsService) SetScrimChannel(ctx context.Context, guildID string, isAdmin bool, channelID string) error {
	return s.put(ctx, guildID, isAdmin, repository.SettingScrimChannel, channelID)
}

func (s *SettingsService) SetVerifiedRole(ctx context.Context, guildID string, isAdmin bool, roleID string) error {
	return s.put(ctx, guildID, isAdmin, repository.SettingVerifiedRole, roleID)
}

func (s *SettingsService) put(ctx context.Context, guildID string, isAdmin bool, key, value string) error {
	if !isAdmin {
		return ErrAdminRequired
	}
	if err := s.store.PutSetting(ctx, guildID, key, value); err != nil {
		return err
	}
	s.repo.Forget(guildID)
	return nil
}
