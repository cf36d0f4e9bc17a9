package memory

import (
	"sync"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

// Repository keeps the last loaded settings for each guild.
type Repository struct {
	settings map[string]*models.GuildSettings
	mu       sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{settings: make(map[string]*models.GuildSettings)}
}

func (r *Repository) SaveSettings(settings *models.GuildSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[settings.GuildID] = settings
}

func (r *Repository) GetSettings(guildID string) *models.GuildSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[guildID]
}

func (r *Repository) Forget(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.settings, guildID)
}
