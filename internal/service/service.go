package service

import (
	"time"

	uuid "github.com/hashicorp/go-uuid"

	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/repository/memory"
)

type Options struct {
	Location           *time.Location
	ChannelDeleteDelay time.Duration
	ReminderLead       time.Duration
	ReminderWindow     time.Duration
	SettingsTTL        time.Duration
}

type Services struct {
	Resolver  *Resolver
	Roster    *RosterService
	Scrims    *ScrimService
	Stats     *StatsService
	Settings  *SettingsService
	Reminders *ReminderService
}

func New(store repository.Store, platform Platform, notifier Notifier, deferrer Deferrer, repo *memory.Repository, opts Options) *Services {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	resolver := NewResolver(store)
	settings := NewSettingsService(store, repo, opts.SettingsTTL)
	stats := NewStatsService(store, resolver)

	return &Services{
		Resolver: resolver,
		Settings: settings,
		Stats:    stats,
		Roster: &RosterService{
			store:    store,
			platform: platform,
			notifier: notifier,
			resolver: resolver,
			settings: settings,
			stats:    stats,
			newID:    uuid.GenerateUUID,
			now:      time.Now,
		},
		Scrims: &ScrimService{
			store:              store,
			platform:           platform,
			notifier:           notifier,
			deferrer:           deferrer,
			resolver:           resolver,
			settings:           settings,
			stats:              stats,
			loc:                opts.Location,
			channelDeleteDelay: opts.ChannelDeleteDelay,
			nextID:             randomScrimID,
			now:                time.Now,
		},
		Reminders: &ReminderService{
			store:    store,
			notifier: notifier,
			loc:      opts.Location,
			lead:     opts.ReminderLead,
			window:   opts.ReminderWindow,
			now:      time.Now,
		},
	}
}
