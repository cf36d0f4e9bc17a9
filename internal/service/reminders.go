package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

type ReminderService struct {
	store    repository.Store
	notifier Notifier
	loc      *time.Location
	lead     time.Duration
	window   time.Duration
	now      func() time.Time
}

// Sweep DMs every participant of each engaged scrim that starts within
// lead ± window of now. Each scrim is reminded at most once.
func (r *ReminderService) Sweep(ctx context.Context) (int, error) {
	unsent := false
	scrims, err := r.store.FindScrims(ctx, repository.ScrimFilter{
		Statuses:     models.EngagedStatuses,
		ReminderSent: &unsent,
	})
	if err != nil {
		return 0, err
	}

	now := r.now()
	sent := 0
	for i := range scrims {
		scrim := &scrims[i]
		start, err := scrim.StartsAt(r.loc)
		if err != nil {
			slog.Warn("Skipping scrim with unreadable start", "scrim_id", scrim.ScrimID, "error", err)
			continue
		}

		until := start.Sub(now)
		if until < r.lead-r.window || until > r.lead+r.window {
			continue
		}

		err = r.store.ClaimReminder(ctx, scrim.GuildID, scrim.ScrimID)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			slog.Error("Failed to claim reminder", "scrim_id", scrim.ScrimID, "error", err)
			continue
		}

		r.notifier.Notify(ctx, directTo(scrim.Participants(), Message{Content: FormatReminder(scrim)})...)
		telemetry.RemindersSentTotal.Inc()
		sent++
	}
	return sent, nil
}
