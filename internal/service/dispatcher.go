package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

const defaultDispatchLimit = 4

// Announcer receives plain-text copies of public announcements.
type Announcer interface {
	SendMessage(text string) error
}

// Dispatcher delivers notifications in the background. Delivery is best
// effort: failures are logged and counted, never returned.
type Dispatcher struct {
	platform Platform
	mirror   Announcer
	limit    int
	wg       sync.WaitGroup
}

func NewDispatcher(platform Platform, mirror Announcer) *Dispatcher {
	return &Dispatcher{platform: platform, mirror: mirror, limit: defaultDispatchLimit}
}

func (d *Dispatcher) Notify(ctx context.Context, notes ...Notification) {
	if len(notes) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(d.limit)
		for _, n := range notes {
			g.Go(func() error {
				d.deliver(ctx, n)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	var err error
	if n.UserID != "" {
		err = d.platform.SendDirect(ctx, n.UserID, n.Message)
	} else {
		_, err = d.platform.PostMessage(ctx, n.ChannelID, n.Message)
	}

	if err != nil {
		telemetry.NotificationsTotal.WithLabelValues("failed").Inc()
		slog.Warn("Failed to deliver notification", "user_id", n.UserID, "channel_id", n.ChannelID, "error", err)
		return
	}
	telemetry.NotificationsTotal.WithLabelValues("delivered").Inc()
}

func (d *Dispatcher) Announce(text string) {
	if d.mirror == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.mirror.SendMessage(text); err != nil {
			slog.Warn("Failed to mirror announcement", "error", err)
		}
	}()
}

// Wait blocks until every queued delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
