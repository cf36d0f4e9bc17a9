package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderSweep(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)
	h.openScrim(t, "a1")

	start, err := h.reload(t, scrim.ScrimID).StartsAt(time.UTC)
	require.NoError(t, err)

	h.svc.Reminders.now = func() time.Time { return start.Add(-3 * time.Hour) }
	sent, err := h.svc.Reminders.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "too early")

	before := make(map[string]int)
	for _, id := range []string{"a1", "a2", "b1", "b2"} {
		before[id] = len(h.notifier.directTo(id))
	}

	h.svc.Reminders.now = func() time.Time { return start.Add(-58 * time.Minute) }
	sent, err = h.svc.Reminders.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	for _, id := range []string{"a1", "a2", "b1", "b2"} {
		assert.Len(t, h.notifier.directTo(id), before[id]+1, id)
	}

	sent, err = h.svc.Reminders.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "a scrim is only reminded once")
	assert.True(t, h.reload(t, scrim.ScrimID).ReminderSent)
}

func TestReminderSkipsCancelledScrims(t *testing.T) {
	h := newHarness(t)
	scrim := h.acceptedScrim(t)
	_, err := h.svc.Scrims.CancelScrim(h.ctx, CancelInput{GuildID: testGuild, ActorID: "a1", ScrimID: scrim.ScrimID})
	require.NoError(t, err)

	start, err := scrim.StartsAt(time.UTC)
	require.NoError(t, err)
	h.svc.Reminders.now = func() time.Time { return start.Add(-time.Hour) }

	sent, err := h.svc.Reminders.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}
