package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

type fakeMirror struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMirror) SendMessage(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return m.err
}

func TestDispatcherDeliversBestEffort(t *testing.T) {
	platform := newFakePlatform()
	platform.failDM["blocked"] = true
	mirror := &fakeMirror{}
	d := NewDispatcher(platform, mirror)

	failedBefore := testutil.ToFloat64(telemetry.NotificationsTotal.WithLabelValues("failed"))

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx,
		Notification{UserID: "u1", Message: Message{Content: "hi"}},
		Notification{UserID: "blocked", Message: Message{Content: "hi"}},
		Notification{UserID: "u2", Message: Message{Content: "hi"}},
		Notification{ChannelID: "c1", Message: Message{Content: "to channel"}},
	)
	cancel()
	d.Announce("scrim posted")
	d.Wait()

	assert.Len(t, platform.dmsTo("u1"), 1)
	assert.Len(t, platform.dmsTo("u2"), 1)
	assert.Empty(t, platform.dmsTo("blocked"))
	assert.Len(t, platform.posts, 1)
	assert.Equal(t, []string{"scrim posted"}, mirror.sent)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(telemetry.NotificationsTotal.WithLabelValues("failed")))
}

func TestDispatcherWithoutMirror(t *testing.T) {
	d := NewDispatcher(newFakePlatform(), nil)
	d.Announce("nobody listens")
	d.Notify(context.Background())
	d.Wait()
}
