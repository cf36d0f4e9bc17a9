package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(time.UTC)
	require.NoError(t, err)
	defer s.Stop()

	err = s.Start(context.Background(), &countingSweeper{}, "every minute")
	assert.Error(t, err)
}

func TestAfterRunsOnce(t *testing.T) {
	s, err := NewScheduler(time.UTC)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background(), &countingSweeper{}, "0 0 1 1 *"))
	defer s.Stop()

	var ran atomic.Int32
	require.NoError(t, s.After(50*time.Millisecond, "delete-channel-123456", func() { ran.Add(1) }))

	assert.Eventually(t, func() bool { return ran.Load() == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, ran.Load())
}
