package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestScheduler() (*Scheduler, *syncBuffer) {
	buf := &syncBuffer{}
	return New(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))), buf
}

// trigger runs the named job through the cron wrapper chain.
func trigger(t *testing.T, s *Scheduler, name string) {
	t.Helper()
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	require.True(t, ok)
	s.cron.Entry(id).WrappedJob.Run()
}

func TestAdd(t *testing.T) {
	s, _ := newTestScheduler()

	require.NoError(t, s.Add("purge", "0 */15 * * * *", func(context.Context) error { return nil }))
	assert.Error(t, s.Add("purge", "0 */15 * * * *", func(context.Context) error { return nil }), "duplicate name")
	assert.Error(t, s.Add("bad", "*/15 * * * *", func(context.Context) error { return nil }), "five fields")

	jobs := s.Jobs()
	assert.Len(t, jobs, 1)
	assert.Contains(t, jobs, "purge")
}

func TestJobErrorsAreLogged(t *testing.T) {
	s, buf := newTestScheduler()
	require.NoError(t, s.Add("prune", "@hourly", func(context.Context) error { return errors.New("store down") }))

	trigger(t, s, "prune")

	assert.Contains(t, buf.String(), "scheduled job failed")
	assert.Contains(t, buf.String(), "store down")
}

func TestPanicIsRecovered(t *testing.T) {
	s, buf := newTestScheduler()
	require.NoError(t, s.Add("boom", "@hourly", func(context.Context) error { panic("kaboom") }))

	assert.NotPanics(t, func() { trigger(t, s, "boom") })
	assert.Contains(t, buf.String(), "kaboom")
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	s, _ := newTestScheduler()
	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.Add("slow", "@hourly", func(context.Context) error {
		if runs.Add(1) == 1 {
			close(started)
		}
		<-release
		return nil
	}))

	go trigger(t, s, "slow")
	<-started
	trigger(t, s, "slow")
	close(release)

	assert.Equal(t, int32(1), runs.Load())
}

func TestStopCancelsJobContext(t *testing.T) {
	s, _ := newTestScheduler()
	cancelled := make(chan struct{})
	require.NoError(t, s.Add("wait", "@hourly", func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))
	s.Start()

	go trigger(t, s, "wait")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
}
