package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	l := New(16)
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l, cancel
}

func TestDo_RunsInOrderWithoutInterleaving(t *testing.T) {
	l, _ := startLoop(t)
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Do(ctx, func() {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
			}))
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, l.Do(ctx, func() { got = counter }))
	assert.Equal(t, 50, got)
}

func TestPost_IsProcessedBeforeLaterDo(t *testing.T) {
	l, _ := startLoop(t)
	ctx := context.Background()

	var order []string
	require.NoError(t, l.Post(ctx, func() { order = append(order, "tick") }))
	require.NoError(t, l.Do(ctx, func() { order = append(order, "edit") }))
	assert.Equal(t, []string{"tick", "edit"}, order)
}

func TestDo_RecoversPanic(t *testing.T) {
	l, _ := startLoop(t)
	ctx := context.Background()

	err := l.Do(ctx, func() { panic("boom") })
	assert.ErrorIs(t, err, ErrJobPanicked)

	ran := false
	require.NoError(t, l.Do(ctx, func() { ran = true }))
	assert.True(t, ran, "loop keeps running after a panic")
}

func TestDo_AfterStop(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	<-l.stopped

	err := l.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}
