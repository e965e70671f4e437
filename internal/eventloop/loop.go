// Package eventloop runs jobs one at a time, in submission order, on a single goroutine.
package eventloop

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	// ErrStopped is returned when a job is submitted after the loop has stopped.
	ErrStopped = errors.New("event loop stopped")
	// ErrJobPanicked is returned by Do when the job panicked.
	ErrJobPanicked = errors.New("event loop job panicked")
)

// Loop serializes every mutation of the desk state.
type Loop struct {
	jobs    chan func()
	stopped chan struct{}
}

// New creates a Loop with room for buffer queued jobs.
func New(buffer int) *Loop {
	return &Loop{
		jobs:    make(chan func(), buffer),
		stopped: make(chan struct{}),
	}
}

// Run processes jobs until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	log.Info().Msg("event loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event loop stopped")
			return
		case job := <-l.jobs:
			job()
		}
	}
}

// Post queues fn without waiting for it to run.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	return l.enqueue(ctx, func() {
		_ = runSafely(fn)
	})
}

// Do queues fn and waits until it has run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan error, 1)
	if err := l.enqueue(ctx, func() { done <- runSafely(fn) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) enqueue(ctx context.Context, job func()) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

func runSafely(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("event loop job panicked")
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	fn()
	return nil
}
