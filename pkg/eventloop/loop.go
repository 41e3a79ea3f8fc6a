// Package eventloop provides a single-threaded cooperative task loop.
//
// Every engine component runs on the loop goroutine, so components hold no
// locks. Work produced on other goroutines (timers, ffmpeg readers) is
// posted back into the loop.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/vidreview/pkg/ports"
)

// Loop implements ports.Scheduler.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	clock  func() time.Time
}

func New() *Loop {
	return &Loop{
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		clock: time.Now,
	}
}

// Post queues a task. Tasks posted after Close are dropped.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After runs task on the loop after d. Cancelling from the loop guarantees
// the task does not run, even if its timer already fired.
func (l *Loop) After(d time.Duration, task func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if cancelled.Load() {
				return
			}
			task()
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

func (l *Loop) Now() time.Time {
	return l.clock()
}

// Run executes tasks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, task := range batch {
			task()
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Close stops the loop. Pending tasks are discarded.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ports.Scheduler = (*Loop)(nil)
