package mocks

import (
	"sort"
	"time"

	"github.com/user/vidreview/pkg/ports"
)

// Scheduler is a manual ports.Scheduler. Posted tasks run on RunPending,
// timers fire on Advance in due order with the clock set to their due time.
// It is not safe for concurrent use.
type Scheduler struct {
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	due       time.Time
	seq       int
	task      func()
	cancelled bool
}

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

func (s *Scheduler) Post(task func()) {
	s.queue = append(s.queue, task)
}

func (s *Scheduler) After(d time.Duration, task func()) func() {
	s.seq++
	t := &manualTimer{due: s.now.Add(d), seq: s.seq, task: task}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *Scheduler) Now() time.Time {
	return s.now
}

// RunPending runs queued tasks, including tasks they post, until the queue
// is empty. It panics on a runaway loop.
func (s *Scheduler) RunPending() {
	for i := 0; len(s.queue) > 0; i++ {
		if i > 100000 {
			panic("mocks.Scheduler: task queue does not drain")
		}
		task := s.queue[0]
		s.queue = s.queue[1:]
		task()
	}
}

// Advance moves the clock forward by d, firing due timers in order and
// draining the queue after each one.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	s.RunPending()
	for {
		t := s.nextTimer(target)
		if t == nil {
			break
		}
		s.now = t.due
		t.task()
		s.RunPending()
	}
	s.now = target
	s.RunPending()
}

// PendingTimers returns the number of live timers.
func (s *Scheduler) PendingTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextTimer(limit time.Time) *manualTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.timers = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].due.Equal(live[j].due) {
			return live[i].seq < live[j].seq
		}
		return live[i].due.Before(live[j].due)
	})
	next := live[0]
	if next.due.After(limit) {
		return nil
	}
	s.timers = live[1:]
	return next
}

var _ ports.Scheduler = (*Scheduler)(nil)
