package mocks

import (
	"testing"
	"time"
)

func TestScheduler_AdvanceFiresTimersInOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewScheduler(start)

	var got []string
	s.After(2*time.Second, func() { got = append(got, "b") })
	s.After(time.Second, func() {
		got = append(got, "a")
		s.Post(func() { got = append(got, "a-post") })
	})
	cancel := s.After(1500*time.Millisecond, func() { got = append(got, "cancelled") })
	cancel()

	s.Advance(1500 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "a-post" {
		t.Fatalf("unexpected order after 1.5s: %v", got)
	}
	if !s.Now().Equal(start.Add(1500 * time.Millisecond)) {
		t.Fatalf("clock not advanced: %v", s.Now())
	}

	s.Advance(time.Second)
	if len(got) != 3 || got[2] != "b" {
		t.Fatalf("unexpected order after 2.5s: %v", got)
	}
	if s.PendingTimers() != 0 {
		t.Fatalf("expected no pending timers, got %d", s.PendingTimers())
	}
}
