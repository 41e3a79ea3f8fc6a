package eventloop

import (
	"context"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l, cancel
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(got))
	}
}

func TestLoop_PostFromTask(t *testing.T) {
	l, _ := startLoop(t)

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested task did not run")
	}
}

func TestLoop_AfterAndCancel(t *testing.T) {
	l, _ := startLoop(t)

	fired := make(chan string, 2)
	l.After(10*time.Millisecond, func() { fired <- "kept" })
	cancel := l.After(10*time.Millisecond, func() { fired <- "cancelled" })
	cancel()

	select {
	case v := <-fired:
		if v != "kept" {
			t.Fatalf("cancelled timer fired")
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	select {
	case v := <-fired:
		t.Fatalf("unexpected timer %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoop_CloseDropsTasks(t *testing.T) {
	l, _ := startLoop(t)
	l.Close()

	ran := false
	l.Post(func() { ran = true })
	if err := l.Do(context.Background(), func() {}); err == nil {
		t.Fatal("expected Do to fail after Close")
	}
	if ran {
		t.Fatal("task ran after Close")
	}
}
