package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEvery_StaggersEvents(t *testing.T) {
	l := Every(50 * time.Millisecond)

	start := time.Now()
	n, err := Pace(context.Background(), l, []string{"a", "b", "c"}, func(context.Context, string) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}

	// First event is immediate, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected at least ~100ms of pacing, got %v", elapsed)
	}
}

func TestPace_StopsOnError(t *testing.T) {
	errSend := errors.New("send failed")
	l := Every(0)

	n, err := Pace(context.Background(), l, []int{1, 2, 3}, func(_ context.Context, v int) error {
		if v == 2 {
			return errSend
		}
		return nil
	})
	if !errors.Is(err, errSend) {
		t.Errorf("expected errSend, got %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 successful call, got %d", n)
	}
}

func TestPace_ContextCancelled(t *testing.T) {
	l := Every(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Pace(ctx, l, []int{1, 2}, func(context.Context, int) error {
		calls++
		cancel()
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestNew_AllowsBurst(t *testing.T) {
	l := New(600) // 10/s, burst 60
	for i := 0; i < 60; i++ {
		if !l.Allow() {
			t.Fatalf("expected burst token %d to be available", i)
		}
	}
	if l.Allow() {
		t.Error("expected burst to be exhausted")
	}
}
