package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fast(attempts int) Config {
	return Config{MaxAttempts: attempts, Delay: time.Millisecond, Multiplier: 2, MaxDelay: 4 * time.Millisecond}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDo_ReturnsLastError(t *testing.T) {
	want := errors.New("down")
	calls := 0
	err := Do(context.Background(), fast(2), func(context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 2 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDo_PermanentStops(t *testing.T) {
	want := errors.New("404")
	calls := 0
	err := Do(context.Background(), fast(5), func(context.Context) error {
		calls++
		return Permanent(want)
	})
	if !errors.Is(err, want) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fast(3), func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
