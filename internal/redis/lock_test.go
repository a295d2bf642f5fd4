package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hackgods/appointment-booking/internal/session"
)

func TestAcquire_RetriesUntilFree(t *testing.T) {
	attempts := 0
	err := acquire(context.Background(), time.Second, func(context.Context) (bool, error) {
		attempts++
		return attempts == 3, nil
	})
	if err != nil {
		t.Fatalf("expected lock after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestAcquire_GivesUpWhenBusy(t *testing.T) {
	start := time.Now()
	err := acquire(context.Background(), 100*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, session.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("gave up after %s, before the wait budget", elapsed)
	}
}

func TestAcquire_RedisError(t *testing.T) {
	boom := errors.New("connection refused")
	err := acquire(context.Background(), time.Second, func(context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) || errors.Is(err, session.ErrSessionBusy) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := acquire(ctx, 5*time.Second, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
