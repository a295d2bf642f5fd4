package session

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionBusy is returned when another call holds the session lock past
// the locker's wait budget. Callers may retry.
var ErrSessionBusy = errors.New("session is busy with another request")

// Locker serializes calls against a single session's ledger.
type Locker interface {
	WithSessionLock(ctx context.Context, sessionID uuid.UUID, fn func(ctx context.Context) error) error
}

const lockStripes = 64

type localLocker struct {
	stripes [lockStripes]sync.Mutex
}

// NewLocalLocker returns an in-process locker. Sessions hashing to the same
// stripe wait on each other, which only costs throughput.
func NewLocalLocker() Locker {
	return &localLocker{}
}

func (l *localLocker) WithSessionLock(ctx context.Context, sessionID uuid.UUID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := fnv.New32a()
	_, _ = h.Write(sessionID[:])
	mu := &l.stripes[h.Sum32()%lockStripes]

	mu.Lock()
	defer mu.Unlock()

	return fn(ctx)
}
