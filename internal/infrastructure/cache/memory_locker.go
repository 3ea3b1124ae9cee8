package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type heldLock struct {
	token     uint64
	expiresAt time.Time
}

// MemoryLocker grants locks within one process. Expired locks are reclaimed
// lazily on the next TryLock for the key and by a periodic sweep.
type MemoryLocker struct {
	mu        sync.Mutex
	locks     map[string]heldLock
	nextToken uint64
	now       func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryLocker creates a MemoryLocker and starts its sweep loop.
func NewMemoryLocker(sweepInterval time.Duration) *MemoryLocker {
	l := &MemoryLocker{
		locks:    make(map[string]heldLock),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if sweepInterval > 0 {
		l.wg.Add(1)
		go l.sweepLoop(sweepInterval)
	}
	return l
}

// TryLock takes the key unless a live holder owns it.
func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if ttl <= 0 {
		return nil, false, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.locks[key]; ok && now.Before(h.expiresAt) {
		return nil, false, nil
	}
	l.nextToken++
	token := l.nextToken
	l.locks[key] = heldLock{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if h, ok := l.locks[key]; ok && h.token == token {
			delete(l.locks, key)
		}
		return nil
	}
	return release, true, nil
}

// Held returns the number of unexpired locks.
func (l *MemoryLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for _, h := range l.locks {
		if now.Before(h.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the sweep loop. Safe to call more than once.
func (l *MemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *MemoryLocker) sweepLoop(interval time.Duration) {
	defer l.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLocker) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, h := range l.locks {
		if !now.Before(h.expiresAt) {
			delete(l.locks, key)
		}
	}
}
