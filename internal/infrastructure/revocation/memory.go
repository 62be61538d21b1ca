package revocation

import (
	"context"
	"sync"
	"time"
)

const DefaultPruneInterval = 10 * time.Minute

// MemoryList is a single-process revocation list used when Redis is not
// configured. Expired entries are dropped on lookup and by Run.
type MemoryList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryList() *MemoryList {
	return &MemoryList{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (l *MemoryList) WithClock(now func() time.Time) *MemoryList {
	l.now = now
	return l
}

func (l *MemoryList) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[tokenID] = l.now().Add(ttl)
	return nil
}

func (l *MemoryList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !l.now().Before(until) {
		delete(l.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Run prunes expired entries every interval until ctx is done.
func (l *MemoryList) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// Prune drops every entry whose expiry has passed and reports how many went.
func (l *MemoryList) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pruned := 0
	for tokenID, until := range l.revoked {
		if !now.Before(until) {
			delete(l.revoked, tokenID)
			pruned++
		}
	}
	return pruned
}

// Len reports the number of tracked revocations.
func (l *MemoryList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.revoked)
}
