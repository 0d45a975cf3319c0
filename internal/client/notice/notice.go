// Package notice keeps short-lived messages for the user. A notice expires
// after the board's TTL or when dismissed.
package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 3 * time.Second

type Notice struct {
	ID        int
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Board struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	nextID int
	items  []Notice
}

func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{ttl: ttl, now: time.Now, nextID: 1}
}

// Push adds msg and returns the stored notice.
func (b *Board) Push(msg string) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	n := Notice{ID: b.nextID, Message: msg, CreatedAt: now, ExpiresAt: now.Add(b.ttl)}
	b.nextID++
	b.items = append(b.items, n)
	return n
}

// Active returns unexpired notices, oldest first, and forgets expired ones.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	kept := b.items[:0]
	for _, n := range b.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	b.items = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes notice id and reports whether it was present.
func (b *Board) Dismiss(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}
