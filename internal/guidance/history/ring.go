package history

import (
	"context"
	"sync"
)

// DefaultCapacity is the number of guidance strings a store remembers.
const DefaultCapacity = 10

// Store keeps recently emitted guidance, most recent first.
type Store interface {
	Recent(ctx context.Context) ([]string, error)
	Remember(ctx context.Context, text string) error
}

type ring struct {
	mu    sync.Mutex
	items []string
	next  int
	size  int
}

// NewRing returns an in-process store holding at most capacity entries.
func NewRing(capacity int) Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ring{items: make([]string, capacity)}
}

func (r *ring) Recent(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, r.size)
	for i := 1; i <= r.size; i++ {
		out = append(out, r.items[(r.next-i+len(r.items))%len(r.items)])
	}
	return out, nil
}

func (r *ring) Remember(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.next] = text
	r.next = (r.next + 1) % len(r.items)
	if r.size < len(r.items) {
		r.size++
	}
	return nil
}
