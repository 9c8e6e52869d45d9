// Package tickets issues sequential ticket numbers and renders printable
// tickets.
package tickets

import (
	"context"
	"fmt"
	"sync"

	"github.com/wolfman30/etihasam-tickets/internal/store"
)

// Number is a sequential ticket number.
type Number int

// String formats the number as "#" plus at least three zero-padded digits.
func (n Number) String() string {
	return fmt.Sprintf("#%03d", int(n))
}

// Allocator is the only writer of store.KeyLastTicketNumber.
type Allocator struct {
	mu    sync.Mutex
	store store.Store
}

// NewAllocator creates an allocator over s.
func NewAllocator(s store.Store) *Allocator {
	if s == nil {
		panic("tickets: store required")
	}
	return &Allocator{store: s}
}

// Allocate persists and returns last+1.
func (a *Allocator) Allocate(ctx context.Context) (Number, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	last, err := store.GetInt(ctx, a.store, store.KeyLastTicketNumber)
	if err != nil {
		return 0, fmt.Errorf("tickets: read last number: %w", err)
	}
	next := last + 1
	if err := store.SetInt(ctx, a.store, store.KeyLastTicketNumber, next); err != nil {
		return 0, fmt.Errorf("tickets: persist number: %w", err)
	}
	return Number(next), nil
}

// Peek returns the number the next Allocate would issue.
func (a *Allocator) Peek(ctx context.Context) (Number, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	last, err := store.GetInt(ctx, a.store, store.KeyLastTicketNumber)
	if err != nil {
		return 0, fmt.Errorf("tickets: read last number: %w", err)
	}
	return Number(last + 1), nil
}
