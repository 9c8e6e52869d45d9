package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/etihasam-tickets/internal/store"
)

// Ledger is the append-only list of booked slot ids kept in the store under
// store.KeyBookedTimeSlots.
type Ledger struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
}

// NewLedger creates a ledger that reads "today" in loc.
func NewLedger(s store.Store, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: s, loc: loc, now: time.Now}
}

// WithClock overrides the clock used to decide the current day.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	if now != nil {
		l.now = now
	}
	return l
}

// Today returns the current day in the ledger's location.
func (l *Ledger) Today() time.Time {
	return l.now().In(l.loc)
}

// Booked returns every booked slot id, across all days.
func (l *Ledger) Booked(ctx context.Context) ([]string, error) {
	ids, err := store.GetStrings(ctx, l.store, store.KeyBookedTimeSlots)
	if err != nil {
		return nil, fmt.Errorf("slots: load booked: %w", err)
	}
	return ids, nil
}

// Slots regenerates today's slot set against the persisted bookings.
func (l *Ledger) Slots(ctx context.Context) ([]Slot, error) {
	booked, err := l.Booked(ctx)
	if err != nil {
		return nil, err
	}
	return Generate(l.Today(), booked), nil
}

// Book appends id to the booked list. Duplicates are not checked here.
func (l *Ledger) Book(ctx context.Context, id string) error {
	booked, err := l.Booked(ctx)
	if err != nil {
		return err
	}
	booked = append(booked, id)
	if err := store.SetStrings(ctx, l.store, store.KeyBookedTimeSlots, booked); err != nil {
		return fmt.Errorf("slots: save booked: %w", err)
	}
	return nil
}

// Prune drops ids whose embedded day is before cutoff's calendar day and
// returns how many were removed. Ids that do not parse are kept.
func (l *Ledger) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	booked, err := l.Booked(ctx)
	if err != nil {
		return 0, err
	}
	c := cutoff.In(l.loc)
	cutoffDay := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, l.loc)

	kept := make([]string, 0, len(booked))
	for _, id := range booked {
		day, ok := DayOf(id, l.loc)
		if ok && day.Before(cutoffDay) {
			continue
		}
		kept = append(kept, id)
	}
	removed := len(booked) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := store.SetStrings(ctx, l.store, store.KeyBookedTimeSlots, kept); err != nil {
		return 0, fmt.Errorf("slots: save pruned: %w", err)
	}
	return removed, nil
}
