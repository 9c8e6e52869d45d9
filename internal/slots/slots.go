// Package slots generates the venue's daily show slots and tracks which of
// them have been booked.
package slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// FirstHour is the hour of the first slot of the day.
	FirstHour = 10
	// LastHour is the hour at which the last slot ends.
	LastHour = 20
	// Length is the duration of one show.
	Length = 10 * time.Minute
	// SlotsPerDay is the number of slots Generate produces.
	SlotsPerDay = (LastHour - FirstHour) * 60 / int(Length/time.Minute)

	// dayLayout renders the calendar day part of a slot id, e.g. "Mon Oct 19 2026".
	dayLayout = "Mon Jan 02 2006"
)

// Slot is one bookable show interval on a given day.
type Slot struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Range returns the "HH:MM - HH:MM" label of the slot.
func (s Slot) Range() string {
	label, err := Range(s.Time)
	if err != nil {
		return s.Time
	}
	return label
}

// ID builds the identifier of the slot starting at hhmm on day.
func ID(day time.Time, hhmm string) string {
	return day.Format(dayLayout) + "-" + hhmm
}

// DayOf extracts the calendar day embedded in a slot id.
func DayOf(id string, loc *time.Location) (time.Time, bool) {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dayLayout, id[:idx], loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Generate produces the day's slots in order, marking any slot whose id is in
// booked as unavailable.
func Generate(day time.Time, booked []string) []Slot {
	taken := make(map[string]struct{}, len(booked))
	for _, id := range booked {
		taken[id] = struct{}{}
	}

	step := int(Length / time.Minute)
	out := make([]Slot, 0, SlotsPerDay)
	for hour := FirstHour; hour < LastHour; hour++ {
		for minute := 0; minute < 60; minute += step {
			hhmm := fmt.Sprintf("%02d:%02d", hour, minute)
			id := ID(day, hhmm)
			_, isBooked := taken[id]
			out = append(out, Slot{ID: id, Time: hhmm, Available: !isBooked})
		}
	}
	return out
}

// Available filters slots down to the ones still open.
func Available(all []Slot) []Slot {
	out := make([]Slot, 0, len(all))
	for _, s := range all {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// AllBooked reports whether no slot is left. The submit control is disabled
// exactly when this is true.
func AllBooked(all []Slot) bool {
	for _, s := range all {
		if s.Available {
			return false
		}
	}
	return true
}

// Find looks a slot up by id.
func Find(all []Slot, id string) (Slot, bool) {
	for _, s := range all {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// EndTime returns the HH:MM at which a show starting at hhmm ends. Minutes
// overflow into the hour; the hour is not wrapped.
func EndTime(hhmm string) (string, error) {
	hours, minutes, err := parseHHMM(hhmm)
	if err != nil {
		return "", err
	}
	end := minutes + int(Length/time.Minute)
	return fmt.Sprintf("%02d:%02d", hours+end/60, end%60), nil
}

// Range returns "start - end" for a show starting at hhmm.
func Range(hhmm string) (string, error) {
	end, err := EndTime(hhmm)
	if err != nil {
		return "", err
	}
	return hhmm + " - " + end, nil
}

func parseHHMM(hhmm string) (int, int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return hours, minutes, nil
}
