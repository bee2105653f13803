// Package availability owns the calendar side of the widget: the visible
// month, the selected date and slot, and the per-date records fetched from
// the scheduling API for that window.
package availability

import (
	"context"
	"errors"
	"sync"
	"time"

	"booking-widget/internal/calendly"
)

// Source fetches per-date availability for a date range in a timezone.
type Source interface {
	FetchAvailability(ctx context.Context, rangeStart, rangeEnd, timezone string) ([]calendly.Availability, error)
}

var (
	ErrDateUnavailable = errors.New("availability: date is not selectable")
	ErrSpotUnavailable = errors.New("availability: spot is not selectable")
)

const dateLayout = "2006-01-02"

// Selector holds the selection state for one widget session. Only month
// and timezone changes re-trigger the range fetch; overlapping fetches
// resolve last-request-wins so a superseded response never overwrites a
// newer one.
type Selector struct {
	src Source

	mu       sync.Mutex
	timezone string
	month    time.Time // first day of the visible month
	date     string    // selected date, "" when none
	slot     *calendly.Spot

	days     map[string]calendly.Availability
	loading  bool
	fetchErr error
	gen      uint64
}

func NewSelector(src Source, timezone string, month time.Time) *Selector {
	return &Selector{
		src:      src,
		timezone: timezone,
		month:    time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
		days:     make(map[string]calendly.Availability),
	}
}

func (s *Selector) Timezone() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timezone
}

func (s *Selector) Month() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// SetMonth moves the visible month. It reports whether a refresh is due.
func (s *Selector) SetMonth(year int, month time.Month) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if next.Equal(s.month) {
		return false
	}
	s.month = next
	s.gen++
	return true
}

// SetTimezone changes the rendering timezone. It reports whether a
// refresh is due.
func (s *Selector) SetTimezone(tz string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tz == "" || tz == s.timezone {
		return false
	}
	s.timezone = tz
	s.gen++
	return true
}

// Refresh fetches the visible month window. A response that was
// superseded by a newer month or timezone change is discarded.
func (s *Selector) Refresh(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	tz := s.timezone
	start := s.month
	s.loading = true
	s.mu.Unlock()

	end := start.AddDate(0, 1, 0)
	days, err := s.src.FetchAvailability(ctx, start.Format(dateLayout), end.Format(dateLayout), tz)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// A newer request owns the state now.
		return nil
	}
	s.loading = false
	if err != nil {
		s.fetchErr = err
		s.days = make(map[string]calendly.Availability)
		return err
	}
	s.fetchErr = nil
	s.days = make(map[string]calendly.Availability, len(days))
	for _, d := range days {
		s.days[d.Date] = d
	}
	return nil
}

func (s *Selector) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Selector) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// DateDisabled reports whether a calendar day is unselectable: no record
// for it, a record marked wholly unavailable, or an errored month fetch
// (which disables every day).
func (s *Selector) DateDisabled(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dateDisabledLocked(date)
}

func (s *Selector) dateDisabledLocked(date string) bool {
	if s.fetchErr != nil {
		return true
	}
	day, ok := s.days[date]
	if !ok {
		return true
	}
	return day.Status == calendly.StatusUnavailable
}

// SelectDate chooses a calendar day and clears any previously selected
// slot.
func (s *Selector) SelectDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrDateUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dateDisabledLocked(date) {
		return ErrDateUnavailable
	}
	s.date = date
	s.slot = nil
	return nil
}

// ClearDate drops the selection entirely (and the slot with it).
func (s *Selector) ClearDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = ""
	s.slot = nil
}

func (s *Selector) SelectedDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// AvailableSpots returns the pickable spots for the selected date; only
// spots with status "available" qualify.
func (s *Selector) AvailableSpots() []calendly.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableSpotsLocked()
}

func (s *Selector) availableSpotsLocked() []calendly.Spot {
	if s.date == "" {
		return nil
	}
	day, ok := s.days[s.date]
	if !ok {
		return nil
	}
	var out []calendly.Spot
	for _, spot := range day.Spots {
		if spot.Status == calendly.StatusAvailable {
			out = append(out, spot)
		}
	}
	return out
}

// SelectSlot picks a time spot by its start timestamp. The spot must be
// one of the selected date's available spots.
func (s *Selector) SelectSlot(startTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, spot := range s.availableSpotsLocked() {
		if spot.StartTime == startTime {
			chosen := spot
			s.slot = &chosen
			return nil
		}
	}
	return ErrSpotUnavailable
}

// ClearSlot is the "back" action: the slot is dropped, the date and any
// entered form data stay.
func (s *Selector) ClearSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = nil
}

func (s *Selector) SelectedSlot() *calendly.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return nil
	}
	spot := *s.slot
	return &spot
}

// Day is the calendar-grid view of one date in the visible month.
type Day struct {
	Date     string `json:"date"`
	Disabled bool   `json:"disabled"`
}

// Days renders the visible month as calendar days with disabled flags.
func (s *Selector) Days() []Day {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Day
	for d := s.month; d.Month() == s.month.Month(); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		out = append(out, Day{Date: date, Disabled: s.dateDisabledLocked(date)})
	}
	return out
}
