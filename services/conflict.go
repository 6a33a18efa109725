package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/yeremiapane/club-manager/models"
)

// MinReservationGap is both the minimum headroom an open-ended session
// needs before the next reservation and the minimum spacing between two
// reservations on one table.
const MinReservationGap = time.Hour

// MaxFixedHours is the longest fixed-duration session that can be booked.
const MaxFixedHours = 24

// Slot is a scheduled booking resolved to an absolute start time.
type Slot struct {
	Booking models.Booking
	At      time.Time
}

// Window is the admitted end bound of a session. Until is nil for an
// unbounded open-ended session.
type Window struct {
	Until *time.Time
	Label string
}

// ScheduledSlots resolves the scheduled bookings in the list, sorted by
// start time. Waitlist rows and rows with unparsable times are skipped.
func ScheduledSlots(bookings []models.Booking, loc *time.Location) []Slot {
	slots := make([]Slot, 0, len(bookings))
	for _, b := range bookings {
		req, err := b.Request(loc)
		if err != nil {
			continue
		}
		switch r := req.(type) {
		case models.ScheduledRequest:
			slots = append(slots, Slot{Booking: b, At: r.At})
		case models.WaitlistRequest:
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].At.Before(slots[j].At) })
	return slots
}

// NextSlot returns the earliest slot strictly after now, or nil.
func NextSlot(now time.Time, slots []Slot) *Slot {
	for i := range slots {
		if slots[i].At.After(now) {
			return &slots[i]
		}
	}
	return nil
}

// AdmitOpenEnded checks an open-ended start against today's slots for the
// table. The session is bounded by the next reservation, if any.
func AdmitOpenEnded(now time.Time, slots []Slot) (Window, error) {
	next := NextSlot(now, slots)
	if next == nil {
		return Window{Label: models.OpenTimeLabel}, nil
	}
	headroom := next.At.Sub(now)
	if headroom < MinReservationGap {
		return Window{}, conflict("Less than 1 hour (%s) available before reservation.", FormatHeadroom(headroom))
	}
	until := next.At
	return Window{Until: &until, Label: FormatClock(until)}, nil
}

// openEndedBound is AdmitOpenEnded without the headroom rule, used when a
// reservation holder is seated in their own slot.
func openEndedBound(now time.Time, slots []Slot) Window {
	next := NextSlot(now, slots)
	if next == nil {
		return Window{Label: models.OpenTimeLabel}
	}
	until := next.At
	return Window{Until: &until, Label: FormatClock(until)}
}

// AdmitFixed checks that a session of the given hours ends no later than
// the start of any upcoming reservation.
func AdmitFixed(now time.Time, hours float64, slots []Slot) (Window, error) {
	if !(hours > 0) {
		return Window{}, invalid("duration", "Duration must be greater than zero")
	}
	if hours > MaxFixedHours {
		return Window{}, invalid("duration", fmt.Sprintf("Duration cannot exceed %d hours", MaxFixedHours))
	}
	end := now.Add(time.Duration(hours * float64(time.Hour)))
	for _, s := range slots {
		if s.At.After(now) && end.After(s.At) {
			return Window{}, conflict("Conflict! Only %s available.", FormatHeadroom(s.At.Sub(now)))
		}
	}
	return Window{Until: &end, Label: FormatClock(end)}, nil
}

// AdmitBooking checks a new scheduled booking at `at` against the other
// bookings of the same table and date, and against the running session of
// the table when the booking is for today.
func AdmitBooking(now, at time.Time, table *models.Table, slots []Slot) error {
	if table.IsOccupied() && table.OccupiedUntilRaw != nil && sameDay(now, at) && at.Before(*table.OccupiedUntilRaw) {
		label := models.OpenTimeLabel
		if table.OccupiedUntil != nil {
			label = *table.OccupiedUntil
		}
		return conflict("Conflict! Table is occupied until %s.", label)
	}
	for _, s := range slots {
		if s.At.Equal(at) {
			return conflict("Time slot %s is already reserved.", FormatClock(at))
		}
	}
	for _, s := range slots {
		diff := at.Sub(s.At)
		if diff < 0 {
			diff = -diff
		}
		if diff < MinReservationGap {
			return conflict("Conflict! Too close to reservation at %s. Must be 1 hour apart.", FormatClock(s.At))
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatHeadroom renders a duration as "1H 5M", "2H" or "42M".
func FormatHeadroom(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dH %dM", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dH", hours)
	}
	return fmt.Sprintf("%dM", minutes)
}

// FormatClock renders a wall-clock time in 12-hour form.
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
