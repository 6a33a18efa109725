package models

import (
	"fmt"
	"time"
)

type BookingKind string

const (
	BookingKindScheduled BookingKind = "scheduled"
	BookingKindWaitlist  BookingKind = "waitlist"

	// AnyTable is the preferred table of a waitlist guest with no preference.
	AnyTable = "Any Table"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking is the stored form of a pending guest. Use Request to get the
// typed variant instead of reading Kind-dependent columns directly.
type Booking struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	GuestName    string      `gorm:"type:varchar(255);not null" json:"guest_name"`
	Kind         BookingKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	TableName    string      `gorm:"type:varchar(50);not null;index:idx_booking_slot" json:"table_name"`
	RawDate      string      `gorm:"type:varchar(10);not null;index:idx_booking_slot" json:"raw_date"`
	RawTime      string      `gorm:"type:varchar(5);not null" json:"raw_time"`
	FeeCollected float64     `gorm:"type:decimal(10,2);not null;default:0" json:"fee_collected"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
}

// BookingRequest is a closed sum type: ScheduledRequest or WaitlistRequest.
type BookingRequest interface {
	Kind() BookingKind
	bookingRequest()
}

type ScheduledRequest struct {
	Table string
	At    time.Time
}

type WaitlistRequest struct {
	PreferredTable string
	JoinedAt       time.Time
}

func (ScheduledRequest) Kind() BookingKind { return BookingKindScheduled }
func (ScheduledRequest) bookingRequest()   {}
func (WaitlistRequest) Kind() BookingKind  { return BookingKindWaitlist }
func (WaitlistRequest) bookingRequest()    {}

// Request decodes the row into its variant, interpreting the stored date
// and time in loc.
func (b *Booking) Request(loc *time.Location) (BookingRequest, error) {
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, b.RawDate+" "+b.RawTime, loc)
	if err != nil {
		return nil, fmt.Errorf("booking %d: bad date/time %q %q: %w", b.ID, b.RawDate, b.RawTime, err)
	}
	switch b.Kind {
	case BookingKindScheduled:
		return ScheduledRequest{Table: b.TableName, At: at}, nil
	case BookingKindWaitlist:
		return WaitlistRequest{PreferredTable: b.TableName, JoinedAt: at}, nil
	default:
		return nil, fmt.Errorf("booking %d: unknown kind %q", b.ID, b.Kind)
	}
}

// HistoryType is the label written to history for this booking.
func (b *Booking) HistoryType() string {
	if b.Kind == BookingKindWaitlist {
		return HistoryTypeWaitlist
	}
	return HistoryTypeReservation
}
