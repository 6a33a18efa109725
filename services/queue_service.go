package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/models"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/utils"
)

type QueueConfig struct {
	WaitlistCap int
	// WaitlistFee is charged when joining the waitlist.
	WaitlistFee float64
	// DeductWaitlistFee credits WaitlistFee against the bill when a
	// waitlist guest is promoted.
	DeductWaitlistFee bool
	GraceWindow       time.Duration
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		WaitlistCap: 10,
		GraceWindow: 15 * time.Minute,
	}
}

type JoinRequest struct {
	Kind           models.BookingKind `json:"kind"`
	GuestName      string             `json:"guest_name"`
	PreferredTable string             `json:"preferred_table"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
}

type QueueService struct {
	tables *TableService
	cfg    QueueConfig

	// waitMu guards the waitlist count-then-insert.
	waitMu sync.Mutex
}

func NewQueueService(tables *TableService, cfg QueueConfig) *QueueService {
	return &QueueService{tables: tables, cfg: cfg}
}

func (q *QueueService) Config() QueueConfig {
	return q.cfg
}

// ListBookings returns scheduled bookings by requested date and time,
// followed by the waitlist in arrival order.
func (q *QueueService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	all, err := q.tables.store.ListBookings(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, storeErr("list bookings", err, nil)
	}

	var scheduled, waitlist []models.Booking
	for _, b := range all {
		switch b.Kind {
		case models.BookingKindScheduled:
			scheduled = append(scheduled, b)
		case models.BookingKindWaitlist:
			waitlist = append(waitlist, b)
		}
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		if scheduled[i].RawDate != scheduled[j].RawDate {
			return scheduled[i].RawDate < scheduled[j].RawDate
		}
		return scheduled[i].RawTime < scheduled[j].RawTime
	})
	sort.SliceStable(waitlist, func(i, j int) bool { return waitlist[i].ID < waitlist[j].ID })

	return append(scheduled, waitlist...), nil
}

func (q *QueueService) Join(ctx context.Context, req JoinRequest) (*models.Booking, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.PreferredTable = strings.TrimSpace(req.PreferredTable)
	if req.GuestName == "" {
		return nil, invalid("guestName", "Please enter a name")
	}

	var (
		booking *models.Booking
		err     error
	)
	switch req.Kind {
	case models.BookingKindWaitlist:
		booking, err = q.joinWaitlist(ctx, req)
	case models.BookingKindScheduled:
		booking, err = q.reserve(ctx, req)
	default:
		return nil, invalid("kind", "Booking kind must be scheduled or waitlist")
	}
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Booking %d created: %s for %s on %s %s %s (fee %.2f)",
		booking.ID, booking.Kind, booking.GuestName, booking.TableName, booking.RawDate, booking.RawTime, booking.FeeCollected)
	q.tables.hub.Broadcast(kds.EventBookingUpdate, booking)
	return booking, nil
}

func (q *QueueService) joinWaitlist(ctx context.Context, req JoinRequest) (*models.Booking, error) {
	store := q.tables.store
	preferred := req.PreferredTable
	if preferred == "" {
		preferred = models.AnyTable
	}
	if preferred != models.AnyTable {
		if _, err := store.FindTableByName(ctx, preferred); err != nil {
			return nil, storeErr("find table", err, invalid("preferredTable", "Unknown table "+preferred))
		}
	}

	q.waitMu.Lock()
	defer q.waitMu.Unlock()

	now := q.tables.clock.Now()
	booking := &models.Booking{
		GuestName:    req.GuestName,
		Kind:         models.BookingKindWaitlist,
		TableName:    preferred,
		RawDate:      now.Format(models.DateLayout),
		RawTime:      now.Format(models.TimeLayout),
		FeeCollected: q.cfg.WaitlistFee,
	}
	err := store.Transaction(ctx, func(tx repository.Store) error {
		count, err := tx.CountBookings(ctx, models.BookingKindWaitlist)
		if err != nil {
			return err
		}
		if q.cfg.WaitlistCap > 0 && count >= int64(q.cfg.WaitlistCap) {
			return ErrQueueFull
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &models.HistoryEntry{
			Table:     preferred,
			GuestName: booking.GuestName,
			Type:      models.HistoryTypeWaitlist,
			Status:    models.HistoryStatusJoinedWaitlist,
			Amount:    booking.FeeCollected,
		})
	})
	if err != nil {
		return nil, storeErr("join waitlist", err, nil)
	}
	return booking, nil
}

func (q *QueueService) reserve(ctx context.Context, req JoinRequest) (*models.Booking, error) {
	if req.Date == "" || req.Time == "" {
		return nil, invalid("date", "Select date and time")
	}
	if req.PreferredTable == "" || req.PreferredTable == models.AnyTable {
		return nil, invalid("preferredTable", "Select a table for the reservation")
	}

	now := q.tables.clock.Now()
	at, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, req.Date+" "+req.Time, now.Location())
	if err != nil {
		return nil, invalid("time", "Invalid date or time")
	}

	store := q.tables.store
	table, err := store.FindTableByName(ctx, req.PreferredTable)
	if err != nil {
		return nil, storeErr("find table", err, ErrTableNotFound)
	}

	fee := q.tables.settings.Get().ReservationFee
	booking := &models.Booking{
		GuestName:    req.GuestName,
		Kind:         models.BookingKindScheduled,
		TableName:    table.Name,
		RawDate:      at.Format(models.DateLayout),
		RawTime:      at.Format(models.TimeLayout),
		FeeCollected: fee,
	}
	err = q.tables.locks.with(table.ID, func() error {
		return store.Transaction(ctx, func(tx repository.Store) error {
			current, err := tx.GetTable(ctx, table.ID)
			if err != nil {
				return err
			}
			existing, err := tx.ListBookings(ctx, repository.BookingFilter{
				Kind:      models.BookingKindScheduled,
				TableName: current.Name,
				Date:      booking.RawDate,
			})
			if err != nil {
				return err
			}
			if err := AdmitBooking(now, at, current, ScheduledSlots(existing, now.Location())); err != nil {
				return err
			}
			if err := tx.CreateBooking(ctx, booking); err != nil {
				return err
			}
			return tx.AppendHistory(ctx, &models.HistoryEntry{
				Table:     current.Name,
				GuestName: booking.GuestName,
				Type:      models.HistoryTypeReservation,
				Status:    models.HistoryStatusReserved,
				Amount:    fee,
			})
		})
	})
	if err != nil {
		return nil, storeErr("reserve", err, ErrTableNotFound)
	}
	return booking, nil
}

// Cancel removes a pending booking of either kind and records it.
func (q *QueueService) Cancel(ctx context.Context, id uint) error {
	var canceled *models.Booking
	err := q.tables.store.Transaction(ctx, func(tx repository.Store) error {
		booking, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, &models.HistoryEntry{
			Table:     booking.TableName,
			GuestName: booking.GuestName,
			Type:      booking.HistoryType(),
			Status:    models.HistoryStatusCanceled,
			Amount:    0,
		}); err != nil {
			return err
		}
		canceled = booking
		return tx.DeleteBooking(ctx, id)
	})
	if err != nil {
		return storeErr("cancel booking", err, ErrBookingNotFound)
	}

	utils.InfoLogger.Infof("Booking %d for %s canceled", id, canceled.GuestName)
	q.tables.hub.Broadcast(kds.EventBookingUpdate, map[string]interface{}{"booking_id": id, "status": models.HistoryStatusCanceled})
	return nil
}

// Promote seats a pending guest on tableID as an open-ended session and
// removes the booking. Scheduled bookings credit the fee already paid.
func (q *QueueService) Promote(ctx context.Context, bookingID, tableID uint) (*models.Table, error) {
	return q.promote(ctx, bookingID, tableID, true)
}

func (q *QueueService) promote(ctx context.Context, bookingID, tableID uint, admit bool) (*models.Table, error) {
	var (
		table   *models.Table
		booking *models.Booking
	)
	err := q.tables.locks.with(tableID, func() error {
		return q.tables.store.Transaction(ctx, func(tx repository.Store) error {
			var err error
			booking, err = tx.GetBooking(ctx, bookingID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			} else if err != nil {
				return err
			}
			table, err = tx.GetTable(ctx, tableID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTableNotFound
			} else if err != nil {
				return err
			}
			if table.IsOccupied() {
				return ErrTableUnavailable
			}
			o := occupancy{
				guest:      booking.GuestName,
				mode:       OpenEnded(),
				deductible: q.deductibleFor(booking),
				exclude:    booking.ID,
				admit:      admit,
			}
			if err := q.tables.occupy(ctx, tx, table, o); err != nil {
				return err
			}
			return tx.DeleteBooking(ctx, booking.ID)
		})
	})
	if err != nil {
		return nil, storeErr("promote booking", err, nil)
	}

	utils.InfoLogger.Infof("Booking %d (%s, %s) promoted to %s, deductible %.2f",
		booking.ID, booking.Kind, booking.GuestName, table.Name, *table.Deductible)
	q.tables.hub.Broadcast(kds.EventTableUpdate, table)
	q.tables.hub.Broadcast(kds.EventBookingUpdate, map[string]interface{}{"booking_id": booking.ID, "status": "promoted"})
	return table, nil
}

func (q *QueueService) deductibleFor(b *models.Booking) float64 {
	switch b.Kind {
	case models.BookingKindScheduled:
		return b.FeeCollected
	case models.BookingKindWaitlist:
		if q.cfg.DeductWaitlistFee {
			return b.FeeCollected
		}
		return 0
	}
	return 0
}

// Overdue lists scheduled bookings whose auto-start grace window has
// passed. They stay pending until staff promote or cancel them.
func (q *QueueService) Overdue(ctx context.Context) ([]models.Booking, error) {
	bookings, err := q.tables.store.ListBookings(ctx, repository.BookingFilter{Kind: models.BookingKindScheduled})
	if err != nil {
		return nil, storeErr("list bookings", err, nil)
	}
	now := q.tables.clock.Now()
	var overdue []models.Booking
	for _, s := range ScheduledSlots(bookings, now.Location()) {
		if q.isOverdue(now, s.At) {
			overdue = append(overdue, s.Booking)
		}
	}
	return overdue, nil
}

func (q *QueueService) isOverdue(now, at time.Time) bool {
	return now.Sub(at) >= q.cfg.GraceWindow
}
