package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yeremiapane/club-manager/clock"
	"github.com/yeremiapane/club-manager/models"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/utils"
)

// Sweeper seats scheduled guests automatically once their slot begins.
type Sweeper struct {
	queue    *QueueService
	clock    clock.Clock
	Interval time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	reported map[uint]bool
}

func NewSweeper(queue *QueueService, clk clock.Clock) *Sweeper {
	return &Sweeper{
		queue:    queue,
		clock:    clk,
		Interval: 5 * time.Second,
		reported: make(map[uint]bool),
	}
}

// Start runs Sweep on every tick until Stop or ctx is done. Calling Start
// on a running sweeper does nothing.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sw.cancel = cancel
	sw.done = make(chan struct{})
	ticker := sw.clock.NewTicker(sw.Interval)

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		defer sw.release(done)

		utils.InfoLogger.Infof("Auto-promotion sweeper started (every %s)", sw.Interval)
		for {
			select {
			case <-ticker.C():
				if _, err := sw.Sweep(ctx); err != nil {
					utils.ErrorLogger.Errorf("Sweep failed: %v", err)
				}
			case <-ctx.Done():
				utils.InfoLogger.Info("Auto-promotion sweeper stopped")
				return
			}
		}
	}(sw.done)
}

// release clears the running state if the loop that owns done is still
// the registered one, so a sweeper whose parent ctx ended can be started
// again.
func (sw *Sweeper) release(done chan struct{}) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.done == done {
		sw.cancel()
		sw.cancel, sw.done = nil, nil
	}
}

// Running reports whether the sweep loop is active.
func (sw *Sweeper) Running() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.cancel != nil
}

// Stop halts the loop and waits for an in-flight sweep to finish. The
// sweeper can be started again afterwards.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	cancel, done := sw.cancel, sw.done
	sw.cancel, sw.done = nil, nil
	sw.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sweep promotes every scheduled booking of today whose start time has
// passed by less than the grace window and whose table is free. It returns
// the tables it occupied.
func (sw *Sweeper) Sweep(ctx context.Context) ([]models.Table, error) {
	q := sw.queue
	now := sw.clock.Now()

	bookings, err := q.tables.store.ListBookings(ctx, repository.BookingFilter{
		Kind: models.BookingKindScheduled,
		Date: now.Format(models.DateLayout),
	})
	if err != nil {
		return nil, storeErr("list bookings", err, nil)
	}

	sw.forgetGone(bookings)

	var promoted []models.Table
	for _, slot := range ScheduledSlots(bookings, now.Location()) {
		if ctx.Err() != nil {
			return promoted, ctx.Err()
		}
		late := now.Sub(slot.At)
		if late < 0 {
			continue
		}
		if q.isOverdue(now, slot.At) {
			sw.reportOverdue(slot.Booking)
			continue
		}

		table, err := q.tables.store.FindTableByName(ctx, slot.Booking.TableName)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		} else if err != nil {
			return promoted, storeErr("find table", err, nil)
		}
		if table.IsOccupied() {
			continue
		}

		started, err := q.promote(ctx, slot.Booking.ID, table.ID, false)
		switch {
		case err == nil:
			utils.InfoLogger.Infof("Auto-started booking %d for %s on %s", slot.Booking.ID, slot.Booking.GuestName, table.Name)
			promoted = append(promoted, *started)
		case errors.Is(err, ErrTableUnavailable), errors.Is(err, ErrBookingNotFound):
			// Lost a race with an operator action; the next sweep re-reads.
		default:
			utils.ErrorLogger.Errorf("Auto-start of booking %d failed: %v", slot.Booking.ID, err)
		}
	}
	return promoted, nil
}

func (sw *Sweeper) reportOverdue(b models.Booking) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.reported[b.ID] {
		return
	}
	sw.reported[b.ID] = true
	utils.ErrorLogger.Warnf("Booking %d for %s on %s at %s passed its grace window and is still pending",
		b.ID, b.GuestName, b.TableName, b.RawTime)
}

// forgetGone drops overdue reports for bookings no longer pending today.
func (sw *Sweeper) forgetGone(pending []models.Booking) {
	live := make(map[uint]struct{}, len(pending))
	for _, b := range pending {
		live[b.ID] = struct{}{}
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for id := range sw.reported {
		if _, ok := live[id]; !ok {
			delete(sw.reported, id)
		}
	}
}
