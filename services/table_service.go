package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/club-manager/clock"
	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/models"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/utils"
)

const defaultGuestName = "Walk-In"

// SessionMode selects how a session is bounded and billed.
type SessionMode struct {
	OpenEnded bool
	Hours     float64
}

func OpenEnded() SessionMode { return SessionMode{OpenEnded: true} }

func FixedDuration(hours float64) SessionMode { return SessionMode{Hours: hours} }

// Receipt is the outcome of finishing a session.
type Receipt struct {
	TableName      string  `json:"table_name"`
	GuestName      string  `json:"guest_name"`
	OpenEnded      bool    `json:"open_ended"`
	BilledMinutes  int     `json:"billed_minutes"`
	Cost           float64 `json:"cost"`
	Deductible     float64 `json:"deductible"`
	Amount         float64 `json:"amount"`
	HistoryEntryID uint    `json:"history_entry_id"`
}

// tableLocks serialises read-check-write sequences per table.
type tableLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *tableLocks) lock(id uint) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// with runs fn holding the lock of table id. Callers broadcast only after
// it returns.
func (l *tableLocks) with(id uint, fn func() error) error {
	unlock := l.lock(id)
	defer unlock()
	return fn()
}

type TableService struct {
	store    repository.Store
	clock    clock.Clock
	billing  Billing
	settings *SettingsService
	hub      Broadcaster
	locks    *tableLocks
}

func NewTableService(store repository.Store, clk clock.Clock, billing Billing, settings *SettingsService, hub Broadcaster) *TableService {
	return &TableService{
		store:    store,
		clock:    clk,
		billing:  billing,
		settings: settings,
		hub:      orNop(hub),
		locks:    newTableLocks(),
	}
}

func (s *TableService) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return nil, storeErr("list tables", err, nil)
	}
	return tables, nil
}

func (s *TableService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, storeErr("get table", err, ErrTableNotFound)
	}
	return table, nil
}

func (s *TableService) AddTable(ctx context.Context, name string) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if err := validateTableName(name); err != nil {
		return nil, err
	}
	if _, err := s.store.FindTableByName(ctx, name); err == nil {
		return nil, invalid("name", fmt.Sprintf("Table %s already exists", name))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("find table", err, nil)
	}

	table := &models.Table{Name: name, Status: models.TableStatusAvailable}
	if err := s.store.CreateTable(ctx, table); err != nil {
		return nil, storeErr("create table", err, nil)
	}

	utils.InfoLogger.Infof("New table created: %s", table.Name)
	s.hub.Broadcast(kds.EventTableCreate, table)
	return table, nil
}

// EditName renames a table and carries its pending bookings along.
func (s *TableService) EditName(ctx context.Context, id uint, name string) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if err := validateTableName(name); err != nil {
		return nil, err
	}

	var renamed *models.Table
	err := s.locks.with(id, func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			table, err := tx.GetTable(ctx, id)
			if err != nil {
				return err
			}
			if table.Name == name {
				renamed = table
				return nil
			}
			if other, err := tx.FindTableByName(ctx, name); err == nil && other.ID != id {
				return invalid("name", fmt.Sprintf("Table %s already exists", name))
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if err := tx.RenameTable(ctx, id, name); err != nil {
				return err
			}
			if err := tx.ReassignBookings(ctx, table.Name, name); err != nil {
				return err
			}
			table.Name = name
			renamed = table
			return nil
		})
	})
	if err != nil {
		return nil, storeErr("rename table", err, ErrTableNotFound)
	}

	utils.InfoLogger.Infof("Table %d renamed to %s", id, name)
	s.hub.Broadcast(kds.EventTableUpdate, renamed)
	return renamed, nil
}

func (s *TableService) DeleteTable(ctx context.Context, id uint) error {
	var table *models.Table
	err := s.locks.with(id, func() error {
		var err error
		table, err = s.store.GetTable(ctx, id)
		if err != nil {
			return storeErr("get table", err, ErrTableNotFound)
		}
		if table.IsOccupied() {
			return ErrTableOccupied
		}
		if err := s.store.DeleteTable(ctx, id); err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrTableOccupied
			}
			return storeErr("delete table", err, ErrTableNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.Infof("Table %d (%s) deleted", id, table.Name)
	s.hub.Broadcast(kds.EventTableDelete, map[string]interface{}{"table_id": id})
	return nil
}

// StartSession seats a walk-in guest on an available table.
func (s *TableService) StartSession(ctx context.Context, id uint, guestName string, mode SessionMode) (*models.Table, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		guestName = defaultGuestName
	}

	var started *models.Table
	err := s.locks.with(id, func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			table, err := tx.GetTable(ctx, id)
			if err != nil {
				return err
			}
			if err := s.occupy(ctx, tx, table, occupancy{guest: guestName, mode: mode, admit: true}); err != nil {
				return err
			}
			started = table
			return nil
		})
	})
	if err != nil {
		return nil, storeErr("start session", err, ErrTableNotFound)
	}

	utils.InfoLogger.Infof("Session started on %s for %s (until %s)", started.Name, guestName, *started.OccupiedUntil)
	s.hub.Broadcast(kds.EventTableUpdate, started)
	return started, nil
}

type occupancy struct {
	guest      string
	mode       SessionMode
	deductible float64
	// exclude is a booking that must not count against the new session,
	// namely the one being promoted.
	exclude uint
	// admit applies the reservation headroom rules; false only bounds the
	// session by the next reservation.
	admit bool
}

// occupy runs the Available -> Occupied transition inside tx and fills in
// table. The caller holds the table lock.
func (s *TableService) occupy(ctx context.Context, tx repository.Store, table *models.Table, o occupancy) error {
	if table.IsOccupied() {
		return ErrTableUnavailable
	}
	if table.SessionState() != models.SessionEmpty {
		return ErrInvalidSessionState
	}

	now := s.clock.Now()
	slots, err := s.todaySlots(ctx, tx, table.Name, now, o.exclude)
	if err != nil {
		return err
	}

	var window Window
	switch {
	case o.mode.OpenEnded && o.admit:
		window, err = AdmitOpenEnded(now, slots)
	case o.mode.OpenEnded:
		window = openEndedBound(now, slots)
	default:
		window, err = AdmitFixed(now, o.mode.Hours, slots)
	}
	if err != nil {
		return err
	}

	sessionType := models.SessionTypeWalkIn
	isOpen := o.mode.OpenEnded
	hours := 0.0
	if !isOpen {
		hours = o.mode.Hours
	}
	guest := o.guest
	label := window.Label
	deductible := o.deductible
	start := now

	table.Status = models.TableStatusOccupied
	table.SessionType = &sessionType
	table.IsOpenTime = &isOpen
	table.StartTime = &start
	table.OccupiedUntil = &label
	table.OccupiedUntilRaw = window.Until
	table.CurrentGuest = &guest
	table.Duration = &hours
	table.Deductible = &deductible

	if err := tx.OccupyTable(ctx, table); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return ErrTableUnavailable
		}
		return err
	}
	return nil
}

func (s *TableService) todaySlots(ctx context.Context, store repository.Store, tableName string, now time.Time, exclude uint) ([]Slot, error) {
	bookings, err := store.ListBookings(ctx, repository.BookingFilter{
		Kind:      models.BookingKindScheduled,
		TableName: tableName,
		Date:      now.Format(models.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	if exclude != 0 {
		kept := bookings[:0]
		for _, b := range bookings {
			if b.ID != exclude {
				kept = append(kept, b)
			}
		}
		bookings = kept
	}
	return ScheduledSlots(bookings, now.Location()), nil
}

// FinishSession bills the running session, records it in history and
// frees the table.
func (s *TableService) FinishSession(ctx context.Context, id uint) (*Receipt, error) {
	var (
		receipt Receipt
		table   *models.Table
	)
	err := s.locks.with(id, func() error {
		return s.store.Transaction(ctx, func(tx repository.Store) error {
			var err error
			table, err = tx.GetTable(ctx, id)
			if err != nil {
				return err
			}
			if !table.IsOccupied() {
				return ErrTableNotOccupied
			}
			if table.SessionState() != models.SessionActive {
				utils.ErrorLogger.Warnf("Table %s has a partial session record, refusing to bill it", table.Name)
				return ErrInvalidSessionState
			}

			receipt = s.bill(table, s.clock.Now())

			entry := &models.HistoryEntry{
				Table:     table.Name,
				GuestName: receipt.GuestName,
				Type:      models.HistoryTypeWalkIn,
				Status:    models.HistoryStatusCompleted,
				Amount:    receipt.Amount,
			}
			if err := tx.AppendHistory(ctx, entry); err != nil {
				return err
			}
			receipt.HistoryEntryID = entry.ID

			if err := tx.ReleaseTable(ctx, id); err != nil {
				if errors.Is(err, repository.ErrStale) {
					return ErrTableNotOccupied
				}
				return err
			}
			table.ClearSession()
			return nil
		})
	})
	if err != nil {
		return nil, storeErr("finish session", err, ErrTableNotFound)
	}

	utils.InfoLogger.Infof("Session on %s finished: %d min, cost %.2f, deductible %.2f, billed %.0f",
		receipt.TableName, receipt.BilledMinutes, receipt.Cost, receipt.Deductible, receipt.Amount)
	s.hub.Broadcast(kds.EventTableUpdate, table)
	s.hub.Broadcast(kds.EventSessionFinish, receipt)
	return &receipt, nil
}

func (s *TableService) bill(table *models.Table, now time.Time) Receipt {
	rate := s.settings.Get().HourlyRate
	r := Receipt{TableName: table.Name, GuestName: defaultGuestName}
	if table.CurrentGuest != nil && *table.CurrentGuest != "" {
		r.GuestName = *table.CurrentGuest
	}
	if table.Deductible != nil {
		r.Deductible = *table.Deductible
	}

	r.OpenEnded = table.IsOpenTime == nil || *table.IsOpenTime
	if r.OpenEnded {
		if table.StartTime != nil {
			r.BilledMinutes = BilledMinutes(now.Sub(*table.StartTime))
		}
		r.Cost = s.billing.Cost(r.BilledMinutes, rate)
	} else {
		hours := 1.0
		if table.Duration != nil && *table.Duration > 0 {
			hours = *table.Duration
		}
		r.BilledMinutes = int(hours * 60)
		r.Cost = s.billing.FixedCost(hours, rate)
	}
	r.Amount = Settle(r.Cost, r.Deductible)
	return r
}

// NextReservation returns today's next scheduled booking for the table.
func (s *TableService) NextReservation(ctx context.Context, id uint) (*Slot, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, storeErr("get table", err, ErrTableNotFound)
	}
	now := s.clock.Now()
	slots, err := s.todaySlots(ctx, s.store, table.Name, now, 0)
	if err != nil {
		return nil, storeErr("list bookings", err, nil)
	}
	return NextSlot(now, slots), nil
}

func validateTableName(name string) error {
	switch {
	case name == "":
		return invalid("name", "Table name is required")
	case name == models.AnyTable:
		return invalid("name", fmt.Sprintf("%q is reserved", models.AnyTable))
	}
	return nil
}
