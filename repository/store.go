package repository

import (
	"context"
	"errors"

	"github.com/yeremiapane/club-manager/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStale means a conditional write matched no row because the
	// record changed between read and write.
	ErrStale = errors.New("record changed concurrently")
)

type BookingFilter struct {
	Kind      models.BookingKind
	TableName string
	Date      string
}

// Store is the row store the scheduling core runs against. Implementations
// must return ErrNotFound for missing ids and ErrStale when a conditional
// status transition does not apply.
type Store interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id uint) (*models.Table, error)
	FindTableByName(ctx context.Context, name string) (*models.Table, error)
	CreateTable(ctx context.Context, table *models.Table) error
	RenameTable(ctx context.Context, id uint, name string) error
	// OccupyTable writes the session columns of table if it is still
	// available.
	OccupyTable(ctx context.Context, table *models.Table) error
	// ReleaseTable clears the session of an occupied table.
	ReleaseTable(ctx context.Context, id uint) error
	// DeleteTable removes an available table.
	DeleteTable(ctx context.Context, id uint) error

	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CountBookings(ctx context.Context, kind models.BookingKind) (int64, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id uint) error
	// ReassignBookings moves pending bookings from one table name to another.
	ReassignBookings(ctx context.Context, from, to string) error

	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)
	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	ClearHistory(ctx context.Context) (int64, error)

	ListSettings(ctx context.Context) ([]models.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) error

	// Transaction runs fn against a Store bound to one transaction. The
	// transaction commits if fn returns nil.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
