package repository

import (
	"context"
	"errors"

	"github.com/yeremiapane/club-manager/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the schema the store relies on.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Table{},
		&models.Booking{},
		&models.HistoryEntry{},
		&models.Setting{},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *GormStore) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &table, nil
}

func (s *GormStore) FindTableByName(ctx context.Context, name string) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&table).Error; err != nil {
		return nil, notFound(err)
	}
	return &table, nil
}

func (s *GormStore) CreateTable(ctx context.Context, table *models.Table) error {
	return s.db.WithContext(ctx).Create(table).Error
}

func (s *GormStore) RenameTable(ctx context.Context, id uint, name string) error {
	res := s.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) OccupyTable(ctx context.Context, table *models.Table) error {
	res := s.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND status = ?", table.ID, models.TableStatusAvailable).
		Updates(table.SessionColumns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *GormStore) ReleaseTable(ctx context.Context, id uint) error {
	var cleared models.Table
	cleared.ClearSession()
	res := s.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND status = ?", id, models.TableStatusOccupied).
		Updates(cleared.SessionColumns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *GormStore) DeleteTable(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.TableStatusAvailable).
		Delete(&models.Table{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *GormStore) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.TableName != "" {
		q = q.Where("table_name = ?", filter.TableName)
	}
	if filter.Date != "" {
		q = q.Where("raw_date = ?", filter.Date)
	}

	var bookings []models.Booking
	if err := q.Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *GormStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (s *GormStore) CountBookings(ctx context.Context, kind models.BookingKind) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("kind = ?", kind).Count(&count).Error
	return count, err
}

func (s *GormStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *GormStore) DeleteBooking(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ReassignBookings(ctx context.Context, from, to string) error {
	return s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("table_name = ?", from).
		Update("table_name", to).Error
}

func (s *GormStore) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *GormStore) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) ClearHistory(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("id > ?", 0).Delete(&models.HistoryEntry{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *GormStore) UpsertSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
