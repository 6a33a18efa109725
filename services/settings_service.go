package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/models"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

// Settings is a snapshot of the admin-editable configuration. Version
// increases on every accepted update.
type Settings struct {
	HourlyRate     float64 `json:"hourly_rate"`
	ReservationFee float64 `json:"reservation_fee"`
	Version        uint64  `json:"version"`
}

// SettingsService owns the process-wide settings. It is loaded once from
// the store and written through on update.
type SettingsService struct {
	store repository.Store
	hub   Broadcaster

	adminUsername string

	mu           sync.RWMutex
	current      Settings
	passwordHash []byte
}

func NewSettingsService(store repository.Store, defaults Settings, adminUsername string, hub Broadcaster) *SettingsService {
	defaults.Version = 0
	return &SettingsService{
		store:         store,
		hub:           orNop(hub),
		adminUsername: adminUsername,
		current:       defaults,
	}
}

// Load reads persisted settings over the defaults. When no admin password
// has been stored yet, defaultPassword is hashed and saved.
func (s *SettingsService) Load(ctx context.Context, defaultPassword string) error {
	rows, err := s.store.ListSettings(ctx)
	if err != nil {
		return storeErr("list settings", err, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		switch row.Key {
		case models.SettingHourlyRate:
			if v, err := parseAmount(row.Value); err == nil {
				s.current.HourlyRate = v
			} else {
				utils.ErrorLogger.Warnf("Ignoring stored hourly rate %q: %v", row.Value, err)
			}
		case models.SettingReservationFee:
			if v, err := parseAmount(row.Value); err == nil {
				s.current.ReservationFee = v
			} else {
				utils.ErrorLogger.Warnf("Ignoring stored reservation fee %q: %v", row.Value, err)
			}
		case models.SettingAdminPassword:
			s.passwordHash = []byte(row.Value)
		}
	}
	s.current.Version++

	if len(s.passwordHash) == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := s.store.UpsertSetting(ctx, models.SettingAdminPassword, string(hash)); err != nil {
			return storeErr("seed admin password", err, nil)
		}
		s.passwordHash = hash
		utils.InfoLogger.Info("Seeded default admin password")
	}
	return nil
}

func (s *SettingsService) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) UpdateHourlyRate(ctx context.Context, raw string) (Settings, error) {
	v, err := parseAmount(raw)
	if err != nil {
		return Settings{}, invalid("hourlyRate", "Please enter a valid number")
	}
	return s.update(ctx, models.SettingHourlyRate, v, func(st *Settings) { st.HourlyRate = v })
}

func (s *SettingsService) UpdateReservationFee(ctx context.Context, raw string) (Settings, error) {
	v, err := parseAmount(raw)
	if err != nil {
		return Settings{}, invalid("reservationFee", "Please enter a valid number")
	}
	return s.update(ctx, models.SettingReservationFee, v, func(st *Settings) { st.ReservationFee = v })
}

func (s *SettingsService) update(ctx context.Context, key string, v float64, apply func(*Settings)) (Settings, error) {
	s.mu.Lock()
	if err := s.store.UpsertSetting(ctx, key, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		s.mu.Unlock()
		return Settings{}, storeErr("upsert "+key, err, nil)
	}
	apply(&s.current)
	s.current.Version++
	snapshot := s.current
	s.mu.Unlock()

	utils.InfoLogger.Infof("Setting %s updated to %v (version %d)", key, v, snapshot.Version)
	s.hub.Broadcast(kds.EventSettingsUpdate, snapshot)
	return snapshot, nil
}

func (s *SettingsService) Authenticate(username, password string) error {
	s.mu.RLock()
	hash := s.passwordHash
	s.mu.RUnlock()

	if username != s.adminUsername || len(hash) == 0 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *SettingsService) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if err := s.Authenticate(s.adminUsername, current); err != nil {
		return invalid("current", "Current password is incorrect.")
	}
	if len(next) < minPasswordLength {
		return invalid("new", "New password must be at least 4 characters.")
	}
	if next != confirm {
		return invalid("confirm", "New passwords do not match.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.UpsertSetting(ctx, models.SettingAdminPassword, string(hash)); err != nil {
		return storeErr("upsert admin password", err, nil)
	}
	s.passwordHash = hash
	utils.InfoLogger.Info("Admin password changed")
	return nil
}

func parseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
