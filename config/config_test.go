package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100.0, cfg.Club.HourlyRate)
	assert.Equal(t, 50.0, cfg.Club.ReservationFee)
	assert.Equal(t, 10, cfg.Club.WaitlistCap)
	assert.Equal(t, 15*time.Minute, cfg.Club.GraceWindow)
	assert.Equal(t, 5*time.Second, cfg.Club.SweepInterval)
	assert.Equal(t, "banded", cfg.Club.OverHourPolicy)
	assert.Equal(t, "admin", cfg.Admin.Username)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CLUB_HOURLY_RATE", "150")
	t.Setenv("CLUB_GRACE_WINDOW", "20m")
	t.Setenv("CLUB_DEDUCT_WAITLIST_FEE", "true")
	t.Setenv("CLUB_TIMEZONE", "UTC")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 150.0, cfg.Club.HourlyRate)
	assert.Equal(t, 20*time.Minute, cfg.Club.GraceWindow)
	assert.True(t, cfg.Club.DeductWaitlistFee)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)

	loc, err := cfg.Club.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CLUB_HOURLY_RATE", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("CLUB_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}

func TestInitDB(t *testing.T) {
	db, err := InitDB(DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())

	_, err = InitDB(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
