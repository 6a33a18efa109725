package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yeremiapane/club-manager/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Club     ClubConfig     `mapstructure:"club"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ClubConfig holds the venue rules. Hourly rate and reservation fee are
// only seeds; once changed through the admin API the stored values win.
type ClubConfig struct {
	HourlyRate        float64       `mapstructure:"hourly_rate"`
	ReservationFee    float64       `mapstructure:"reservation_fee"`
	WaitlistCap       int           `mapstructure:"waitlist_cap"`
	WaitlistFee       float64       `mapstructure:"waitlist_fee"`
	DeductWaitlistFee bool          `mapstructure:"deduct_waitlist_fee"`
	GraceWindow       time.Duration `mapstructure:"grace_window"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	OverHourPolicy    string        `mapstructure:"over_hour_policy"`
	Timezone          string        `mapstructure:"timezone"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1"})
	v.SetDefault("server.cors_origin", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "club.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("club.hourly_rate", 100.0)
	v.SetDefault("club.reservation_fee", 50.0)
	v.SetDefault("club.waitlist_cap", 10)
	v.SetDefault("club.waitlist_fee", 0.0)
	v.SetDefault("club.deduct_waitlist_fee", false)
	v.SetDefault("club.grace_window", 15*time.Minute)
	v.SetDefault("club.sweep_interval", 5*time.Second)
	v.SetDefault("club.over_hour_policy", "banded")
	v.SetDefault("club.timezone", "Local")

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin")

	v.SetDefault("log.level", "info")
}

// Load reads .env, an optional ./config/config.yaml and the environment,
// in increasing precedence. SERVER_PORT, CLUB_HOURLY_RATE and so on map
// onto the nested keys; PORT, GIN_MODE and DB_DSN are accepted as well.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf("No .env file loaded: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range map[string][]string{
		"server.port":     {"SERVER_PORT", "PORT"},
		"server.mode":     {"SERVER_MODE", "GIN_MODE"},
		"database.driver": {"DATABASE_DRIVER", "DB_DRIVER"},
		"database.dsn":    {"DATABASE_DSN", "DB_DSN"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Club.HourlyRate < 0:
		return errors.New("club.hourly_rate must not be negative")
	case c.Club.ReservationFee < 0:
		return errors.New("club.reservation_fee must not be negative")
	case c.Club.WaitlistFee < 0:
		return errors.New("club.waitlist_fee must not be negative")
	case c.Club.WaitlistCap < 0:
		return errors.New("club.waitlist_cap must not be negative")
	case c.Club.GraceWindow <= 0:
		return errors.New("club.grace_window must be positive")
	case c.Club.SweepInterval <= 0:
		return errors.New("club.sweep_interval must be positive")
	case c.JWT.Secret == "":
		return errors.New("jwt.secret is required")
	}
	if _, err := c.Club.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone reservations are interpreted in.
func (c ClubConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("club.timezone: %w", err)
	}
	return loc, nil
}

// InitDB opens the configured database. MySQL is used in production,
// SQLite for local runs.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer at a time.
		sqlDB.SetMaxOpenConns(1)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	utils.InfoLogger.Infof("Connected to %s database", cfg.Driver)
	return db, nil
}
