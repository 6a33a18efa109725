package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/clock"
	"github.com/yeremiapane/club-manager/config"
	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/router"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLevel(cfg.Log.Level)

	loc, err := cfg.Club.Location()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid timezone: %v", err)
	}
	policy, err := services.ParseOverHourPolicy(cfg.Club.OverHourPolicy)
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid billing config: %v", err)
	}

	// Initialize DB
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed.")

	store := repository.NewGormStore(db)
	hub := kds.NewHub()
	clk := clock.NewReal(loc)

	settings := services.NewSettingsService(store, services.Settings{
		HourlyRate:     cfg.Club.HourlyRate,
		ReservationFee: cfg.Club.ReservationFee,
	}, cfg.Admin.Username, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := settings.Load(ctx, cfg.Admin.Password); err != nil {
		utils.ErrorLogger.Fatalf("Failed to load settings: %v", err)
	}

	tables := services.NewTableService(store, clk, services.Billing{Policy: policy}, settings, hub)
	queue := services.NewQueueService(tables, services.QueueConfig{
		WaitlistCap:       cfg.Club.WaitlistCap,
		WaitlistFee:       cfg.Club.WaitlistFee,
		DeductWaitlistFee: cfg.Club.DeductWaitlistFee,
		GraceWindow:       cfg.Club.GraceWindow,
	})
	history := services.NewHistoryService(store, hub)

	sweeper := services.NewSweeper(queue, clk)
	sweeper.Interval = cfg.Club.SweepInterval
	sweeper.Start(ctx)
	defer sweeper.Stop()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(router.Dependencies{
		Tables:         tables,
		Queue:          queue,
		History:        history,
		Settings:       settings,
		Hub:            hub,
		JWTSecret:      []byte(cfg.JWT.Secret),
		TokenTTL:       cfg.JWT.Expiration,
		CORSOrigin:     cfg.Server.CORSOrigin,
		TrustedProxies: cfg.Server.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	utils.InfoLogger.Info("Shutting down")
	sweeper.Stop()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Error on server shutdown: %v", err)
	}
}
