package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/club-manager/controllers"
	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/middlewares"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

// Dependencies is everything the HTTP layer needs from bootstrap.
type Dependencies struct {
	Tables   *services.TableService
	Queue    *services.QueueService
	History  *services.HistoryService
	Settings *services.SettingsService
	Hub      *kds.Hub

	JWTSecret      []byte
	TokenTTL       time.Duration
	CORSOrigin     string
	TrustedProxies []string
}

func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		utils.ErrorLogger.Warnf("Invalid trusted proxies %v: %v", d.TrustedProxies, err)
	}

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, time.Second).RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(d.Settings, d.JWTSecret, d.TokenTTL)
	tableCtrl := controllers.NewTableController(d.Tables)
	bookingCtrl := controllers.NewBookingController(d.Queue)
	historyCtrl := controllers.NewHistoryController(d.History)
	settingsCtrl := controllers.NewSettingsController(d.Settings)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login
	r.POST("/login", middlewares.NewStrictRateLimiter(12*time.Second, 5), userCtrl.Login)

	// Floor display feed
	if d.Hub != nil {
		r.GET("/ws", controllers.FloorFeedHandler(d.Hub))
	}

	// Front desk
	r.GET("/tables", tableCtrl.GetAllTables)
	r.POST("/tables/:table_id/start", tableCtrl.StartSession)
	r.POST("/tables/:table_id/finish", tableCtrl.FinishSession)
	r.GET("/tables/:table_id/next-reservation", tableCtrl.NextReservation)

	r.GET("/bookings", bookingCtrl.GetBookings)
	r.POST("/bookings", bookingCtrl.JoinQueue)
	r.DELETE("/bookings/:booking_id", bookingCtrl.CancelBooking)

	r.GET("/settings", settingsCtrl.GetSettings)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(d.JWTSecret), middlewares.RoleCheck(utils.RoleAdmin), middlewares.AuditLogger())
	{
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.RenameTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.POST("/bookings/:booking_id/promote", bookingCtrl.PromoteBooking)
		admin.GET("/bookings/overdue", bookingCtrl.GetOverdue)

		admin.GET("/history", historyCtrl.GetHistory)
		admin.DELETE("/history", historyCtrl.ClearHistory)
		admin.GET("/earnings", historyCtrl.GetEarnings)

		admin.PUT("/settings/hourly-rate", settingsCtrl.UpdateHourlyRate)
		admin.PUT("/settings/reservation-fee", settingsCtrl.UpdateReservationFee)
		admin.PUT("/settings/password", settingsCtrl.ChangePassword)
	}

	return r
}
