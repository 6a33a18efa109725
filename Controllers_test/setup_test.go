package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/club-manager/clock"
	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/repository"
	"github.com/yeremiapane/club-manager/router"
	"github.com/yeremiapane/club-manager/services"
	"github.com/yeremiapane/club-manager/utils"
)

var testSecret = []byte("controller-test-secret")

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testApp struct {
	router *gin.Engine
	clock  *clock.Fake
	tables *services.TableService
	queue  *services.QueueService
}

// setupApp menggunakan SQLite in-memory khusus untuk satu test
func setupApp(t *testing.T) *testApp {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))

	store := repository.NewGormStore(db)
	hub := kds.NewHub()
	fc := clock.NewFake(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))

	settings := services.NewSettingsService(store, services.Settings{HourlyRate: 100, ReservationFee: 50}, "admin", hub)
	require.NoError(t, settings.Load(context.Background(), "admin"))

	tables := services.NewTableService(store, fc, services.Billing{Policy: services.OverHourBanded}, settings, hub)
	queue := services.NewQueueService(tables, services.DefaultQueueConfig())

	r := router.SetupRouter(router.Dependencies{
		Tables:    tables,
		Queue:     queue,
		History:   services.NewHistoryService(store, hub),
		Settings:  settings,
		Hub:       hub,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	})
	return &testApp{router: r, clock: fc, tables: tables, queue: queue}
}

func (a *testApp) do(t *testing.T, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, utils.JSONResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp utils.JSONResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken("admin", utils.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// createTable lewat endpoint admin, mengembalikan ID meja
func (a *testApp) createTable(t *testing.T, name string) uint {
	t.Helper()
	w, resp := a.do(t, http.MethodPost, "/admin/tables", map[string]string{"name": name}, a.adminToken(t))
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	data := resp.Data.(map[string]interface{})
	return uint(data["id"].(float64))
}
