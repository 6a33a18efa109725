package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinBody(kind, guest, table, date, at string) map[string]string {
	return map[string]string{
		"kind":            kind,
		"guest_name":      guest,
		"preferred_table": table,
		"date":            date,
		"time":            at,
	}
}

func TestJoinWaitlistUntilFull(t *testing.T) {
	app := setupApp(t)

	for i := 1; i <= 10; i++ {
		w, resp := app.do(t, http.MethodPost, "/bookings", joinBody("waitlist", fmt.Sprintf("Guest %d", i), "", "", ""), "")
		require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	}

	w, resp := app.do(t, http.MethodPost, "/bookings", joinBody("waitlist", "Guest 11", "", "", ""), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "waitlist is full", resp.Message)

	w, resp = app.do(t, http.MethodGet, "/bookings", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]interface{}), 10)
}

func TestReserveConflictMessages(t *testing.T) {
	app := setupApp(t)
	app.createTable(t, "A1")

	w, resp := app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Ana", "A1", "2026-03-10", "17:00"), "")
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	assert.Equal(t, 50.0, resp.Data.(map[string]interface{})["fee_collected"])

	w, resp = app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Budi", "A1", "2026-03-10", "17:00"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Time slot 5:00 PM is already reserved.", resp.Message)

	w, resp = app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Budi", "A1", "2026-03-10", "17:59"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Conflict! Too close to reservation at 5:00 PM. Must be 1 hour apart.", resp.Message)

	w, _ = app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Budi", "A1", "2026-03-10", "18:00"), "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w, resp = app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "", "A1", "2026-03-10", "20:00"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a name", resp.Message)

	w, _ = app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Cici", "Z9", "2026-03-10", "20:00"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBooking(t *testing.T) {
	app := setupApp(t)

	w, resp := app.do(t, http.MethodPost, "/bookings", joinBody("waitlist", "Ana", "", "", ""), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(resp.Data.(map[string]interface{})["id"].(float64))

	w, _ = app.do(t, http.MethodDelete, fmt.Sprintf("/bookings/%d", id), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = app.do(t, http.MethodDelete, fmt.Sprintf("/bookings/%d", id), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "booking not found", resp.Message)
}

func TestPromoteBooking(t *testing.T) {
	app := setupApp(t)
	tableID := app.createTable(t, "A1")
	token := app.adminToken(t)

	w, resp := app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Ana", "A1", "2026-03-10", "14:30"), "")
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	bookingID := uint(resp.Data.(map[string]interface{})["id"].(float64))

	url := fmt.Sprintf("/admin/bookings/%d/promote", bookingID)
	w, _ = app.do(t, http.MethodPost, url, map[string]uint{"table_id": tableID}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp = app.do(t, http.MethodPost, url, map[string]uint{"table_id": tableID}, token)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Ana", data["current_guest"])
	assert.Equal(t, 50.0, data["deductible"])

	w, _ = app.do(t, http.MethodPost, url, map[string]uint{"table_id": tableID}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(t, http.MethodPost, url, map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverdueList(t *testing.T) {
	app := setupApp(t)
	app.createTable(t, "A1")

	w, _ := app.do(t, http.MethodPost, "/bookings", joinBody("scheduled", "Late", "A1", "2026-03-10", "13:30"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := app.do(t, http.MethodGet, "/admin/bookings/overdue", nil, app.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	overdue := resp.Data.([]interface{})
	require.Len(t, overdue, 1)
	assert.Equal(t, "Late", overdue[0].(map[string]interface{})["guest_name"])
}
