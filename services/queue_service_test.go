package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/club-manager/models"
)

func joinWaitlist(env *testEnv, guest, preferred string) (*models.Booking, error) {
	return env.queue.Join(env.ctx, JoinRequest{
		Kind:           models.BookingKindWaitlist,
		GuestName:      guest,
		PreferredTable: preferred,
	})
}

func TestWaitlistCap(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())

	for i := 1; i <= 10; i++ {
		b, err := joinWaitlist(env, fmt.Sprintf("Guest %d", i), "")
		require.NoError(t, err, "join %d", i)
		assert.Equal(t, models.AnyTable, b.TableName)
	}

	_, err := joinWaitlist(env, "Guest 11", "")
	assert.ErrorIs(t, err, ErrQueueFull)

	bookings, err := env.queue.ListBookings(env.ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 10)
	assert.Equal(t, "Guest 1", bookings[0].GuestName)
}

func TestWaitlistCapIgnoresScheduled(t *testing.T) {
	env := newTestEnv(t, QueueConfig{WaitlistCap: 1, GraceWindow: 15 * time.Minute})
	env.addTable(t, "Table 1")
	env.reserveAt(t, "Table 1", "Booker", 2*time.Hour)

	_, err := joinWaitlist(env, "First", "")
	require.NoError(t, err)
	_, err = joinWaitlist(env, "Second", "")
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestJoinValidation(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")

	var ve *ValidationError
	tests := []struct {
		name  string
		req   JoinRequest
		field string
	}{
		{"no guest", JoinRequest{Kind: models.BookingKindWaitlist}, "guestName"},
		{"bad kind", JoinRequest{Kind: "vip", GuestName: "Ana"}, "kind"},
		{"unknown preferred table", JoinRequest{Kind: models.BookingKindWaitlist, GuestName: "Ana", PreferredTable: "Nope"}, "preferredTable"},
		{"no date", JoinRequest{Kind: models.BookingKindScheduled, GuestName: "Ana", PreferredTable: "Table 1"}, "date"},
		{"any table", JoinRequest{Kind: models.BookingKindScheduled, GuestName: "Ana", PreferredTable: models.AnyTable, Date: "2026-03-10", Time: "18:00"}, "preferredTable"},
		{"bad time", JoinRequest{Kind: models.BookingKindScheduled, GuestName: "Ana", PreferredTable: "Table 1", Date: "2026-03-10", Time: "25:99"}, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.queue.Join(env.ctx, tt.req)
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := env.queue.Join(env.ctx, JoinRequest{
		Kind: models.BookingKindScheduled, GuestName: "Ana", PreferredTable: "Ghost", Date: "2026-03-10", Time: "18:00",
	})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestReserveRecordsFeeAndHistory(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")

	b := env.reserveAt(t, "Table 1", "Dewi", 3*time.Hour)
	assert.Equal(t, models.BookingKindScheduled, b.Kind)
	assert.Equal(t, "2026-03-10", b.RawDate)
	assert.Equal(t, "17:00", b.RawTime)
	assert.Equal(t, 50.0, b.FeeCollected)

	history, err := env.history.ListHistory(env.ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryStatusReserved, history[0].Status)
	assert.Equal(t, models.HistoryTypeReservation, history[0].Type)
	assert.Equal(t, 50.0, history[0].Amount)
}

func TestReserveConflicts(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")
	env.addTable(t, "Table 2")
	env.reserveAt(t, "Table 1", "Eka", 3*time.Hour)

	reserve := func(table string, offset time.Duration) error {
		at := testNow.Add(offset)
		_, err := env.queue.Join(env.ctx, JoinRequest{
			Kind:           models.BookingKindScheduled,
			GuestName:      "Fajar",
			PreferredTable: table,
			Date:           at.Format(models.DateLayout),
			Time:           at.Format(models.TimeLayout),
		})
		return err
	}

	var ce *ConflictError
	err := reserve("Table 1", 3*time.Hour)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Time slot 5:00 PM is already reserved.", ce.Reason)

	err = reserve("Table 1", 3*time.Hour+59*time.Minute)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Conflict! Too close to reservation at 5:00 PM. Must be 1 hour apart.", ce.Reason)

	assert.ErrorAs(t, reserve("Table 1", 2*time.Hour+1*time.Minute), &ce)

	require.NoError(t, reserve("Table 1", 4*time.Hour))
	require.NoError(t, reserve("Table 1", 2*time.Hour))
	require.NoError(t, reserve("Table 2", 3*time.Hour))

	// Same wall time on another day does not collide.
	require.NoError(t, reserve("Table 1", 27*time.Hour))
}

func TestReserveDuringBoundedSession(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	table := env.addTable(t, "Table 1")

	_, err := env.tables.StartSession(env.ctx, table.ID, "Ana", FixedDuration(2))
	require.NoError(t, err)

	at := testNow.Add(90 * time.Minute)
	_, err = env.queue.Join(env.ctx, JoinRequest{
		Kind:           models.BookingKindScheduled,
		GuestName:      "Budi",
		PreferredTable: "Table 1",
		Date:           at.Format(models.DateLayout),
		Time:           at.Format(models.TimeLayout),
	})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Conflict! Table is occupied until 4:00 PM.", ce.Reason)

	env.reserveAt(t, "Table 1", "Budi", 2*time.Hour)
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")
	scheduled := env.reserveAt(t, "Table 1", "Gita", 2*time.Hour)
	waiting, err := joinWaitlist(env, "Hadi", "Table 1")
	require.NoError(t, err)

	require.NoError(t, env.queue.Cancel(env.ctx, scheduled.ID))
	require.NoError(t, env.queue.Cancel(env.ctx, waiting.ID))
	assert.ErrorIs(t, env.queue.Cancel(env.ctx, waiting.ID), ErrBookingNotFound)

	bookings, err := env.queue.ListBookings(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	history, err := env.history.ListHistory(env.ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, models.HistoryStatusCanceled, history[0].Status)
	assert.Equal(t, models.HistoryTypeWaitlist, history[0].Type)
	assert.Equal(t, models.HistoryStatusCanceled, history[1].Status)
	assert.Equal(t, models.HistoryTypeReservation, history[1].Type)
	assert.Zero(t, history[1].Amount)
}

func TestPromoteScheduledDeductsFee(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	table := env.addTable(t, "Table 1")
	b := env.reserveAt(t, "Table 1", "Indah", 30*time.Minute)

	// Seating the holder early is not blocked by their own slot.
	promoted, err := env.queue.Promote(env.ctx, b.ID, table.ID)
	require.NoError(t, err)
	assert.Equal(t, "Indah", *promoted.CurrentGuest)
	assert.Equal(t, 50.0, *promoted.Deductible)
	assert.True(t, *promoted.IsOpenTime)

	bookings, err := env.queue.ListBookings(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	env.clock.Advance(3 * time.Minute)
	receipt, err := env.tables.FinishSession(env.ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, receipt.Cost)
	assert.Equal(t, 0.0, receipt.Amount)
}

func TestPromoteWaitlist(t *testing.T) {
	t.Run("fee not deducted by default", func(t *testing.T) {
		env := newTestEnv(t, QueueConfig{WaitlistCap: 10, WaitlistFee: 20, GraceWindow: 15 * time.Minute})
		table := env.addTable(t, "Table 1")
		b, err := joinWaitlist(env, "Joko", "")
		require.NoError(t, err)
		assert.Equal(t, 20.0, b.FeeCollected)

		promoted, err := env.queue.Promote(env.ctx, b.ID, table.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, *promoted.Deductible)
	})

	t.Run("fee deducted when enabled", func(t *testing.T) {
		env := newTestEnv(t, QueueConfig{WaitlistCap: 10, WaitlistFee: 20, DeductWaitlistFee: true, GraceWindow: 15 * time.Minute})
		table := env.addTable(t, "Table 1")
		b, err := joinWaitlist(env, "Joko", "")
		require.NoError(t, err)

		promoted, err := env.queue.Promote(env.ctx, b.ID, table.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, *promoted.Deductible)
	})
}

func TestPromoteErrors(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	busy := env.addTable(t, "Table 1")
	free := env.addTable(t, "Table 2")
	b, err := joinWaitlist(env, "Kiki", "")
	require.NoError(t, err)

	_, err = env.tables.StartSession(env.ctx, busy.ID, "Ana", OpenEnded())
	require.NoError(t, err)

	_, err = env.queue.Promote(env.ctx, b.ID, busy.ID)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	_, err = env.queue.Promote(env.ctx, 999, free.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = env.queue.Promote(env.ctx, b.ID, 999)
	assert.ErrorIs(t, err, ErrTableNotFound)

	// A failed promotion leaves the booking pending.
	bookings, err := env.queue.ListBookings(env.ctx)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestPromoteRespectsOtherReservations(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	table := env.addTable(t, "Table 1")
	env.reserveAt(t, "Table 1", "Later", 40*time.Minute)
	b, err := joinWaitlist(env, "Lina", "Table 1")
	require.NoError(t, err)

	_, err = env.queue.Promote(env.ctx, b.ID, table.ID)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Less than 1 hour (40M) available before reservation.", ce.Reason)
}

func TestListBookingsOrder(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")

	_, err := joinWaitlist(env, "W1", "")
	require.NoError(t, err)
	env.reserveAt(t, "Table 1", "Late", 5*time.Hour)
	env.reserveAt(t, "Table 1", "Early", 2*time.Hour)
	_, err = joinWaitlist(env, "W2", "")
	require.NoError(t, err)

	bookings, err := env.queue.ListBookings(env.ctx)
	require.NoError(t, err)
	var names []string
	for _, b := range bookings {
		names = append(names, b.GuestName)
	}
	assert.Equal(t, []string{"Early", "Late", "W1", "W2"}, names)
}

func TestOverdue(t *testing.T) {
	env := newTestEnv(t, DefaultQueueConfig())
	env.addTable(t, "Table 1")
	env.reserveAt(t, "Table 1", "Mira", -20*time.Minute)
	env.reserveAt(t, "Table 1", "Nina", 2*time.Hour)

	overdue, err := env.queue.Overdue(env.ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Mira", overdue[0].GuestName)
}
