package models

import "time"

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"

	SessionTypeWalkIn = "walkin"

	// OpenTimeLabel is shown as OccupiedUntil for an unbounded session.
	OpenTimeLabel = "Open Time"
)

type Table struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Status string `gorm:"type:varchar(20);not null;default:'available'" json:"status"`

	// Session fields, set together on start and cleared together on finish.
	SessionType      *string    `gorm:"type:varchar(20)" json:"session_type"`
	IsOpenTime       *bool      `json:"is_open_time"`
	StartTime        *time.Time `json:"start_time"`
	OccupiedUntil    *string    `gorm:"type:varchar(50)" json:"occupied_until"`
	OccupiedUntilRaw *time.Time `json:"occupied_until_raw"`
	CurrentGuest     *string    `gorm:"type:varchar(255)" json:"current_guest"`
	Duration         *float64   `json:"duration"`
	Deductible       *float64   `gorm:"type:decimal(10,2)" json:"deductible"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type SessionState int

const (
	SessionEmpty SessionState = iota
	SessionActive
	SessionPartial
)

// SessionState reports whether the session columns are consistent.
// OccupiedUntilRaw is excluded: nil is a legal value for an open session.
func (t *Table) SessionState() SessionState {
	set := 0
	for _, present := range []bool{
		t.SessionType != nil,
		t.IsOpenTime != nil,
		t.StartTime != nil,
		t.OccupiedUntil != nil,
		t.CurrentGuest != nil,
		t.Duration != nil,
		t.Deductible != nil,
	} {
		if present {
			set++
		}
	}
	switch {
	case set == 0 && t.OccupiedUntilRaw == nil:
		return SessionEmpty
	case set == 7:
		return SessionActive
	default:
		return SessionPartial
	}
}

func (t *Table) IsOccupied() bool {
	return t.Status == TableStatusOccupied
}

// SessionColumns is the column map gorm needs to write nil session
// fields; Updates with a struct skips zero values.
func (t *Table) SessionColumns() map[string]interface{} {
	return map[string]interface{}{
		"status":             t.Status,
		"session_type":       t.SessionType,
		"is_open_time":       t.IsOpenTime,
		"start_time":         t.StartTime,
		"occupied_until":     t.OccupiedUntil,
		"occupied_until_raw": t.OccupiedUntilRaw,
		"current_guest":      t.CurrentGuest,
		"duration":           t.Duration,
		"deductible":         t.Deductible,
	}
}

// ClearSession resets the table to Available with no session data.
func (t *Table) ClearSession() {
	t.Status = TableStatusAvailable
	t.SessionType = nil
	t.IsOpenTime = nil
	t.StartTime = nil
	t.OccupiedUntil = nil
	t.OccupiedUntilRaw = nil
	t.CurrentGuest = nil
	t.Duration = nil
	t.Deductible = nil
}
