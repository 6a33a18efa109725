package models

import "time"

const (
	HistoryStatusReserved       = "Reserved"
	HistoryStatusJoinedWaitlist = "Joined Waitlist"
	HistoryStatusCompleted      = "Completed"
	HistoryStatusCanceled       = "Canceled"

	HistoryTypeWalkIn      = "Walk-In"
	HistoryTypeReservation = "Reservation"
	HistoryTypeWaitlist    = "Waitlist"
)

// HistoryEntry is append-only; rows are never updated.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Table     string    `gorm:"column:table_name;type:varchar(50);not null" json:"table_name"`
	GuestName string    `gorm:"type:varchar(255);not null" json:"guest_name"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status"`
	Amount    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "history"
}
