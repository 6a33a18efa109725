package models

import "time"

const (
	SettingHourlyRate     = "hourly_rate"
	SettingReservationFee = "reservation_fee"
	SettingAdminPassword  = "admin_password"
)

type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(50)" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "app_settings"
}
