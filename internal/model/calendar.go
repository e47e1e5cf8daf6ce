package model

import "time"

// Permission is the access level granted by a calendar share.
type Permission string

const (
	PermissionViewOnly Permission = "VIEW_ONLY"
	PermissionEdit     Permission = "EDIT"
)

// Calendar is a named collection of tasks owned by one user. The first
// calendar a user creates becomes their default.
type Calendar struct {
	ID          uint `gorm:"primaryKey"`
	OwnerID     uint `gorm:"index"`
	Name        string
	Description string
	IsDefault   bool `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tasks       []Task          `gorm:"foreignKey:CalendarID;constraint:OnDelete:CASCADE"`
	Shares      []CalendarShare `gorm:"foreignKey:CalendarID;constraint:OnDelete:CASCADE"`
}

// CalendarShare grants another user read or write access to a calendar.
// One share per (calendar, user) pair.
type CalendarShare struct {
	ID               uint       `gorm:"primaryKey"`
	CalendarID       uint       `gorm:"index:idx_calendar_shared_with,unique"`
	SharedWithUserID uint       `gorm:"index:idx_calendar_shared_with,unique"`
	Permission       Permission `gorm:"type:text"`
	CreatedAt        time.Time
}
