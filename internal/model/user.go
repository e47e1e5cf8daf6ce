package model

import "time"

// User stores Telegram user metadata. The Telegram sender is the identity
// for every permission check.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
