package model

import "time"

// Tag labels tasks within one user's namespace (work, health, study, etc.).
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_tag_name,unique"`
	Name      string `gorm:"index:idx_user_tag_name,unique"`
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
