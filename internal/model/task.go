package model

import "time"

// Task is a single logical entry in a calendar. One entity covers both
// record kinds: RepeatKind NONE means a one-off with an absolute StartAt /
// EndAt window, any other kind means a repeating task described by the
// Repeat* columns plus civil clocks and a timezone. Converting between the
// two is an in-place update that clears the other shape's columns.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	CalendarID  uint `gorm:"index"`
	CreatedByID uint `gorm:"index"`
	Title       string
	Description string

	// One-off shape.
	StartAt *time.Time
	EndAt   *time.Time
	AllDay  bool `gorm:"default:false"`

	// Repeating shape.
	RepeatKind     string `gorm:"default:NONE"`
	RepeatInterval int
	RepeatDays     string // comma-separated weekday codes, WEEKLY only
	RepeatStart    *time.Time
	RepeatEnd      *time.Time
	StartClock     string // HH:MM civil time of day
	EndClock       string
	Timezone       string

	Tags      []Tag `gorm:"many2many:task_tags"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recurring reports whether the task carries a repeating shape.
func (t *Task) Recurring() bool {
	return t.RepeatKind != "" && t.RepeatKind != "NONE"
}
