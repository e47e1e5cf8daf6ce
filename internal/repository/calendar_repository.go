package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"planmate/internal/model"
)

// CalendarRepository handles calendars and their shares.
type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Create(ctx context.Context, calendar *model.Calendar) error {
	if err := r.db.WithContext(ctx).Create(calendar).Error; err != nil {
		return fmt.Errorf("create calendar: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Save(ctx context.Context, calendar *model.Calendar) error {
	if err := r.db.WithContext(ctx).Save(calendar).Error; err != nil {
		return fmt.Errorf("save calendar: %w", err)
	}
	return nil
}

func (r *CalendarRepository) FindByID(ctx context.Context, id uint) (*model.Calendar, error) {
	var calendar model.Calendar
	if err := r.db.WithContext(ctx).First(&calendar, id).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Calendar, error) {
	var calendars []model.Calendar
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

func (r *CalendarRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Calendar{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UnsetDefaults clears the default flag on every calendar of the owner.
func (r *CalendarRepository) UnsetDefaults(ctx context.Context, ownerID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Calendar{}).
		Where("owner_id = ? AND is_default = ?", ownerID, true).
		Update("is_default", false).Error; err != nil {
		return fmt.Errorf("unset default calendars: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, calendar *model.Calendar) error {
	if err := r.db.WithContext(ctx).Select("Tasks", "Shares").Delete(calendar).Error; err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	return nil
}

// UpsertShare creates or updates the share for one (calendar, user) pair.
func (r *CalendarRepository) UpsertShare(ctx context.Context, calendarID, userID uint, permission model.Permission) error {
	db := r.db.WithContext(ctx)
	var share model.CalendarShare
	err := db.Where("calendar_id = ? AND shared_with_user_id = ?", calendarID, userID).First(&share).Error
	switch {
	case err == nil:
		if err := db.Model(&share).Update("permission", permission).Error; err != nil {
			return fmt.Errorf("update share: %w", err)
		}
		return nil
	case err == gorm.ErrRecordNotFound:
		share = model.CalendarShare{CalendarID: calendarID, SharedWithUserID: userID, Permission: permission}
		if err := db.Create(&share).Error; err != nil {
			return fmt.Errorf("create share: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find share: %w", err)
	}
}

func (r *CalendarRepository) DeleteShare(ctx context.Context, calendarID, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND shared_with_user_id = ?", calendarID, userID).
		Delete(&model.CalendarShare{}).Error; err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	return nil
}

// FindShare returns the share granting userID access to the calendar, if any.
func (r *CalendarRepository) FindShare(ctx context.Context, calendarID, userID uint) (*model.CalendarShare, error) {
	var share model.CalendarShare
	if err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND shared_with_user_id = ?", calendarID, userID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// ListSharedWith returns all calendars shared with the user.
func (r *CalendarRepository) ListSharedWith(ctx context.Context, userID uint) ([]model.Calendar, error) {
	var calendars []model.Calendar
	if err := r.db.WithContext(ctx).
		Joins("JOIN calendar_shares ON calendar_shares.calendar_id = calendars.id").
		Where("calendar_shares.shared_with_user_id = ?", userID).
		Order("calendars.created_at ASC").
		Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}
