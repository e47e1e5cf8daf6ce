package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"planmate/internal/model"
	"planmate/internal/repository"
)

// ErrPermissionDenied marks operations the caller is not allowed to perform
// on a calendar or another user's resource.
var ErrPermissionDenied = errors.New("permission denied")

// CalendarService manages calendars, their default flag and their shares,
// and answers the "which calendars may this user see" question for the
// availability scan.
type CalendarService struct {
	calendarRepo *repository.CalendarRepository
	userRepo     *repository.UserRepository
}

func NewCalendarService(calendarRepo *repository.CalendarRepository, userRepo *repository.UserRepository) *CalendarService {
	return &CalendarService{calendarRepo: calendarRepo, userRepo: userRepo}
}

// CreateCalendar creates a calendar for the user. The user's first calendar
// always becomes the default; a later calendar created with makeDefault set
// displaces the previous default.
func (s *CalendarService) CreateCalendar(ctx context.Context, user *model.User, name, description string, makeDefault bool) (*model.Calendar, error) {
	if name == "" {
		return nil, fmt.Errorf("calendar name is required")
	}

	count, err := s.calendarRepo.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count calendars: %w", err)
	}

	calendar := model.Calendar{
		OwnerID:     user.ID,
		Name:        name,
		Description: description,
	}
	if count == 0 {
		calendar.IsDefault = true
	} else if makeDefault {
		if err := s.calendarRepo.UnsetDefaults(ctx, user.ID); err != nil {
			return nil, err
		}
		calendar.IsDefault = true
	}

	if err := s.calendarRepo.Create(ctx, &calendar); err != nil {
		return nil, err
	}
	return &calendar, nil
}

// ListOwned returns the user's own calendars.
func (s *CalendarService) ListOwned(ctx context.Context, user *model.User) ([]model.Calendar, error) {
	return s.calendarRepo.ListByOwner(ctx, user.ID)
}

// ListSharedWithMe returns calendars other users shared with this user.
func (s *CalendarService) ListSharedWithMe(ctx context.Context, user *model.User) ([]model.Calendar, error) {
	return s.calendarRepo.ListSharedWith(ctx, user.ID)
}

// DefaultCalendar returns the user's default calendar, or their first one
// when no default flag is set.
func (s *CalendarService) DefaultCalendar(ctx context.Context, user *model.User) (*model.Calendar, error) {
	calendars, err := s.calendarRepo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(calendars) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range calendars {
		if calendars[i].IsDefault {
			return &calendars[i], nil
		}
	}
	return &calendars[0], nil
}

// SetDefault marks one owned calendar as the default.
func (s *CalendarService) SetDefault(ctx context.Context, user *model.User, calendarID uint) error {
	calendar, err := s.ownedCalendar(ctx, user, calendarID)
	if err != nil {
		return err
	}
	if err := s.calendarRepo.UnsetDefaults(ctx, user.ID); err != nil {
		return err
	}
	calendar.IsDefault = true
	return s.calendarRepo.Save(ctx, calendar)
}

// UpdateCalendar renames or redescribes a calendar. Requires edit rights.
func (s *CalendarService) UpdateCalendar(ctx context.Context, user *model.User, calendarID uint, name, description string) (*model.Calendar, error) {
	if err := s.RequireEdit(ctx, user, calendarID); err != nil {
		return nil, err
	}
	calendar, err := s.calendarRepo.FindByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	calendar.Name = name
	calendar.Description = description
	if err := s.calendarRepo.Save(ctx, calendar); err != nil {
		return nil, err
	}
	return calendar, nil
}

// DeleteCalendar removes an owned calendar. The default calendar and the
// user's last calendar are protected.
func (s *CalendarService) DeleteCalendar(ctx context.Context, user *model.User, calendarID uint) error {
	calendar, err := s.ownedCalendar(ctx, user, calendarID)
	if err != nil {
		return err
	}
	if calendar.IsDefault {
		return fmt.Errorf("cannot delete the default calendar, set another default first")
	}
	count, err := s.calendarRepo.CountByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("count calendars: %w", err)
	}
	if count <= 1 {
		return fmt.Errorf("cannot delete your last calendar")
	}
	return s.calendarRepo.Delete(ctx, calendar)
}

// Share grants another user access to an owned calendar, keyed by their
// Telegram username. Sharing twice updates the permission level.
func (s *CalendarService) Share(ctx context.Context, owner *model.User, calendarID uint, username string, permission model.Permission) error {
	if permission != model.PermissionViewOnly && permission != model.PermissionEdit {
		return fmt.Errorf("unknown permission level %q", permission)
	}
	if _, err := s.ownedCalendar(ctx, owner, calendarID); err != nil {
		return err
	}
	target, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user @%s is not registered", username)
		}
		return fmt.Errorf("find user: %w", err)
	}
	if target.ID == owner.ID {
		return fmt.Errorf("cannot share a calendar with yourself")
	}
	return s.calendarRepo.UpsertShare(ctx, calendarID, target.ID, permission)
}

// Unshare revokes a user's access to an owned calendar.
func (s *CalendarService) Unshare(ctx context.Context, owner *model.User, calendarID uint, username string) error {
	if _, err := s.ownedCalendar(ctx, owner, calendarID); err != nil {
		return err
	}
	target, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	return s.calendarRepo.DeleteShare(ctx, calendarID, target.ID)
}

// VisibleCalendars returns owned plus shared-with calendars, owned first.
func (s *CalendarService) VisibleCalendars(ctx context.Context, userID uint) ([]model.Calendar, error) {
	owned, err := s.calendarRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned calendars: %w", err)
	}
	shared, err := s.calendarRepo.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared calendars: %w", err)
	}
	return append(owned, shared...), nil
}

// RequireView checks the user may read the calendar: owner or any share.
func (s *CalendarService) RequireView(ctx context.Context, user *model.User, calendarID uint) error {
	return s.requirePermission(ctx, user, calendarID, model.PermissionViewOnly)
}

// RequireEdit checks the user may write to the calendar: owner or EDIT share.
func (s *CalendarService) RequireEdit(ctx context.Context, user *model.User, calendarID uint) error {
	return s.requirePermission(ctx, user, calendarID, model.PermissionEdit)
}

func (s *CalendarService) requirePermission(ctx context.Context, user *model.User, calendarID uint, required model.Permission) error {
	calendar, err := s.calendarRepo.FindByID(ctx, calendarID)
	if err != nil {
		return err
	}
	if calendar.OwnerID == user.ID {
		return nil
	}
	share, err := s.calendarRepo.FindShare(ctx, calendarID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("find share: %w", err)
	}
	if required == model.PermissionEdit && share.Permission != model.PermissionEdit {
		return ErrPermissionDenied
	}
	return nil
}

func (s *CalendarService) ownedCalendar(ctx context.Context, user *model.User, calendarID uint) (*model.Calendar, error) {
	calendar, err := s.calendarRepo.FindByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if calendar.OwnerID != user.ID {
		return nil, ErrPermissionDenied
	}
	return calendar, nil
}
