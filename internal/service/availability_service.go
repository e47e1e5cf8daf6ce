package service

import (
	"context"
	"log"
	"time"

	"planmate/internal/availability"
	"planmate/internal/repository"
)

// AvailabilityService answers "is this user free in [start, end)" across
// every calendar they may read. It adapts the repositories into the
// availability checker's Source.
type AvailabilityService struct {
	checker *availability.Checker
}

func NewAvailabilityService(calendarSvc *CalendarService, taskRepo *repository.TaskRepository, fallback *time.Location) *AvailabilityService {
	source := &storeSource{calendarSvc: calendarSvc, taskRepo: taskRepo}
	return &AvailabilityService{checker: availability.NewChecker(source, fallback)}
}

// Check runs one availability query for the user.
func (s *AvailabilityService) Check(ctx context.Context, userID uint, start, end time.Time) (availability.Result, error) {
	return s.checker.Check(ctx, userID, start, end)
}

// storeSource feeds the checker from the task store and the calendar
// service's visibility answer.
type storeSource struct {
	calendarSvc *CalendarService
	taskRepo    *repository.TaskRepository
}

func (s *storeSource) VisibleCalendars(ctx context.Context, userID uint) ([]availability.CalendarInfo, error) {
	calendars, err := s.calendarSvc.VisibleCalendars(ctx, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]availability.CalendarInfo, 0, len(calendars))
	for _, cal := range calendars {
		infos = append(infos, availability.CalendarInfo{ID: cal.ID, Name: cal.Name})
	}
	return infos, nil
}

func (s *storeSource) OneOffEvents(ctx context.Context, calendarID uint) ([]availability.BusyInterval, error) {
	tasks, err := s.taskRepo.ListOneOffByCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	intervals := make([]availability.BusyInterval, 0, len(tasks))
	for _, task := range tasks {
		if task.StartAt == nil || task.EndAt == nil {
			continue
		}
		intervals = append(intervals, availability.BusyInterval{
			Title: task.Title,
			Start: *task.StartAt,
			End:   *task.EndAt,
		})
	}
	return intervals, nil
}

func (s *storeSource) RecurringEvents(ctx context.Context, calendarID uint) ([]availability.RecurringEntry, error) {
	tasks, err := s.taskRepo.ListRecurringByCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	entries := make([]availability.RecurringEntry, 0, len(tasks))
	for i := range tasks {
		rule, err := taskRule(&tasks[i])
		if err != nil {
			// A broken stored rule costs only its own occurrence.
			log.Printf("availability: skip task %d (%s): %v", tasks[i].ID, tasks[i].Title, err)
			continue
		}
		entries = append(entries, availability.RecurringEntry{Title: tasks[i].Title, Rule: rule})
	}
	return entries, nil
}
