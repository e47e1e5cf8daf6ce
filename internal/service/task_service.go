package service

import (
	"context"
	"fmt"
	"time"

	"planmate/internal/model"
	"planmate/internal/recurrence"
	"planmate/internal/repository"
)

// RepeatInput describes the repeating shape of a task being created or
// updated. A nil RepeatInput on TaskInput means a one-off task.
type RepeatInput struct {
	Kind     recurrence.Kind
	Interval int
	Days     []recurrence.Weekday
	Anchor   time.Time
	Until    *time.Time
	Start    recurrence.Clock
	End      recurrence.Clock
	Timezone string
}

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Title       string
	Description string
	StartAt     *time.Time
	EndAt       *time.Time
	AllDay      bool
	Repeat      *RepeatInput
	TagIDs      []uint
}

// TaskService wraps task business logic: validation, permission checks and
// the in-place conversion between one-off and repeating shapes.
type TaskService struct {
	taskRepo    *repository.TaskRepository
	tagRepo     *repository.TagRepository
	calendarSvc *CalendarService
}

func NewTaskService(taskRepo *repository.TaskRepository, tagRepo *repository.TagRepository, calendarSvc *CalendarService) *TaskService {
	return &TaskService{taskRepo: taskRepo, tagRepo: tagRepo, calendarSvc: calendarSvc}
}

// CreateTask adds a task to the calendar. Requires edit rights.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, calendarID uint, input TaskInput) (*model.Task, error) {
	if err := s.calendarSvc.RequireEdit(ctx, user, calendarID); err != nil {
		return nil, err
	}

	task := model.Task{CalendarID: calendarID, CreatedByID: user.ID}
	if err := s.applyInput(ctx, user, &task, input); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask rewrites a task from the input. Changing the repeat kind
// converts the task in place: the columns of the other shape are cleared,
// the identity stays.
func (s *TaskService) UpdateTask(ctx context.Context, user *model.User, taskID uint, input TaskInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.calendarSvc.RequireEdit(ctx, user, task.CalendarID); err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, user, task, input); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns one task if the user may view its calendar.
func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.calendarSvc.RequireView(ctx, user, task.CalendarID); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns every task in a calendar the user may view.
func (s *TaskService) ListTasks(ctx context.Context, user *model.User, calendarID uint) ([]model.Task, error) {
	if err := s.calendarSvc.RequireView(ctx, user, calendarID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByCalendar(ctx, calendarID)
}

// DeleteTask removes a task. Requires edit rights on its calendar.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.calendarSvc.RequireEdit(ctx, user, task.CalendarID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, taskID)
}

// applyInput validates the input and writes it onto the task, clearing the
// columns of whichever shape the input does not use.
func (s *TaskService) applyInput(ctx context.Context, user *model.User, task *model.Task, input TaskInput) error {
	if input.Title == "" {
		return fmt.Errorf("title is required")
	}
	task.Title = input.Title
	task.Description = input.Description

	if input.Repeat == nil {
		if input.StartAt == nil || input.EndAt == nil {
			return fmt.Errorf("a one-off task needs a start and an end time")
		}
		if !input.EndAt.After(*input.StartAt) {
			return fmt.Errorf("task end must be after its start")
		}
		task.StartAt = input.StartAt
		task.EndAt = input.EndAt
		task.AllDay = input.AllDay
		task.RepeatKind = string(recurrence.KindNone)
		task.RepeatInterval = 0
		task.RepeatDays = ""
		task.RepeatStart = nil
		task.RepeatEnd = nil
		task.StartClock = ""
		task.EndClock = ""
		task.Timezone = ""
	} else {
		rule := recurrence.Rule{
			Kind:     input.Repeat.Kind,
			Interval: input.Repeat.Interval,
			Anchor:   input.Repeat.Anchor,
			Until:    input.Repeat.Until,
			Days:     input.Repeat.Days,
			Start:    input.Repeat.Start,
			End:      input.Repeat.End,
			Timezone: input.Repeat.Timezone,
		}
		if rule.Kind == recurrence.KindNone {
			return fmt.Errorf("a repeating task cannot have kind NONE")
		}
		if err := rule.Validate(); err != nil {
			return err
		}
		task.StartAt = nil
		task.EndAt = nil
		task.AllDay = false
		task.RepeatKind = string(rule.Kind)
		task.RepeatInterval = rule.Interval
		task.RepeatDays = recurrence.FormatDays(rule.Days)
		anchor := rule.Anchor
		task.RepeatStart = &anchor
		task.RepeatEnd = rule.Until
		task.StartClock = rule.Start.String()
		task.EndClock = rule.End.String()
		task.Timezone = rule.Timezone
	}

	tags, err := s.loadOwnTags(ctx, user, input.TagIDs)
	if err != nil {
		return err
	}
	task.Tags = tags
	return nil
}

// loadOwnTags resolves tag IDs and rejects tags belonging to someone else.
func (s *TaskService) loadOwnTags(ctx context.Context, user *model.User, tagIDs []uint) ([]model.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	tags, err := s.tagRepo.FindByIDs(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	for _, tag := range tags {
		if tag.UserID != user.ID {
			return nil, ErrPermissionDenied
		}
	}
	return tags, nil
}

// taskRule rebuilds the recurrence rule of a stored repeating task. A task
// whose stored shape no longer parses is a decode error the caller should
// log and skip, never a reason to abort a scan.
func taskRule(task *model.Task) (recurrence.Rule, error) {
	kind, err := recurrence.ParseKind(task.RepeatKind)
	if err != nil {
		return recurrence.Rule{}, err
	}
	if kind == recurrence.KindNone {
		return recurrence.Rule{}, fmt.Errorf("task %d is not recurring", task.ID)
	}
	if task.RepeatStart == nil {
		return recurrence.Rule{}, fmt.Errorf("task %d has no repeat start date", task.ID)
	}
	days, err := recurrence.ParseDays(task.RepeatDays)
	if err != nil {
		return recurrence.Rule{}, err
	}
	start, err := recurrence.ParseClock(task.StartClock)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("start time: %w", err)
	}
	end, err := recurrence.ParseClock(task.EndClock)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("end time: %w", err)
	}
	return recurrence.Rule{
		Kind:     kind,
		Interval: task.RepeatInterval,
		Anchor:   *task.RepeatStart,
		Until:    task.RepeatEnd,
		Days:     days,
		Start:    start,
		End:      end,
		Timezone: task.Timezone,
	}, nil
}
