package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"planmate/internal/model"
	"planmate/internal/repository"
)

// testEnv wires the full service stack over an in-memory database.
type testEnv struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	taskRepo    *repository.TaskRepository
	tagRepo     *repository.TagRepository
	calendarSvc *CalendarService
	taskSvc     *TaskService
	tagSvc      *TagService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Calendar{},
		&model.CalendarShare{},
		&model.Tag{},
		&model.Task{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	calendarSvc := NewCalendarService(calendarRepo, userRepo)

	return &testEnv{
		db:          db,
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		tagRepo:     tagRepo,
		calendarSvc: calendarSvc,
		taskSvc:     NewTaskService(taskRepo, tagRepo, calendarSvc),
		tagSvc:      NewTagService(tagRepo),
	}
}

func (e *testEnv) newUser(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()
	user, err := e.userRepo.UpsertFromTelegram(context.Background(), telegramID, username, "", username)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) newCalendar(t *testing.T, user *model.User, name string) *model.Calendar {
	t.Helper()
	calendar, err := e.calendarSvc.CreateCalendar(context.Background(), user, name, "", false)
	if err != nil {
		t.Fatalf("create calendar: %v", err)
	}
	return calendar
}
