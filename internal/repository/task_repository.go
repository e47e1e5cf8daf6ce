package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"planmate/internal/model"
)

// TaskRepository handles CRUD for tasks, one-off and repeating alike.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Save persists the full task row, including columns cleared by a kind
// conversion, and replaces the tag association set.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Tags").Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	if err := db.Model(task).Association("Tags").Replace(task.Tags); err != nil {
		return fmt.Errorf("save task tags: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Tags").First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByCalendar returns every task in the calendar, one-off tasks first,
// each kind in stored order.
func (r *TaskRepository) ListByCalendar(ctx context.Context, calendarID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Tags").
		Where("calendar_id = ?", calendarID).
		Order("repeat_kind = 'NONE' DESC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOneOffByCalendar returns only tasks with an absolute time window.
func (r *TaskRepository) ListOneOffByCalendar(ctx context.Context, calendarID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND repeat_kind = ?", calendarID, "NONE").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListRecurringByCalendar returns only repeating tasks.
func (r *TaskRepository) ListRecurringByCalendar(ctx context.Context, calendarID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("calendar_id = ? AND repeat_kind <> ?", calendarID, "NONE").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, taskID).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
