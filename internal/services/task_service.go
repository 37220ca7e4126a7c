package services

import (
	"context"
	"fmt"
	"strings"

	"wedplan/internal/amqp"
	"wedplan/internal/core"
	"wedplan/internal/storage"
)

// TaskPatch is a partial task update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *core.TaskStatus `json:"status"`
	Priority    *core.Priority   `json:"priority"`
	DueDate     *core.Date       `json:"due_date"`
}

// Apply returns t with the set fields of p.
func (p TaskPatch) Apply(t core.Task) core.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

type TaskService struct {
	base
	store storage.TaskStore
}

func NewTaskService(store storage.TaskStore, events Publisher) *TaskService {
	return &TaskService{base: newBase(events), store: store}
}

// Board groups the wedding's tasks into kanban columns.
func (s *TaskService) Board(ctx context.Context, weddingID string) (core.TaskBoard, error) {
	ctx, span := startSpan(ctx, "TaskService.Board", weddingID)
	tasks, err := s.store.ListTasks(ctx, weddingID)
	if err = endSpan(span, err); err != nil {
		return core.TaskBoard{}, fmt.Errorf("task board: %w", err)
	}
	return core.GroupTasks(tasks), nil
}

// Get returns the task when it belongs to weddingID.
func (s *TaskService) Get(ctx context.Context, weddingID, id string) (core.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return core.Task{}, err
	}
	if t.WeddingID != weddingID {
		return core.Task{}, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, weddingID string, in core.Task) (core.Task, error) {
	t := normalizeTask(in)
	if t.Status == "" {
		t.Status = core.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = core.PriorityMedium
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	now := s.now()
	t.ID = core.NewID()
	t.WeddingID = weddingID
	t.CreatedAt, t.UpdatedAt = now, now
	if err := s.store.CreateTask(ctx, t); err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.publish(ctx, amqp.TaskCreated, weddingID, t.ID)
	return t, nil
}

// Update replaces every editable field of the task.
func (s *TaskService) Update(ctx context.Context, weddingID, id string, in core.Task) (core.Task, error) {
	existing, err := s.Get(ctx, weddingID, id)
	if err != nil {
		return core.Task{}, err
	}
	t := normalizeTask(in)
	t.ID = existing.ID
	t.WeddingID = existing.WeddingID
	t.CreatedAt = existing.CreatedAt
	return s.save(ctx, t)
}

// Patch applies a partial update.
func (s *TaskService) Patch(ctx context.Context, weddingID, id string, p TaskPatch) (core.Task, error) {
	existing, err := s.Get(ctx, weddingID, id)
	if err != nil {
		return core.Task{}, err
	}
	return s.save(ctx, normalizeTask(p.Apply(existing)))
}

// SetStatus moves the task to another kanban column. Any transition is
// allowed.
func (s *TaskService) SetStatus(ctx context.Context, weddingID, id string, status core.TaskStatus) (core.Task, error) {
	return s.Patch(ctx, weddingID, id, TaskPatch{Status: &status})
}

func (s *TaskService) save(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	t.UpdatedAt = s.now()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	s.publish(ctx, amqp.TaskUpdated, t.WeddingID, t.ID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, weddingID, id string) error {
	if _, err := s.Get(ctx, weddingID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.publish(ctx, amqp.TaskDeleted, weddingID, id)
	return nil
}

func normalizeTask(t core.Task) core.Task {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	return t
}
