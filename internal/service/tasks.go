package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"taskboard/internal/domain"
	"taskboard/internal/repo"
)

// CreateTaskInput is the payload accepted when creating a task.
type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assigned_to"`
	CreatedBy   string  `json:"created_by" validate:"required"`
	DueDate     *string `json:"due_date"`
}

// TaskPatch merges into an existing task. Nil fields are untouched; the *Set flags
// mark assigned_to and due_date as explicitly provided (nil then clears them).
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedToSet bool
	AssignedTo    *string
	DueDateSet    bool
	DueDate       *string
}

type TaskService struct {
	Store  TaskStore
	Logger zerolog.Logger
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.Store.ListTasks(ctx)
}

func (s *TaskService) Get(ctx context.Context, id string) (domain.Task, error) {
	t, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, notFound("Task", id, err)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	in.Status = strings.TrimSpace(in.Status)
	in.Priority = strings.TrimSpace(in.Priority)
	if err := validateStruct(in); err != nil {
		return domain.Task{}, err
	}
	due, err := normalizeDueDate(in.DueDate)
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  trimPtr(in.AssignedTo),
		CreatedBy:   in.CreatedBy,
		DueDate:     due,
	}
	if t.Status == "" {
		t.Status = domain.StatusPending
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	created, err := s.Store.InsertTask(ctx, t)
	if err != nil {
		s.Logger.Error().Err(err).Str("title", t.Title).Msg("failed to insert task")
		return domain.Task{}, err
	}
	s.Logger.Debug().Str("task_id", created.ID).Msg("created task")
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, id string, p TaskPatch) (domain.Task, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Task{}, err
	}
	c := repo.TaskChanges{
		Description:   p.Description,
		AssignedToSet: p.AssignedToSet,
		AssignedTo:    trimPtr(p.AssignedTo),
		DueDateSet:    p.DueDateSet,
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return domain.Task{}, domain.Invalid("title", "Title is required")
		}
		c.Title = &title
	}
	if p.Status != nil {
		if err := checkStatus(*p.Status); err != nil {
			return domain.Task{}, err
		}
		c.Status = p.Status
	}
	if p.Priority != nil {
		if err := checkPriority(*p.Priority); err != nil {
			return domain.Task{}, err
		}
		c.Priority = p.Priority
	}
	if p.DueDateSet {
		due, err := normalizeDueDate(p.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		c.DueDate = due
	}
	t, err := s.Store.UpdateTask(ctx, id, c)
	return t, notFound("Task", id, err)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return notFound("Task", id, s.Store.DeleteTask(ctx, id))
}

// SetStatus moves a task to one of the three workflow statuses.
func (s *TaskService) SetStatus(ctx context.Context, id, status string) (domain.Task, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Task{}, err
	}
	if err := checkStatus(status); err != nil {
		return domain.Task{}, err
	}
	t, err := s.Store.UpdateTask(ctx, id, repo.TaskChanges{Status: &status})
	return t, notFound("Task", id, err)
}

func (s *TaskService) SetPriority(ctx context.Context, id, priority string) (domain.Task, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Task{}, err
	}
	if err := checkPriority(priority); err != nil {
		return domain.Task{}, err
	}
	t, err := s.Store.UpdateTask(ctx, id, repo.TaskChanges{Priority: &priority})
	return t, notFound("Task", id, err)
}

// Reschedule changes only the due date; an empty date clears it.
func (s *TaskService) Reschedule(ctx context.Context, id, dueDate string) (domain.Task, error) {
	return s.Update(ctx, id, TaskPatch{DueDateSet: true, DueDate: &dueDate})
}
