package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/service"
)

type taskBody struct {
	Body Envelope[domain.Task] `json:"body"`
}

func taskOut(t domain.Task) *taskBody {
	return &taskBody{Body: ok(t)}
}

func registerTasks(api huma.API, tasks *service.TaskService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks, newest first",
		Tags:        []string{"tasks"},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body Envelope[[]domain.Task] `json:"body"`
	}, error) {
		items, err := tasks.List(ctx)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body Envelope[[]domain.Task] `json:"body"`
		}{Body: ok(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		Tags:          []string{"tasks"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*taskBody, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		t, err := tasks.Create(ctx, input.Body.input())
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Tags:        []string{"tasks"},
		Security:    security,
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*taskBody, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		t, err := tasks.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task fields",
		Description: "Only supplied fields change. Sending null for assigned_to or due_date clears it.",
		Tags:        []string{"tasks"},
		Security:    security,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*taskBody, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		b := input.Body
		t, err := tasks.Update(ctx, input.ID, service.TaskPatch{
			Title:         b.Title,
			Description:   b.Description,
			Status:        b.Status,
			Priority:      b.Priority,
			AssignedToSet: hasField(ctx, "assigned_to"),
			AssignedTo:    b.AssignedTo,
			DueDateSet:    hasField(ctx, "due_date"),
			DueDate:       b.DueDate,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task",
		Tags:        []string{"tasks"},
		Security:    security,
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *idPath) (*struct {
		Body MessageResponse `json:"body"`
	}, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		if err := tasks.Delete(ctx, input.ID); err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body MessageResponse `json:"body"`
		}{Body: MessageResponse{Success: true, Message: "Task deleted successfully"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-status",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/status",
		Summary:     "Move task to another status",
		Tags:        []string{"tasks"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string        `path:"id"`
		Body StatusRequest `json:"body"`
	}) (*taskBody, error) {
		t, err := tasks.SetStatus(ctx, input.ID, input.Body.Status)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-priority",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/priority",
		Summary:     "Change task priority",
		Tags:        []string{"tasks"},
		Security:    security,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body PriorityRequest `json:"body"`
	}) (*taskBody, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		t, err := tasks.SetPriority(ctx, input.ID, input.Body.Priority)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reschedule-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/due-date",
		Summary:     "Move task to another due date",
		Tags:        []string{"tasks"},
		Security:    security,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body DueDateRequest `json:"body"`
	}) (*taskBody, error) {
		if _, authErr := requireAuth(ctx); authErr != nil {
			return nil, authErr
		}
		due := ""
		if input.Body.DueDate != nil {
			due = *input.Body.DueDate
		}
		t, err := tasks.Reschedule(ctx, input.ID, due)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return taskOut(t), nil
	})
}
