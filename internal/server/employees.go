package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"taskboard/internal/domain"
	"taskboard/internal/service"
)

type employeeBody struct {
	Body Envelope[domain.Employee] `json:"body"`
}

func registerEmployees(api huma.API, svc service.Services) {
	employees, auth := svc.Employees, svc.Auth
	adminErrors := []int{http.StatusUnauthorized, http.StatusForbidden}

	huma.Register(api, huma.Operation{
		OperationID: "list-employees",
		Method:      http.MethodGet,
		Path:        "/employees",
		Summary:     "List employees",
		Tags:        []string{"employees"},
		Security:    security,
		Errors:      adminErrors,
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body Envelope[[]domain.Employee] `json:"body"`
	}, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		items, err := employees.List(ctx)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body Envelope[[]domain.Employee] `json:"body"`
		}{Body: ok(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-employee",
		Method:        http.MethodPost,
		Path:          "/employees",
		Summary:       "Create employee and provision their account",
		Tags:          []string{"employees"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
		Errors:        append([]int{http.StatusBadRequest}, adminErrors...),
	}, func(ctx context.Context, input *struct {
		Body CreateEmployeeRequest `json:"body"`
	}) (*employeeBody, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		b := input.Body
		e, err := employees.Create(ctx, service.CreateEmployeeInput{
			Name:       b.Name,
			Email:      b.Email,
			Password:   b.Password,
			Role:       b.Role,
			Department: b.Department,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &employeeBody{Body: ok(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-employee",
		Method:      http.MethodGet,
		Path:        "/employees/{id}",
		Summary:     "Get employee",
		Tags:        []string{"employees"},
		Security:    security,
		Errors:      append([]int{http.StatusNotFound}, adminErrors...),
	}, func(ctx context.Context, input *idPath) (*employeeBody, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		e, err := employees.Get(ctx, input.ID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &employeeBody{Body: ok(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-employee",
		Method:      http.MethodPut,
		Path:        "/employees/{id}",
		Summary:     "Update employee",
		Tags:        []string{"employees"},
		Security:    security,
		Errors:      append([]int{http.StatusBadRequest, http.StatusNotFound}, adminErrors...),
	}, func(ctx context.Context, input *struct {
		ID   string                `path:"id"`
		Body UpdateEmployeeRequest `json:"body"`
	}) (*employeeBody, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		b := input.Body
		e, err := employees.Update(ctx, input.ID, service.EmployeePatch{
			Name:       b.Name,
			Email:      b.Email,
			Role:       b.Role,
			Department: b.Department,
		})
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &employeeBody{Body: ok(e)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-employee",
		Method:      http.MethodDelete,
		Path:        "/employees/{id}",
		Summary:     "Delete employee",
		Description: "Removes the employee row only; the sign-in account is kept.",
		Tags:        []string{"employees"},
		Security:    security,
		Errors:      append([]int{http.StatusNotFound}, adminErrors...),
	}, func(ctx context.Context, input *idPath) (*struct {
		Body MessageResponse `json:"body"`
	}, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		if err := employees.Delete(ctx, input.ID); err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body MessageResponse `json:"body"`
		}{Body: MessageResponse{Success: true, Message: "Employee deleted"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "employee-tasks",
		Method:      http.MethodGet,
		Path:        "/employees/{id}/tasks",
		Summary:     "Employee with assigned tasks",
		Tags:        []string{"employees"},
		Security:    security,
		Errors:      append([]int{http.StatusNotFound}, adminErrors...),
	}, func(ctx context.Context, input *idPath) (*struct {
		Body Envelope[domain.EmployeeWithTasks] `json:"body"`
	}, error) {
		if _, authErr := requireAdmin(ctx, auth); authErr != nil {
			return nil, authErr
		}
		e, err := employees.Tasks(ctx, input.ID)
		if err != nil {
			return nil, handleError(ctx, err)
		}
		return &struct {
			Body Envelope[domain.EmployeeWithTasks] `json:"body"`
		}{Body: ok(e)}, nil
	})
}
