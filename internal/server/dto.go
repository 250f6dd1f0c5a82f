package server

import (
	"taskboard/internal/domain"
	"taskboard/internal/service"
)

// Envelope wraps every successful JSON response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Request payloads. Fields are optional at the schema level so that missing values reach
// the services and come back with field-specific messages.

type CreateTaskRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	AssignedTo  *string  `json:"assigned_to,omitempty" nullable:"true"`
	CreatedBy   string   `json:"created_by,omitempty"`
	DueDate     *string  `json:"due_date,omitempty" nullable:"true"`
}

func (r CreateTaskRequest) input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		AssignedTo:  r.AssignedTo,
		CreatedBy:   r.CreatedBy,
		DueDate:     r.DueDate,
	}
}

type UpdateTaskRequest struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	AssignedTo  *string  `json:"assigned_to,omitempty" nullable:"true"`
	DueDate     *string  `json:"due_date,omitempty" nullable:"true"`
}

type StatusRequest struct {
	_      struct{} `json:"-" additionalProperties:"true"`
	Status string   `json:"status,omitempty"`
}

type PriorityRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Priority string   `json:"priority,omitempty"`
}

type DueDateRequest struct {
	_       struct{} `json:"-" additionalProperties:"true"`
	DueDate *string  `json:"due_date,omitempty" nullable:"true"`
}

type CreateEmployeeRequest struct {
	_          struct{} `json:"-" additionalProperties:"true"`
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Password   string   `json:"password,omitempty"`
	Role       string   `json:"role,omitempty"`
	Department string   `json:"department,omitempty"`
}

type UpdateEmployeeRequest struct {
	_          struct{} `json:"-" additionalProperties:"true"`
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Role       *string  `json:"role,omitempty"`
	Department *string  `json:"department,omitempty"`
}

type LoginRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email,omitempty"`
	Password string   `json:"password,omitempty"`
}

// Responses

type LoginResponse struct {
	Success     bool            `json:"success"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   string          `json:"expires_at,omitempty"`
	User        domain.AuthUser `json:"user"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type idPath struct {
	ID string `path:"id"`
}
