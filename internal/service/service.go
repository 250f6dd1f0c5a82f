package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/repo"
)

// TaskStore is the provider table surface used for tasks.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, c repo.TaskChanges) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// EmployeeStore is the provider table surface used for employees.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (domain.Employee, error)
	GetEmployeeRole(ctx context.Context, id string) (string, error)
	InsertEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error)
	UpdateEmployee(ctx context.Context, id string, c repo.EmployeeChanges) (domain.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	GetEmployeeWithTasks(ctx context.Context, id string) (domain.EmployeeWithTasks, error)
}

// Accounts is the identity provider surface.
type Accounts interface {
	CreateUser(ctx context.Context, email, password string) (domain.AuthUser, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (domain.AuthUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error)
	GetUserByToken(ctx context.Context, token string) (domain.AuthUser, error)
}

// Services bundles the stateless services handed to the HTTP layer.
type Services struct {
	Tasks     *TaskService
	Employees *EmployeeService
	Auth      *AuthService
}

// New wires services over the provider repositories.
func New(r repo.Repo, accounts Accounts, logger zerolog.Logger) Services {
	auth := &AuthService{Accounts: accounts, Employees: r, Logger: logger.With().Str("service", "auth").Logger()}
	return Services{
		Tasks:     &TaskService{Store: r, Logger: logger.With().Str("service", "tasks").Logger()},
		Employees: &EmployeeService{Store: r, Accounts: auth, Logger: logger.With().Str("service", "employees").Logger()},
		Auth:      auth,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, identity.ErrNotFound)
}
