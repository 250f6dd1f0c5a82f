package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/repo"
)

// CreateEmployeeInput is the payload accepted when creating an employee. Password is
// optional; without it the account cannot sign in until one is set.
type CreateEmployeeInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	Role       string `json:"role" validate:"required,oneof=admin employee"`
	Department string `json:"department"`
}

type EmployeePatch struct {
	Name       *string
	Email      *string
	Role       *string
	Department *string
}

// provisioner creates and removes identity accounts for employees.
type provisioner interface {
	ProvisionAccount(ctx context.Context, email, password string) (domain.AuthUser, error)
	RemoveAccount(ctx context.Context, id string) error
}

type EmployeeService struct {
	Store    EmployeeStore
	Accounts provisioner
	Logger   zerolog.Logger
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.Store.ListEmployees(ctx)
}

func (s *EmployeeService) Get(ctx context.Context, id string) (domain.Employee, error) {
	e, err := s.Store.GetEmployee(ctx, id)
	if err != nil {
		return domain.Employee{}, notFound("Employee", id, err)
	}
	return e, nil
}

// Tasks returns the employee together with the tasks assigned to them.
func (s *EmployeeService) Tasks(ctx context.Context, id string) (domain.EmployeeWithTasks, error) {
	e, err := s.Store.GetEmployeeWithTasks(ctx, id)
	if err != nil {
		return domain.EmployeeWithTasks{}, notFound("Employee", id, err)
	}
	return e, nil
}

// Create provisions an identity account and stores the employee under its id.
// The account is removed again when the row cannot be written.
func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (domain.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.TrimSpace(in.Role)
	in.Department = strings.TrimSpace(in.Department)
	if err := validateStruct(in); err != nil {
		return domain.Employee{}, err
	}
	if in.Department == "" {
		in.Department = domain.DefaultDepartment
	}
	account, err := s.Accounts.ProvisionAccount(ctx, in.Email, in.Password)
	if err != nil {
		return domain.Employee{}, err
	}
	e, err := s.Store.InsertEmployee(ctx, domain.Employee{
		ID:         account.ID,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
	})
	if err != nil {
		if rmErr := s.Accounts.RemoveAccount(ctx, account.ID); rmErr != nil {
			s.Logger.Error().Err(rmErr).Str("account_id", account.ID).Msg("failed to remove orphaned account")
		} else {
			s.Logger.Warn().Str("account_id", account.ID).Msg("removed account after employee insert failed")
		}
		if errors.Is(err, repo.ErrDuplicate) {
			return domain.Employee{}, domain.Invalid("email", "Employee with this email already exists")
		}
		return domain.Employee{}, err
	}
	s.Logger.Info().Str("employee_id", e.ID).Str("role", e.Role).Msg("created employee")
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, p EmployeePatch) (domain.Employee, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Employee{}, err
	}
	c := repo.EmployeeChanges{Department: trimPtr(p.Department)}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.Employee{}, domain.Invalid("name", "Name is required")
		}
		c.Name = &name
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if err := validate.Var(email, "required,email"); err != nil {
			return domain.Employee{}, domain.Invalid("email", "Email must be a valid email address")
		}
		c.Email = &email
	}
	if p.Role != nil {
		if err := checkRole(*p.Role); err != nil {
			return domain.Employee{}, err
		}
		c.Role = p.Role
	}
	e, err := s.Store.UpdateEmployee(ctx, id, c)
	if errors.Is(err, repo.ErrDuplicate) {
		return domain.Employee{}, domain.Invalid("email", "Employee with this email already exists")
	}
	return e, notFound("Employee", id, err)
}

// Delete removes the employee row. The identity account is left in place.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return notFound("Employee", id, s.Store.DeleteEmployee(ctx, id))
}

func isEmailTaken(err error) bool {
	return errors.Is(err, identity.ErrEmailTaken) || errors.Is(err, repo.ErrDuplicate)
}
