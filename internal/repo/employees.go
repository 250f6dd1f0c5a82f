package repo

import (
	"context"
	"database/sql"
	"errors"

	"taskboard/internal/domain"
)

const employeeColumns = `id,name,email,role,department,created_at,updated_at`

// EmployeeChanges carries the columns an update should touch.
type EmployeeChanges struct {
	Name       *string
	Email      *string
	Role       *string
	Department *string
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var e domain.Employee
	var department sql.NullString
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &department, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	if err != nil {
		return e, err
	}
	if department.Valid {
		e.Department = department.String
	}
	return e, nil
}

// ListEmployees returns every employee, newest first.
func (r Repo) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	return scanEmployee(r.queryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=?`, id))
}

// GetEmployeeRole returns only the role column; the admin gate calls it on every request.
func (r Repo) GetEmployeeRole(ctx context.Context, id string) (string, error) {
	var role string
	err := r.queryRow(ctx, `SELECT role FROM employees WHERE id=?`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

// InsertEmployee stores e. The id must already be the identity account id.
func (r Repo) InsertEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	if e.ID == "" {
		return domain.Employee{}, errors.New("employee id required")
	}
	now := r.now()
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.exec(ctx, `INSERT INTO employees(`+employeeColumns+`) VALUES (?,?,?,?,?,?,?)`,
		e.ID, e.Name, e.Email, e.Role, nullable(e.Department), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return domain.Employee{}, classify(err)
	}
	return r.GetEmployee(ctx, e.ID)
}

func (r Repo) UpdateEmployee(ctx context.Context, id string, c EmployeeChanges) (domain.Employee, error) {
	var (
		fields []string
		args   []any
	)
	if c.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *c.Name)
	}
	if c.Email != nil {
		fields = append(fields, "email=?")
		args = append(args, *c.Email)
	}
	if c.Role != nil {
		fields = append(fields, "role=?")
		args = append(args, *c.Role)
	}
	if c.Department != nil {
		fields = append(fields, "department=?")
		args = append(args, nullable(*c.Department))
	}
	if len(fields) == 0 {
		return r.GetEmployee(ctx, id)
	}
	if err := r.update(ctx, "employees", id, fields, args); err != nil {
		return domain.Employee{}, err
	}
	return r.GetEmployee(ctx, id)
}

func (r Repo) DeleteEmployee(ctx context.Context, id string) error {
	return r.delete(ctx, "employees", id)
}

// GetEmployeeWithTasks returns the employee joined with the tasks assigned to them.
func (r Repo) GetEmployeeWithTasks(ctx context.Context, id string) (domain.EmployeeWithTasks, error) {
	e, err := r.GetEmployee(ctx, id)
	if err != nil {
		return domain.EmployeeWithTasks{}, err
	}
	tasks, err := r.ListTasksByAssignee(ctx, id)
	if err != nil {
		return domain.EmployeeWithTasks{}, err
	}
	return domain.EmployeeWithTasks{Employee: e, Tasks: tasks}, nil
}
