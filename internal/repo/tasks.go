package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

const taskColumns = `id,title,description,status,priority,assigned_to,created_by,due_date,created_at,updated_at`

// TaskChanges carries the columns an update should touch. Nil pointers are left alone;
// the *Set flags allow assigned_to and due_date to be cleared.
type TaskChanges struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedToSet bool
	AssignedTo    *string
	DueDateSet    bool
	DueDate       *string
}

func (c TaskChanges) empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil && c.Priority == nil && !c.AssignedToSet && !c.DueDateSet
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	var description, assignedTo, dueDate sql.NullString
	err := row.Scan(&t.ID, &t.Title, &description, &t.Status, &t.Priority, &assignedTo, &t.CreatedBy, &dueDate, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if description.Valid {
		t.Description = description.String
	}
	t.AssignedTo = stringPtr(assignedTo)
	t.DueDate = stringPtr(dueDate)
	return t, nil
}

func (r Repo) scanTasks(rows *sql.Rows) ([]domain.Task, error) {
	defer rows.Close()
	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// ListTasks returns every task, newest first.
func (r Repo) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return r.scanTasks(rows)
}

// ListTasksByAssignee returns tasks assigned to employeeID, newest first.
func (r Repo) ListTasksByAssignee(ctx context.Context, employeeID string) ([]domain.Task, error) {
	rows, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to=? ORDER BY created_at DESC, id DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	return r.scanTasks(rows)
}

func (r Repo) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return scanTask(r.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id))
}

// InsertTask stores t, assigning id and timestamps, and returns the stored row.
func (r Repo) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := r.exec(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, nullable(t.Description), t.Status, t.Priority, nullableStringPtr(t.AssignedTo),
		t.CreatedBy, nullableStringPtr(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return domain.Task{}, classify(err)
	}
	return r.GetTask(ctx, t.ID)
}

// UpdateTask applies c to the task and returns the stored row.
func (r Repo) UpdateTask(ctx context.Context, id string, c TaskChanges) (domain.Task, error) {
	if c.empty() {
		return r.GetTask(ctx, id)
	}
	var (
		fields []string
		args   []any
	)
	if c.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *c.Title)
	}
	if c.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*c.Description))
	}
	if c.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, *c.Status)
	}
	if c.Priority != nil {
		fields = append(fields, "priority=?")
		args = append(args, *c.Priority)
	}
	if c.AssignedToSet {
		fields = append(fields, "assigned_to=?")
		args = append(args, nullableStringPtr(c.AssignedTo))
	}
	if c.DueDateSet {
		fields = append(fields, "due_date=?")
		args = append(args, nullableStringPtr(c.DueDate))
	}
	if err := r.update(ctx, "tasks", id, fields, args); err != nil {
		return domain.Task{}, err
	}
	return r.GetTask(ctx, id)
}

func (r Repo) DeleteTask(ctx context.Context, id string) error {
	return r.delete(ctx, "tasks", id)
}
