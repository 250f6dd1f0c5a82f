package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/db"
)

// Repo maps tasks and employees onto provider tables.
type Repo struct {
	DB  *db.DB
	Now func() time.Time
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate value")
)

func New(conn *db.DB) Repo {
	return Repo{DB: conn, Now: time.Now}
}

// TimeLayout is RFC 3339 with fixed-width nanoseconds so stored timestamps sort as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (r Repo) now() string {
	if r.Now != nil {
		return r.Now().UTC().Format(TimeLayout)
	}
	return time.Now().UTC().Format(TimeLayout)
}

func (r Repo) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.DB.ExecContext(ctx, r.DB.Dialect.Rebind(query), args...)
}

func (r Repo) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.DB.QueryRowContext(ctx, r.DB.Dialect.Rebind(query), args...)
}

func (r Repo) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.DB.QueryContext(ctx, r.DB.Dialect.Rebind(query), args...)
}

// update runs UPDATE table SET fields WHERE id=? and reports ErrNotFound when no row matched.
func (r Repo) update(ctx context.Context, table, id string, fields []string, args []any) error {
	fields = append(fields, "updated_at=?")
	args = append(args, r.now(), id)
	res, err := r.exec(ctx, fmt.Sprintf(`UPDATE %s SET %s WHERE id=?`, table, strings.Join(fields, ",")), args...)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) delete(ctx context.Context, table, id string) error {
	res, err := r.exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=?`, table), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// classify maps driver unique-constraint failures onto ErrDuplicate.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
