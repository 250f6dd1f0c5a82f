package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"taskboard/internal/db"
	"taskboard/internal/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("a user with this email address has already been registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Provider is the identity side of the backend provider: it owns accounts,
// password verification and session tokens.
type Provider struct {
	DB     *db.DB
	Tokens Tokens
	Params *argon2id.Params
	Now    func() time.Time
}

func New(conn *db.DB, secret string, ttl time.Duration) Provider {
	return Provider{
		DB:     conn,
		Tokens: Tokens{Secret: []byte(secret), TTL: ttl},
		Params: argon2id.DefaultParams,
		Now:    time.Now,
	}
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (p Provider) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Provider) params() *argon2id.Params {
	if p.Params != nil {
		return p.Params
	}
	return argon2id.DefaultParams
}

// CreateUser provisions an account. An empty password creates an account that cannot
// sign in until a password is set.
func (p Provider) CreateUser(ctx context.Context, email, password string) (domain.AuthUser, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.AuthUser{}, errors.New("email required")
	}
	var hash any
	if password != "" {
		h, err := argon2id.CreateHash(password, p.params())
		if err != nil {
			return domain.AuthUser{}, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}
	now := p.now().UTC().Format(timeLayout)
	u := domain.AuthUser{ID: uuid.NewString(), Email: email, CreatedAt: now}
	_, err := p.DB.ExecContext(ctx, p.DB.Dialect.Rebind(`INSERT INTO auth_users(id,email,password_hash,created_at,updated_at) VALUES (?,?,?,?,?)`),
		u.ID, u.Email, hash, now, now)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
			return domain.AuthUser{}, ErrEmailTaken
		}
		return domain.AuthUser{}, err
	}
	return u, nil
}

// DeleteUser removes an account. Used to compensate a failed employee insert.
func (p Provider) DeleteUser(ctx context.Context, id string) error {
	res, err := p.DB.ExecContext(ctx, p.DB.Dialect.Rebind(`DELETE FROM auth_users WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUser looks an account up by id.
func (p Provider) GetUser(ctx context.Context, id string) (domain.AuthUser, error) {
	u, _, err := p.scanUser(p.DB.QueryRowContext(ctx, p.DB.Dialect.Rebind(`SELECT id,email,password_hash,created_at FROM auth_users WHERE id=?`), id))
	return u, err
}

// SignInWithPassword verifies credentials and issues an access token.
func (p Provider) SignInWithPassword(ctx context.Context, email, password string) (domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Session{}, ErrInvalidCredentials
	}
	u, hash, err := p.scanUser(p.DB.QueryRowContext(ctx, p.DB.Dialect.Rebind(`SELECT id,email,password_hash,created_at FROM auth_users WHERE email=?`), email))
	if errors.Is(err, ErrNotFound) {
		return domain.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if !hash.Valid {
		return domain.Session{}, ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(password, hash.String)
	if err != nil {
		return domain.Session{}, fmt.Errorf("compare password: %w", err)
	}
	if !match {
		return domain.Session{}, ErrInvalidCredentials
	}
	token, expires, err := p.Tokens.Issue(u, p.now())
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		AccessToken: token,
		ExpiresAt:   expires.UTC().Format(time.RFC3339),
		User:        u,
	}, nil
}

// SetPassword replaces the password of an existing account.
func (p Provider) SetPassword(ctx context.Context, id, password string) error {
	if password == "" {
		return errors.New("password required")
	}
	h, err := argon2id.CreateHash(password, p.params())
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := p.DB.ExecContext(ctx, p.DB.Dialect.Rebind(`UPDATE auth_users SET password_hash=?, updated_at=? WHERE id=?`),
		h, p.now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserByToken validates token and returns the account it was issued to.
func (p Provider) GetUserByToken(ctx context.Context, token string) (domain.AuthUser, error) {
	claims, err := p.Tokens.Parse(token)
	if err != nil {
		return domain.AuthUser{}, ErrInvalidToken
	}
	u, err := p.GetUser(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return domain.AuthUser{}, ErrInvalidToken
	}
	return u, err
}

func (p Provider) scanUser(row *sql.Row) (domain.AuthUser, sql.NullString, error) {
	var u domain.AuthUser
	var hash sql.NullString
	err := row.Scan(&u.ID, &u.Email, &hash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, hash, ErrNotFound
	}
	return u, hash, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
