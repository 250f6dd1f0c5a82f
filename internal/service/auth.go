package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"taskboard/internal/domain"
	"taskboard/internal/identity"
)

// LoginInput carries user credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Profile is the caller's account plus the employee row, if one exists.
type Profile struct {
	User     domain.AuthUser  `json:"user"`
	Employee *domain.Employee `json:"employee,omitempty"`
}

type AuthService struct {
	Accounts  Accounts
	Employees EmployeeStore
	Logger    zerolog.Logger
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return domain.Session{}, err
	}
	sess, err := s.Accounts.SignInWithPassword(ctx, in.Email, in.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return domain.Session{}, domain.AuthenticationError{Reason: "Invalid login credentials"}
	}
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// ResolveUser maps an access token to its account.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (domain.AuthUser, error) {
	u, err := s.Accounts.GetUserByToken(ctx, token)
	if errors.Is(err, identity.ErrInvalidToken) {
		return domain.AuthUser{}, domain.AuthenticationError{Reason: "Invalid token"}
	}
	return u, err
}

func (s *AuthService) ProvisionAccount(ctx context.Context, email, password string) (domain.AuthUser, error) {
	u, err := s.Accounts.CreateUser(ctx, email, password)
	if isEmailTaken(err) {
		return domain.AuthUser{}, domain.Invalid("email", "Employee with this email already exists")
	}
	return u, err
}

func (s *AuthService) RemoveAccount(ctx context.Context, id string) error {
	err := s.Accounts.DeleteUser(ctx, id)
	if errors.Is(err, identity.ErrNotFound) {
		return nil
	}
	return err
}

// RequireAdmin reads the caller's role from the employees table on every call.
func (s *AuthService) RequireAdmin(ctx context.Context, p domain.Principal) error {
	if p.IsService() {
		return nil
	}
	role, err := s.Employees.GetEmployeeRole(ctx, p.UserID)
	if err != nil {
		if !isNotFound(err) {
			s.Logger.Error().Err(err).Str("user_id", p.UserID).Msg("role lookup failed")
		}
		return domain.AuthorizationError{Role: domain.RoleAdmin}
	}
	if role != domain.RoleAdmin {
		return domain.AuthorizationError{Role: domain.RoleAdmin}
	}
	return nil
}

// Me returns the caller's account and employee row.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (Profile, error) {
	if p.IsService() {
		return Profile{User: domain.AuthUser{ID: p.UserID, Email: p.Email}}, nil
	}
	u, err := s.Accounts.GetUser(ctx, p.UserID)
	if err != nil {
		if isNotFound(err) {
			return Profile{}, domain.AuthenticationError{Reason: "Invalid token"}
		}
		return Profile{}, err
	}
	out := Profile{User: u}
	e, err := s.Employees.GetEmployee(ctx, p.UserID)
	switch {
	case err == nil:
		out.Employee = &e
	case !isNotFound(err):
		return Profile{}, err
	}
	return out, nil
}
