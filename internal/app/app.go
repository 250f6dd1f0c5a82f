// Package app wires configuration, storage and services into a runnable backend.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/migrate"
	"taskboard/internal/repo"
	"taskboard/internal/server"
	"taskboard/internal/service"
)

// App holds the long-lived dependencies shared by every request.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Identity identity.Provider
	Services service.Services
	Logger   zerolog.Logger
}

// Open connects to the provider database, applies migrations and builds the services.
func Open(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	conn, err := db.Open(db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	version, err := migrate.Migrate(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Debug().Str("driver", cfg.Database.Driver).Int("schema_version", version).Msg("database ready")

	provider := identity.New(conn, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return &App{
		Config:   cfg,
		DB:       conn,
		Identity: provider,
		Services: service.New(repo.New(conn), provider, logger),
		Logger:   logger,
	}, nil
}

// Handler builds the HTTP API.
func (a *App) Handler() (http.Handler, error) {
	return server.New(server.Config{
		Services:      a.Services,
		ServiceKey:    identity.NewServiceKey(a.Config.Auth.ServiceKey),
		BasePath:      a.Config.Server.BasePath,
		AllowedOrigin: a.Config.Server.AllowedOrigin,
		Logger:        a.Logger,
	})
}

func (a *App) Close() error {
	return a.DB.Close()
}

// AdminInput describes the administrator ensured by EnsureAdmin.
type AdminInput struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// EnsureAdmin makes sure an admin employee with the given email exists. An existing
// employee is promoted and, when a password is given, gets it as the new password.
// It reports whether a new employee was created.
func (a *App) EnsureAdmin(ctx context.Context, in AdminInput) (domain.Employee, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	employees, err := a.Services.Employees.List(ctx)
	if err != nil {
		return domain.Employee{}, false, err
	}
	for _, e := range employees {
		if e.Email != email {
			continue
		}
		if in.Password != "" {
			if err := a.Identity.SetPassword(ctx, e.ID, in.Password); err != nil {
				return domain.Employee{}, false, fmt.Errorf("set password: %w", err)
			}
		}
		if e.Role == domain.RoleAdmin {
			return e, false, nil
		}
		role := domain.RoleAdmin
		promoted, err := a.Services.Employees.Update(ctx, e.ID, service.EmployeePatch{Role: &role})
		if err != nil {
			return domain.Employee{}, false, err
		}
		a.Logger.Info().Str("employee_id", e.ID).Msg("promoted employee to admin")
		return promoted, false, nil
	}
	name := in.Name
	if strings.TrimSpace(name) == "" {
		name = email
	}
	e, err := a.Services.Employees.Create(ctx, service.CreateEmployeeInput{
		Name:       name,
		Email:      email,
		Password:   in.Password,
		Role:       domain.RoleAdmin,
		Department: in.Department,
	})
	if err != nil {
		return domain.Employee{}, false, err
	}
	return e, true, nil
}
