package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/internal/app"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/logging"
	"taskboard/internal/migrate"
	taskboardsdk "taskboard/sdk/go"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			a, err := app.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			handler, err := a.Handler()
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Addr(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown")
				}
			}()
			logger.Info().
				Str("addr", cfg.Addr()).
				Str("base_path", cfg.Server.BasePath).
				Str("driver", cfg.Database.Driver).
				Msg("serving taskboard API (OpenAPI at " + cfg.Server.BasePath + "/openapi.json, Swagger UI at /docs)")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
			if err != nil {
				return err
			}
			defer conn.Close()
			version, err := migrate.Migrate(conn)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"driver": cfg.Database.Driver, "schema_version": version})
			}
			fmt.Printf("%s schema at version %d\n", cfg.Database.Driver, version)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Manage configuration"}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file on its own, without environment overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := validateConfigFile(path); err != nil {
				return err
			}
			fmt.Printf("%s is valid\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", config.DefaultFile, "path to check")
	return cmd
}

// validateConfigFile parses path over the defaults and validates the result.
func validateConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := config.FromYAML(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func configInitCmd() *cobra.Command {
	var path string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			out, err := config.GenerateDefault()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s; set %s_AUTH_JWT_SECRET before running serve\n", path, config.EnvPrefix)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", config.DefaultFile, "path to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			masked := *cfg
			masked.Auth.JWTSecret = mask(masked.Auth.JWTSecret)
			masked.Auth.ServiceKey = mask(masked.Auth.ServiceKey)
			return printJSON(masked)
		},
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func adminCmd() *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Administrative tasks"}
	admin.AddCommand(adminBootstrapCmd())
	return admin
}

func adminBootstrapCmd() *cobra.Command {
	var in app.AdminInput
	var remote bool
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create or promote the first admin",
		Long: `Creates an admin employee with a sign-in account. Runs against the configured database
by default; with --remote it calls a running server using the provider admin key (--api-key).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				c := newClient()
				if c.APIKey == "" {
					return fmt.Errorf("--api-key required with --remote")
				}
				c.BearerToken = ""
				name := in.Name
				if name == "" {
					name = in.Email
				}
				e, err := c.CreateEmployee(cmd.Context(), taskboardsdk.CreateEmployee{
					Name: name, Email: in.Email, Password: in.Password, Role: "admin", Department: in.Department,
				})
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			a, err := app.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			e, created, err := a.EnsureAdmin(cmd.Context(), in)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"employee": e, "created": created})
			}
			verb := "Updated"
			if created {
				verb = "Created"
			}
			fmt.Printf("%s admin %s (%s)\n", verb, e.Email, e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name (defaults to email)")
	cmd.Flags().StringVar(&in.Department, "department", "", "department")
	cmd.Flags().BoolVar(&remote, "remote", false, "create through a running server")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
