package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Taskboard server and CLI",
	Long: `Taskboard tracks tasks assigned to employees.
- serve: run the HTTP API backed by SQLite or Postgres.
- login, task, employee, dashboard: talk to a running server.
- migrate, admin bootstrap, config init: operate on the local deployment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(viper.GetString("env-dir"))
	},
}

func main() {
	config.Bind(viper.GetViper())
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default "+config.DefaultFile+" when present)")
	flags.String("env-dir", ".", "directory holding the .env file")
	flags.Bool("json", false, "output JSON")
	flags.String("server", "http://localhost:5000", "API server URL")
	flags.String("token", "", "bearer token (default from login)")
	flags.String("api-key", "", "provider admin key sent as X-Api-Key")
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("env-dir", flags.Lookup("env-dir"))
	_ = viper.BindPFlag("json", flags.Lookup("json"))
	_ = viper.BindPFlag("client.server", flags.Lookup("server"))
	_ = viper.BindPFlag("client.token", flags.Lookup("token"))
	_ = viper.BindPFlag("client.api_key", flags.Lookup("api-key"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(meCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(dashboardCmd())
}

// loadConfig resolves server configuration from flags, file, environment and .env.
func loadConfig() (*config.Config, error) {
	file := viper.GetString("config")
	if file == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			file = config.DefaultFile
		}
	}
	cfg, err := config.Load(viper.GetViper(), file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
