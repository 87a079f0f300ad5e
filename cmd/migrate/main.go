package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"stablecoin-gateway/config"
	"stablecoin-gateway/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configFile string
		sourceURL  string
	)

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the gateway database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("SPG_CONFIG_FILE"), "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sourceURL, "source", "s", "file://migrations", "migration source URL")

	open := func() (*migrate.Migrate, zerolog.Logger, error) {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("dbname", cfg.Database.DBName).
			Msg("Connecting to database")

		m, err := migrate.New(sourceURL, databaseURL(cfg.Database))
		if err != nil {
			return nil, log, fmt.Errorf("initializing migrations: %w", err)
		}
		return m, log, nil
	}

	rootCmd.AddCommand(
		upCmd(open),
		downCmd(open),
		gotoCmd(open),
		statusCmd(open),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type opener func() (*migrate.Migrate, zerolog.Logger, error)

func closeMigrate(m *migrate.Migrate, log zerolog.Logger) {
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		log.Warn().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("Closing migration resources failed")
	}
}

func upCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, log, err := open()
			if err != nil {
				return err
			}
			defer closeMigrate(m, log)

			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					log.Info().Msg("No change: database is up to date")
					return nil
				}
				return fmt.Errorf("applying migrations: %w", err)
			}
			log.Info().Msg("Migrations applied")
			return nil
		},
	}
}

func downCmd(open opener) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			m, log, err := open()
			if err != nil {
				return err
			}
			defer closeMigrate(m, log)

			if err := m.Steps(-steps); err != nil {
				return fmt.Errorf("rolling back %d migration(s): %w", steps, err)
			}
			log.Info().Int("steps", steps).Msg("Migrations rolled back")
			return nil
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	return cmd
}

func gotoCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "goto [version]",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			m, log, err := open()
			if err != nil {
				return err
			}
			defer closeMigrate(m, log)

			if err := m.Migrate(uint(version)); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					log.Info().Uint64("version", version).Msg("No change: database already at version")
					return nil
				}
				return fmt.Errorf("migrating to version %d: %w", version, err)
			}
			log.Info().Uint64("version", version).Msg("Migrated")
			return nil
		},
	}
}

func statusCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, log, err := open()
			if err != nil {
				return err
			}
			defer closeMigrate(m, log)

			version, dirty, err := m.Version()
			if err != nil {
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied yet")
					return nil
				}
				return fmt.Errorf("reading version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d%s\n", version, dirtySuffix(dirty))
			return nil
		},
	}
}

func dirtySuffix(dirty bool) string {
	if dirty {
		return " (dirty)"
	}
	return ""
}

// databaseURL builds the pgx5:// URL golang-migrate expects.
func databaseURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "pgx5",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	if cfg.ApplicationName != "" {
		q.Set("application_name", cfg.ApplicationName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
