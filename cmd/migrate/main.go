// Package main provides a CLI for manual database migration management.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chybatronik/goUserFilter/internal/config"
	"github.com/chybatronik/goUserFilter/internal/database"
	"github.com/chybatronik/goUserFilter/internal/logging"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Database migration management for goUserFilter",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "./migrations", "Migrations directory path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r *database.MigrationRunner) error {
				return r.RunMigrations(ctx)
			})
		},
	})

	var target string
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration newer than --target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r *database.MigrationRunner) error {
				return r.RunDownMigrations(ctx, target)
			})
		},
	}
	downCmd.Flags().StringVar(&target, "target", "", "Version to roll back to, e.g. 001_create_companies_table")
	_ = downCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(downCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "rollback-last",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r *database.MigrationRunner) error {
				return r.RollbackLastMigration(ctx)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), func(ctx context.Context, r *database.MigrationRunner) error {
				statuses, err := r.Status(ctx)
				if err != nil {
					return err
				}
				return printStatus(cmd.OutOrStdout(), statuses)
			})
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// withRunner connects to PostgreSQL and runs fn with a migration runner
func withRunner(ctx context.Context, fn func(context.Context, *database.MigrationRunner) error) error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the %s driver, DB_DRIVER is %s", config.DriverPostgres, appConfig.Database.Driver)
	}

	logger := logging.NewLogger(os.Stderr, appConfig.Logging.Level, "text", "goUserFilter-migrate", "")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, database.NewMigrationRunner(pool, migrationsDir, logger))
}

// printStatus renders one row per migration file
func printStatus(w io.Writer, statuses []database.MigrationStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tEXECUTED AT")

	pending := 0
	for _, st := range statuses {
		state, at := "pending", "-"
		if st.Applied {
			state = "applied"
			at = st.ExecutedAt.Format(time.RFC3339)
		} else {
			pending++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", st.Version, state, at)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if pending == 0 {
		fmt.Fprintln(w, "All migrations are up to date")
	} else {
		fmt.Fprintf(w, "%d pending migration(s)\n", pending)
	}
	return nil
}
