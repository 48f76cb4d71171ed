// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/tenant-accounts/internal/config"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/core"
	"github.com/carterperez-dev/templates/tenant-accounts/internal/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the users schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(
		&configPath, "config", "", "path to config file",
	)

	withRunner := func(fn func(context.Context, *migrate.Runner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			return runWithRunner(cmd.Context(), configPath, fn)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(ctx context.Context, r *migrate.Runner) error {
			return r.Up(ctx)
		}),
	}

	var target int64
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --target",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(ctx context.Context, r *migrate.Runner) error {
			return r.Down(ctx, target)
		}),
	}
	downCmd.Flags().Int64Var(&target, "target", 0, "version to roll back to")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: withRunner(func(ctx context.Context, r *migrate.Runner) error {
			return r.Status(ctx)
		}),
	}

	root.AddCommand(upCmd, downCmd, statusCmd)
	return root
}

func runWithRunner(
	ctx context.Context,
	configPath string,
	fn func(context.Context, *migrate.Runner) error,
) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf(
			"migrations require the %s driver, got %q",
			config.DriverPostgres, cfg.Database.Driver,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close() //nolint:errcheck // process is exiting
	}()

	runner, err := migrate.New(db.DB.DB, slog.Default())
	if err != nil {
		return err
	}

	return fn(ctx, runner)
}
