// AngelaMos | 2026
// migrate.go

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

const (
	dialect    = "postgres"
	dir        = "migrations"
	runTimeout = time.Minute
)

//go:embed migrations/*.sql
var migrations embed.FS

// Runner applies the embedded schema migrations with goose.
type Runner struct {
	db  *sql.DB
	log *slog.Logger
}

func New(db *sql.DB, log *slog.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("nil database provided")
	}
	if log == nil {
		log = slog.Default()
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}

	return &Runner{db: db, log: log}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	r.log.Info("applying migrations")
	if err := goose.UpContext(runCtx, r.db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	r.log.Info("migrations applied")

	return nil
}

// Down rolls back the latest migration, or down to target when it is
// positive.
func (r *Runner) Down(ctx context.Context, target int64) error {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if target > 0 {
		r.log.Info("rolling back migrations", "target", target)
		if err := goose.DownToContext(runCtx, r.db, dir, target); err != nil {
			return fmt.Errorf("rollback to version %d: %w", target, err)
		}
		return nil
	}

	r.log.Info("rolling back latest migration")
	if err := goose.DownContext(runCtx, r.db, dir); err != nil {
		return fmt.Errorf("rollback latest migration: %w", err)
	}

	return nil
}

func (r *Runner) Status(ctx context.Context) error {
	if err := goose.StatusContext(ctx, r.db, dir); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}
