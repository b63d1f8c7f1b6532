package database

import (
	"context"
	"embed"
	"fmt"

	"invoicehub/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// ParseDirection maps a CLI argument to a migration direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Status:
		return d, nil
	default:
		return "", fmt.Errorf("unknown migration direction %q (want up, down or status)", s)
	}
}

// Migrate runs the embedded goose migrations against the pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, direction Direction) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	var err error
	switch direction {
	case Up:
		err = goose.UpContext(ctx, db, migrationsDir)
	case Down:
		err = goose.DownContext(ctx, db, migrationsDir)
	case Status:
		err = goose.StatusContext(ctx, db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log := logger.WithComponent("migrate")
	log.Info().Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log := logger.WithComponent("migrate")
	log.Fatal().Msgf(format, v...)
}
