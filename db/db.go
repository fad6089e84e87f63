// Package db provides database connectivity and migration functionality for the
// meal planner API. It handles establishing connections, managing connection
// pools, and running database migrations. This centralizes database concerns so
// the feature packages only ever see a ready-to-use *pgxpool.Pool.
package db

import (
	"context"
	"fmt"
	"time"

	// `golang-migrate` handles schema migrations from versioned SQL files.
	"github.com/golang-migrate/migrate/v4"
	// The file source driver is imported for its side effect of registering itself.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	// migrate's postgres driver speaks database/sql, so it needs the lib/pq driver
	// registered even though the application itself talks to Postgres through pgx.
	_ "github.com/lib/pq"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/config"
)

// NewDBPools establishes connections to PostgreSQL using the provided configuration.
// It returns two pools: one for regular request traffic and one reserved for
// migrations and reference-data seeding, so bulk work cannot exhaust the
// connections serving user requests.
func NewDBPools(cfg *config.DatabasePools) (*pgxpool.Pool, *pgxpool.Pool, error) {
	appPool, err := createPgxPool(cfg.AppPool)
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to create application pool", err)
	}

	seedPool, err := createPgxPool(cfg.SeedPool)
	if err != nil {
		// Clean up the app pool if the second pool cannot be created.
		appPool.Close()
		return nil, nil, apperror.NewDatabaseError("failed to create seed pool", err)
	}

	return appPool, seedPool, nil
}

// createPgxPool establishes a single pgxpool connection pool.
func createPgxPool(cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.MaxSize,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	// Bound pool creation so an unreachable database fails fast instead of
	// hanging startup indefinitely.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	// Verify the connection by pinging before handing the pool out.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	return pool, nil
}

// getDSN constructs a DSN string from PoolConfig, suitable for golang-migrate.
// migrate's postgres driver uses a lib/pq style DSN rather than a pgx pool.
func getDSN(cfg *config.PoolConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}

// RunMigrations applies any pending database migrations from the given directory.
// Migration files follow golang-migrate's naming scheme
// ({version}_{description}.up.sql / .down.sql). Passing an empty path disables
// migrations entirely.
func RunMigrations(cfg *config.PoolConfig, migrationsPath string) error {
	if migrationsPath == "" {
		return nil
	}

	m, err := migrate.New("file://"+migrationsPath, getDSN(cfg))
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		// m.Close releases both the source and the database handle; neither
		// error is fatal at this point, so just report them.
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			if srcErr != nil {
				fmt.Printf("Warning: error closing migration source: %v\n", srcErr)
			}
			if dbErr != nil {
				fmt.Printf("Warning: error closing migration database instance: %v\n", dbErr)
			}
		}
	}()

	// ErrNoChange simply means the schema is already current.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return apperror.NewMigrationError("failed to run migrations", err)
	}

	return nil
}
