package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/stableroute/stableroute_service/internal/infrastructure/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// Pool fallbacks for when the config carries zero values
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnLifetimeSec = 300
	connIdleTimeout        = 5 * time.Minute
	connectTimeout         = 10 * time.Second
)

// defaultMigrationSource is relative to the working directory of the binary
const defaultMigrationSource = "file://migrations"

var circuitBreaker *gobreaker.CircuitBreaker

func init() {
	settings := gobreaker.Settings{
		Name:        "database",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	circuitBreaker = gobreaker.NewCircuitBreaker(settings)
}

// DSN returns the connection string, composed from the discrete host fields
// when no explicit url is configured.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslMode)
}

// NewConnection opens a pooled Postgres connection and verifies it responds.
// The opening ping runs behind a circuit breaker so a flapping database does
// not get hammered during restarts.
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	_, cbErr := circuitBreaker.Execute(func() (interface{}, error) {
		db, err = sql.Open("postgres", DSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		maxOpen := cfg.MaxOpenConns
		if maxOpen == 0 {
			maxOpen = defaultMaxOpenConns
		}
		maxIdle := cfg.MaxIdleConns
		if maxIdle == 0 {
			maxIdle = defaultMaxIdleConns
		}
		connLifetime := cfg.ConnMaxLifetime
		if connLifetime == 0 {
			connLifetime = defaultConnLifetimeSec
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxIdle)
		db.SetConnMaxLifetime(time.Duration(connLifetime) * time.Second)
		db.SetConnMaxIdleTime(connIdleTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err = db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		return db, nil
	})

	if cbErr != nil {
		return nil, fmt.Errorf("circuit breaker: %w", cbErr)
	}

	return db, err
}

// RunMigrations applies pending schema migrations. The source accepts either
// a bare directory or a full migrate source URL; empty falls back to the
// migrations directory next to the binary.
func RunMigrations(databaseURL, source string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationSource(source), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func migrationSource(source string) string {
	switch {
	case source == "":
		return defaultMigrationSource
	case strings.Contains(source, "://"):
		return source
	default:
		return "file://" + source
	}
}
