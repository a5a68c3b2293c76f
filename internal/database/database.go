// Package database opens the configured store and assembles its
// repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/repository/postgres"
	"github.com/nafia007/afd-submissions-sub001/internal/adapters/repository/sqlite"
	"github.com/nafia007/afd-submissions-sub001/internal/config"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

const connectAttempts = 6

// Repositories bundles one storage backend.
type Repositories struct {
	Proposals   ports.ProposalRepository
	Allocations ports.AllocationRepository
	Votes       ports.VoteRepository
	Users       ports.UserRepository

	close func() error
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open connects to the backend named by cfg.StorageDriver. Postgres
// connections are retried with a Fibonacci backoff and migrated when
// migrate is set; SQLite creates its schema on open.
func Open(ctx context.Context, cfg *config.Config, migrate bool, logger logrus.FieldLogger) (*Repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLite(db)
	case config.DriverPostgres:
		db, err := ConnectPostgres(ctx, cfg.Postgres.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.ApplyMigrations(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return NewPostgres(db), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

// ConnectPostgres opens dsn and waits until the server answers a ping.
func ConnectPostgres(ctx context.Context, dsn string, logger logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	action := func(attempt uint) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.WithError(err).WithField("attempt", attempt).Warn("postgres not reachable yet")
			return err
		}
		return nil
	}
	if err := retry.Retry(action, strategy.Limit(connectAttempts), strategy.Backoff(backoff.Fibonacci(500*time.Millisecond))); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

func NewPostgres(db *sql.DB) *Repositories {
	return &Repositories{
		Proposals:   postgres.NewProposalRepository(db),
		Allocations: postgres.NewAllocationRepository(db),
		Votes:       postgres.NewVoteRepository(db),
		Users:       postgres.NewUserRepository(db),
		close:       db.Close,
	}
}

func NewSQLite(db *gorm.DB) (*Repositories, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Proposals:   sqlite.NewProposalRepository(db),
		Allocations: sqlite.NewAllocationRepository(db),
		Votes:       sqlite.NewVoteRepository(db),
		Users:       sqlite.NewUserRepository(db),
		close:       sqlDB.Close,
	}, nil
}
