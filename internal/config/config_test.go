package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"user"}, cfg.EligibleRoles)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.TallyCacheTTL)
	assert.Zero(t, cfg.SweepInterval)
	assert.False(t, cfg.OpenProposals)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("GOVERNANCE_ELIGIBLE_ROLES", "user,admin")
	t.Setenv("GOVERNANCE_OPEN_PROPOSALS", "true")
	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, []string{"user", "admin"}, cfg.EligibleRoles)
	assert.True(t, cfg.OpenProposals)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, "postgres://postgres:secret@db:5432/governance?sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}
