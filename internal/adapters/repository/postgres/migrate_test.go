package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames(t *testing.T) {
	ups, err := migrationNames(".up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_create_users.up.sql",
		"0002_create_proposals.up.sql",
		"0003_create_vote_allocations.up.sql",
		"0004_create_votes.up.sql",
	}, ups)

	all, err := MigrationNames()
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestMigrationFileName(t *testing.T) {
	name, err := migrationFileName("create_votes.down")
	require.NoError(t, err)
	assert.Equal(t, "0004_create_votes.down.sql", name)

	_, err = migrationFileName("create_ballots.up")
	assert.Error(t, err)
}
