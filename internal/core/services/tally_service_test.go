package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

func TestTally(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "alice", "bob", "carol")
	ctx := context.Background()
	p := f.createProposal(t, withQuorum(3))

	empty, err := f.Tally.Tally(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, empty)

	f.cast(t, "alice", p, "yes")
	f.cast(t, "bob", p, "yes")
	f.cast(t, "carol", p, "no")

	result, err := f.Tally.Tally(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, map[string]int64{"yes": 2, "no": 1}, result.Results)
	assert.Equal(t, 66.67, result.Percentages["yes"])
	assert.Equal(t, 33.33, result.Percentages["no"])
	require.NotNil(t, result.QuorumMet)
	assert.True(t, *result.QuorumMet)

	_, err = f.Tally.Tally(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
