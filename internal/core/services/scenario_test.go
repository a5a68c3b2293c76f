package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

func TestProposalLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "u1", "u2", "u3")
	ctx := context.Background()

	p := f.createProposal(t, withQuorum(2))

	f.cast(t, "u1", p, "yes")
	f.cast(t, "u2", p, "no")
	f.cast(t, "u2", p, "yes")

	tally, err := f.Tally.Tally(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, tally)
	assert.Equal(t, map[string]int64{"yes": 2}, tally.Results)
	assert.Equal(t, 100.0, tally.Percentages["yes"])
	require.NotNil(t, tally.QuorumMet)
	assert.True(t, *tally.QuorumMet)

	closed, err := f.Proposals.Close(ctx, p.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusClosed, closed.Status)

	_, err = f.Votes.Cast(ctx, ports.CastVoteInput{UserID: "u3", ProposalID: p.ID, Choice: "no"})
	assert.ErrorIs(t, err, domain.ErrProposalNotOpen)

	after, err := f.Tally.Tally(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Results, after.Results)

	u3, err := f.Allocations.Get(ctx, "u3", p.ID)
	require.NoError(t, err)
	assert.False(t, u3.HasVoted)
}
