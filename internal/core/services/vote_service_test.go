package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

func TestCastOverridesPreviousChoice(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "alice")
	ctx := context.Background()
	p := f.createProposal(t)

	first := f.cast(t, "alice", p, "yes")
	second := f.cast(t, "alice", p, "no")

	assert.Equal(t, "no", second.Choice)
	assert.True(t, second.CastAt.Equal(first.CastAt), "first cast time is kept")
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	votes, err := f.Votes.ListForProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "no", votes[0].Choice)

	mine, err := f.Votes.GetForUser(ctx, "alice", p.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, "no", mine.Choice)

	allocation, err := f.Allocations.Get(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.True(t, allocation.HasVoted)

	assert.Len(t, f.events.ofType(domain.EventVoteCast), 2)
}

func TestCastGating(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "alice")
	ctx := context.Background()
	now := time.Now()

	open := f.createProposal(t)
	upcoming := f.createProposal(t, withWindow(now.Add(time.Hour), now.Add(2*time.Hour)))
	closed := f.createProposal(t)
	_, err := f.Proposals.Close(ctx, closed.ID, admin)
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   string
		proposal uuid.UUID
		choice   string
		want     error
		kind     domain.Kind
	}{
		{"no allocation", "mallory", open.ID, "yes", domain.ErrNoAllocation, domain.ErrForbidden},
		{"unknown choice", "alice", open.ID, "maybe", domain.ErrInvalidChoice, domain.ErrValidation},
		{"not started", "alice", upcoming.ID, "yes", domain.ErrProposalNotOpen, domain.ErrInvalidState},
		{"closed", "alice", closed.ID, "yes", domain.ErrProposalNotOpen, domain.ErrInvalidState},
		{"unknown proposal", "alice", uuid.New(), "yes", domain.ErrProposalNotFound, domain.ErrNotFound},
		{"missing user", "", open.ID, "yes", nil, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Votes.Cast(ctx, ports.CastVoteInput{UserID: tt.userID, ProposalID: tt.proposal, Choice: tt.choice})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	votes, err := f.Votes.ListForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestCastRaceKeepsSingleRow(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "alice")
	ctx := context.Background()
	p := f.createProposal(t)

	choices := []string{"yes", "no", "abstain"}
	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := range 12 {
		wg.Add(1)
		go func(choice string) {
			defer wg.Done()
			_, err := f.Votes.Cast(ctx, ports.CastVoteInput{UserID: "alice", ProposalID: p.ID, Choice: choice})
			errs <- err
		}(choices[i%len(choices)])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	votes, err := f.Votes.ListForProposal(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Contains(t, choices, votes[0].Choice)
}

func TestVoteRepositoryRechecksGate(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, "alice")
	ctx := context.Background()
	p := f.createProposal(t)

	// the service saw the proposal open; it closes before the write lands
	_, err := f.repos.Proposals.Close(ctx, p.ID, time.Now())
	require.NoError(t, err)

	now := time.Now()
	_, err = f.repos.Votes.Upsert(ctx, &domain.Vote{UserID: "alice", ProposalID: p.ID, Choice: "yes", CastAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrProposalNotOpen)

	_, err = f.repos.Votes.Upsert(ctx, &domain.Vote{UserID: "bob", ProposalID: p.ID, Choice: "yes", CastAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, domain.ErrNoAllocation)
}
