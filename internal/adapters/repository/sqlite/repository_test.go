package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

func openTestDB(t *testing.T) (ports.ProposalRepository, ports.AllocationRepository, ports.UserRepository) {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return NewProposalRepository(db), NewAllocationRepository(db), NewUserRepository(db)
}

func newProposal(title string, created time.Time) *domain.Proposal {
	return &domain.Proposal{
		ID:            uuid.New(),
		Title:         title,
		VotingOptions: []string{"yes", "no"},
		StartTime:     created.Add(-time.Hour),
		EndTime:       created.Add(time.Hour),
		Status:        domain.ProposalStatusActive,
		CreatedBy:     "admin",
		CreatedAt:     created,
	}
}

func TestProposalRepository_ListPagination(t *testing.T) {
	proposals, _, _ := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for i := range 5 {
		require.NoError(t, proposals.Save(ctx, newProposal("Budget", now.Add(time.Duration(i)*time.Second))))
	}

	page, err := proposals.List(ctx, ports.ProposalFilter{}, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt), "newest first")

	last, err := proposals.List(ctx, ports.ProposalFilter{}, 2, 4)
	require.NoError(t, err)
	assert.Len(t, last, 1)

	none, err := proposals.List(ctx, ports.ProposalFilter{Query: "charter"}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProposalRepository_SaveDuplicate(t *testing.T) {
	proposals, _, _ := openTestDB(t)
	p := newProposal("Budget", time.Now())

	require.NoError(t, proposals.Save(context.Background(), p))
	err := proposals.Save(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProposalRepository_Transitions(t *testing.T) {
	proposals, _, _ := openTestDB(t)
	ctx := context.Background()
	p := newProposal("Budget", time.Now())
	require.NoError(t, proposals.Save(ctx, p))

	archived, err := proposals.Archive(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, archived, "active proposals cannot be archived")

	closed, err := proposals.Close(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = proposals.Close(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, closed)

	err = proposals.UpdateDetails(ctx, p)
	assert.ErrorIs(t, err, domain.ErrProposalNotActive)

	archived, err = proposals.Archive(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, archived)

	missing := newProposal("Ghost", time.Now())
	err = proposals.UpdateDetails(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestAllocationRepository_CreateManySkipsExisting(t *testing.T) {
	proposals, allocations, _ := openTestDB(t)
	ctx := context.Background()
	p := newProposal("Budget", time.Now())
	require.NoError(t, proposals.Save(ctx, p))

	created, err := allocations.Create(ctx, &domain.Allocation{UserID: "alice", ProposalID: p.ID, GrantedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, created)

	n, err := allocations.CreateMany(ctx, []*domain.Allocation{
		{UserID: "alice", ProposalID: p.ID, GrantedAt: time.Now()},
		{UserID: "bob", ProposalID: p.ID, GrantedAt: time.Now()},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := allocations.Get(ctx, "carol", p.ID)
	require.NoError(t, err)
	assert.Nil(t, a)

	require.NoError(t, allocations.MarkVoted(ctx, "bob", p.ID))
	require.NoError(t, allocations.MarkVoted(ctx, "bob", p.ID))
	a, err = allocations.Get(ctx, "bob", p.ID)
	require.NoError(t, err)
	assert.True(t, a.HasVoted)
}

func TestUserRepository_UpsertAndRoles(t *testing.T) {
	_, _, users := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, users.Upsert(ctx, &domain.User{ID: "alice", Email: "alice@example.com", Role: domain.RoleUser}))
	require.NoError(t, users.Upsert(ctx, &domain.User{ID: "root", Email: "root@example.com", Role: domain.RoleAdmin}))

	first, err := users.GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, first)

	u := &domain.User{ID: "alice", Email: "alice@new.example.com", Role: domain.RoleUser}
	require.NoError(t, users.Upsert(ctx, u))
	assert.True(t, first.CreatedAt.Equal(u.CreatedAt), "created_at survives an upsert")

	ids, err := users.ListIDsByRoles(ctx, []string{domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)

	ids, err = users.ListIDsByRoles(ctx, []string{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "root"}, ids)

	missing, err := users.GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
