package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// The insert only produces a row while the proposal window is open and the
// voter holds an allocation, so a close racing with a vote cannot let a late
// ballot through.
const upsertVote = `
	INSERT INTO votes (user_id, proposal_id, choice, cast_at, updated_at)
	SELECT $1::text, $2::uuid, $3::text, $4::timestamptz, $4::timestamptz
	WHERE EXISTS (
		SELECT 1 FROM proposals p
		WHERE p.id = $2::uuid
		  AND p.status = 'active'
		  AND $4::timestamptz BETWEEN p.start_time AND p.end_time
	)
	AND EXISTS (
		SELECT 1 FROM vote_allocations a
		WHERE a.user_id = $1::text AND a.proposal_id = $2::uuid
	)
	ON CONFLICT (user_id, proposal_id) DO UPDATE
	SET choice = EXCLUDED.choice,
	    updated_at = EXCLUDED.updated_at
	RETURNING user_id, proposal_id, choice, cast_at, updated_at
`

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) (*domain.Vote, error) {
	var stored domain.Vote
	err := r.db.QueryRowContext(ctx, upsertVote, vote.UserID, vote.ProposalID, vote.Choice, vote.UpdatedAt).
		Scan(&stored.UserID, &stored.ProposalID, &stored.Choice, &stored.CastAt, &stored.UpdatedAt)
	if err == nil {
		return &stored, nil
	}
	if isUniqueViolation(err) {
		return nil, domain.Conflict("vote was written concurrently, retry", err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}

	var allocated bool
	check := `SELECT EXISTS (SELECT 1 FROM vote_allocations WHERE user_id = $1 AND proposal_id = $2)`
	if err := r.db.QueryRowContext(ctx, check, vote.UserID, vote.ProposalID).Scan(&allocated); err != nil {
		return nil, fmt.Errorf("failed to check allocation: %w", err)
	}
	if !allocated {
		return nil, domain.ErrNoAllocation
	}
	return nil, domain.ErrProposalNotOpen
}

func (r *voteRepository) Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT user_id, proposal_id, choice, cast_at, updated_at
		FROM votes
		WHERE user_id = $1 AND proposal_id = $2
	`
	var v domain.Vote
	err := r.db.QueryRowContext(ctx, query, userID, proposalID).Scan(&v.UserID, &v.ProposalID, &v.Choice, &v.CastAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &v, nil
}

func (r *voteRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error) {
	query := `
		SELECT user_id, proposal_id, choice, cast_at, updated_at
		FROM votes
		WHERE proposal_id = $1
		ORDER BY cast_at
	`
	return r.query(ctx, query, proposalID)
}

func (r *voteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error) {
	query := `
		SELECT user_id, proposal_id, choice, cast_at, updated_at
		FROM votes
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	return r.query(ctx, query, userID)
}

func (r *voteRepository) query(ctx context.Context, query string, arg any) ([]*domain.Vote, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.UserID, &v.ProposalID, &v.Choice, &v.CastAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
