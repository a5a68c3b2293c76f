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

type allocationRepository struct {
	db *sql.DB
}

func NewAllocationRepository(db *sql.DB) ports.AllocationRepository {
	return &allocationRepository{
		db: db,
	}
}

const insertAllocation = `
	INSERT INTO vote_allocations (user_id, proposal_id, granted_at, has_voted)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, proposal_id) DO NOTHING
`

func (r *allocationRepository) ListUserIDs(ctx context.Context, proposalID uuid.UUID) ([]string, error) {
	query := `SELECT user_id FROM vote_allocations WHERE proposal_id = $1`

	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation holders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan allocation holder: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation holders: %w", err)
	}
	return ids, nil
}

func (r *allocationRepository) CreateMany(ctx context.Context, allocations []*domain.Allocation) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAllocation)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, a := range allocations {
		res, err := stmt.ExecContext(ctx, a.UserID, a.ProposalID, a.GrantedAt, a.HasVoted)
		if err != nil {
			return 0, fmt.Errorf("failed to insert allocation for user %s: %w", a.UserID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to insert allocation for user %s: %w", a.UserID, err)
		}
		written += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

func (r *allocationRepository) Create(ctx context.Context, a *domain.Allocation) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertAllocation, a.UserID, a.ProposalID, a.GrantedAt, a.HasVoted)
	if err != nil {
		return false, fmt.Errorf("failed to insert allocation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert allocation: %w", err)
	}
	return n > 0, nil
}

func (r *allocationRepository) Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Allocation, error) {
	query := `
		SELECT user_id, proposal_id, granted_at, has_voted
		FROM vote_allocations
		WHERE user_id = $1 AND proposal_id = $2
	`
	var a domain.Allocation
	err := r.db.QueryRowContext(ctx, query, userID, proposalID).Scan(&a.UserID, &a.ProposalID, &a.GrantedAt, &a.HasVoted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return &a, nil
}

func (r *allocationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Allocation, error) {
	query := `
		SELECT user_id, proposal_id, granted_at, has_voted
		FROM vote_allocations
		WHERE user_id = $1
		ORDER BY granted_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.UserID, &a.ProposalID, &a.GrantedAt, &a.HasVoted); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}
	return allocations, nil
}

func (r *allocationRepository) MarkVoted(ctx context.Context, userID string, proposalID uuid.UUID) error {
	query := `UPDATE vote_allocations SET has_voted = TRUE WHERE user_id = $1 AND proposal_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, proposalID); err != nil {
		return fmt.Errorf("failed to mark allocation as used: %w", err)
	}
	return nil
}
