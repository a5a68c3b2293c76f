package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

const proposalColumns = `id, title, description, voting_options, start_time, end_time,
	quorum_required, status, nft_minted, created_by, created_at, closed_at`

type proposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) ports.ProposalRepository {
	return &proposalRepository{
		db: db,
	}
}

func (r *proposalRepository) Save(ctx context.Context, p *domain.Proposal) error {
	query := `
		INSERT INTO proposals (` + proposalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, pq.Array(p.VotingOptions), p.StartTime, p.EndTime,
		p.QuorumRequired, string(p.Status), p.NFTMinted, p.CreatedBy, p.CreatedAt, p.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("proposal already exists", err)
		}
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`

	p, err := scanProposal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}

func (r *proposalRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE status = 'active' AND start_time <= $1 AND end_time >= $1
		ORDER BY created_at DESC
	`
	return r.query(ctx, "failed to list active proposals", query, now)
}

func (r *proposalRepository) ListUnexpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE status = 'active' AND end_time >= $1
		ORDER BY created_at DESC
	`
	return r.query(ctx, "failed to list unexpired proposals", query, now)
}

func (r *proposalRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE status = 'active' AND end_time < $1
		ORDER BY end_time
	`
	return r.query(ctx, "failed to list expired proposals", query, now)
}

func (r *proposalRepository) List(ctx context.Context, filter ports.ProposalFilter, limit, offset int) ([]*domain.Proposal, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM proposals
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, proposalColumns, where, len(args)-1, len(args))

	return r.query(ctx, "failed to list proposals", query, args...)
}

func (r *proposalRepository) UpdateDetails(ctx context.Context, p *domain.Proposal) error {
	query := `
		UPDATE proposals
		SET title = $2, description = $3, quorum_required = $4
		WHERE id = $1 AND status = 'active'
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.Title, p.Description, p.QuorumRequired)
	if err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update proposal: %w", err)
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return domain.ErrProposalNotActive
	}
	return nil
}

func (r *proposalRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	query := `UPDATE proposals SET status = 'closed', closed_at = $2 WHERE id = $1 AND status = 'active'`
	return r.transition(ctx, "failed to close proposal", query, id, closedAt)
}

func (r *proposalRepository) Archive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE proposals SET status = 'archived' WHERE id = $1 AND status = 'closed'`
	return r.transition(ctx, "failed to archive proposal", query, id)
}

func (r *proposalRepository) transition(ctx context.Context, errMsg, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errMsg, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", errMsg, err)
	}
	return n > 0, nil
}

func (r *proposalRepository) query(ctx context.Context, errMsg, query string, args ...any) ([]*domain.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	defer rows.Close()

	var proposals []*domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return proposals, nil
}

func scanProposal(row scanner) (*domain.Proposal, error) {
	var (
		p        domain.Proposal
		status   string
		quorum   sql.NullInt64
		closedAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, pq.Array(&p.VotingOptions), &p.StartTime, &p.EndTime,
		&quorum, &status, &p.NFTMinted, &p.CreatedBy, &p.CreatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Status = domain.ProposalStatus(status)
	if quorum.Valid {
		q := quorum.Int64
		p.QuorumRequired = &q
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	return &p, nil
}
