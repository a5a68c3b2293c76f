package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ports.ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) Save(ctx context.Context, p *domain.Proposal) error {
	if err := r.db.WithContext(ctx).Create(toProposalModel(p)).Error; err != nil {
		if isDuplicate(err) {
			return domain.Conflict("proposal already exists", err)
		}
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var m proposalModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return m.toDomain()
}

func (r *proposalRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	now = utc(now)
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND start_time <= ? AND end_time >= ?", string(domain.ProposalStatusActive), now, now).
		Order("created_at DESC"))
}

func (r *proposalRepository) ListUnexpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND end_time >= ?", string(domain.ProposalStatusActive), utc(now)).
		Order("created_at DESC"))
}

func (r *proposalRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.Proposal, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND end_time < ?", string(domain.ProposalStatusActive), utc(now)).
		Order("end_time"))
}

func (r *proposalRepository) List(ctx context.Context, filter ports.ProposalFilter, limit, offset int) ([]*domain.Proposal, error) {
	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Query != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		q = q.Where("title LIKE ?", "%"+filter.Query+"%")
	}
	return r.find(q.Order("created_at DESC").Limit(limit).Offset(offset))
}

func (r *proposalRepository) UpdateDetails(ctx context.Context, p *domain.Proposal) error {
	res := r.db.WithContext(ctx).Model(&proposalModel{}).
		Where("id = ? AND status = ?", p.ID.String(), string(domain.ProposalStatusActive)).
		Updates(map[string]any{
			"title":           p.Title,
			"description":     p.Description,
			"quorum_required": p.QuorumRequired,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update proposal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
		return domain.ErrProposalNotActive
	}
	return nil
}

func (r *proposalRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&proposalModel{}).
		Where("id = ? AND status = ?", id.String(), string(domain.ProposalStatusActive)).
		Updates(map[string]any{
			"status":    string(domain.ProposalStatusClosed),
			"closed_at": utc(closedAt),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to close proposal: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *proposalRepository) Archive(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&proposalModel{}).
		Where("id = ? AND status = ?", id.String(), string(domain.ProposalStatusClosed)).
		Update("status", string(domain.ProposalStatusArchived))
	if res.Error != nil {
		return false, fmt.Errorf("failed to archive proposal: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *proposalRepository) find(q *gorm.DB) ([]*domain.Proposal, error) {
	var rows []proposalModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	proposals := make([]*domain.Proposal, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}
