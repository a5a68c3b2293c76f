package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) ports.VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) (*domain.Vote, error) {
	proposalID := vote.ProposalID.String()
	var stored voteModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p proposalModel
		if err := tx.First(&p, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProposalNotOpen
			}
			return err
		}
		proposal, err := p.toDomain()
		if err != nil {
			return err
		}

		var allocated int64
		if err := tx.Model(&allocationModel{}).
			Where("user_id = ? AND proposal_id = ?", vote.UserID, proposalID).
			Count(&allocated).Error; err != nil {
			return err
		}
		if allocated == 0 {
			return domain.ErrNoAllocation
		}
		if !proposal.IsOpen(vote.UpdatedAt) {
			return domain.ErrProposalNotOpen
		}

		row := voteModel{
			UserID:     vote.UserID,
			ProposalID: proposalID,
			Choice:     vote.Choice,
			CastAt:     utc(vote.CastAt),
			UpdatedAt:  utc(vote.UpdatedAt),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "proposal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"choice", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ? AND proposal_id = ?", vote.UserID, proposalID).First(&stored).Error
	})
	if err != nil {
		var derr *domain.Error
		switch {
		case errors.As(err, &derr):
			return nil, err
		case isDuplicate(err):
			return nil, domain.Conflict("vote was written concurrently, retry", err)
		}
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}
	return stored.toDomain()
}

func (r *voteRepository) Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Vote, error) {
	var m voteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID.String()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return m.toDomain()
}

func (r *voteRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error) {
	return r.find(r.db.WithContext(ctx).Where("proposal_id = ?", proposalID.String()).Order("cast_at"))
}

func (r *voteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Vote, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC"))
}

func (r *voteRepository) find(q *gorm.DB) ([]*domain.Vote, error) {
	var rows []voteModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	votes := make([]*domain.Vote, 0, len(rows))
	for i := range rows {
		v, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, nil
}
