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

type allocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) ports.AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) ListUserIDs(ctx context.Context, proposalID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&allocationModel{}).
		Where("proposal_id = ?", proposalID.String()).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocation holders: %w", err)
	}
	return ids, nil
}

func (r *allocationRepository) CreateMany(ctx context.Context, allocations []*domain.Allocation) (int, error) {
	if len(allocations) == 0 {
		return 0, nil
	}
	rows := make([]allocationModel, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, toAllocationModel(a))
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert allocations: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *allocationRepository) Create(ctx context.Context, a *domain.Allocation) (bool, error) {
	row := toAllocationModel(a)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert allocation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *allocationRepository) Get(ctx context.Context, userID string, proposalID uuid.UUID) (*domain.Allocation, error) {
	var m allocationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID.String()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return m.toDomain()
}

func (r *allocationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Allocation, error) {
	var rows []allocationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("granted_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	allocations := make([]*domain.Allocation, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, nil
}

func (r *allocationRepository) MarkVoted(ctx context.Context, userID string, proposalID uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&allocationModel{}).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID.String()).
		Update("has_voted", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark allocation as used: %w", err)
	}
	return nil
}

func toAllocationModel(a *domain.Allocation) allocationModel {
	return allocationModel{
		UserID:     a.UserID,
		ProposalID: a.ProposalID.String(),
		GrantedAt:  utc(a.GrantedAt),
		HasVoted:   a.HasVoted,
	}
}
