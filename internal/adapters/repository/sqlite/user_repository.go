package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) ports.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	row := userModel{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"email":      user.Email,
				"role":       user.Role,
				"deleted_at": nil,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Select("created_at").Where("id = ?", user.ID).First(&row).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return domain.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	user.CreatedAt = row.CreatedAt
	return nil
}

func (r *userRepository) ListIDsByRoles(ctx context.Context, roles []string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&userModel{}).
		Where("role IN ? AND deleted_at IS NULL", roles).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}
