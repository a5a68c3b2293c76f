package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type userModel struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"not null"`
	Role      string `gorm:"not null;default:user;index"`
	CreatedAt time.Time
	DeletedAt *time.Time
}

func (userModel) TableName() string { return "users" }

type proposalModel struct {
	ID             string   `gorm:"primaryKey"`
	Title          string   `gorm:"not null"`
	Description    string   `gorm:"not null"`
	VotingOptions  []string `gorm:"serializer:json;not null"`
	StartTime      time.Time
	EndTime        time.Time `gorm:"index"`
	QuorumRequired *int64
	Status         string `gorm:"not null;index"`
	NFTMinted      bool   `gorm:"not null;default:false"`
	CreatedBy      string `gorm:"not null"`
	CreatedAt      time.Time
	ClosedAt       *time.Time
}

func (proposalModel) TableName() string { return "proposals" }

type allocationModel struct {
	UserID     string `gorm:"primaryKey"`
	ProposalID string `gorm:"primaryKey;index"`
	GrantedAt  time.Time
	HasVoted   bool `gorm:"not null;default:false"`
}

func (allocationModel) TableName() string { return "vote_allocations" }

type voteModel struct {
	UserID     string `gorm:"primaryKey"`
	ProposalID string `gorm:"primaryKey;index"`
	Choice     string `gorm:"not null"`
	CastAt     time.Time
	UpdatedAt  time.Time
}

func (voteModel) TableName() string { return "votes" }

func toProposalModel(p *domain.Proposal) *proposalModel {
	m := &proposalModel{
		ID:             p.ID.String(),
		Title:          p.Title,
		Description:    p.Description,
		VotingOptions:  p.VotingOptions,
		StartTime:      utc(p.StartTime),
		EndTime:        utc(p.EndTime),
		QuorumRequired: p.QuorumRequired,
		Status:         string(p.Status),
		NFTMinted:      p.NFTMinted,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      utc(p.CreatedAt),
	}
	if p.ClosedAt != nil {
		t := utc(*p.ClosedAt)
		m.ClosedAt = &t
	}
	return m
}

func (m *proposalModel) toDomain() (*domain.Proposal, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Proposal{
		ID:             id,
		Title:          m.Title,
		Description:    m.Description,
		VotingOptions:  m.VotingOptions,
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		QuorumRequired: m.QuorumRequired,
		Status:         domain.ProposalStatus(m.Status),
		NFTMinted:      m.NFTMinted,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		ClosedAt:       m.ClosedAt,
	}, nil
}

func (m *allocationModel) toDomain() (*domain.Allocation, error) {
	id, err := uuid.Parse(m.ProposalID)
	if err != nil {
		return nil, err
	}
	return &domain.Allocation{
		UserID:     m.UserID,
		ProposalID: id,
		GrantedAt:  m.GrantedAt,
		HasVoted:   m.HasVoted,
	}, nil
}

func (m *voteModel) toDomain() (*domain.Vote, error) {
	id, err := uuid.Parse(m.ProposalID)
	if err != nil {
		return nil, err
	}
	return &domain.Vote{
		UserID:     m.UserID,
		ProposalID: id,
		Choice:     m.Choice,
		CastAt:     m.CastAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}
