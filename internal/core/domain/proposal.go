package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusClosed   ProposalStatus = "closed"
	ProposalStatusArchived ProposalStatus = "archived"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusActive, ProposalStatusClosed, ProposalStatusArchived:
		return true
	}
	return false
}

type Proposal struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	VotingOptions  []string       `json:"voting_options"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	QuorumRequired *int64         `json:"quorum_required,omitempty"`
	Status         ProposalStatus `json:"status"`
	NFTMinted      bool           `json:"nft_minted"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
}

// IsOpen reports whether votes may be written at now.
func (p *Proposal) IsOpen(now time.Time) bool {
	return p.Status == ProposalStatusActive && !now.Before(p.StartTime) && !now.After(p.EndTime)
}

func (p *Proposal) HasOption(choice string) bool {
	return slices.Contains(p.VotingOptions, choice)
}

// CanManage reports whether actor may close or edit the proposal.
func (p *Proposal) CanManage(actor Actor) bool {
	return actor.IsAdmin || (actor.UserID != "" && actor.UserID == p.CreatedBy)
}
