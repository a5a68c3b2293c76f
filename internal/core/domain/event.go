package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventProposalCreated = "proposal.created"
	EventProposalClosed  = "proposal.closed"
	EventVoteCast        = "vote.cast"
)

type Event struct {
	Type       string    `json:"type"`
	ProposalID uuid.UUID `json:"proposal_id"`
	UserID     string    `json:"user_id,omitempty"`
	Choice     string    `json:"choice,omitempty"`
	QuorumMet  *bool     `json:"quorum_met,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
