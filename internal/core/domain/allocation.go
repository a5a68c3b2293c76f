package domain

import (
	"time"

	"github.com/google/uuid"
)

// Allocation is a single voting right held by a user for one proposal.
type Allocation struct {
	UserID     string    `json:"user_id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	GrantedAt  time.Time `json:"granted_at"`
	HasVoted   bool      `json:"has_voted"`
}

// GrantReport summarizes one GrantAll pass.
type GrantReport struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Requested  int       `json:"requested"`
	Existing   int       `json:"existing"`
	Granted    int       `json:"granted"`
	Failed     int       `json:"failed"`
}
