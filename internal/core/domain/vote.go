package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	UserID     string    `json:"user_id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	Choice     string    `json:"choice"`
	CastAt     time.Time `json:"cast_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
