package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type TallyResult struct {
	ProposalID     uuid.UUID          `json:"proposal_id"`
	Results        map[string]int64   `json:"results"`
	Total          int64              `json:"total"`
	Percentages    map[string]float64 `json:"percentages"`
	QuorumRequired *int64             `json:"quorum_required,omitempty"`
	QuorumMet      *bool              `json:"quorum_met,omitempty"`
	ComputedAt     time.Time          `json:"computed_at"`
}

// NewTallyResult aggregates votes for proposal. It returns nil when there are
// no votes. Only choices that received at least one vote appear in the maps.
func NewTallyResult(proposal *Proposal, votes []*Vote, now time.Time) *TallyResult {
	if len(votes) == 0 {
		return nil
	}

	results := make(map[string]int64)
	var total int64
	for _, v := range votes {
		results[v.Choice]++
		total++
	}

	percentages := make(map[string]float64, len(results))
	for choice, count := range results {
		percentages[choice] = math.Round(float64(count)*10000/float64(total)) / 100
	}

	tally := &TallyResult{
		ProposalID:  proposal.ID,
		Results:     results,
		Total:       total,
		Percentages: percentages,
		ComputedAt:  now,
	}
	if proposal.QuorumRequired != nil {
		required := *proposal.QuorumRequired
		met := total >= required
		tally.QuorumRequired = &required
		tally.QuorumMet = &met
	}
	return tally
}
