package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votesFor(choices map[string]int) []*Vote {
	var votes []*Vote
	for choice, n := range choices {
		for j := 0; j < n; j++ {
			votes = append(votes, &Vote{UserID: uuid.NewString(), Choice: choice})
		}
	}
	return votes
}

func TestNewTallyResult_CountsAndPercentages(t *testing.T) {
	p := &Proposal{ID: uuid.New(), VotingOptions: []string{"For", "Against", "Abstain"}}

	tally := NewTallyResult(p, votesFor(map[string]int{"For": 3, "Against": 2}), time.Now())
	require.NotNil(t, tally)

	assert.Equal(t, map[string]int64{"For": 3, "Against": 2}, tally.Results)
	assert.Equal(t, int64(5), tally.Total)
	assert.Equal(t, map[string]float64{"For": 60.0, "Against": 40.0}, tally.Percentages)
	assert.NotContains(t, tally.Results, "Abstain")
	assert.Nil(t, tally.QuorumMet)
}

func TestNewTallyResult_Empty(t *testing.T) {
	p := &Proposal{ID: uuid.New(), VotingOptions: []string{"For", "Against"}}
	assert.Nil(t, NewTallyResult(p, nil, time.Now()))
}

func TestNewTallyResult_RoundsToTwoDecimals(t *testing.T) {
	p := &Proposal{ID: uuid.New(), VotingOptions: []string{"A", "B"}}

	tally := NewTallyResult(p, votesFor(map[string]int{"A": 2, "B": 1}), time.Now())
	require.NotNil(t, tally)

	assert.Equal(t, 66.67, tally.Percentages["A"])
	assert.Equal(t, 33.33, tally.Percentages["B"])
}

func TestNewTallyResult_Quorum(t *testing.T) {
	quorum := int64(4)
	p := &Proposal{ID: uuid.New(), VotingOptions: []string{"For", "Against"}, QuorumRequired: &quorum}

	met := NewTallyResult(p, votesFor(map[string]int{"For": 3, "Against": 2}), time.Now())
	require.NotNil(t, met.QuorumMet)
	assert.True(t, *met.QuorumMet)
	assert.Equal(t, int64(4), *met.QuorumRequired)

	missed := NewTallyResult(p, votesFor(map[string]int{"For": 3}), time.Now())
	require.NotNil(t, missed.QuorumMet)
	assert.False(t, *missed.QuorumMet)
}

func TestNewTallyResult_Deterministic(t *testing.T) {
	p := &Proposal{ID: uuid.New(), VotingOptions: []string{"A", "B", "C"}}
	votes := votesFor(map[string]int{"A": 7, "B": 5, "C": 1})
	now := time.Now()

	first := NewTallyResult(p, votes, now)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NewTallyResult(p, votes, now))
	}
}
