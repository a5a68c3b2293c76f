package services_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/repository/sqlite"
	"github.com/nafia007/afd-submissions-sub001/internal/app"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
)

var admin = domain.Actor{UserID: "admin-1", IsAdmin: true}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	*app.App
	repos  *database.Repositories
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open("")
	require.NoError(t, err)
	repos, err := database.NewSQLite(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	events := &recordingPublisher{}
	return &fixture{
		App: app.New(repos, app.Options{
			EligibleRoles: []string{domain.RoleUser},
			Events:        events,
			Logger:        quietLogger(),
		}),
		repos:  repos,
		events: events,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func (f *fixture) addUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := f.repos.Users.Upsert(context.Background(), &domain.User{
			ID:    id,
			Email: fmt.Sprintf("%s@example.com", id),
			Role:  domain.RoleUser,
		})
		require.NoError(t, err)
	}
}

type proposalOption func(*ports.CreateProposalInput)

func withWindow(start, end time.Time) proposalOption {
	return func(in *ports.CreateProposalInput) {
		in.StartTime = start
		in.EndTime = end
	}
}

func withQuorum(q int64) proposalOption {
	return func(in *ports.CreateProposalInput) {
		in.QuorumRequired = &q
	}
}

func (f *fixture) createProposal(t *testing.T, opts ...proposalOption) *domain.Proposal {
	t.Helper()
	now := time.Now()
	input := ports.CreateProposalInput{
		Title:         "Fund the community garden",
		Description:   "Allocate budget for Q3",
		VotingOptions: []string{"yes", "no", "abstain"},
		StartTime:     now.Add(-time.Hour),
		EndTime:       now.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(&input)
	}

	p, err := f.Proposals.Create(context.Background(), input, admin)
	require.NoError(t, err)
	return p
}

func (f *fixture) cast(t *testing.T, userID string, proposal *domain.Proposal, choice string) *domain.Vote {
	t.Helper()
	v, err := f.Votes.Cast(context.Background(), ports.CastVoteInput{
		UserID:     userID,
		ProposalID: proposal.ID,
		Choice:     choice,
	})
	require.NoError(t, err)
	return v
}
