package natsbus_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/events/natsbus"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

func startNATS(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return fmt.Sprintf("nats://%s:%s", host, port.Port())
}

func TestPublisher_PublishesOnTypedSubject(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	url := startNATS(t)
	publisher, err := natsbus.Connect(url, logrus.New())
	require.NoError(t, err)
	t.Cleanup(publisher.Close)

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	msgs := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("governance.>", msgs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Unsubscribe() })
	require.NoError(t, sub.Flush())

	event := domain.Event{
		Type:       domain.EventVoteCast,
		ProposalID: uuid.New(),
		UserID:     "user-1",
		Choice:     "yes",
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, publisher.Publish(context.Background(), event))

	select {
	case msg := <-msgs:
		assert.Equal(t, "governance.vote.cast", msg.Subject)
		var got domain.Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event.ProposalID, got.ProposalID)
		assert.Equal(t, "yes", got.Choice)
		assert.True(t, event.OccurredAt.Equal(got.OccurredAt))
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublisher_CancelledContext(t *testing.T) {
	p := natsbus.New(nil, natsbus.DefaultSubjectPrefix)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, domain.Event{Type: domain.EventProposalClosed})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "governance.proposal.closed", p.Subject(domain.EventProposalClosed))
}
