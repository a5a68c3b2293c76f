package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/metrics"
)

// publish emits event on a best-effort basis. Failures are logged and never
// reach the caller of the operation that produced the event.
func publish(ctx context.Context, events ports.EventPublisher, m *metrics.Metrics, logger logrus.FieldLogger, event domain.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		m.EventPublishFailed()
		logger.WithError(err).WithFields(logrus.Fields{
			"event":       event.Type,
			"proposal_id": event.ProposalID,
		}).Warn("failed to publish event")
	}
}
