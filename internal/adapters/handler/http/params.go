package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

func proposalIDParam(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, logger, domain.ErrInvalidProposalID)
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		writeUnauthenticated(w, "missing user context")
	}
	return actor, ok
}
