package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type AllocationHandler struct {
	service ports.AllocationService
	logger  logrus.FieldLogger
}

func NewAllocationHandler(service ports.AllocationService, logger logrus.FieldLogger) *AllocationHandler {
	return &AllocationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AllocationHandler) GetMyAllocation(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	allocation, err := h.service.Get(r.Context(), actor.UserID, proposalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if allocation == nil {
		writeError(w, r, h.logger, &domain.Error{Kind: domain.ErrNotFound, Msg: "no allocation for this proposal"})
		return
	}

	writeJSON(w, http.StatusOK, allocation)
}

func (h *AllocationHandler) ListMyAllocations(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	allocations, err := h.service.ListForUser(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if allocations == nil {
		allocations = []*domain.Allocation{}
	}

	writeJSON(w, http.StatusOK, allocations)
}

// Backfill godoc
// @Summary      Grants missing allocations
// @Description  Re-runs the allocation grant for every eligible user. Existing allocations are left untouched.
// @Tags         allocations
// @Produce      json
// @Success      200 {object} domain.GrantReport
// @Failure      403,404,409
// @Router       /api/proposals/{id}/allocations/backfill [post]
func (h *AllocationHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		writeError(w, r, h.logger, domain.ErrAdminOnly)
		return
	}
	proposalID, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	report, err := h.service.Backfill(r.Context(), proposalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
