package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type VoteHandler struct {
	service    ports.VoteService
	invalidate func(uuid.UUID)
	logger     logrus.FieldLogger
}

// NewVoteHandler builds the vote endpoints. invalidate, when set, is called
// with the proposal id after every stored vote so cached tallies refresh.
func NewVoteHandler(service ports.VoteService, invalidate func(uuid.UUID), logger logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{
		service:    service,
		invalidate: invalidate,
		logger:     logger,
	}
}

type castVoteRequest struct {
	Choice string `json:"choice"`
}

// CastVote godoc
// @Summary      Casts or changes a vote
// @Description  Stores the caller's choice. Voting again replaces the previous choice while the proposal is open.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Success      200 {object} domain.Vote
// @Failure      400,401,403,404,409
// @Router       /api/proposals/{id}/votes [put]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	vote, err := h.service.Cast(r.Context(), ports.CastVoteInput{
		UserID:     actor.UserID,
		ProposalID: proposalID,
		Choice:     req.Choice,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.invalidate != nil {
		h.invalidate(proposalID)
	}

	writeJSON(w, http.StatusOK, vote)
}

func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	vote, err := h.service.GetForUser(r.Context(), actor.UserID, proposalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if vote == nil {
		writeError(w, r, h.logger, &domain.Error{Kind: domain.ErrNotFound, Msg: "no vote cast"})
		return
	}

	writeJSON(w, http.StatusOK, vote)
}

// ListProposalVotes godoc
// @Summary      Lists every ballot of a proposal
// @Tags         votes
// @Produce      json
// @Success      200 {array} domain.Vote
// @Failure      403
// @Router       /api/proposals/{id}/votes [get]
func (h *VoteHandler) ListProposalVotes(w http.ResponseWriter, r *http.Request) {
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

	votes, err := h.service.ListForProposal(r.Context(), proposalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if votes == nil {
		votes = []*domain.Vote{}
	}

	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) ListMyVotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	votes, err := h.service.ListForUser(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if votes == nil {
		votes = []*domain.Vote{}
	}

	writeJSON(w, http.StatusOK, votes)
}
