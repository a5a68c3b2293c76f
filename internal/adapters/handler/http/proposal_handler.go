package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type ProposalHandler struct {
	service ports.ProposalService
	tally   ports.TallyService
	logger  logrus.FieldLogger
}

func NewProposalHandler(service ports.ProposalService, tally ports.TallyService, logger logrus.FieldLogger) *ProposalHandler {
	return &ProposalHandler{
		service: service,
		tally:   tally,
		logger:  logger,
	}
}

type createProposalRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	VotingOptions  []string  `json:"voting_options"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	QuorumRequired *int64    `json:"quorum_required"`
}

// CreateProposal godoc
// @Summary      Creates a proposal
// @Description  Opens a proposal and grants one voting allocation to every eligible user.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Success      201 {object} domain.Proposal
// @Failure      400,401,403
// @Router       /api/proposals [post]
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	proposal, err := h.service.Create(r.Context(), ports.CreateProposalInput{
		Title:          req.Title,
		Description:    req.Description,
		VotingOptions:  req.VotingOptions,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		QuorumRequired: req.QuorumRequired,
	}, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, proposal)
}

// ListProposals godoc
// @Summary      Lists proposals
// @Description  Without query parameters returns the proposals open for voting. `status`, `q` and `page` switch to the paginated listing.
// @Tags         proposals
// @Produce      json
// @Param        status query string false "active, closed or archived"
// @Param        q      query string false "title search"
// @Param        page   query int    false "page number, starting at 1"
// @Success      200 {array} domain.Proposal
// @Router       /api/proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		proposals []*domain.Proposal
		err       error
	)
	if !query.Has("status") && !query.Has("q") && !query.Has("page") {
		proposals, err = h.service.ListActive(r.Context())
	} else {
		page := 1
		if p := query.Get("page"); p != "" {
			page, err = strconv.Atoi(p)
			if err != nil || page < 1 {
				writeBadRequest(w, "invalid page")
				return
			}
		}
		proposals, err = h.service.List(r.Context(), ports.ListProposalsInput{
			Status: domain.ProposalStatus(query.Get("status")),
			Query:  query.Get("q"),
			Page:   page,
		})
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if proposals == nil {
		proposals = []*domain.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	proposal, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

type updateProposalRequest struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	QuorumRequired json.RawMessage `json:"quorum_required"`
}

// UpdateProposal godoc
// @Summary      Edits an active proposal
// @Description  Only title, description and quorum can change. Send `"quorum_required": null` to remove the quorum.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Success      200 {object} domain.Proposal
// @Failure      400,403,404,409
// @Router       /api/proposals/{id} [patch]
func (h *ProposalHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	var req updateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	patch := ports.ProposalPatch{Title: req.Title, Description: req.Description}
	switch {
	case len(req.QuorumRequired) == 0:
	case bytes.Equal(req.QuorumRequired, []byte("null")):
		patch.ClearQuorum = true
	default:
		var quorum int64
		if err := json.Unmarshal(req.QuorumRequired, &quorum); err != nil {
			writeBadRequest(w, "quorum_required must be an integer")
			return
		}
		patch.QuorumRequired = &quorum
	}

	proposal, err := h.service.Update(r.Context(), id, patch, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

// CloseProposal godoc
// @Summary      Closes a proposal
// @Description  Ends voting. Closing an already closed proposal is a no-op.
// @Tags         proposals
// @Produce      json
// @Success      200 {object} domain.Proposal
// @Failure      403,404,409
// @Router       /api/proposals/{id}/close [post]
func (h *ProposalHandler) CloseProposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	proposal, err := h.service.Close(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

func (h *ProposalHandler) ArchiveProposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	proposal, err := h.service.Archive(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

// GetTally godoc
// @Summary      Tallies a proposal
// @Description  Counts and percentages per option. Responds 204 while no votes have been cast.
// @Tags         proposals
// @Produce      json
// @Success      200 {object} domain.TallyResult
// @Success      204
// @Failure      404
// @Router       /api/proposals/{id}/tally [get]
func (h *ProposalHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalIDParam(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.tally.Tally(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
