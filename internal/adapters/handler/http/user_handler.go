package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
	logger  logrus.FieldLogger
}

func NewUserHandler(service ports.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
}

// Register godoc
// @Summary      Registers the authenticated user
// @Description  Records the caller as a ledger member and grants allocations on proposals that are currently open.
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200 {object} domain.User
// @Failure      400,401
// @Router       /api/me [put]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), actor, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
