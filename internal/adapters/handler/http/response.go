package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrForbidden:
		return http.StatusForbidden
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidState, domain.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and a sanitized body. Internal errors are
// logged with their cause and never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}

	writeJSON(w, status, errorResponse{Error: string(kind), Message: domain.PublicMessage(err)})
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(domain.ErrValidation), Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
