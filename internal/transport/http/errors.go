package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

const (
	codeValidation          = "validation_error"
	codeInvalidScope        = "invalid_scope"
	codeNotFound            = "not_found"
	codeNoActiveQuestion    = "no_active_question"
	codeDuplicateSubmission = "duplicate_submission"
	codeDuplicateUser       = "duplicate_participant"
	codePersistence         = "persistence_error"
	codeInternal            = "internal_error"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps a use-case error onto an HTTP status and a stable client code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, codeDuplicateSubmission
	case errors.Is(err, domain.ErrDuplicateParticipant):
		return http.StatusConflict, codeDuplicateUser
	case errors.Is(err, domain.ErrNoActiveQuestion):
		return http.StatusNotFound, codeNoActiveQuestion
	case errors.Is(err, domain.ErrRoundNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrInvalidScope):
		return http.StatusBadRequest, codeInvalidScope
	case errors.Is(err, domain.ErrInvalidActivation), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, codePersistence
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func errorFor(err error) errorPayload {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	return errorPayload{Code: code, Message: message}
}

func writeError(w http.ResponseWriter, err error) {
	status, _ := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorFor(err))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}
