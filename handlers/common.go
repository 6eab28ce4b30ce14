package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yebtimotheous/gnx/services"
)

// respondJSON escreve o corpo JSON com o status informado.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusForError mapeia os erros de serviço para códigos HTTP.
func statusForError(err error) int {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, services.ErrSigningRejected), errors.Is(err, services.ErrSigningExpired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSigningTimeout), errors.Is(err, services.ErrValidationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrTokenIDNotFound), errors.Is(err, services.ErrOfferIndexNotFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError responde o erro com o código mapeado.
func writeServiceError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}
