package httpapi

import (
	"errors"
	"net/http"

	"bloodlink-data/internal/domain"

	"go.uber.org/zap"
)

// writeError maps domain errors to HTTP statuses. Unknown errors become a
// generic 500 so storage details never reach the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *domain.ValidationError
	var ie *domain.IncompatibleBloodTypeError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Fail(ve.Error()))
	case errors.As(err, &ie):
		writeJSON(w, http.StatusBadRequest, Fail(ie.Error()))
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusBadRequest, Fail(domain.ErrInvalidState.Error()))
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, Fail(domain.ErrUnauthorized.Error()))
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, Fail(domain.ErrInvalidCredentials.Error()))
	case errors.Is(err, domain.ErrAccountInactive):
		writeJSON(w, http.StatusForbidden, Fail(domain.ErrAccountInactive.Error()))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, Fail(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(domain.ErrNotFound.Error()))
	case errors.Is(err, domain.ErrDuplicateResponse):
		writeJSON(w, http.StatusConflict, Fail(domain.ErrDuplicateResponse.Error()))
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}
