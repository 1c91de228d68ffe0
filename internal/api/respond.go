package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/auth"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/store"
	"github.com/rs/zerolog"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps domain errors to status codes. Unexpected errors are logged
// and hidden from the client.
func respondErr(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var verr *checkout.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": verr.Fields})
	case errors.Is(err, app.ErrAuthRequired),
		errors.Is(err, auth.ErrNotSignedIn),
		errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, app.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrReviewInvalid),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, app.ErrCartEmpty):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrUnknownSection),
		errors.Is(err, app.ErrUnknownModal),
		errors.Is(err, database.ErrInvalidCursor),
		errors.Is(err, checkout.ErrUnknownField):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrUnknownProduct), store.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrOrderConstruction):
		logger.Error().Err(err).Msg("order construction failed")
		respondError(w, http.StatusInternalServerError, "Failed to place order. Please try again.")
	default:
		logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
