package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"lumaevents/internal/delivery/http/helpers"
)

// eventIDFromPath reads the eventID path value and rejects anything that is not a UUID.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if err := uuid.Validate(eventID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}
