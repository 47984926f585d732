package handlers

import (
	"errors"
	"net/http"

	"linkmint/internal/models"
)

// respondError maps service errors onto their contractual HTTP status codes.
// Gate failures carry their own code via StatusError; sentinel lookups map to
// 404 and anything unrecognized is a 500.
func respondError(w http.ResponseWriter, err error) {
	var statusErr *models.StatusError
	switch {
	case errors.As(err, &statusErr):
		http.Error(w, statusErr.Message, statusErr.Code)
	case errors.Is(err, models.ErrBioNotFound):
		http.Error(w, "Bio not found or not owned by you", http.StatusNotFound)
	case errors.Is(err, models.ErrOfferNotFound):
		http.Error(w, "Offer not found", http.StatusNotFound)
	case errors.Is(err, models.ErrAdoptionNotFound):
		http.Error(w, "Adoption not found", http.StatusNotFound)
	case errors.Is(err, models.ErrTrackingNotFound):
		http.Error(w, "Link not found", http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicateAdoption), isDuplicateKeyError(err):
		http.Error(w, "You have already adopted this offer", http.StatusConflict)
	case isForeignKeyConstraintError(err):
		http.Error(w, "Invalid reference in request", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
