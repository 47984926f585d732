package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"linkmint/internal/models"
	"linkmint/internal/services"
)

type AdoptionHandler struct {
	Service *services.AdoptionService
}

func (h *AdoptionHandler) Adopt(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		http.Error(w, "Missing user ID", http.StatusUnauthorized)
		return
	}

	var req struct {
		BioID   string `json:"bio_id"`
		OfferID string `json:"offer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.BioID == "" || req.OfferID == "" {
		http.Error(w, "bio_id and offer_id are required", http.StatusBadRequest)
		return
	}

	adoption, err := h.Service.Adopt(r.Context(), userID, req.BioID, req.OfferID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(adoption)
}

func (h *AdoptionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	adoptionID := getParam(r, "id")
	if adoptionID == "" {
		http.Error(w, "Missing adoption ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Remove(r.Context(), userID, adoptionID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdoptionHandler) UserAdoptions(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	adoptions, err := h.Service.UserAdoptions(r.Context(), userID, r.URL.Query().Get("bio_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if adoptions == nil {
		adoptions = []models.Adoption{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(adoptions)
}

// BioAdoptions serves the public sponsored-links payload for a bio page. No
// auth: this is what visitors render.
func (h *AdoptionHandler) BioAdoptions(w http.ResponseWriter, r *http.Request) {
	bioID := getParam(r, "bioId")
	if bioID == "" {
		http.Error(w, "Missing bio ID", http.StatusBadRequest)
		return
	}

	links, err := h.Service.BioAdoptions(r.Context(), bioID)
	if err != nil {
		respondError(w, err)
		return
	}
	if links == nil {
		links = []models.BioSponsoredLink{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

func (h *AdoptionHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	summary, err := h.Service.Earnings(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *AdoptionHandler) EarningsHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.Service.EarningsHistory(r.Context(), userID, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
