package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"linkmint/internal/models"
	"linkmint/internal/services"
	"linkmint/utils"
)

type OfferHandler struct {
	Service *services.OfferService
	Storage *utils.S3Storage
}

func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	companyID, _ := r.Context().Value("company_id").(string)
	if companyID == "" {
		http.Error(w, "Missing company ID", http.StatusUnauthorized)
		return
	}

	var req models.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	offer, err := h.Service.CreateOffer(r.Context(), companyID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(offer)
}

func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	companyID, _ := r.Context().Value("company_id").(string)
	offerID := getParam(r, "id")
	if offerID == "" {
		http.Error(w, "Missing offer ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	offer, err := h.Service.UpdateOffer(r.Context(), companyID, offerID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offer)
}

func (h *OfferHandler) ListCompanyOffers(w http.ResponseWriter, r *http.Request) {
	companyID, _ := r.Context().Value("company_id").(string)

	offers, err := h.Service.ListCompanyOffers(r.Context(), companyID)
	if err != nil {
		respondError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}

func (h *OfferHandler) PauseOffer(w http.ResponseWriter, r *http.Request) {
	companyID, _ := r.Context().Value("company_id").(string)
	offerID := getParam(r, "id")
	if offerID == "" {
		http.Error(w, "Missing offer ID", http.StatusBadRequest)
		return
	}

	offer, err := h.Service.PauseOffer(r.Context(), companyID, offerID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offer)
}

func (h *OfferHandler) OfferStats(w http.ResponseWriter, r *http.Request) {
	companyID, _ := r.Context().Value("company_id").(string)
	offerID := getParam(r, "id")
	if offerID == "" {
		http.Error(w, "Missing offer ID", http.StatusBadRequest)
		return
	}

	stats, err := h.Service.OfferStats(r.Context(), companyID, offerID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

type marketplaceResponse struct {
	Offers []models.Offer `json:"offers"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

func (h *OfferHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offers, total, err := h.Service.ListMarketplace(r.Context(), q.Get("category"), q.Get("search"), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(marketplaceResponse{Offers: offers, Total: total, Page: page, Limit: limit})
}

func (h *OfferHandler) MarketplaceOffer(w http.ResponseWriter, r *http.Request) {
	offerID := getParam(r, "id")
	if offerID == "" {
		http.Error(w, "Missing offer ID", http.StatusBadRequest)
		return
	}

	offer, err := h.Service.GetMarketplaceOffer(r.Context(), offerID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offer)
}

// UploadOfferImage accepts a multipart "image" part, stores it in S3 and
// returns the public URL for use in a subsequent offer create/update.
func (h *OfferHandler) UploadOfferImage(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		http.Error(w, "Image storage not configured", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	fileName := uuid.NewString() + filepath.Ext(header.Filename)

	url, err := h.Storage.UploadOfferImage(data, fileName, contentType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
