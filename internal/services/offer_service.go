package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"linkmint/internal/models"
)

// OfferStore is the persistence surface the offer catalog needs.
type OfferStore interface {
	CreateOffer(ctx context.Context, o models.Offer) error
	GetOfferByID(ctx context.Context, id string) (models.Offer, error)
	GetOfferForCompany(ctx context.Context, companyID, offerID string) (models.Offer, error)
	ListCompanyOffers(ctx context.Context, companyID string) ([]models.Offer, error)
	ListMarketplace(ctx context.Context, category, search string, page, limit int) ([]models.Offer, int, error)
	UpdateOffer(ctx context.Context, o models.Offer) error
	SetStatus(ctx context.Context, offerID string, status models.OfferStatus) error
}

type AdoptionCounter interface {
	CountActiveByOffer(ctx context.Context, offerID string) (int, error)
}

type OfferService struct {
	Offers    OfferStore
	Adoptions AdoptionCounter
}

var minCPCRate = decimal.NewFromFloat(0.01)

func (s *OfferService) CreateOffer(ctx context.Context, companyID string, req models.CreateOfferRequest) (models.Offer, error) {
	if req.CPCRate.LessThan(minCPCRate) {
		return models.Offer{}, models.NewStatusError(http.StatusBadRequest, "CPC rate must be at least $0.01")
	}
	if req.Title == "" || req.LinkURL == "" {
		return models.Offer{}, models.NewStatusError(http.StatusBadRequest, "Title and link URL are required")
	}

	offer := models.Offer{
		ID:              uuid.NewString(),
		CompanyID:       companyID,
		Title:           req.Title,
		Description:     req.Description,
		LinkURL:         req.LinkURL,
		ImageURL:        req.ImageURL,
		Category:        req.Category,
		CPCRate:         req.CPCRate,
		DailyBudget:     req.DailyBudget,
		TotalBudget:     req.TotalBudget,
		TotalSpent:      decimal.Zero,
		Status:          models.OfferActive,
		StartsAt:        req.StartsAt,
		ExpiresAt:       req.ExpiresAt,
		TargetCountries: req.TargetCountries,
		MinBioTier:      req.MinBioTier,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		Layout:          req.Layout,
		CreatedAt:       time.Now(),
	}
	if offer.Category == "" {
		offer.Category = "other"
	}
	if offer.MinBioTier == "" {
		offer.MinBioTier = models.TierAny
	}
	if offer.Layout == "" {
		offer.Layout = "card"
	}

	if err := s.Offers.CreateOffer(ctx, offer); err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (s *OfferService) UpdateOffer(ctx context.Context, companyID, offerID string, req models.UpdateOfferRequest) (models.Offer, error) {
	offer, err := s.Offers.GetOfferForCompany(ctx, companyID, offerID)
	if err != nil {
		return models.Offer{}, err
	}

	if req.CPCRate != nil {
		if req.CPCRate.LessThan(minCPCRate) {
			return models.Offer{}, models.NewStatusError(http.StatusBadRequest, "CPC rate must be at least $0.01")
		}
		offer.CPCRate = *req.CPCRate
	}
	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}
	if req.LinkURL != nil {
		offer.LinkURL = *req.LinkURL
	}
	if req.ImageURL != nil {
		offer.ImageURL = req.ImageURL
	}
	if req.Category != nil {
		offer.Category = *req.Category
	}
	if req.DailyBudget != nil {
		offer.DailyBudget = req.DailyBudget
	}
	if req.TotalBudget != nil {
		offer.TotalBudget = req.TotalBudget
	}
	if req.StartsAt != nil {
		offer.StartsAt = req.StartsAt
	}
	if req.ExpiresAt != nil {
		offer.ExpiresAt = req.ExpiresAt
	}
	if req.TargetCountries != nil {
		offer.TargetCountries = req.TargetCountries
	}
	if req.MinBioTier != nil {
		offer.MinBioTier = *req.MinBioTier
	}
	if req.BackgroundColor != nil {
		offer.BackgroundColor = req.BackgroundColor
	}
	if req.TextColor != nil {
		offer.TextColor = req.TextColor
	}
	if req.Layout != nil {
		offer.Layout = *req.Layout
	}

	if err := s.Offers.UpdateOffer(ctx, offer); err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

func (s *OfferService) ListCompanyOffers(ctx context.Context, companyID string) ([]models.Offer, error) {
	return s.Offers.ListCompanyOffers(ctx, companyID)
}

func (s *OfferService) ListMarketplace(ctx context.Context, category, search string, page, limit int) ([]models.Offer, int, error) {
	return s.Offers.ListMarketplace(ctx, category, search, page, limit)
}

// GetMarketplaceOffer loads a single offer for the marketplace detail view,
// applying lazy expiry to the reported status.
func (s *OfferService) GetMarketplaceOffer(ctx context.Context, offerID string) (models.Offer, error) {
	offer, err := s.Offers.GetOfferByID(ctx, offerID)
	if err != nil {
		return models.Offer{}, err
	}
	offer.Status = offer.CurrentStatus(time.Now())
	return offer, nil
}

// PauseOffer toggles active<->paused; pausing twice round-trips back to the
// original status.
func (s *OfferService) PauseOffer(ctx context.Context, companyID, offerID string) (models.Offer, error) {
	offer, err := s.Offers.GetOfferForCompany(ctx, companyID, offerID)
	if err != nil {
		return models.Offer{}, err
	}

	next := models.OfferPaused
	if offer.Status == models.OfferPaused {
		next = models.OfferActive
	}
	if err := s.Offers.SetStatus(ctx, offer.ID, next); err != nil {
		return models.Offer{}, err
	}
	offer.Status = next
	return offer, nil
}

func (s *OfferService) OfferStats(ctx context.Context, companyID, offerID string) (models.OfferStats, error) {
	offer, err := s.Offers.GetOfferForCompany(ctx, companyID, offerID)
	if err != nil {
		return models.OfferStats{}, err
	}
	count, err := s.Adoptions.CountActiveByOffer(ctx, offer.ID)
	if err != nil {
		return models.OfferStats{}, err
	}
	return models.OfferStats{Offer: offer, AdoptionCount: count}, nil
}
