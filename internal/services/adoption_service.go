package services

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"linkmint/internal/models"
	"linkmint/utils"
)

type BioStore interface {
	GetBio(ctx context.Context, bioID string) (models.Bio, error)
	GetBioForUser(ctx context.Context, bioID, userID string) (models.Bio, error)
	SaveBlocks(ctx context.Context, bioID string, blocks []models.BioBlock) error
}

type PlanStore interface {
	GetActivePlan(ctx context.Context, userID string) (string, error)
}

type OfferReader interface {
	GetOfferByID(ctx context.Context, id string) (models.Offer, error)
}

type AdoptionStore interface {
	CreateAdoption(ctx context.Context, a models.Adoption) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	ActiveExists(ctx context.Context, userID, offerID string) (bool, error)
	NextPosition(ctx context.Context, bioID string) (int, error)
	ListByBio(ctx context.Context, bioID string) ([]models.Adoption, error)
	ListByUser(ctx context.Context, userID, bioID string) ([]models.Adoption, error)
	ListAllByUser(ctx context.Context, userID string) ([]models.Adoption, error)
	Remove(ctx context.Context, userID, adoptionID string) error
}

type EarningsReader interface {
	MonthlyEarnings(ctx context.Context, adoptionIDs []string, since time.Time) (decimal.Decimal, error)
	ListValidByAdoptions(ctx context.Context, adoptionIDs []string, page, limit int) ([]models.Click, int, error)
}

type ImpressionRecorder interface {
	RecordImpressions(ctx context.Context, offerIDs []string) error
}

type AdoptionService struct {
	Bios        BioStore
	Plans       PlanStore
	Offers      OfferReader
	Adoptions   AdoptionStore
	Clicks      EarningsReader
	Impressions ImpressionRecorder
	ErrorLog    *log.Logger
}

// Adopt binds the user's bio to the offer after the eligibility gates pass.
// The gates run in a fixed order so the caller always sees the same failure
// for the same state.
func (s *AdoptionService) Adopt(ctx context.Context, userID, bioID, offerID string) (models.Adoption, error) {
	bio, err := s.Bios.GetBioForUser(ctx, bioID, userID)
	if err != nil {
		return models.Adoption{}, err
	}

	plan, err := s.Plans.GetActivePlan(ctx, userID)
	if err != nil {
		return models.Adoption{}, err
	}
	maxAdoptions := models.MaxAdoptionsForPlan(plan)
	current, err := s.Adoptions.CountActiveByUser(ctx, userID)
	if err != nil {
		return models.Adoption{}, err
	}
	if current >= maxAdoptions {
		return models.Adoption{}, models.NewStatusError(http.StatusPaymentRequired,
			"Your plan (%s) allows max %d sponsored links. Upgrade to add more.", plan, maxAdoptions)
	}

	offer, err := s.Offers.GetOfferByID(ctx, offerID)
	if err == models.ErrOfferNotFound {
		return models.Adoption{}, models.NewStatusError(http.StatusNotFound, "Offer not found or not active")
	}
	if err != nil {
		return models.Adoption{}, err
	}
	if offer.Status != models.OfferActive {
		return models.Adoption{}, models.NewStatusError(http.StatusNotFound, "Offer not found or not active")
	}

	now := time.Now()
	if offer.ExpiresAt != nil && offer.ExpiresAt.Before(now) {
		return models.Adoption{}, models.NewStatusError(http.StatusForbidden, "Offer has expired")
	}
	if offer.BudgetExhausted() {
		return models.Adoption{}, models.NewStatusError(http.StatusForbidden, "Offer budget is exhausted")
	}

	bioTier := models.TierForViews(bio.Views)
	if offer.MinBioTier != models.TierAny && bioTier.Rank() < offer.MinBioTier.Rank() {
		return models.Adoption{}, models.NewStatusError(http.StatusForbidden,
			"This offer requires a bio tier of %q or higher. Your bio tier is %q.", offer.MinBioTier, bioTier)
	}
	if offer.CPCRate.LessThan(bioTier.CPCFloor()) {
		return models.Adoption{}, models.NewStatusError(http.StatusForbidden,
			"CPC rate ($%s) is below the minimum for your bio tier ($%s)", offer.CPCRate, bioTier.CPCFloor())
	}

	exists, err := s.Adoptions.ActiveExists(ctx, userID, offerID)
	if err != nil {
		return models.Adoption{}, err
	}
	if exists {
		return models.Adoption{}, models.NewStatusError(http.StatusConflict, "You have already adopted this offer")
	}

	trackingCode, err := utils.NewTrackingCode(12)
	if err != nil {
		return models.Adoption{}, err
	}
	position, err := s.Adoptions.NextPosition(ctx, bioID)
	if err != nil {
		return models.Adoption{}, err
	}

	adoption := models.Adoption{
		ID:            uuid.NewString(),
		UserID:        userID,
		BioID:         bioID,
		OfferID:       offerID,
		TrackingCode:  trackingCode,
		Status:        models.AdoptionActive,
		TotalEarnings: decimal.Zero,
		Position:      position,
		CreatedAt:     now,
	}
	if err := s.Adoptions.CreateAdoption(ctx, adoption); err != nil {
		return models.Adoption{}, err
	}

	s.ensureSponsoredBlock(ctx, bio)

	return adoption, nil
}

// ensureSponsoredBlock adds the sponsored_links block to the bio on first
// adoption. A failure here must not fail the adoption itself.
func (s *AdoptionService) ensureSponsoredBlock(ctx context.Context, bio models.Bio) {
	for _, b := range bio.Blocks {
		if b.Type == models.SponsoredLinksBlockType {
			return
		}
	}
	blocks := append(bio.Blocks, models.BioBlock{
		ID:      uuid.NewString(),
		Type:    models.SponsoredLinksBlockType,
		Title:   "Sponsored Links",
		Visible: true,
	})
	if err := s.Bios.SaveBlocks(ctx, bio.ID, blocks); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("failed to auto-add sponsored_links block to bio %s: %v", bio.ID, err)
	}
}

func (s *AdoptionService) Remove(ctx context.Context, userID, adoptionID string) error {
	return s.Adoptions.Remove(ctx, userID, adoptionID)
}

func (s *AdoptionService) UserAdoptions(ctx context.Context, userID, bioID string) ([]models.Adoption, error) {
	return s.Adoptions.ListByUser(ctx, userID, bioID)
}

// BioAdoptions returns the public sponsored links for a bio page and counts
// one impression per rendered offer.
func (s *AdoptionService) BioAdoptions(ctx context.Context, bioID string) ([]models.BioSponsoredLink, error) {
	if _, err := s.Bios.GetBio(ctx, bioID); err != nil {
		return nil, err
	}
	adoptions, err := s.Adoptions.ListByBio(ctx, bioID)
	if err != nil {
		return nil, err
	}

	links := make([]models.BioSponsoredLink, 0, len(adoptions))
	offerIDs := make([]string, 0, len(adoptions))
	for _, a := range adoptions {
		if a.Offer == nil {
			continue
		}
		var link models.BioSponsoredLink
		link.ID = a.ID
		link.TrackingCode = a.TrackingCode
		link.Position = a.Position
		link.Offer.ID = a.Offer.ID
		link.Offer.Title = a.Offer.Title
		link.Offer.Description = a.Offer.Description
		link.Offer.ImageURL = a.Offer.ImageURL
		link.Offer.LinkURL = a.Offer.LinkURL
		link.Offer.Category = a.Offer.Category
		link.Offer.BackgroundColor = a.Offer.BackgroundColor
		link.Offer.TextColor = a.Offer.TextColor
		link.Offer.Layout = a.Offer.Layout
		link.Offer.CompanyName = a.Offer.CompanyName
		link.Offer.CompanyLogo = a.Offer.CompanyLogo
		links = append(links, link)
		offerIDs = append(offerIDs, a.Offer.ID)
	}

	if len(offerIDs) > 0 && s.Impressions != nil {
		if err := s.Impressions.RecordImpressions(ctx, offerIDs); err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("failed to record impressions for bio %s: %v", bioID, err)
		}
	}
	return links, nil
}

// Earnings rolls up lifetime earnings and clicks over all of the user's
// adoptions, plus this month's valid-click earnings over the active ones.
func (s *AdoptionService) Earnings(ctx context.Context, userID string) (models.EarningsSummary, error) {
	adoptions, err := s.Adoptions.ListAllByUser(ctx, userID)
	if err != nil {
		return models.EarningsSummary{}, err
	}

	summary := models.EarningsSummary{
		TotalEarnings:   decimal.Zero,
		MonthlyEarnings: decimal.Zero,
	}
	var activeIDs []string
	for _, a := range adoptions {
		summary.TotalEarnings = summary.TotalEarnings.Add(a.TotalEarnings)
		summary.TotalClicks += a.TotalClicks
		if a.Status == models.AdoptionActive {
			summary.ActiveLinks++
			activeIDs = append(activeIDs, a.ID)
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.Clicks.MonthlyEarnings(ctx, activeIDs, monthStart)
	if err != nil {
		return models.EarningsSummary{}, err
	}
	summary.MonthlyEarnings = monthly
	return summary, nil
}

func (s *AdoptionService) EarningsHistory(ctx context.Context, userID string, page, limit int) (models.EarningsHistory, error) {
	adoptions, err := s.Adoptions.ListAllByUser(ctx, userID)
	if err != nil {
		return models.EarningsHistory{}, err
	}
	ids := make([]string, 0, len(adoptions))
	for _, a := range adoptions {
		ids = append(ids, a.ID)
	}

	clicks, total, err := s.Clicks.ListValidByAdoptions(ctx, ids, page, limit)
	if err != nil {
		return models.EarningsHistory{}, err
	}
	history := models.EarningsHistory{Clicks: clicks, Total: total}
	if history.Clicks == nil {
		history.Clicks = []models.Click{}
	}
	return history, nil
}
