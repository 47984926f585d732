package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferActive    OfferStatus = "active"
	OfferPaused    OfferStatus = "paused"
	OfferExhausted OfferStatus = "exhausted"
	OfferExpired   OfferStatus = "expired"
)

// Offer is an advertiser ad unit with a fixed cost-per-click rate.
type Offer struct {
	ID               string           `json:"id"`
	CompanyID        string           `json:"company_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	LinkURL          string           `json:"link_url"`
	ImageURL         *string          `json:"image_url,omitempty"`
	Category         string           `json:"category"`
	CPCRate          decimal.Decimal  `json:"cpc_rate"`
	DailyBudget      *decimal.Decimal `json:"daily_budget,omitempty"`
	TotalBudget      *decimal.Decimal `json:"total_budget,omitempty"`
	TotalSpent       decimal.Decimal  `json:"total_spent"`
	TotalClicks      int              `json:"total_clicks"`
	TotalImpressions int              `json:"total_impressions"`
	Status           OfferStatus      `json:"status"`
	StartsAt         *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	TargetCountries  []string         `json:"target_countries,omitempty"`
	MinBioTier       BioTier          `json:"min_bio_tier"`
	BackgroundColor  *string          `json:"background_color,omitempty"`
	TextColor        *string          `json:"text_color,omitempty"`
	Layout           string           `json:"layout"`
	CompanyName      *string          `json:"company_name,omitempty"`
	CompanyLogo      *string          `json:"company_logo,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// CurrentStatus applies lazy expiry: an active offer whose expiry has passed
// reads as expired without a stored transition.
func (o *Offer) CurrentStatus(now time.Time) OfferStatus {
	if o.Status == OfferActive && o.ExpiresAt != nil && o.ExpiresAt.Before(now) {
		return OfferExpired
	}
	return o.Status
}

func (o *Offer) BudgetExhausted() bool {
	return o.TotalBudget != nil && o.TotalSpent.GreaterThanOrEqual(*o.TotalBudget)
}

// CreateOfferRequest carries the fields a company may set when creating an
// offer. cpc_rate is required and validated against the $0.01 minimum.
type CreateOfferRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	LinkURL         string           `json:"link_url"`
	ImageURL        *string          `json:"image_url,omitempty"`
	Category        string           `json:"category,omitempty"`
	CPCRate         decimal.Decimal  `json:"cpc_rate"`
	DailyBudget     *decimal.Decimal `json:"daily_budget,omitempty"`
	TotalBudget     *decimal.Decimal `json:"total_budget,omitempty"`
	StartsAt        *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty"`
	TargetCountries []string         `json:"target_countries,omitempty"`
	MinBioTier      BioTier          `json:"min_bio_tier,omitempty"`
	BackgroundColor *string          `json:"background_color,omitempty"`
	TextColor       *string          `json:"text_color,omitempty"`
	Layout          string           `json:"layout,omitempty"`
}

// UpdateOfferRequest is a partial update; nil fields are left untouched.
type UpdateOfferRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	LinkURL         *string          `json:"link_url,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty"`
	Category        *string          `json:"category,omitempty"`
	CPCRate         *decimal.Decimal `json:"cpc_rate,omitempty"`
	DailyBudget     *decimal.Decimal `json:"daily_budget,omitempty"`
	TotalBudget     *decimal.Decimal `json:"total_budget,omitempty"`
	StartsAt        *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty"`
	TargetCountries []string         `json:"target_countries,omitempty"`
	MinBioTier      *BioTier         `json:"min_bio_tier,omitempty"`
	BackgroundColor *string          `json:"background_color,omitempty"`
	TextColor       *string          `json:"text_color,omitempty"`
	Layout          *string          `json:"layout,omitempty"`
}

// OfferStats is the company-facing rollup for a single offer.
type OfferStats struct {
	Offer         Offer `json:"offer"`
	AdoptionCount int   `json:"adoption_count"`
}
