package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdoptionStatus string

const (
	AdoptionActive  AdoptionStatus = "active"
	AdoptionRemoved AdoptionStatus = "removed"
)

// Adoption binds a user's bio to an offer under a unique tracking code.
// Removal is terminal; a removed adoption is never reactivated.
type Adoption struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	BioID         string          `json:"bio_id"`
	OfferID       string          `json:"offer_id"`
	TrackingCode  string          `json:"tracking_code"`
	Status        AdoptionStatus  `json:"status"`
	TotalClicks   int             `json:"total_clicks"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	Position      int             `json:"position"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	Offer         *Offer          `json:"offer,omitempty"`
}

// MaxAdoptionsForPlan returns the concurrent active-adoption limit for a
// billing plan. Unknown plans fall back to the free limit.
func MaxAdoptionsForPlan(plan string) int {
	switch plan {
	case "pro":
		return 10
	case "standard":
		return 3
	default:
		return 1
	}
}

// BioSponsoredLink is the public rendering shape for one adopted offer on a
// bio page.
type BioSponsoredLink struct {
	ID           string `json:"id"`
	TrackingCode string `json:"tracking_code"`
	Position     int    `json:"position"`
	Offer        struct {
		ID              string  `json:"id"`
		Title           string  `json:"title"`
		Description     string  `json:"description"`
		ImageURL        *string `json:"image_url,omitempty"`
		LinkURL         string  `json:"link_url"`
		Category        string  `json:"category"`
		BackgroundColor *string `json:"background_color,omitempty"`
		TextColor       *string `json:"text_color,omitempty"`
		Layout          string  `json:"layout"`
		CompanyName     *string `json:"company_name,omitempty"`
		CompanyLogo     *string `json:"company_logo,omitempty"`
	} `json:"offer"`
}
