package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Click is one attempted click on a sponsored link, valid or not. Rows are
// append-only and serve as evidence for fraud rules on later clicks.
type Click struct {
	ID            string          `json:"id"`
	AdoptionID    string          `json:"adoption_id"`
	OfferID       string          `json:"offer_id"`
	IPHash        string          `json:"ip_hash"`
	Fingerprint   *string         `json:"fingerprint,omitempty"`
	Country       *string         `json:"country,omitempty"`
	City          *string         `json:"city,omitempty"`
	Device        string          `json:"device"`
	Browser       string          `json:"browser"`
	Referrer      *string         `json:"referrer,omitempty"`
	EarnedAmount  decimal.Decimal `json:"earned_amount"`
	IsValid       bool            `json:"is_valid"`
	SessionID     *string         `json:"session_id,omitempty"`
	InvalidReason *string         `json:"invalid_reason,omitempty"`
	OfferTitle    *string         `json:"offer_title,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type DayCount struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

type CountryCount struct {
	Country string `json:"country"`
	Clicks  int    `json:"clicks"`
}

type DeviceCount struct {
	Device string `json:"device"`
	Clicks int    `json:"clicks"`
}

// ClickStats is the per-adoption rollup over a trailing window.
type ClickStats struct {
	TotalClicks     int            `json:"total_clicks"`
	ValidClicks     int            `json:"valid_clicks"`
	InvalidClicks   int            `json:"invalid_clicks"`
	ClicksByDay     []DayCount     `json:"clicks_by_day"`
	ClicksByCountry []CountryCount `json:"clicks_by_country"`
	ClicksByDevice  []DeviceCount  `json:"clicks_by_device"`
}

// EarningsSummary aggregates a publisher's earnings across adoptions.
type EarningsSummary struct {
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	MonthlyEarnings decimal.Decimal `json:"monthly_earnings"`
	TotalClicks     int             `json:"total_clicks"`
	ActiveLinks     int             `json:"active_links"`
}

// EarningsHistory is one page of a publisher's valid clicks, newest first.
type EarningsHistory struct {
	Clicks []Click `json:"clicks"`
	Total  int     `json:"total"`
}
