package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"linkmint/internal/fraud"
	"linkmint/internal/models"
)

type TrackingResolver interface {
	GetActiveByTrackingCode(ctx context.Context, trackingCode string) (models.Adoption, error)
}

type ClickWriter interface {
	InsertClick(ctx context.Context, c models.Click) error
}

type EarningLedger interface {
	ApplyClickEarning(ctx context.Context, adoptionID string, amount decimal.Decimal) error
}

type ChargeLedger interface {
	ApplyClickCharge(ctx context.Context, offerID string, amount decimal.Decimal) error
	TotalSpentAndBudget(ctx context.Context, offerID string) (decimal.Decimal, *decimal.Decimal, error)
	MarkExhausted(ctx context.Context, offerID string) error
}

// CommitGuard is the pre-commit lock on the ip+adoption hour bucket,
// normally *fraud.Guard.
type CommitGuard interface {
	Acquire(ctx context.Context, ipHash, adoptionID string, now time.Time) (bool, error)
}

// ClickService scores a click on a tracking link and settles the money moves
// for valid ones. Invalid clicks still redirect; only the ledger skips them.
type ClickService struct {
	Adoptions      TrackingResolver
	Clicks         ClickWriter
	AdoptionLedger EarningLedger
	OfferLedger    ChargeLedger
	Pipeline       *fraud.Pipeline
	Guard          CommitGuard
	Geo            GeoLocator
	MockPrivateIPs bool
	ErrorLog       *log.Logger
}

// TrackClickResult is what the redirect handler needs: where to send the
// visitor and whether the click earned anything.
type TrackClickResult struct {
	RedirectURL string
	Valid       bool
	Reason      string
}

func (s *ClickService) TrackClick(ctx context.Context, trackingCode, ip, userAgent string, fingerprint, referrer, sessionID *string) (TrackClickResult, error) {
	adoption, err := s.Adoptions.GetActiveByTrackingCode(ctx, trackingCode)
	if err != nil {
		return TrackClickResult{}, err
	}
	offer := adoption.Offer
	result := TrackClickResult{RedirectURL: offer.LinkURL}
	now := time.Now()

	// Local and LAN clicks get a fixed public IP so geo and the fraud rules
	// still see realistic state in development.
	if s.MockPrivateIPs && fraud.IsPrivateIP(ip) {
		ip = fraud.MockPublicIP()
	}
	ipHash := fraud.HashIP(ip)
	compoundHash := fraud.CompoundHash(ipHash, userAgent)

	if offer.CurrentStatus(now) != models.OfferActive {
		s.recordInvalid(ctx, adoption, ip, ipHash, userAgent, fingerprint, referrer, sessionID, "Offer not active")
		result.Reason = "Offer not active"
		return result, nil
	}
	if offer.BudgetExhausted() {
		s.recordInvalid(ctx, adoption, ip, ipHash, userAgent, fingerprint, referrer, sessionID, "Budget exhausted")
		result.Reason = "Budget exhausted"
		return result, nil
	}

	verdict, err := s.Pipeline.Evaluate(ctx, adoption.ID, ipHash, compoundHash, userAgent, fingerprint, sessionID)
	if err != nil {
		return TrackClickResult{}, err
	}
	if !verdict.Valid {
		s.recordInvalid(ctx, adoption, ip, ipHash, userAgent, fingerprint, referrer, sessionID, verdict.Reason)
		result.Reason = verdict.Reason
		return result, nil
	}

	if s.Guard != nil {
		ok, err := s.Guard.Acquire(ctx, ipHash, adoption.ID, now)
		if err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("click guard unavailable, continuing best-effort: %v", err)
		}
		// The guard bucket is hourly; the audit reason names that window.
		if !ok {
			s.recordInvalid(ctx, adoption, ip, ipHash, userAgent, fingerprint, referrer, sessionID, "Duplicate IP within 1h")
			result.Reason = "Duplicate IP within 1h"
			return result, nil
		}
	}

	country, city := s.Geo.Lookup(ip)
	click := models.Click{
		ID:           uuid.NewString(),
		AdoptionID:   adoption.ID,
		OfferID:      offer.ID,
		IPHash:       ipHash,
		Fingerprint:  fingerprint,
		Country:      optional(country),
		City:         optional(city),
		Device:       fraud.ParseDevice(userAgent),
		Browser:      fraud.ParseBrowser(userAgent),
		Referrer:     referrer,
		EarnedAmount: offer.CPCRate,
		IsValid:      true,
		SessionID:    sessionOrCompound(sessionID, compoundHash),
		CreatedAt:    now,
	}
	if err := s.Clicks.InsertClick(ctx, click); err != nil {
		return TrackClickResult{}, err
	}

	if err := s.AdoptionLedger.ApplyClickEarning(ctx, adoption.ID, offer.CPCRate); err != nil {
		return TrackClickResult{}, err
	}
	if err := s.OfferLedger.ApplyClickCharge(ctx, offer.ID, offer.CPCRate); err != nil {
		return TrackClickResult{}, err
	}

	// Re-read after the charge; the exhausted transition is driven by the
	// settled total, not the stale row we resolved earlier.
	spent, budget, err := s.OfferLedger.TotalSpentAndBudget(ctx, offer.ID)
	if err != nil {
		if s.ErrorLog != nil {
			s.ErrorLog.Printf("failed to re-read offer %s budget after charge: %v", offer.ID, err)
		}
	} else if budget != nil && spent.GreaterThanOrEqual(*budget) {
		if err := s.OfferLedger.MarkExhausted(ctx, offer.ID); err != nil && s.ErrorLog != nil {
			s.ErrorLog.Printf("failed to mark offer %s exhausted: %v", offer.ID, err)
		}
	}

	result.Valid = true
	return result, nil
}

// recordInvalid writes the audit row for a rejected click. The redirect must
// go out either way, so failures are logged, never returned.
func (s *ClickService) recordInvalid(ctx context.Context, adoption models.Adoption, ip, ipHash, userAgent string, fingerprint, referrer, sessionID *string, reason string) {
	country, city := s.Geo.Lookup(ip)
	click := models.Click{
		ID:            uuid.NewString(),
		AdoptionID:    adoption.ID,
		OfferID:       adoption.OfferID,
		IPHash:        ipHash,
		Fingerprint:   fingerprint,
		Country:       optional(country),
		City:          optional(city),
		Device:        fraud.ParseDevice(userAgent),
		Browser:       fraud.ParseBrowser(userAgent),
		Referrer:      referrer,
		EarnedAmount:  decimal.Zero,
		IsValid:       false,
		SessionID:     sessionID,
		InvalidReason: &reason,
		CreatedAt:     time.Now(),
	}
	if err := s.Clicks.InsertClick(ctx, click); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("failed to save invalid click for adoption %s: %v", adoption.ID, err)
	}
}

// sessionOrCompound fills the session slot of a valid click: the client's
// session id when present, otherwise the compound IP+UA hash so later
// compound dedup has something to match on.
func sessionOrCompound(sessionID *string, compoundHash string) *string {
	if sessionID != nil && *sessionID != "" {
		return sessionID
	}
	return &compoundHash
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
