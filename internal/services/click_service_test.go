package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"linkmint/internal/fraud"
	"linkmint/internal/models"
)

const testBrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type stubResolver struct {
	adoption models.Adoption
	err      error
}

func (s *stubResolver) GetActiveByTrackingCode(ctx context.Context, trackingCode string) (models.Adoption, error) {
	return s.adoption, s.err
}

type stubClickWriter struct {
	clicks []models.Click
}

func (s *stubClickWriter) InsertClick(ctx context.Context, c models.Click) error {
	s.clicks = append(s.clicks, c)
	return nil
}

type stubEarningLedger struct {
	earned decimal.Decimal
	calls  int
}

func (s *stubEarningLedger) ApplyClickEarning(ctx context.Context, adoptionID string, amount decimal.Decimal) error {
	s.earned = s.earned.Add(amount)
	s.calls++
	return nil
}

type stubChargeLedger struct {
	spent     decimal.Decimal
	budget    *decimal.Decimal
	charges   int
	exhausted bool
}

func (s *stubChargeLedger) ApplyClickCharge(ctx context.Context, offerID string, amount decimal.Decimal) error {
	s.spent = s.spent.Add(amount)
	s.charges++
	return nil
}

func (s *stubChargeLedger) TotalSpentAndBudget(ctx context.Context, offerID string) (decimal.Decimal, *decimal.Decimal, error) {
	return s.spent, s.budget, nil
}

func (s *stubChargeLedger) MarkExhausted(ctx context.Context, offerID string) error {
	s.exhausted = true
	return nil
}

// emptyHistory satisfies the fraud ledger reads with a clean slate so every
// pipeline rule passes.
type emptyHistory struct{}

func (emptyHistory) AnyClickByIPSince(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
func (emptyHistory) AdoptionClickByIPSince(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (emptyHistory) CountClicksByIPSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}
func (emptyHistory) AdoptionClickByFingerprintSince(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (emptyHistory) AdoptionValidClickBySessionSince(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (emptyHistory) CountClicksBySessionSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}
func (emptyHistory) CountValidClicksByIPSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func trackedAdoption(offer models.Offer) models.Adoption {
	return models.Adoption{
		ID:           "adoption-1",
		OfferID:      offer.ID,
		TrackingCode: "trk123456789",
		Status:       models.AdoptionActive,
		Offer:        &offer,
	}
}

func newClickService(resolver *stubResolver, clicks *stubClickWriter, earnings *stubEarningLedger, charges *stubChargeLedger) *ClickService {
	return &ClickService{
		Adoptions:      resolver,
		Clicks:         clicks,
		AdoptionLedger: earnings,
		OfferLedger:    charges,
		Pipeline:       &fraud.Pipeline{History: emptyHistory{}},
		Guard:          &fraud.Guard{},
		Geo:            NoopLocator{},
		ErrorLog:       log.New(&strings.Builder{}, "", 0),
	}
}

func TestTrackClickUnknownCode(t *testing.T) {
	svc := newClickService(&stubResolver{err: models.ErrTrackingNotFound}, &stubClickWriter{}, &stubEarningLedger{}, &stubChargeLedger{})

	_, err := svc.TrackClick(context.Background(), "missing", "203.0.113.7", testBrowserUA, nil, nil, nil)
	if !errors.Is(err, models.ErrTrackingNotFound) {
		t.Fatalf("expected ErrTrackingNotFound, got %v", err)
	}
}

func TestTrackClickValid(t *testing.T) {
	offer := activeOffer()
	writer := &stubClickWriter{}
	earnings := &stubEarningLedger{}
	charges := &stubChargeLedger{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, earnings, charges)

	result, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", testBrowserUA, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid click, got reason %q", result.Reason)
	}
	if result.RedirectURL != offer.LinkURL {
		t.Fatalf("expected redirect to %s, got %s", offer.LinkURL, result.RedirectURL)
	}

	if len(writer.clicks) != 1 {
		t.Fatalf("expected 1 click row, got %d", len(writer.clicks))
	}
	click := writer.clicks[0]
	if !click.IsValid {
		t.Fatalf("expected valid row")
	}
	if !click.EarnedAmount.Equal(offer.CPCRate) {
		t.Fatalf("expected earned %s, got %s", offer.CPCRate, click.EarnedAmount)
	}
	// With no explicit session id the compound hash fills the session slot.
	if click.SessionID == nil || *click.SessionID == "" {
		t.Fatalf("expected compound hash in session slot")
	}
	if earnings.calls != 1 || charges.charges != 1 {
		t.Fatalf("expected one earning and one charge, got %d/%d", earnings.calls, charges.charges)
	}
}

func TestTrackClickOfferNotActive(t *testing.T) {
	offer := activeOffer()
	offer.Status = models.OfferPaused
	writer := &stubClickWriter{}
	earnings := &stubEarningLedger{}
	charges := &stubChargeLedger{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, earnings, charges)

	result, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", testBrowserUA, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != "Offer not active" {
		t.Fatalf("expected invalid 'Offer not active', got %+v", result)
	}
	if result.RedirectURL != offer.LinkURL {
		t.Fatalf("invalid clicks still redirect to the offer")
	}
	if len(writer.clicks) != 1 || writer.clicks[0].IsValid {
		t.Fatalf("expected one invalid audit row")
	}
	if !writer.clicks[0].EarnedAmount.IsZero() {
		t.Fatalf("invalid clicks must earn nothing")
	}
	if earnings.calls != 0 || charges.charges != 0 {
		t.Fatalf("invalid clicks must not move money")
	}
}

func TestTrackClickBotRecordedInvalid(t *testing.T) {
	offer := activeOffer()
	writer := &stubClickWriter{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, &stubEarningLedger{}, &stubChargeLedger{})

	result, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", "curl/8.4.0", nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != "Bot/crawler detected" {
		t.Fatalf("expected bot verdict, got %+v", result)
	}
	if len(writer.clicks) != 1 {
		t.Fatalf("expected audit row for bot click")
	}
	if writer.clicks[0].InvalidReason == nil || *writer.clicks[0].InvalidReason != "Bot/crawler detected" {
		t.Fatalf("expected invalid reason on audit row, got %+v", writer.clicks[0].InvalidReason)
	}
}

// Budget 10.00 at 2.50 per click: the fourth click lands exactly on the
// budget and flips the offer to exhausted; the fifth earns nothing.
func TestTrackClickBudgetExhaustion(t *testing.T) {
	offer := activeOffer()
	offer.CPCRate = decimal.NewFromFloat(2.50)
	budget := decimal.NewFromFloat(10.00)
	offer.TotalBudget = &budget

	charges := &stubChargeLedger{budget: &budget, spent: decimal.NewFromFloat(7.50)}
	offer.TotalSpent = charges.spent
	writer := &stubClickWriter{}
	earnings := &stubEarningLedger{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, earnings, charges)

	result, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", testBrowserUA, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("fourth click should be valid, got reason %q", result.Reason)
	}
	if charges.spent.String() != "10" {
		t.Fatalf("expected spent 10, got %s", charges.spent)
	}
	if !charges.exhausted {
		t.Fatalf("expected exhausted transition when spent reaches budget")
	}

	// Fifth click from a different IP: the pre-check catches the spent
	// budget before any fraud rule runs.
	fifthOffer := offer
	fifthOffer.TotalSpent = charges.spent
	svc = newClickService(&stubResolver{adoption: trackedAdoption(fifthOffer)}, writer, earnings, charges)

	result, err = svc.TrackClick(context.Background(), "trk123456789", "198.51.100.23", testBrowserUA, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != "Budget exhausted" {
		t.Fatalf("expected 'Budget exhausted', got %+v", result)
	}
	if result.RedirectURL != offer.LinkURL {
		t.Fatalf("exhausted clicks still redirect to the offer")
	}
	last := writer.clicks[len(writer.clicks)-1]
	if last.IsValid || !last.EarnedAmount.IsZero() {
		t.Fatalf("fifth click must be an unearning audit row")
	}
	if earnings.calls != 1 {
		t.Fatalf("expected no earning for the fifth click")
	}
}

// denyingGuard refuses every bucket, as if another click already holds it.
type denyingGuard struct{}

func (denyingGuard) Acquire(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}

func TestTrackClickGuardRejection(t *testing.T) {
	offer := activeOffer()
	writer := &stubClickWriter{}
	earnings := &stubEarningLedger{}
	charges := &stubChargeLedger{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, earnings, charges)
	svc.Guard = denyingGuard{}

	result, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", testBrowserUA, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || result.Reason != "Duplicate IP within 1h" {
		t.Fatalf("expected hour-bucket rejection, got %+v", result)
	}
	if result.RedirectURL != offer.LinkURL {
		t.Fatalf("guarded clicks still redirect to the offer")
	}
	if len(writer.clicks) != 1 || writer.clicks[0].IsValid {
		t.Fatalf("expected one invalid audit row")
	}
	if got := writer.clicks[0].InvalidReason; got == nil || *got != "Duplicate IP within 1h" {
		t.Fatalf("expected hour-bucket reason on audit row, got %v", got)
	}
	if earnings.calls != 0 || charges.charges != 0 {
		t.Fatalf("guarded clicks must not move money")
	}
}

func TestTrackClickExplicitSessionKept(t *testing.T) {
	offer := activeOffer()
	writer := &stubClickWriter{}
	svc := newClickService(&stubResolver{adoption: trackedAdoption(offer)}, writer, &stubEarningLedger{}, &stubChargeLedger{})

	sid := "session-abc"
	_, err := svc.TrackClick(context.Background(), "trk123456789", "203.0.113.7", testBrowserUA, nil, nil, &sid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := writer.clicks[0].SessionID; got == nil || *got != sid {
		t.Fatalf("expected explicit session id to be stored, got %v", got)
	}
}
