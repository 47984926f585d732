package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"linkmint/internal/models"
)

type stubOfferStore struct {
	created *models.Offer
	updated *models.Offer
	offer   models.Offer
	err     error
	status  models.OfferStatus
}

func (s *stubOfferStore) CreateOffer(ctx context.Context, o models.Offer) error {
	s.created = &o
	return nil
}

func (s *stubOfferStore) GetOfferByID(ctx context.Context, id string) (models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferStore) GetOfferForCompany(ctx context.Context, companyID, offerID string) (models.Offer, error) {
	return s.offer, s.err
}

func (s *stubOfferStore) ListCompanyOffers(ctx context.Context, companyID string) ([]models.Offer, error) {
	return []models.Offer{s.offer}, nil
}

func (s *stubOfferStore) ListMarketplace(ctx context.Context, category, search string, page, limit int) ([]models.Offer, int, error) {
	return []models.Offer{s.offer}, 1, nil
}

func (s *stubOfferStore) UpdateOffer(ctx context.Context, o models.Offer) error {
	s.updated = &o
	return nil
}

func (s *stubOfferStore) SetStatus(ctx context.Context, offerID string, status models.OfferStatus) error {
	s.status = status
	return nil
}

type stubCounter struct {
	count int
}

func (s *stubCounter) CountActiveByOffer(ctx context.Context, offerID string) (int, error) {
	return s.count, nil
}

func TestCreateOfferValidation(t *testing.T) {
	svc := &OfferService{Offers: &stubOfferStore{}}

	t.Run("cpc below minimum", func(t *testing.T) {
		_, err := svc.CreateOffer(context.Background(), "co-1", models.CreateOfferRequest{
			Title:   "Deal",
			LinkURL: "https://example.com",
			CPCRate: decimal.NewFromFloat(0.005),
		})
		statusErr := wantStatusError(t, err, http.StatusBadRequest)
		if statusErr.Message != "CPC rate must be at least $0.01" {
			t.Fatalf("unexpected message %q", statusErr.Message)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.CreateOffer(context.Background(), "co-1", models.CreateOfferRequest{
			LinkURL: "https://example.com",
			CPCRate: decimal.NewFromFloat(0.05),
		})
		wantStatusError(t, err, http.StatusBadRequest)
	})

	t.Run("missing link url", func(t *testing.T) {
		_, err := svc.CreateOffer(context.Background(), "co-1", models.CreateOfferRequest{
			Title:   "Deal",
			CPCRate: decimal.NewFromFloat(0.05),
		})
		wantStatusError(t, err, http.StatusBadRequest)
	})
}

func TestCreateOfferDefaults(t *testing.T) {
	store := &stubOfferStore{}
	svc := &OfferService{Offers: store}

	offer, err := svc.CreateOffer(context.Background(), "co-1", models.CreateOfferRequest{
		Title:   "Deal",
		LinkURL: "https://example.com",
		CPCRate: decimal.NewFromFloat(0.05),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.ID == "" {
		t.Fatalf("expected generated id")
	}
	if offer.Status != models.OfferActive {
		t.Fatalf("expected active status, got %s", offer.Status)
	}
	if offer.Category != "other" {
		t.Fatalf("expected default category other, got %s", offer.Category)
	}
	if offer.MinBioTier != models.TierAny {
		t.Fatalf("expected default tier any, got %s", offer.MinBioTier)
	}
	if offer.Layout != "card" {
		t.Fatalf("expected default layout card, got %s", offer.Layout)
	}
	if !offer.TotalSpent.IsZero() || offer.TotalClicks != 0 {
		t.Fatalf("expected zeroed counters")
	}
	if store.created == nil {
		t.Fatalf("expected offer to be persisted")
	}
}

func TestUpdateOfferPartial(t *testing.T) {
	store := &stubOfferStore{offer: activeOffer()}
	svc := &OfferService{Offers: store}

	newTitle := "Better deal"
	offer, err := svc.UpdateOffer(context.Background(), "co-1", "offer-1", models.UpdateOfferRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.Title != newTitle {
		t.Fatalf("expected updated title, got %s", offer.Title)
	}
	// Untouched fields keep their stored values.
	if !offer.CPCRate.Equal(store.offer.CPCRate) {
		t.Fatalf("cpc rate must be unchanged")
	}

	badRate := decimal.NewFromFloat(0.001)
	_, err = svc.UpdateOffer(context.Background(), "co-1", "offer-1", models.UpdateOfferRequest{CPCRate: &badRate})
	wantStatusError(t, err, http.StatusBadRequest)
}

func TestPauseOfferToggles(t *testing.T) {
	store := &stubOfferStore{offer: activeOffer()}
	svc := &OfferService{Offers: store}

	offer, err := svc.PauseOffer(context.Background(), "co-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.Status != models.OfferPaused || store.status != models.OfferPaused {
		t.Fatalf("expected pause, got %s", offer.Status)
	}

	store.offer.Status = models.OfferPaused
	offer, err = svc.PauseOffer(context.Background(), "co-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.Status != models.OfferActive {
		t.Fatalf("expected resume, got %s", offer.Status)
	}
}

func TestOfferStats(t *testing.T) {
	store := &stubOfferStore{offer: activeOffer()}
	svc := &OfferService{Offers: store, Adoptions: &stubCounter{count: 7}}

	stats, err := svc.OfferStats(context.Background(), "co-1", "offer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.AdoptionCount != 7 {
		t.Fatalf("expected 7 adoptions, got %d", stats.AdoptionCount)
	}
	if stats.Offer.ID != "offer-1" {
		t.Fatalf("expected offer payload, got %+v", stats.Offer)
	}
}
