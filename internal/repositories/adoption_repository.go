package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"linkmint/internal/models"
)

type AdoptionRepository struct {
	DB *sql.DB
}

const adoptionColumns = `a.id, a.user_id, a.bio_id, a.offer_id, a.tracking_code, a.status, a.total_clicks, a.total_earnings, a.position, a.created_at, a.updated_at`

func scanAdoption(scanner interface{ Scan(dest ...any) error }) (models.Adoption, error) {
	var (
		a        models.Adoption
		status   string
		earnings string
		updated  sql.NullTime
	)
	err := scanner.Scan(&a.ID, &a.UserID, &a.BioID, &a.OfferID, &a.TrackingCode,
		&status, &a.TotalClicks, &earnings, &a.Position, &a.CreatedAt, &updated)
	if err != nil {
		return models.Adoption{}, err
	}
	if a.TotalEarnings, err = decimal.NewFromString(earnings); err != nil {
		return models.Adoption{}, err
	}
	if updated.Valid {
		t := updated.Time
		a.UpdatedAt = &t
	}
	a.Status = models.AdoptionStatus(status)
	return a, nil
}

func (r *AdoptionRepository) CreateAdoption(ctx context.Context, a models.Adoption) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO adoptions (id, user_id, bio_id, offer_id, tracking_code, status, total_clicks, total_earnings, position, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.BioID, a.OfferID, a.TrackingCode, string(a.Status),
		a.TotalClicks, a.TotalEarnings.String(), a.Position, a.CreatedAt)
	return err
}

func (r *AdoptionRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM adoptions WHERE user_id = ? AND status = 'active'`,
		userID).Scan(&count)
	return count, err
}

func (r *AdoptionRepository) ActiveExists(ctx context.Context, userID, offerID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM adoptions WHERE user_id = ? AND offer_id = ? AND status = 'active')`,
		userID, offerID).Scan(&exists)
	return exists, err
}

// NextPosition returns one past the highest active position on the bio, or 0
// for the first adoption. Per-bio ordering only, not globally unique.
func (r *AdoptionRepository) NextPosition(ctx context.Context, bioID string) (int, error) {
	var pos int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM adoptions WHERE bio_id = ? AND status = 'active'`,
		bioID).Scan(&pos)
	return pos, err
}

// GetActiveByTrackingCode resolves a click's tracking code to its adoption
// with the offer joined.
func (r *AdoptionRepository) GetActiveByTrackingCode(ctx context.Context, trackingCode string) (models.Adoption, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+adoptionColumns+`, `+offerColumns+`
FROM adoptions a
JOIN offers o ON o.id = a.offer_id
WHERE a.tracking_code = ? AND a.status = 'active'`, trackingCode)

	a, o, err := scanAdoptionWithOffer(row)
	if err == sql.ErrNoRows {
		return models.Adoption{}, models.ErrTrackingNotFound
	}
	if err != nil {
		return models.Adoption{}, err
	}
	a.Offer = &o
	return a, nil
}

func scanAdoptionWithOffer(row *sql.Row) (models.Adoption, models.Offer, error) {
	var (
		a          models.Adoption
		aStatus    string
		earnings   string
		aUpdated   sql.NullTime
		o          models.Offer
		cpc, spent string
		daily, tot sql.NullString
		countries  sql.NullString
		oStatus    string
		minTier    string
		oUpdated   sql.NullTime
	)
	err := row.Scan(&a.ID, &a.UserID, &a.BioID, &a.OfferID, &a.TrackingCode,
		&aStatus, &a.TotalClicks, &earnings, &a.Position, &a.CreatedAt, &aUpdated,
		&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.LinkURL, &o.ImageURL,
		&o.Category, &cpc, &daily, &tot, &spent, &o.TotalClicks, &o.TotalImpressions,
		&oStatus, &o.StartsAt, &o.ExpiresAt, &countries, &minTier,
		&o.BackgroundColor, &o.TextColor, &o.Layout, &o.CreatedAt, &oUpdated)
	if err != nil {
		return models.Adoption{}, models.Offer{}, err
	}
	if a.TotalEarnings, err = decimal.NewFromString(earnings); err != nil {
		return models.Adoption{}, models.Offer{}, err
	}
	if o.CPCRate, err = decimal.NewFromString(cpc); err != nil {
		return models.Adoption{}, models.Offer{}, err
	}
	if o.TotalSpent, err = decimal.NewFromString(spent); err != nil {
		return models.Adoption{}, models.Offer{}, err
	}
	if daily.Valid {
		d, err := decimal.NewFromString(daily.String)
		if err != nil {
			return models.Adoption{}, models.Offer{}, err
		}
		o.DailyBudget = &d
	}
	if tot.Valid {
		b, err := decimal.NewFromString(tot.String)
		if err != nil {
			return models.Adoption{}, models.Offer{}, err
		}
		o.TotalBudget = &b
	}
	if countries.Valid && countries.String != "" {
		o.TargetCountries = strings.Split(countries.String, ",")
	}
	if aUpdated.Valid {
		t := aUpdated.Time
		a.UpdatedAt = &t
	}
	if oUpdated.Valid {
		t := oUpdated.Time
		o.UpdatedAt = &t
	}
	a.Status = models.AdoptionStatus(aStatus)
	o.Status = models.OfferStatus(oStatus)
	o.MinBioTier = models.BioTier(minTier)
	return a, o, nil
}

func (r *AdoptionRepository) listWithOffers(ctx context.Context, where string, args ...interface{}) ([]models.Adoption, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+adoptionColumns+`, `+offerColumns+`, co.company_name, co.logo
FROM adoptions a
JOIN offers o ON o.id = a.offer_id
JOIN companies co ON co.id = o.company_id
WHERE `+where+`
ORDER BY a.position ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adoptions []models.Adoption
	for rows.Next() {
		var (
			a          models.Adoption
			aStatus    string
			earnings   string
			aUpdated   sql.NullTime
			o          models.Offer
			cpc, spent string
			daily, tot sql.NullString
			countries  sql.NullString
			oStatus    string
			minTier    string
			oUpdated   sql.NullTime
		)
		err := rows.Scan(&a.ID, &a.UserID, &a.BioID, &a.OfferID, &a.TrackingCode,
			&aStatus, &a.TotalClicks, &earnings, &a.Position, &a.CreatedAt, &aUpdated,
			&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.LinkURL, &o.ImageURL,
			&o.Category, &cpc, &daily, &tot, &spent, &o.TotalClicks, &o.TotalImpressions,
			&oStatus, &o.StartsAt, &o.ExpiresAt, &countries, &minTier,
			&o.BackgroundColor, &o.TextColor, &o.Layout, &o.CreatedAt, &oUpdated,
			&o.CompanyName, &o.CompanyLogo)
		if err != nil {
			return nil, err
		}
		if a.TotalEarnings, err = decimal.NewFromString(earnings); err != nil {
			return nil, err
		}
		if o.CPCRate, err = decimal.NewFromString(cpc); err != nil {
			return nil, err
		}
		if o.TotalSpent, err = decimal.NewFromString(spent); err != nil {
			return nil, err
		}
		if countries.Valid && countries.String != "" {
			o.TargetCountries = strings.Split(countries.String, ",")
		}
		if aUpdated.Valid {
			t := aUpdated.Time
			a.UpdatedAt = &t
		}
		if oUpdated.Valid {
			t := oUpdated.Time
			o.UpdatedAt = &t
		}
		a.Status = models.AdoptionStatus(aStatus)
		o.Status = models.OfferStatus(oStatus)
		o.MinBioTier = models.BioTier(minTier)
		offer := o
		a.Offer = &offer
		adoptions = append(adoptions, a)
	}
	return adoptions, rows.Err()
}

// ListByBio returns the bio's active adoptions for public rendering,
// position ascending, offer and company joined.
func (r *AdoptionRepository) ListByBio(ctx context.Context, bioID string) ([]models.Adoption, error) {
	return r.listWithOffers(ctx, `a.bio_id = ? AND a.status = 'active'`, bioID)
}

func (r *AdoptionRepository) ListByUser(ctx context.Context, userID, bioID string) ([]models.Adoption, error) {
	if bioID != "" {
		return r.listWithOffers(ctx, `a.user_id = ? AND a.bio_id = ? AND a.status = 'active'`, userID, bioID)
	}
	return r.listWithOffers(ctx, `a.user_id = ? AND a.status = 'active'`, userID)
}

// ListAllByUser returns adoptions of any status, for lifetime earnings.
func (r *AdoptionRepository) ListAllByUser(ctx context.Context, userID string) ([]models.Adoption, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoptions a WHERE a.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adoptions []models.Adoption
	for rows.Next() {
		a, err := scanAdoption(rows)
		if err != nil {
			return nil, err
		}
		adoptions = append(adoptions, a)
	}
	return adoptions, rows.Err()
}

// Remove marks the adoption removed. Removal is terminal, so a second call
// (or a call against someone else's adoption) affects no rows.
func (r *AdoptionRepository) Remove(ctx context.Context, userID, adoptionID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE adoptions SET status = 'removed', updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND status = 'active'`,
		adoptionID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrAdoptionNotFound
	}
	return nil
}

func (r *AdoptionRepository) GetForUser(ctx context.Context, userID, adoptionID string) (models.Adoption, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoptions a WHERE a.id = ? AND a.user_id = ?`,
		adoptionID, userID)
	a, err := scanAdoption(row)
	if err == sql.ErrNoRows {
		return models.Adoption{}, models.ErrAdoptionNotFound
	}
	return a, err
}

func (r *AdoptionRepository) CountActiveByOffer(ctx context.Context, offerID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM adoptions WHERE offer_id = ? AND status = 'active'`,
		offerID).Scan(&count)
	return count, err
}

// ApplyClickEarning adds one click and its CPC to the adoption counters as a
// single atomic statement, never read-modify-write.
func (r *AdoptionRepository) ApplyClickEarning(ctx context.Context, adoptionID string, amount decimal.Decimal) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE adoptions SET total_clicks = total_clicks + 1, total_earnings = total_earnings + ? WHERE id = ?`,
		amount.String(), adoptionID)
	return err
}
