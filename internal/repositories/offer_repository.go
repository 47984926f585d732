package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"linkmint/internal/models"
)

type OfferRepository struct {
	DB *sql.DB
}

const offerColumns = `o.id, o.company_id, o.title, o.description, o.link_url, o.image_url, o.category, o.cpc_rate, o.daily_budget, o.total_budget, o.total_spent, o.total_clicks, o.total_impressions, o.status, o.starts_at, o.expires_at, o.target_countries, o.min_bio_tier, o.background_color, o.text_color, o.layout, o.created_at, o.updated_at`

func scanOffer(scanner interface{ Scan(dest ...any) error }) (models.Offer, error) {
	var (
		o           models.Offer
		cpc, spent  string
		daily, tot  sql.NullString
		countries   sql.NullString
		status, min string
		updated     sql.NullTime
	)
	err := scanner.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.LinkURL,
		&o.ImageURL, &o.Category, &cpc, &daily, &tot, &spent, &o.TotalClicks,
		&o.TotalImpressions, &status, &o.StartsAt, &o.ExpiresAt, &countries,
		&min, &o.BackgroundColor, &o.TextColor, &o.Layout, &o.CreatedAt, &updated)
	if err != nil {
		return models.Offer{}, err
	}
	if o.CPCRate, err = decimal.NewFromString(cpc); err != nil {
		return models.Offer{}, err
	}
	if o.TotalSpent, err = decimal.NewFromString(spent); err != nil {
		return models.Offer{}, err
	}
	if daily.Valid {
		d, err := decimal.NewFromString(daily.String)
		if err != nil {
			return models.Offer{}, err
		}
		o.DailyBudget = &d
	}
	if tot.Valid {
		b, err := decimal.NewFromString(tot.String)
		if err != nil {
			return models.Offer{}, err
		}
		o.TotalBudget = &b
	}
	if countries.Valid && countries.String != "" {
		o.TargetCountries = strings.Split(countries.String, ",")
	}
	if updated.Valid {
		t := updated.Time
		o.UpdatedAt = &t
	}
	o.Status = models.OfferStatus(status)
	o.MinBioTier = models.BioTier(min)
	return o, nil
}

func joinCountries(countries []string) interface{} {
	if len(countries) == 0 {
		return nil
	}
	return strings.Join(countries, ",")
}

func nullableDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func (r *OfferRepository) CreateOffer(ctx context.Context, o models.Offer) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO offers (id, company_id, title, description, link_url, image_url, category, cpc_rate, daily_budget, total_budget, total_spent, total_clicks, total_impressions, status, starts_at, expires_at, target_countries, min_bio_tier, background_color, text_color, layout, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CompanyID, o.Title, o.Description, o.LinkURL, o.ImageURL, o.Category,
		o.CPCRate.String(), nullableDecimal(o.DailyBudget), nullableDecimal(o.TotalBudget),
		o.TotalSpent.String(), o.TotalClicks, o.TotalImpressions, string(o.Status),
		o.StartsAt, o.ExpiresAt, joinCountries(o.TargetCountries), string(o.MinBioTier),
		o.BackgroundColor, o.TextColor, o.Layout, o.CreatedAt)
	return err
}

// GetOfferByID loads an offer with the owning company's name and logo joined.
func (r *OfferRepository) GetOfferByID(ctx context.Context, id string) (models.Offer, error) {
	row := r.DB.QueryRowContext(ctx, `
SELECT `+offerColumns+`, co.company_name, co.logo
FROM offers o
JOIN companies co ON co.id = o.company_id
WHERE o.id = ?`, id)

	o, err := scanOfferWithCompany(row)
	if err == sql.ErrNoRows {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, err
}

func scanOfferWithCompany(row *sql.Row) (models.Offer, error) {
	var (
		o           models.Offer
		cpc, spent  string
		daily, tot  sql.NullString
		countries   sql.NullString
		status, min string
		updated     sql.NullTime
	)
	err := row.Scan(&o.ID, &o.CompanyID, &o.Title, &o.Description, &o.LinkURL,
		&o.ImageURL, &o.Category, &cpc, &daily, &tot, &spent, &o.TotalClicks,
		&o.TotalImpressions, &status, &o.StartsAt, &o.ExpiresAt, &countries,
		&min, &o.BackgroundColor, &o.TextColor, &o.Layout, &o.CreatedAt, &updated,
		&o.CompanyName, &o.CompanyLogo)
	if err != nil {
		return models.Offer{}, err
	}
	if o.CPCRate, err = decimal.NewFromString(cpc); err != nil {
		return models.Offer{}, err
	}
	if o.TotalSpent, err = decimal.NewFromString(spent); err != nil {
		return models.Offer{}, err
	}
	if daily.Valid {
		d, err := decimal.NewFromString(daily.String)
		if err != nil {
			return models.Offer{}, err
		}
		o.DailyBudget = &d
	}
	if tot.Valid {
		b, err := decimal.NewFromString(tot.String)
		if err != nil {
			return models.Offer{}, err
		}
		o.TotalBudget = &b
	}
	if countries.Valid && countries.String != "" {
		o.TargetCountries = strings.Split(countries.String, ",")
	}
	if updated.Valid {
		t := updated.Time
		o.UpdatedAt = &t
	}
	o.Status = models.OfferStatus(status)
	o.MinBioTier = models.BioTier(min)
	return o, nil
}

func (r *OfferRepository) GetOfferForCompany(ctx context.Context, companyID, offerID string) (models.Offer, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers o WHERE o.id = ? AND o.company_id = ?`,
		offerID, companyID)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return o, err
}

func (r *OfferRepository) ListCompanyOffers(ctx context.Context, companyID string) ([]models.Offer, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers o WHERE o.company_id = ? ORDER BY o.created_at DESC`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// ListMarketplace returns live offers (active, within their start/expiry
// window), best paying first, plus the unpaginated total for the filter.
func (r *OfferRepository) ListMarketplace(ctx context.Context, category, search string, page, limit int) ([]models.Offer, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	where := `o.status = 'active' AND (o.expires_at IS NULL OR o.expires_at > NOW()) AND (o.starts_at IS NULL OR o.starts_at <= NOW())`
	args := []interface{}{}
	if category != "" && category != "all" {
		where += ` AND o.category = ?`
		args = append(args, category)
	}
	if search != "" {
		where += ` AND (LOWER(o.title) LIKE ? OR LOWER(o.description) LIKE ?)`
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM offers o WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
SELECT ` + offerColumns + `
FROM offers o
WHERE ` + where + `
ORDER BY o.cpc_rate DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, o)
	}
	return offers, total, rows.Err()
}

func (r *OfferRepository) UpdateOffer(ctx context.Context, o models.Offer) error {
	_, err := r.DB.ExecContext(ctx, `
UPDATE offers
SET title = ?, description = ?, link_url = ?, image_url = ?, category = ?, cpc_rate = ?, daily_budget = ?, total_budget = ?, starts_at = ?, expires_at = ?, target_countries = ?, min_bio_tier = ?, background_color = ?, text_color = ?, layout = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND company_id = ?`,
		o.Title, o.Description, o.LinkURL, o.ImageURL, o.Category, o.CPCRate.String(),
		nullableDecimal(o.DailyBudget), nullableDecimal(o.TotalBudget), o.StartsAt,
		o.ExpiresAt, joinCountries(o.TargetCountries), string(o.MinBioTier),
		o.BackgroundColor, o.TextColor, o.Layout, o.ID, o.CompanyID)
	return err
}

func (r *OfferRepository) SetStatus(ctx context.Context, offerID string, status models.OfferStatus) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE offers SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), offerID)
	return err
}

// ApplyClickCharge adds one click and its CPC to the offer counters as a
// single atomic statement, never read-modify-write.
func (r *OfferRepository) ApplyClickCharge(ctx context.Context, offerID string, amount decimal.Decimal) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE offers SET total_clicks = total_clicks + 1, total_spent = total_spent + ? WHERE id = ?`,
		amount.String(), offerID)
	return err
}

// TotalSpentAndBudget re-reads the money columns after a charge so the
// caller can decide on the exhausted transition.
func (r *OfferRepository) TotalSpentAndBudget(ctx context.Context, offerID string) (decimal.Decimal, *decimal.Decimal, error) {
	var spent string
	var budget sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT total_spent, total_budget FROM offers WHERE id = ?`, offerID).
		Scan(&spent, &budget)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil, models.ErrOfferNotFound
	}
	if err != nil {
		return decimal.Zero, nil, err
	}
	s, err := decimal.NewFromString(spent)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if !budget.Valid {
		return s, nil, nil
	}
	b, err := decimal.NewFromString(budget.String)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return s, &b, nil
}

// MarkExhausted flips an offer to exhausted only while the budget is
// actually spent, so repeated calls are harmless.
func (r *OfferRepository) MarkExhausted(ctx context.Context, offerID string) error {
	_, err := r.DB.ExecContext(ctx, `
UPDATE offers
SET status = 'exhausted', updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND total_budget IS NOT NULL AND total_spent >= total_budget AND status = 'active'`,
		offerID)
	return err
}

// RecordImpressions bumps the impression counter for every offer served on
// a public bio render.
func (r *OfferRepository) RecordImpressions(ctx context.Context, offerIDs []string) error {
	if len(offerIDs) == 0 {
		return nil
	}
	query := `UPDATE offers SET total_impressions = total_impressions + 1 WHERE id IN (?` +
		strings.Repeat(", ?", len(offerIDs)-1) + `)`
	args := make([]interface{}, len(offerIDs))
	for i, id := range offerIDs {
		args[i] = id
	}
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}
