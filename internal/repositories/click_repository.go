package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"linkmint/internal/models"
)

// ClickRepository is the append-only click ledger. Rows are immutable once
// written; fraud rules and stats read them back through the windowed queries
// below.
type ClickRepository struct {
	DB *sql.DB
}

func (r *ClickRepository) InsertClick(ctx context.Context, c models.Click) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO clicks (id, adoption_id, offer_id, ip_hash, fingerprint, country, city, device, browser, referrer, earned_amount, is_valid, session_id, invalid_reason, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AdoptionID, c.OfferID, c.IPHash, c.Fingerprint, c.Country, c.City,
		c.Device, c.Browser, c.Referrer, c.EarnedAmount.String(), c.IsValid,
		c.SessionID, c.InvalidReason, c.CreatedAt)
	return err
}

// ---- fraud.ClickHistory -----------------------------------------------------

func (r *ClickRepository) AnyClickByIPSince(ctx context.Context, ipHash string, since time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clicks WHERE ip_hash = ? AND created_at > ?)`,
		ipHash, since).Scan(&exists)
	return exists, err
}

func (r *ClickRepository) AdoptionClickByIPSince(ctx context.Context, adoptionID, ipHash string, since time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clicks WHERE adoption_id = ? AND ip_hash = ? AND created_at > ?)`,
		adoptionID, ipHash, since).Scan(&exists)
	return exists, err
}

func (r *ClickRepository) CountClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE ip_hash = ? AND created_at > ?`,
		ipHash, since).Scan(&count)
	return count, err
}

func (r *ClickRepository) AdoptionClickByFingerprintSince(ctx context.Context, adoptionID, fingerprint string, since time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clicks WHERE adoption_id = ? AND fingerprint = ? AND created_at > ?)`,
		adoptionID, fingerprint, since).Scan(&exists)
	return exists, err
}

// AdoptionValidClickBySessionSince matches the session slot, which stores the
// compound IP+UA hash when the client sent no explicit session id.
func (r *ClickRepository) AdoptionValidClickBySessionSince(ctx context.Context, adoptionID, sessionSlot string, since time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM clicks WHERE adoption_id = ? AND session_id = ? AND is_valid = TRUE AND created_at > ?)`,
		adoptionID, sessionSlot, since).Scan(&exists)
	return exists, err
}

func (r *ClickRepository) CountClicksBySessionSince(ctx context.Context, sessionID string, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE session_id = ? AND created_at > ?`,
		sessionID, since).Scan(&count)
	return count, err
}

func (r *ClickRepository) CountValidClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE ip_hash = ? AND is_valid = TRUE AND created_at > ?`,
		ipHash, since).Scan(&count)
	return count, err
}

// ---- stats ------------------------------------------------------------------

func (r *ClickRepository) CountByAdoption(ctx context.Context, adoptionID string) (total, valid int, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_valid), 0) FROM clicks WHERE adoption_id = ?`,
		adoptionID).Scan(&total, &valid)
	return total, valid, err
}

func (r *ClickRepository) ValidClicksByDay(ctx context.Context, adoptionID string, since time.Time) ([]models.DayCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT DATE(created_at), COUNT(*)
FROM clicks
WHERE adoption_id = ? AND is_valid = TRUE AND created_at >= ?
GROUP BY DATE(created_at)
ORDER BY DATE(created_at) ASC`, adoptionID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DayCount
	for rows.Next() {
		var d models.DayCount
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *ClickRepository) ValidClicksByCountry(ctx context.Context, adoptionID string, since time.Time, limit int) ([]models.CountryCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT country, COUNT(*)
FROM clicks
WHERE adoption_id = ? AND is_valid = TRUE AND country IS NOT NULL AND created_at >= ?
GROUP BY country
ORDER BY COUNT(*) DESC
LIMIT ?`, adoptionID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []models.CountryCount
	for rows.Next() {
		var c models.CountryCount
		if err := rows.Scan(&c.Country, &c.Clicks); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *ClickRepository) ValidClicksByDevice(ctx context.Context, adoptionID string, since time.Time) ([]models.DeviceCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT device, COUNT(*)
FROM clicks
WHERE adoption_id = ? AND is_valid = TRUE AND created_at >= ?
GROUP BY device`, adoptionID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.DeviceCount
	for rows.Next() {
		var d models.DeviceCount
		if err := rows.Scan(&d.Device, &d.Clicks); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// MonthlyEarnings sums valid-click earnings across the given adoptions since
// the start of the current month.
func (r *ClickRepository) MonthlyEarnings(ctx context.Context, adoptionIDs []string, since time.Time) (decimal.Decimal, error) {
	if len(adoptionIDs) == 0 {
		return decimal.Zero, nil
	}
	query := `SELECT COALESCE(SUM(earned_amount), 0) FROM clicks WHERE is_valid = TRUE AND created_at >= ? AND adoption_id IN (?` +
		strings.Repeat(", ?", len(adoptionIDs)-1) + `)`
	args := make([]interface{}, 0, len(adoptionIDs)+1)
	args = append(args, since)
	for _, id := range adoptionIDs {
		args = append(args, id)
	}

	var total string
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(total)
}

// ListValidByAdoptions returns one page of valid clicks across the given
// adoptions, newest first, with the offer title joined for display.
func (r *ClickRepository) ListValidByAdoptions(ctx context.Context, adoptionIDs []string, page, limit int) ([]models.Click, int, error) {
	if len(adoptionIDs) == 0 {
		return nil, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	placeholders := `?` + strings.Repeat(", ?", len(adoptionIDs)-1)
	args := make([]interface{}, 0, len(adoptionIDs)+2)
	for _, id := range adoptionIDs {
		args = append(args, id)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM clicks WHERE is_valid = TRUE AND adoption_id IN (` + placeholders + `)`
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
SELECT c.id, c.adoption_id, c.offer_id, c.ip_hash, c.fingerprint, c.country, c.city, c.device, c.browser, c.referrer, c.earned_amount, c.is_valid, c.session_id, c.invalid_reason, o.title, c.created_at
FROM clicks c
JOIN offers o ON o.id = c.offer_id
WHERE c.is_valid = TRUE AND c.adoption_id IN (` + placeholders + `)
ORDER BY c.created_at DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clicks []models.Click
	for rows.Next() {
		var c models.Click
		var earned string
		err := rows.Scan(&c.ID, &c.AdoptionID, &c.OfferID, &c.IPHash, &c.Fingerprint,
			&c.Country, &c.City, &c.Device, &c.Browser, &c.Referrer, &earned,
			&c.IsValid, &c.SessionID, &c.InvalidReason, &c.OfferTitle, &c.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		if c.EarnedAmount, err = decimal.NewFromString(earned); err != nil {
			return nil, 0, err
		}
		clicks = append(clicks, c)
	}
	return clicks, total, rows.Err()
}
