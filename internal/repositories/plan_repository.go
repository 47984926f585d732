package repositories

import (
	"context"
	"database/sql"
)

// PlanRepository resolves a user's active billing plan. Billing itself is
// owned elsewhere; this only answers "free", "standard" or "pro".
type PlanRepository struct {
	DB *sql.DB
}

func (r *PlanRepository) GetActivePlan(ctx context.Context, userID string) (string, error) {
	var plan string
	err := r.DB.QueryRowContext(ctx, `
SELECT plan
FROM user_plans
WHERE user_id = ? AND status = 'active' AND (expires_at IS NULL OR expires_at > NOW())
ORDER BY created_at DESC
LIMIT 1`, userID).Scan(&plan)
	if err == sql.ErrNoRows {
		return "free", nil
	}
	if err != nil {
		return "", err
	}
	return plan, nil
}
