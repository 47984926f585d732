package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is a short-lived advisory lock taken right before a valid click is
// committed. It closes the window where two clicks from the same IP on the
// same adoption pass the dedup reads before either row lands. With no Redis
// configured the pipeline stays read-then-decide best-effort.
type Guard struct {
	RDB *redis.Client
	TTL time.Duration
}

func guardKey(ipHash, adoptionID string, now time.Time) string {
	return fmt.Sprintf("click_guard:%s:%s:%s", ipHash, adoptionID, now.UTC().Format("2006010215"))
}

// Acquire returns false when another click already holds the bucket. Redis
// errors are returned alongside ok=true so callers can degrade to
// best-effort instead of dropping the click.
func (g *Guard) Acquire(ctx context.Context, ipHash, adoptionID string, now time.Time) (bool, error) {
	if g == nil || g.RDB == nil {
		return true, nil
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ok, err := g.RDB.SetNX(ctx, guardKey(ipHash, adoptionID, now), 1, ttl).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}
