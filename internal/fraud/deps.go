package fraud

import (
	"context"
	"time"
)

// ClickHistory is the read side of the click ledger the rules run against.
// Queries are point-in-time reads; concurrent writers are not serialized
// against them (see Guard for the commit-side lock).
type ClickHistory interface {
	AnyClickByIPSince(ctx context.Context, ipHash string, since time.Time) (bool, error)
	AdoptionClickByIPSince(ctx context.Context, adoptionID, ipHash string, since time.Time) (bool, error)
	CountClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error)
	AdoptionClickByFingerprintSince(ctx context.Context, adoptionID, fingerprint string, since time.Time) (bool, error)
	AdoptionValidClickBySessionSince(ctx context.Context, adoptionID, sessionSlot string, since time.Time) (bool, error)
	CountClicksBySessionSince(ctx context.Context, sessionID string, since time.Time) (int, error)
	CountValidClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error)
}
