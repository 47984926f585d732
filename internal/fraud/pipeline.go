package fraud

import (
	"context"
	"time"
)

// Verdict is the classification of one click attempt. Reason is set only
// when Valid is false.
type Verdict struct {
	Valid  bool
	Reason string
}

func invalid(reason string) Verdict { return Verdict{Valid: false, Reason: reason} }

// Pipeline evaluates the fraud rules in a fixed order against recent click
// history; the first matching rule wins. The reads are not serialized
// against concurrent writers, which admits a narrow double-count race that
// Guard narrows further at commit time.
type Pipeline struct {
	History ClickHistory
}

// Evaluate runs the ordered rules for a click on the given adoption.
// compoundHash is the IP+UA fallback session slot; fingerprint and sessionID
// are nil when the client did not supply them.
func (p *Pipeline) Evaluate(ctx context.Context, adoptionID, ipHash, compoundHash, userAgent string, fingerprint, sessionID *string) (Verdict, error) {
	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)

	if IsBot(userAgent) {
		return invalid("Bot/crawler detected"), nil
	}

	hit, err := p.History.AnyClickByIPSince(ctx, ipHash, now.Add(-30*time.Second))
	if err != nil {
		return Verdict{}, err
	}
	if hit {
		return invalid("Click velocity too fast (<30s)"), nil
	}

	hit, err = p.History.AdoptionClickByIPSince(ctx, adoptionID, ipHash, dayAgo)
	if err != nil {
		return Verdict{}, err
	}
	if hit {
		return invalid("Duplicate IP within 24h"), nil
	}

	n, err := p.History.CountClicksByIPSince(ctx, ipHash, now.Add(-time.Hour))
	if err != nil {
		return Verdict{}, err
	}
	if n >= 3 {
		return invalid("Rate limit exceeded (3/hour)"), nil
	}

	if fingerprint != nil && *fingerprint != "" {
		hit, err = p.History.AdoptionClickByFingerprintSince(ctx, adoptionID, *fingerprint, dayAgo)
		if err != nil {
			return Verdict{}, err
		}
		if hit {
			return invalid("Duplicate fingerprint within 24h"), nil
		}
	} else {
		// Compound IP+UA dedup is the fallback when no fingerprint came in.
		hit, err = p.History.AdoptionValidClickBySessionSince(ctx, adoptionID, compoundHash, dayAgo)
		if err != nil {
			return Verdict{}, err
		}
		if hit {
			return invalid("Compound IP+UA duplicate"), nil
		}
	}

	if sessionID != nil && *sessionID != "" {
		n, err = p.History.CountClicksBySessionSince(ctx, *sessionID, now.Add(-5*time.Minute))
		if err != nil {
			return Verdict{}, err
		}
		if n >= 3 {
			return invalid("Session click-spam"), nil
		}
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err = p.History.CountValidClicksByIPSince(ctx, ipHash, todayStart)
	if err != nil {
		return Verdict{}, err
	}
	if n >= 10 {
		return invalid("Daily IP cap exceeded (10/day)"), nil
	}

	return Verdict{Valid: true}, nil
}
