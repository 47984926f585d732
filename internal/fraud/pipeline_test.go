package fraud

import (
	"context"
	"testing"
	"time"
)

// stubHistory answers the ledger queries from fixed values.
type stubHistory struct {
	anyClickByIP        bool
	adoptionClickByIP   bool
	clicksByIP          int
	adoptionClickByFp   bool
	validClickBySession bool
	clicksBySession     int
	validClicksByIP     int
}

func (s *stubHistory) AnyClickByIPSince(ctx context.Context, ipHash string, since time.Time) (bool, error) {
	return s.anyClickByIP, nil
}

func (s *stubHistory) AdoptionClickByIPSince(ctx context.Context, adoptionID, ipHash string, since time.Time) (bool, error) {
	return s.adoptionClickByIP, nil
}

func (s *stubHistory) CountClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error) {
	return s.clicksByIP, nil
}

func (s *stubHistory) AdoptionClickByFingerprintSince(ctx context.Context, adoptionID, fingerprint string, since time.Time) (bool, error) {
	return s.adoptionClickByFp, nil
}

func (s *stubHistory) AdoptionValidClickBySessionSince(ctx context.Context, adoptionID, sessionSlot string, since time.Time) (bool, error) {
	return s.validClickBySession, nil
}

func (s *stubHistory) CountClicksBySessionSince(ctx context.Context, sessionID string, since time.Time) (int, error) {
	return s.clicksBySession, nil
}

func (s *stubHistory) CountValidClicksByIPSince(ctx context.Context, ipHash string, since time.Time) (int, error) {
	return s.validClicksByIP, nil
}

func strptr(s string) *string { return &s }

func evaluate(t *testing.T, history *stubHistory, userAgent string, fingerprint, sessionID *string) Verdict {
	t.Helper()
	p := &Pipeline{History: history}
	verdict, err := p.Evaluate(context.Background(), "adoption-1", "iphash", "compound", userAgent, fingerprint, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return verdict
}

func TestEvaluateCleanClickIsValid(t *testing.T) {
	verdict := evaluate(t, &stubHistory{}, chromeDesktopUA, nil, nil)
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got invalid with reason %q", verdict.Reason)
	}
}

func TestEvaluateRuleReasons(t *testing.T) {
	tests := []struct {
		name        string
		history     *stubHistory
		userAgent   string
		fingerprint *string
		sessionID   *string
		wantReason  string
	}{
		{
			name:       "bot user agent",
			history:    &stubHistory{},
			userAgent:  "curl/8.4.0",
			wantReason: "Bot/crawler detected",
		},
		{
			name:       "velocity",
			history:    &stubHistory{anyClickByIP: true},
			userAgent:  chromeDesktopUA,
			wantReason: "Click velocity too fast (<30s)",
		},
		{
			name:       "duplicate ip",
			history:    &stubHistory{adoptionClickByIP: true},
			userAgent:  chromeDesktopUA,
			wantReason: "Duplicate IP within 24h",
		},
		{
			name:       "hourly rate limit",
			history:    &stubHistory{clicksByIP: 3},
			userAgent:  chromeDesktopUA,
			wantReason: "Rate limit exceeded (3/hour)",
		},
		{
			name:        "duplicate fingerprint",
			history:     &stubHistory{adoptionClickByFp: true},
			userAgent:   chromeDesktopUA,
			fingerprint: strptr("fp-1"),
			wantReason:  "Duplicate fingerprint within 24h",
		},
		{
			name:       "compound fallback",
			history:    &stubHistory{validClickBySession: true},
			userAgent:  chromeDesktopUA,
			wantReason: "Compound IP+UA duplicate",
		},
		{
			name:       "session spam",
			history:    &stubHistory{clicksBySession: 3},
			userAgent:  chromeDesktopUA,
			sessionID:  strptr("sess-1"),
			wantReason: "Session click-spam",
		},
		{
			name:       "daily cap",
			history:    &stubHistory{validClicksByIP: 10},
			userAgent:  chromeDesktopUA,
			wantReason: "Daily IP cap exceeded (10/day)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := evaluate(t, tt.history, tt.userAgent, tt.fingerprint, tt.sessionID)
			if verdict.Valid {
				t.Fatalf("expected invalid verdict")
			}
			if verdict.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, verdict.Reason)
			}
		})
	}
}

// A fingerprinted click must not be blocked by the compound fallback; the
// compound rule only applies when no fingerprint came in.
func TestEvaluateFingerprintSkipsCompoundRule(t *testing.T) {
	history := &stubHistory{validClickBySession: true}
	verdict := evaluate(t, history, chromeDesktopUA, strptr("fp-1"), nil)
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got invalid with reason %q", verdict.Reason)
	}
}

// Below-threshold counters must not trip their rules.
func TestEvaluateThresholdBoundaries(t *testing.T) {
	history := &stubHistory{clicksByIP: 2, clicksBySession: 2, validClicksByIP: 9}
	verdict := evaluate(t, history, chromeDesktopUA, nil, strptr("sess-1"))
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got invalid with reason %q", verdict.Reason)
	}
}
