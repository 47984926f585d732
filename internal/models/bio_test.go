package models

import "testing"

func TestTierForViews(t *testing.T) {
	tests := []struct {
		views int
		want  BioTier
	}{
		{0, TierStarter},
		{1000, TierStarter},
		{1001, TierGrowing},
		{10000, TierGrowing},
		{10001, TierEstablished},
	}
	for _, tt := range tests {
		if got := TierForViews(tt.views); got != tt.want {
			t.Fatalf("TierForViews(%d) = %s, want %s", tt.views, got, tt.want)
		}
	}
}

func TestTierRankOrdering(t *testing.T) {
	order := []BioTier{TierAny, TierStarter, TierGrowing, TierEstablished}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("expected %s < %s in rank", order[i-1], order[i])
		}
	}
}

func TestCPCFloor(t *testing.T) {
	tests := []struct {
		tier BioTier
		want string
	}{
		{TierStarter, "0.01"},
		{TierGrowing, "0.03"},
		{TierEstablished, "0.05"},
	}
	for _, tt := range tests {
		if got := tt.tier.CPCFloor().String(); got != tt.want {
			t.Fatalf("CPCFloor(%s) = %s, want %s", tt.tier, got, tt.want)
		}
	}
}

func TestMaxAdoptionsForPlan(t *testing.T) {
	tests := []struct {
		plan string
		want int
	}{
		{"free", 1},
		{"standard", 3},
		{"pro", 10},
		{"unknown", 1},
	}
	for _, tt := range tests {
		if got := MaxAdoptionsForPlan(tt.plan); got != tt.want {
			t.Fatalf("MaxAdoptionsForPlan(%s) = %d, want %d", tt.plan, got, tt.want)
		}
	}
}
