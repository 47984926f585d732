package models

import "github.com/shopspring/decimal"

// Bio is the page a user attaches sponsored links to. Only the fields the
// sponsored subsystem needs are loaded; bio CRUD lives elsewhere.
type Bio struct {
	ID     string     `json:"id"`
	UserID string     `json:"user_id"`
	Views  int        `json:"views"`
	Blocks []BioBlock `json:"blocks"`
}

// BioBlock is one content block on a bio page, stored as JSON.
type BioBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Visible bool   `json:"visible"`
}

const SponsoredLinksBlockType = "sponsored_links"

type BioTier string

const (
	TierAny         BioTier = "any"
	TierStarter     BioTier = "starter"
	TierGrowing     BioTier = "growing"
	TierEstablished BioTier = "established"
)

// TierForViews derives the bio tier purely from lifetime view count.
func TierForViews(views int) BioTier {
	switch {
	case views >= 10001:
		return TierEstablished
	case views >= 1001:
		return TierGrowing
	default:
		return TierStarter
	}
}

func (t BioTier) Rank() int {
	switch t {
	case TierStarter:
		return 1
	case TierGrowing:
		return 2
	case TierEstablished:
		return 3
	default:
		return 0
	}
}

// CPCFloor is the minimum CPC rate an offer must pay before a bio of this
// tier may adopt it.
func (t BioTier) CPCFloor() decimal.Decimal {
	switch t {
	case TierGrowing:
		return decimal.NewFromFloat(0.03)
	case TierEstablished:
		return decimal.NewFromFloat(0.05)
	default:
		return decimal.NewFromFloat(0.01)
	}
}
