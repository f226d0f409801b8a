// internal/matching/tier.go
package matching

import (
	"strings"

	"unimatch/internal/models"
)

var unrestrictedTiers = map[models.AccessTier]bool{
	models.TierAdmin:      true,
	models.TierPremium:    true,
	models.TierEnterprise: true,
}

func IsUnrestricted(tier models.AccessTier) bool {
	return unrestrictedTiers[models.AccessTier(strings.ToLower(strings.TrimSpace(string(tier))))]
}

// Gate limits what free and anonymous callers may see. It must run on the
// fully ranked list so the visible entries are the best ones.
type Gate struct {
	Cap int
}

// Apply returns the visible slice and, for restricted callers, the restriction.
// Showing counts what is returned, which is below the cap for short lists.
func (g Gate) Apply(ranked []models.MatchResult, tier models.AccessTier, anonymous bool) ([]models.MatchResult, *models.Restriction) {
	reason := ""
	switch {
	case anonymous:
		reason = models.RestrictionAnonymous
	case !IsUnrestricted(tier):
		reason = models.RestrictionFreeTier
	default:
		return ranked, nil
	}

	limit := g.Cap
	if limit <= 0 {
		limit = DefaultFreeTierCap
	}
	visible := ranked
	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, &models.Restriction{
		Reason:      reason,
		ActualTotal: len(ranked),
		Showing:     len(visible),
	}
}
