// internal/matching/ranker.go
package matching

import (
	"sort"
	"strings"

	"unimatch/internal/models"
)

var validSortKeys = map[models.SortKey]bool{
	models.SortMatchPercentage: true,
	models.SortTuitionAsc:      true,
	models.SortTuitionDesc:     true,
	models.SortRankingAsc:      true,
	models.SortRankingDesc:     true,
	models.SortAcceptanceAsc:   true,
	models.SortAcceptanceDesc:  true,
	models.SortNameAsc:         true,
	models.SortNameDesc:        true,
}

// ParseSortKey maps a requested key onto a supported one, defaulting to match percentage.
func ParseSortKey(key models.SortKey) models.SortKey {
	if validSortKeys[key] {
		return key
	}
	return models.SortMatchPercentage
}

// Rank orders results in place. Candidates missing the sorted attribute go
// last in either direction, and ties fall back to the university ID.
func Rank(results []models.MatchResult, key models.SortKey) {
	key = ParseSortKey(key)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i].University, &results[j].University
		if c := compareBy(key, &results[i], &results[j]); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// compareBy returns <0 when a sorts before b under key, >0 after, 0 on a tie.
func compareBy(key models.SortKey, a, b *models.MatchResult) int {
	switch key {
	case models.SortTuitionAsc:
		return compareOptional(a.University.Financials.TuitionOutState, b.University.Financials.TuitionOutState, false)
	case models.SortTuitionDesc:
		return compareOptional(a.University.Financials.TuitionOutState, b.University.Financials.TuitionOutState, true)
	case models.SortRankingAsc:
		return compareOptional(intPtrToFloat(a.University.Ranking), intPtrToFloat(b.University.Ranking), false)
	case models.SortRankingDesc:
		return compareOptional(intPtrToFloat(a.University.Ranking), intPtrToFloat(b.University.Ranking), true)
	case models.SortAcceptanceAsc:
		return compareOptional(a.University.AcceptanceRate, b.University.AcceptanceRate, false)
	case models.SortAcceptanceDesc:
		return compareOptional(a.University.AcceptanceRate, b.University.AcceptanceRate, true)
	case models.SortNameAsc:
		return strings.Compare(strings.ToLower(a.University.Name), strings.ToLower(b.University.Name))
	case models.SortNameDesc:
		return strings.Compare(strings.ToLower(b.University.Name), strings.ToLower(a.University.Name))
	default:
		return b.MatchPercentage - a.MatchPercentage
	}
}

func compareOptional(a, b *float64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a == *b:
		return 0
	case (*a < *b) != desc:
		return -1
	default:
		return 1
	}
}

func intPtrToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
