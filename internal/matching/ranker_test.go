package matching

import (
	"testing"

	"unimatch/internal/models"

	"github.com/stretchr/testify/assert"
)

func result(id string, pct int, mutate func(u *models.University)) models.MatchResult {
	u := models.University{ID: id, Name: "University " + id}
	if mutate != nil {
		mutate(&u)
	}
	return models.MatchResult{University: u, MatchPercentage: pct, Reasons: []string{}}
}

func resultIDs(results []models.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.University.ID)
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, models.SortTuitionAsc, ParseSortKey("tuition_asc"))
	assert.Equal(t, models.SortMatchPercentage, ParseSortKey("popularity"))
	assert.Equal(t, models.SortMatchPercentage, ParseSortKey(""))
}

func TestRank(t *testing.T) {
	tuition := func(v float64) func(*models.University) {
		return func(u *models.University) { u.Financials.TuitionOutState = f64(v) }
	}
	ranking := func(v int) func(*models.University) {
		return func(u *models.University) { u.Ranking = intp(v) }
	}

	tests := []struct {
		name     string
		key      models.SortKey
		results  []models.MatchResult
		expected []string
	}{
		{
			name: "match percentage descending with id tie-break",
			key:  models.SortMatchPercentage,
			results: []models.MatchResult{
				result("c", 80, nil), result("a", 90, nil), result("b", 80, nil),
			},
			expected: []string{"a", "b", "c"},
		},
		{
			name: "tuition ascending puts unknown last",
			key:  models.SortTuitionAsc,
			results: []models.MatchResult{
				result("a", 0, nil), result("b", 0, tuition(30000)), result("c", 0, tuition(10000)),
			},
			expected: []string{"c", "b", "a"},
		},
		{
			name: "tuition descending still puts unknown last",
			key:  models.SortTuitionDesc,
			results: []models.MatchResult{
				result("a", 0, nil), result("b", 0, tuition(30000)), result("c", 0, tuition(10000)),
			},
			expected: []string{"b", "c", "a"},
		},
		{
			name: "ranking ascending",
			key:  models.SortRankingAsc,
			results: []models.MatchResult{
				result("a", 0, ranking(50)), result("b", 0, nil), result("c", 0, ranking(3)),
			},
			expected: []string{"c", "a", "b"},
		},
		{
			name: "name descending ignores case",
			key:  models.SortNameDesc,
			results: []models.MatchResult{
				result("1", 0, func(u *models.University) { u.Name = "alpha" }),
				result("2", 0, func(u *models.University) { u.Name = "Bravo" }),
				result("3", 0, func(u *models.University) { u.Name = "charlie" }),
			},
			expected: []string{"3", "2", "1"},
		},
		{
			name: "unknown key falls back to match percentage",
			key:  "bogus",
			results: []models.MatchResult{
				result("a", 10, nil), result("b", 20, nil),
			},
			expected: []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Rank(tt.results, tt.key)
			assert.Equal(t, tt.expected, resultIDs(tt.results))
		})
	}
}

func TestRank_Deterministic(t *testing.T) {
	build := func() []models.MatchResult {
		return []models.MatchResult{
			result("e", 70, nil), result("d", 70, nil), result("a", 70, nil), result("c", 85, nil), result("b", 70, nil),
		}
	}
	first, second := build(), build()
	second[0], second[4] = second[4], second[0]

	Rank(first, models.SortMatchPercentage)
	Rank(second, models.SortMatchPercentage)

	assert.Equal(t, resultIDs(first), resultIDs(second))
	assert.Equal(t, []string{"c", "a", "b", "d", "e"}, resultIDs(first))
}
