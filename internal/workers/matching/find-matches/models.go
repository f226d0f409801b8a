// internal/workers/matching/find-matches/models.go
package findmatches

import "unimatch/internal/models"

type Input struct {
	Profile *models.MatchRequest `json:"profile"`
}

type Output struct {
	Matches    []models.MatchResult `json:"matches"`
	MatchCount int                  `json:"matchCount"`
}
