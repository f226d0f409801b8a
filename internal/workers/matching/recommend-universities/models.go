// internal/workers/matching/recommend-universities/models.go
package recommenduniversities

import "unimatch/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Recommendations     []models.MatchResult `json:"recommendations"`
	RecommendationCount int                  `json:"recommendationCount"`
}
