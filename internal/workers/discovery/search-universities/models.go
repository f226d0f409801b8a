// internal/workers/discovery/search-universities/models.go
package searchuniversities

import "unimatch/internal/models"

type Input struct {
	Criteria    *models.DiscoveryCriteria `json:"criteria"`
	Tier        string                    `json:"tier"`
	UserID      string                    `json:"userId"`
	IsAnonymous bool                      `json:"isAnonymous"`
}

type Output struct {
	models.DiscoveryResponse
	AccessTier string `json:"accessTier"`
}
