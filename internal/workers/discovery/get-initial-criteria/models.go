// internal/workers/discovery/get-initial-criteria/models.go
package getinitialcriteria

import "unimatch/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Criteria *models.DiscoveryCriteria `json:"criteria"`
}
