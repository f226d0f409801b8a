// internal/matching/paginate.go
package matching

import "unimatch/internal/models"

func normalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Paginate slices results for page and limit. A restricted list is always a
// single page.
func Paginate(results []models.MatchResult, page, limit int, restricted bool) ([]models.MatchResult, models.Pagination) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if page < 1 || restricted {
		page = 1
	}

	total := len(results)
	totalPages := (total + limit - 1) / limit

	skip := (page - 1) * limit
	var slice []models.MatchResult
	if skip < total {
		end := skip + limit
		if end > total {
			end = total
		}
		slice = results[skip:end]
	}
	if slice == nil {
		slice = []models.MatchResult{}
	}

	p := models.Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalResults:    total,
		Limit:           limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
	if restricted {
		p.TotalPages = 1
		p.HasNextPage = false
	}
	return slice, p
}
