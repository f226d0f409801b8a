// internal/store/elasticsearch_catalog.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonerrors "unimatch/internal/common/errors"
	"unimatch/internal/common/logger"
	"unimatch/internal/common/metrics"
	"unimatch/internal/matching"
	"unimatch/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DefaultSearchSize is the page size of one search request. FindCandidates
// pages with search_after until the index is exhausted.
const DefaultSearchSize = 1000

// rangeSlack widens pushed-down float bounds so values stored with a
// different precision are still handed to Filter.Apply for the final check.
const rangeSlack = 1e-6

// UniversityIndexMapping keeps location fields as text with a keyword
// sub-field so they can be both searched and matched exactly.
const UniversityIndexMapping = `{
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "country": {"type": "text", "fields": {"keyword": {"type": "keyword", "normalizer": "lowercase"}}},
      "state": {"type": "text", "fields": {"keyword": {"type": "keyword", "normalizer": "lowercase"}}},
      "city": {"type": "text", "fields": {"keyword": {"type": "keyword", "normalizer": "lowercase"}}},
      "setting": {"type": "keyword"},
      "climate": {"type": "text"},
      "ranking": {"type": "integer"},
      "acceptanceRate": {"type": "double"},
      "academics": {
        "properties": {
          "avgGpa": {"type": "double"},
          "minGpa": {"type": "double"},
          "avgSat": {"type": "integer"},
          "avgAct": {"type": "integer"},
          "popularMajors": {"type": "text"}
        }
      },
      "financials": {
        "properties": {
          "tuitionOutState": {"type": "double"},
          "tuitionInternational": {"type": "double"},
          "avgGrantAid": {"type": "double"}
        }
      },
      "social": {
        "properties": {
          "studentLifeScore": {"type": "double"},
          "diversityScore": {"type": "double"},
          "partySceneRating": {"type": "double"},
          "safetyRating": {"type": "double"}
        }
      },
      "outcomes": {
        "properties": {
          "employmentRate": {"type": "double"},
          "alumniNetwork": {"type": "double"},
          "internshipSupport": {"type": "double"},
          "visaDurationMonths": {"type": "integer"}
        }
      }
    }
  },
  "settings": {
    "analysis": {
      "normalizer": {
        "lowercase": {"type": "custom", "filter": ["lowercase"]}
      }
    }
  }
}`

// ElasticsearchCatalog narrows candidates with the exact predicates of a
// Filter and runs Filter.Apply over every hit, so it returns the same set as
// the other backends.
type ElasticsearchCatalog struct {
	client *elasticsearch.Client
	index  string
	size   int
	logger logger.Logger
}

func NewElasticsearchCatalog(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchCatalog {
	return &ElasticsearchCatalog{
		client: client,
		index:  index,
		size:   DefaultSearchSize,
		logger: log.WithFields(map[string]interface{}{"store": "elasticsearch_catalog", "index": index}),
	}
}

func (c *ElasticsearchCatalog) FindCandidates(ctx context.Context, f *matching.Filter) ([]models.University, error) {
	if f == nil {
		f = &matching.Filter{}
	}
	start := time.Now()
	defer func() {
		metrics.CatalogQueryDuration.WithLabelValues("elasticsearch").Observe(time.Since(start).Seconds())
	}()

	query := BuildSearchQuery(f)
	var (
		hits        []models.University
		searchAfter []interface{}
		tookMs      int64
		pages       int
	)
	for {
		page, err := c.searchPage(ctx, query, searchAfter)
		if err != nil {
			return nil, err
		}
		pages++
		tookMs += page.Took

		for _, h := range page.Hits.Hits {
			u := h.Source
			if u.ID == "" {
				u.ID = h.ID
			}
			hits = append(hits, u)
		}

		n := len(page.Hits.Hits)
		if n < c.size || n == 0 {
			break
		}
		searchAfter = page.Hits.Hits[n-1].Sort
		if len(searchAfter) == 0 {
			break
		}
	}

	c.logger.Debug("search executed", map[string]interface{}{
		"hits":   len(hits),
		"pages":  pages,
		"tookMs": tookMs,
	})
	return f.Apply(hits), nil
}

func (c *ElasticsearchCatalog) searchPage(ctx context.Context, query map[string]interface{}, searchAfter []interface{}) (*searchResponse, error) {
	payload := make(map[string]interface{}, len(query)+1)
	for k, v := range query {
		payload[k] = v
	}
	if len(searchAfter) > 0 {
		payload["search_after"] = searchAfter
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(c.index, err)
	}

	size := c.size
	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewSearchTimeoutError(c.index)
		}
		return nil, commonerrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, commonerrors.NewIndexNotFoundError(c.index)
	}
	if res.IsError() {
		return nil, commonerrors.NewSearchQueryFailedError(c.index, fmt.Errorf("search failed: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(c.index, fmt.Errorf("decode response: %w", err))
	}
	return &parsed, nil
}

// Index writes each university as a document keyed by its id and refreshes
// the index once at the end.
func (c *ElasticsearchCatalog) Index(ctx context.Context, universities []models.University) error {
	for i := range universities {
		u := &universities[i]
		doc, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode %s: %w", u.ID, err)
		}

		res, err := c.client.Index(
			c.index,
			bytes.NewReader(doc),
			c.client.Index.WithContext(ctx),
			c.client.Index.WithDocumentID(u.ID),
		)
		if err != nil {
			return commonerrors.NewElasticsearchConnectionFailedError(err)
		}
		res.Body.Close()
		if res.IsError() {
			return commonerrors.NewSearchQueryFailedError(c.index, fmt.Errorf("index %s: %s", u.ID, res.Status()))
		}
	}

	res, err := c.client.Indices.Refresh(
		c.client.Indices.Refresh.WithContext(ctx),
		c.client.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return commonerrors.NewElasticsearchConnectionFailedError(err)
	}
	res.Body.Close()

	c.logger.Info("catalog indexed", map[string]interface{}{"count": len(universities)})
	return nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Hits []struct {
			ID     string            `json:"_id"`
			Source models.University `json:"_source"`
			Sort   []interface{}     `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildSearchQuery maps the exact predicates of a Filter onto an
// Elasticsearch bool query: locations become terms on lowercase keywords and
// bounds become range filters. Free text, majors, settings, climates and net
// cost are substring or derived checks and are left to Filter.Apply.
func BuildSearchQuery(f *matching.Filter) map[string]interface{} {
	filter := []interface{}{}

	for _, t := range []struct{ field, value string }{
		{"country.keyword", f.Country},
		{"state.keyword", f.State},
		{"city.keyword", f.City},
	} {
		if v := strings.TrimSpace(t.value); v != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{t.field: strings.ToLower(v)},
			})
		}
	}

	filter = appendRange(filter, "academics.avgGpa", f.MinGPA, f.MaxGPA, rangeSlack)
	filter = appendRange(filter, "academics.avgSat", intBound(f.MinSAT), intBound(f.MaxSAT), 0)
	filter = appendRange(filter, "academics.avgAct", intBound(f.MinACT), intBound(f.MaxACT), 0)
	filter = appendRange(filter, "financials.tuitionOutState", f.MinTuition, f.MaxTuition, rangeSlack)
	filter = appendRange(filter, "financials.avgGrantAid", f.MinGrantAid, nil, rangeSlack)
	filter = appendRange(filter, "social.safetyRating", f.MinSafety, f.MaxSafety, rangeSlack)
	filter = appendRange(filter, "social.diversityScore", f.MinDiversity, f.MaxDiversity, rangeSlack)
	filter = appendRange(filter, "social.partySceneRating", f.MinPartyScene, f.MaxPartyScene, rangeSlack)
	filter = appendRange(filter, "outcomes.employmentRate", f.MinEmploymentRate, nil, rangeSlack)
	filter = appendRange(filter, "outcomes.alumniNetwork", f.MinAlumniNetwork, nil, rangeSlack)
	filter = appendRange(filter, "outcomes.internshipSupport", f.MinInternshipSupport, nil, rangeSlack)
	filter = appendRange(filter, "outcomes.visaDurationMonths", intBound(f.MinVisaMonths), nil, 0)

	boolQuery := map[string]interface{}{
		"must": []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}},
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
	}
}

func appendRange(filter []interface{}, field string, lo, hi *float64, slack float64) []interface{} {
	if lo == nil && hi == nil {
		return filter
	}
	bounds := map[string]interface{}{}
	if lo != nil {
		bounds["gte"] = *lo - slack
	}
	if hi != nil {
		bounds["lte"] = *hi + slack
	}
	return append(filter, map[string]interface{}{
		"range": map[string]interface{}{field: bounds},
	})
}

func intBound(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
