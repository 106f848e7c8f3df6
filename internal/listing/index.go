// internal/listing/index.go
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
	ErrIndexFailed       = errors.New("INDEX_FAILED")
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// IndexMapping is applied when the listing index is created.
const IndexMapping = `{
	"mappings": {
		"properties": {
			"id":       {"type": "keyword"},
			"name":     {"type": "keyword"},
			"category": {"type": "keyword"},
			"city":     {"type": "keyword"},
			"state":    {"type": "keyword"},
			"services": {"type": "keyword"},
			"plan":     {"type": "keyword"},
			"featured": {"type": "boolean"}
		}
	}
}`

// Filter is passed through to the index as-is. Query matches a substring of
// the name or any service, case-insensitively.
type Filter struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	City     string `json:"city"`
	Limit    int    `json:"limit"`
}

// Index stores listing projections in Elasticsearch.
type Index struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, index string, log logger.Logger) *Index {
	return &Index{client: client, index: index, logger: logger.ForComponent(log, "listing-index")}
}

func (i *Index) IndexListing(ctx context.Context, listing models.Listing) error {
	body, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: listing.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.Listing `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns matching listings sorted by name and the total hit count.
// Featured listings are flagged in the result, not ranked higher.
func (i *Index) Search(ctx context.Context, f Filter) ([]models.Listing, int, error) {
	body, err := json.Marshal(buildSearchQuery(f))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	size := clampLimit(f.Limit)
	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, ErrSearchTimeout
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return nil, 0, fmt.Errorf("%w: %s: %s", ErrSearchQueryFailed, res.Status(), string(msg))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	listings := make([]models.Listing, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		listings = append(listings, hit.Source)
	}

	i.logger.Debug("search executed", map[string]interface{}{
		"query": f.Query,
		"hits":  parsed.Hits.Total.Value,
	})
	return listings, parsed.Hits.Total.Value, nil
}

func buildSearchQuery(f Filter) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "*" + escapeWildcard(q) + "*"
		must = append(must, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					wildcard("name", pattern),
					wildcard("services", pattern),
				},
				"minimum_should_match": 1,
			},
		})
	}
	if f.Category != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": f.Category},
		})
	}
	if f.City != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"city": f.City},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"name": "asc"},
		},
	}
}

func wildcard(field, pattern string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            pattern,
				"case_insensitive": true,
			},
		},
	}
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultSearchLimit
	case n > maxSearchLimit:
		return maxSearchLimit
	default:
		return n
	}
}
