// internal/workers/directory/search-listings/models.go
package searchlistings

import "business-directory/internal/models"

type Input struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	City     string `json:"city,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type Output struct {
	Listings []models.Listing `json:"listings"`
	Total    int              `json:"total"`
}
