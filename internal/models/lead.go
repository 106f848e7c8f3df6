// internal/models/lead.go
package models

import "time"

type Lead struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
