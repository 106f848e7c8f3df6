// internal/models/business.go
package models

import "time"

// BusinessRecord is the normalized shape a completed registration is saved
// as. Extra holds configured fields without a dedicated column.
type BusinessRecord struct {
	BusinessName    string            `json:"businessName"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Website         string            `json:"website,omitempty"`
	WhatsApp        string            `json:"whatsapp,omitempty"`
	Address         string            `json:"address"`
	City            string            `json:"city"`
	State           string            `json:"state"`
	PostalCode      string            `json:"postalCode,omitempty"`
	OwnerName       string            `json:"ownerName"`
	OwnerEmail      string            `json:"ownerEmail"`
	OwnerPhone      string            `json:"ownerPhone,omitempty"`
	YearEstablished string            `json:"yearEstablished,omitempty"`
	Services        []string          `json:"services"`
	Hours           string            `json:"hours,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

type SavedRecord struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId"`
	Plan      string         `json:"plan"`
	Created   bool           `json:"created"`
	Record    BusinessRecord `json:"record"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Listing is the search-facing projection of a saved record.
type Listing struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Services []string `json:"services"`
	Plan     string   `json:"plan"`
	Featured bool     `json:"featured"`
}
