// internal/workers/directory/create-business-record/models.go
package createbusinessrecord

// Input carries an imported registration. Fields uses the same names as the
// registration form, e.g. business_name or services.
type Input struct {
	OwnerID    string            `json:"ownerId"`
	OwnerEmail string            `json:"ownerEmail"`
	OwnerName  string            `json:"ownerName"`
	Fields     map[string]string `json:"fields"`
}

type Output struct {
	ListingID string `json:"listingId"`
	Created   bool   `json:"created"`
	Plan      string `json:"plan"`
}
