// internal/workers/communication/send-welcome-email/models.go
package sendwelcomeemail

type Input struct {
	ListingID string `json:"listingId"`
	OwnerID   string `json:"ownerId"`
}

type Output struct {
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
