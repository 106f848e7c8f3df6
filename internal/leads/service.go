// Package leads records enquiries for listings whose plan allows it.
package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/common/validation"
	"business-directory/internal/entitlement"
	"business-directory/internal/listing"
	"business-directory/internal/models"

	"github.com/google/uuid"
)

var (
	ErrLeadCaptureDisabled = errors.New("LEAD_CAPTURE_DISABLED")
	ErrLeadInvalid         = errors.New("LEAD_INVALID")
)

type LeadStore interface {
	Insert(ctx context.Context, lead *models.Lead) error
}

type ContactLookup interface {
	ContactOf(ctx context.Context, listingID string) (*listing.Contact, error)
}

type LeadCounter interface {
	RecordLead(ctx context.Context, listingID string) error
}

type Alerter interface {
	NotifyLead(ctx context.Context, phone string, lead models.Lead) error
}

type Service struct {
	store    LeadStore
	contacts ContactLookup
	resolver *entitlement.Resolver
	counter  LeadCounter
	alerter  Alerter
	now      func() time.Time
	logger   logger.Logger
}

func NewService(store LeadStore, contacts ContactLookup, resolver *entitlement.Resolver, counter LeadCounter, alerter Alerter, log logger.Logger) *Service {
	return &Service{
		store:    store,
		contacts: contacts,
		resolver: resolver,
		counter:  counter,
		alerter:  alerter,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.ForComponent(log, "leads"),
	}
}

// Capture stores a lead for the listing. Listings whose plan lacks
// lead_generation, including unknown plans, are refused.
func (s *Service) Capture(ctx context.Context, lead models.Lead) (*models.Lead, error) {
	contact, err := s.contacts.ContactOf(ctx, lead.ListingID)
	if err != nil {
		return nil, err
	}

	granted := s.resolver.HasCapability(contact.Plan, entitlement.CapLeadGeneration)
	metrics.RecordEntitlementCheck(entitlement.PlanLabel(contact.Plan), string(entitlement.CapLeadGeneration), granted)
	if !granted {
		metrics.LeadsCaptured.WithLabelValues("disabled").Inc()
		return nil, fmt.Errorf("%w: plan %q", ErrLeadCaptureDisabled, contact.Plan)
	}

	if problems := validateLead(lead); len(problems) > 0 {
		metrics.LeadsCaptured.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %s", ErrLeadInvalid, strings.Join(problems, "; "))
	}

	lead.ID = uuid.New().String()
	lead.CreatedAt = s.now()
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)

	if err := s.store.Insert(ctx, &lead); err != nil {
		metrics.LeadsCaptured.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LeadsCaptured.WithLabelValues("captured").Inc()

	if s.counter != nil {
		if err := s.counter.RecordLead(ctx, lead.ListingID); err != nil {
			s.logger.Warn("lead counter increment failed", map[string]interface{}{
				"listingId": lead.ListingID,
				"error":     err.Error(),
			})
		}
	}

	if s.alerter != nil && s.resolver.HasCapability(contact.Plan, entitlement.CapWhatsAppIntegration) {
		if err := s.alerter.NotifyLead(ctx, contact.WhatsApp, lead); err != nil {
			s.logger.Warn("lead alert failed", map[string]interface{}{
				"listingId": lead.ListingID,
				"error":     err.Error(),
			})
		}
	}

	s.logger.Info("lead captured", map[string]interface{}{
		"leadId":    lead.ID,
		"listingId": lead.ListingID,
	})
	return &lead, nil
}

func validateLead(lead models.Lead) []string {
	var problems []string
	if validation.IsBlank(lead.Name) {
		problems = append(problems, "name is required")
	}
	if !validation.ValidateEmail(lead.Email) {
		problems = append(problems, "a valid email is required")
	}
	if !validation.IsBlank(lead.Phone) && !validation.ValidatePhone(lead.Phone) {
		problems = append(problems, "phone is not valid")
	}
	if len([]rune(lead.Message)) > 2000 {
		problems = append(problems, "message is too long")
	}
	return problems
}
