// internal/listing/service.go
package listing

import (
	"context"
	"time"

	"business-directory/internal/common/logger"
	"business-directory/internal/common/observability"
	"business-directory/internal/entitlement"
	"business-directory/internal/models"
)

// RecordStore is the storage side of the Service.
type RecordStore interface {
	CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error)
}

type Indexer interface {
	IndexListing(ctx context.Context, listing models.Listing) error
	Search(ctx context.Context, f Filter) ([]models.Listing, int, error)
}

// ProcessStarter starts the onboarding workflow for a new listing.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

type Service struct {
	store     RecordStore
	index     Indexer
	resolver  *entitlement.Resolver
	starter   ProcessStarter
	processID string
	obs       *observability.Observability
	logger    logger.Logger
}

type ServiceOption func(*Service)

func WithIndex(index Indexer) ServiceOption {
	return func(s *Service) { s.index = index }
}

func WithOnboarding(starter ProcessStarter, processID string) ServiceOption {
	return func(s *Service) {
		s.starter = starter
		s.processID = processID
	}
}

func WithObservability(obs *observability.Observability) ServiceOption {
	return func(s *Service) { s.obs = obs }
}

func NewService(store RecordStore, resolver *entitlement.Resolver, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		resolver: resolver,
		logger:   logger.ForComponent(log, "listing-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrUpdateBusinessRecord saves the record, then indexes it and starts
// onboarding for new listings. Only the save decides the outcome.
func (s *Service) CreateOrUpdateBusinessRecord(ctx context.Context, owner models.User, record *models.BusinessRecord) (*models.SavedRecord, error) {
	start := time.Now()
	saved, err := s.store.CreateOrUpdateBusinessRecord(ctx, owner, record)
	if err != nil {
		s.obs.RecordPersistence(ctx, time.Since(start), "error")
		return nil, err
	}
	s.obs.RecordPersistence(ctx, time.Since(start), "success")
	s.obs.RecordRegistration(ctx, saved.Created)

	if s.index != nil {
		if err := s.index.IndexListing(ctx, s.ToListing(saved)); err != nil {
			s.logger.Warn("listing index update failed", map[string]interface{}{
				"listingId": saved.ID,
				"error":     err.Error(),
			})
		}
	}

	if saved.Created && s.starter != nil {
		key, err := s.starter.StartProcess(ctx, s.processID, onboardingVariables(owner, saved))
		if err != nil {
			s.logger.Warn("onboarding process start failed", map[string]interface{}{
				"listingId": saved.ID,
				"error":     err.Error(),
			})
		} else {
			s.logger.Info("onboarding process started", map[string]interface{}{
				"listingId":          saved.ID,
				"processInstanceKey": key,
			})
		}
	}

	return saved, nil
}

func (s *Service) Search(ctx context.Context, f Filter) ([]models.Listing, int, error) {
	if s.index == nil {
		return []models.Listing{}, 0, nil
	}
	return s.index.Search(ctx, f)
}

// ToListing projects a saved record for search. Featured is derived from the
// plan at projection time.
func (s *Service) ToListing(saved *models.SavedRecord) models.Listing {
	return models.Listing{
		ID:       saved.ID,
		Name:     saved.Record.BusinessName,
		Category: saved.Record.Category,
		City:     saved.Record.City,
		State:    saved.Record.State,
		Services: append([]string{}, saved.Record.Services...),
		Plan:     saved.Plan,
		Featured: s.resolver.HasCapability(saved.Plan, entitlement.CapFeaturedPlacement),
	}
}

func onboardingVariables(owner models.User, saved *models.SavedRecord) map[string]interface{} {
	return map[string]interface{}{
		"listingId":    saved.ID,
		"ownerId":      owner.ID,
		"ownerEmail":   saved.Record.OwnerEmail,
		"ownerName":    saved.Record.OwnerName,
		"businessName": saved.Record.BusinessName,
		"plan":         saved.Plan,
	}
}
