// Package dashboard decides which parts of an owner's dashboard are shown.
// Every decision goes through the entitlement resolver.
package dashboard

import (
	"context"

	"business-directory/internal/analytics"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/entitlement"
)

const DefaultAnalyticsDays = 30

type Section struct {
	Name       string                 `json:"name"`
	Capability entitlement.Capability `json:"capability"`
	Enabled    bool                   `json:"enabled"`
}

type View struct {
	ListingID    string                   `json:"listingId"`
	Plan         string                   `json:"plan"`
	Capabilities []entitlement.Capability `json:"capabilities"`
	Sections     []Section                `json:"sections"`
	Featured     bool                     `json:"featured"`
	Analytics    *analytics.Summary       `json:"analytics,omitempty"`
}

// sections is the order the dashboard renders them in.
var sections = []Section{
	{Name: "profile", Capability: entitlement.CapBasicListing},
	{Name: "contact", Capability: entitlement.CapContactInfo},
	{Name: "hours", Capability: entitlement.CapBusinessHours},
	{Name: "gallery", Capability: entitlement.CapPhotoGallery},
	{Name: "social", Capability: entitlement.CapSocialLinks},
	{Name: "analytics", Capability: entitlement.CapAnalyticsDashboard},
	{Name: "leads", Capability: entitlement.CapLeadGeneration},
	{Name: "whatsapp", Capability: entitlement.CapWhatsAppIntegration},
	{Name: "support", Capability: entitlement.CapPrioritySupport},
	{Name: "branding", Capability: entitlement.CapCustomBranding},
}

type Summarizer interface {
	Summary(ctx context.Context, listingID string, days int) (*analytics.Summary, error)
}

type Builder struct {
	resolver *entitlement.Resolver
	stats    Summarizer
	days     int
	logger   logger.Logger
}

func NewBuilder(resolver *entitlement.Resolver, stats Summarizer, log logger.Logger) *Builder {
	return &Builder{
		resolver: resolver,
		stats:    stats,
		days:     DefaultAnalyticsDays,
		logger:   logger.ForComponent(log, "dashboard"),
	}
}

// Build never fails on analytics; a read error leaves Analytics nil.
func (b *Builder) Build(ctx context.Context, listingID, plan string) (*View, error) {
	view := &View{
		ListingID:    listingID,
		Plan:         plan,
		Capabilities: b.resolver.CapabilitiesOf(plan),
		Sections:     make([]Section, len(sections)),
		Featured:     b.resolver.HasCapability(plan, entitlement.CapFeaturedPlacement),
	}

	for i, s := range sections {
		s.Enabled = b.resolver.HasCapability(plan, s.Capability)
		metrics.RecordEntitlementCheck(entitlement.PlanLabel(plan), string(s.Capability), s.Enabled)
		view.Sections[i] = s
	}

	if b.stats != nil && b.resolver.HasCapability(plan, entitlement.CapAnalyticsDashboard) {
		summary, err := b.stats.Summary(ctx, listingID, b.days)
		if err != nil {
			b.logger.Warn("analytics summary unavailable", map[string]interface{}{
				"listingId": listingID,
				"error":     err.Error(),
			})
		} else {
			view.Analytics = summary
		}
	}

	return view, nil
}

// Enabled reports whether the named section is shown.
func (v *View) Enabled(name string) bool {
	for _, s := range v.Sections {
		if s.Name == name {
			return s.Enabled
		}
	}
	return false
}
