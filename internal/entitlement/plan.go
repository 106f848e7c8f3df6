// Package entitlement maps subscription plans to the capabilities they
// enable. Lookups are pure reads of a catalog fixed at construction.
package entitlement

// Plan is a subscription tier. The set is closed; see Plans.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPro      Plan = "pro"
)

// Plans lists every plan a catalog must declare, in tier order.
var Plans = []Plan{PlanFree, PlanBasic, PlanStandard, PlanPro}

// Capability names a gated feature. The set is open.
type Capability string

const (
	CapBasicListing        Capability = "basic_listing"
	CapContactInfo         Capability = "contact_info"
	CapBusinessHours       Capability = "business_hours"
	CapPhotoGallery        Capability = "photo_gallery"
	CapSocialLinks         Capability = "social_links"
	CapAnalyticsDashboard  Capability = "analytics_dashboard"
	CapLeadGeneration      Capability = "lead_generation"
	CapFeaturedPlacement   Capability = "featured_placement"
	CapWhatsAppIntegration Capability = "whatsapp_integration"
	CapPrioritySupport     Capability = "priority_support"
	CapCustomBranding      Capability = "custom_branding"
)

// PlanUnknown is the metrics label for plan ids outside the enumeration.
const PlanUnknown = "unknown"

// ParsePlan matches s exactly against the enumeration.
func ParsePlan(s string) (Plan, bool) {
	for _, p := range Plans {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// PlanLabel returns plan when it is in the enumeration and PlanUnknown
// otherwise, keeping label sets bounded.
func PlanLabel(plan string) string {
	if _, ok := ParsePlan(plan); ok {
		return plan
	}
	return PlanUnknown
}
