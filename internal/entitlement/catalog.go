// internal/entitlement/catalog.go
package entitlement

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrCatalogIntegrity = errors.New("CATALOG_INTEGRITY")

// Catalog maps each plan to its capabilities in display order. Every plan
// lists its capabilities explicitly; no inclusion between tiers is implied.
type Catalog map[Plan][]Capability

// DefaultCatalog is the built-in plan table.
func DefaultCatalog() Catalog {
	return Catalog{
		PlanFree: {
			CapBasicListing,
			CapContactInfo,
		},
		PlanBasic: {
			CapBasicListing,
			CapContactInfo,
			CapBusinessHours,
			CapPhotoGallery,
		},
		PlanStandard: {
			CapBasicListing,
			CapContactInfo,
			CapBusinessHours,
			CapPhotoGallery,
			CapSocialLinks,
			CapAnalyticsDashboard,
		},
		PlanPro: {
			CapBasicListing,
			CapContactInfo,
			CapBusinessHours,
			CapPhotoGallery,
			CapSocialLinks,
			CapAnalyticsDashboard,
			CapLeadGeneration,
			CapFeaturedPlacement,
			CapWhatsAppIntegration,
			CapPrioritySupport,
		},
	}
}

// CatalogFromConfig converts the plans section of the service
// configuration. Unknown plan ids are integrity errors.
func CatalogFromConfig(plans map[string][]string) (Catalog, error) {
	catalog := make(Catalog, len(plans))
	var unknown []string
	for id, caps := range plans {
		plan, ok := ParsePlan(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		list := make([]Capability, len(caps))
		for i, c := range caps {
			list[i] = Capability(c)
		}
		catalog[plan] = list
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: undeclared plans %s", ErrCatalogIntegrity, strings.Join(unknown, ", "))
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate is the startup integrity check. It reports every problem found.
func (c Catalog) Validate() error {
	var problems []string

	for plan := range c {
		if _, ok := ParsePlan(string(plan)); !ok {
			problems = append(problems, fmt.Sprintf("plan %q is not in the plan enumeration", plan))
		}
	}

	for _, plan := range Plans {
		caps, ok := c[plan]
		if !ok {
			problems = append(problems, fmt.Sprintf("plan %q is missing", plan))
			continue
		}
		if len(caps) == 0 {
			problems = append(problems, fmt.Sprintf("plan %q declares no capabilities", plan))
		}
		seen := make(map[Capability]struct{}, len(caps))
		for _, capability := range caps {
			if strings.TrimSpace(string(capability)) == "" {
				problems = append(problems, fmt.Sprintf("plan %q declares an empty capability", plan))
				continue
			}
			if _, dup := seen[capability]; dup {
				problems = append(problems, fmt.Sprintf("plan %q lists %q twice", plan, capability))
			}
			seen[capability] = struct{}{}
		}
	}

	if free := c[PlanFree]; !containsCapability(free, CapBasicListing) {
		problems = append(problems, fmt.Sprintf("plan %q must include %q", PlanFree, CapBasicListing))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrCatalogIntegrity, strings.Join(problems, "; "))
	}
	return nil
}

func containsCapability(caps []Capability, want Capability) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}
