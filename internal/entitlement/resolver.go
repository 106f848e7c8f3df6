// internal/entitlement/resolver.go
package entitlement

// Resolver answers entitlement questions against a validated catalog.
// It is immutable after NewResolver and safe for concurrent use.
type Resolver struct {
	ordered map[Plan][]Capability
	index   map[Plan]map[Capability]struct{}
}

// NewResolver copies and validates the catalog. A catalog that fails
// Validate never produces a resolver.
func NewResolver(catalog Catalog) (*Resolver, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		ordered: make(map[Plan][]Capability, len(catalog)),
		index:   make(map[Plan]map[Capability]struct{}, len(catalog)),
	}
	for plan, caps := range catalog {
		r.ordered[plan] = append([]Capability(nil), caps...)
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		r.index[plan] = set
	}
	return r, nil
}

// HasCapability fails closed: an unrecognized plan grants nothing.
func (r *Resolver) HasCapability(plan string, capability Capability) bool {
	set, ok := r.index[Plan(plan)]
	if !ok {
		return false
	}
	_, granted := set[capability]
	return granted
}

// CapabilitiesOf returns a copy of the plan's list in display order, or an
// empty slice for an unrecognized plan.
func (r *Resolver) CapabilitiesOf(plan string) []Capability {
	caps, ok := r.ordered[Plan(plan)]
	if !ok {
		return []Capability{}
	}
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Catalog returns a deep copy of the resolver's catalog.
func (r *Resolver) Catalog() Catalog {
	out := make(Catalog, len(r.ordered))
	for plan, caps := range r.ordered {
		out[plan] = append([]Capability(nil), caps...)
	}
	return out
}
