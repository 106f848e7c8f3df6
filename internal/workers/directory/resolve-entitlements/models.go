// internal/workers/directory/resolve-entitlements/models.go
package resolveentitlements

type Input struct {
	Plan       string `json:"plan"`
	Capability string `json:"capability,omitempty"`
}

// Output always carries the plan's capabilities; Granted answers the
// optional capability question.
type Output struct {
	Plan         string   `json:"plan"`
	KnownPlan    bool     `json:"knownPlan"`
	Capabilities []string `json:"capabilities"`
	Granted      bool     `json:"granted"`
}
