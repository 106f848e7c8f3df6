package entitlement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogFile(t *testing.T) {
	body := `{"plans": {
		"free": ["basic_listing"],
		"basic": ["basic_listing", "contact_info"],
		"standard": ["basic_listing", "contact_info", "analytics_dashboard"],
		"pro": ["basic_listing", "contact_info", "analytics_dashboard", "lead_generation"]
	}}`
	path := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Capability{CapBasicListing, CapContactInfo, CapAnalyticsDashboard}, catalog[PlanStandard])
}

func TestParseCatalogJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{plans:`},
		{"missing plans key", `{"tiers": {}}`},
		{"non-string capability", `{"plans": {"free": [1]}}`},
		{"empty capability", `{"plans": {"free": [""]}}`},
		{"missing pro plan", `{"plans": {"free": ["basic_listing"], "basic": ["basic_listing"], "standard": ["basic_listing"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalogJSON([]byte(tt.body))
			assert.ErrorIs(t, err, ErrCatalogIntegrity)
		})
	}
}

func TestLoadCatalogFile_MissingFile(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
