package resolveentitlements

import (
	"context"
	"testing"
	"time"

	"business-directory/internal/common/logger"
	"business-directory/internal/entitlement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	resolver, err := entitlement.NewResolver(entitlement.DefaultCatalog())
	require.NoError(t, err)
	return NewHandler(&Config{Timeout: 5 * time.Second}, resolver, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantKnown   bool
		wantGranted bool
		wantCaps    int
	}{
		{"pro with lead generation", &Input{Plan: "pro", Capability: "lead_generation"}, true, true, 10},
		{"free without analytics", &Input{Plan: "free", Capability: "analytics_dashboard"}, true, false, 2},
		{"standard list only", &Input{Plan: "standard"}, true, false, 6},
		{"unknown plan fails closed", &Input{Plan: "platinum", Capability: "basic_listing"}, false, false, 0},
		{"case differs", &Input{Plan: "Pro", Capability: "lead_generation"}, false, false, 0},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKnown, out.KnownPlan)
			assert.Equal(t, tt.wantGranted, out.Granted)
			assert.Len(t, out.Capabilities, tt.wantCaps)
			assert.NotNil(t, out.Capabilities)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	_, err := createTestHandler(t).Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
