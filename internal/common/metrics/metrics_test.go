package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(WizardTransitions.WithLabelValues("contact", "advance", "rejected"))
	RecordTransition("contact", "advance", false)
	after := testutil.ToFloat64(WizardTransitions.WithLabelValues("contact", "advance", "rejected"))
	assert.Equal(t, before+1, after)
}

func TestRecordEntitlementCheck(t *testing.T) {
	RecordEntitlementCheck("pro", "lead_generation", true)
	assert.GreaterOrEqual(t, testutil.ToFloat64(EntitlementChecks.WithLabelValues("pro", "lead_generation", "true")), 1.0)
}
