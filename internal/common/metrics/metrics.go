// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_transitions_total",
			Help: "Registration wizard step transitions by outcome",
		},
		[]string{"step", "transition", "outcome"},
	)

	WizardSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_submissions_total",
			Help: "Registration submissions by outcome",
		},
		[]string{"outcome"},
	)

	EntitlementChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_checks_total",
			Help: "Capability checks by plan, capability and result",
		},
		[]string{"plan", "capability", "granted"},
	)

	LeadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Lead capture attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordTransition(step, transition string, ok bool) {
	outcome := "accepted"
	if !ok {
		outcome = "rejected"
	}
	WizardTransitions.WithLabelValues(step, transition, outcome).Inc()
}

func RecordEntitlementCheck(plan, capability string, granted bool) {
	EntitlementChecks.WithLabelValues(plan, capability, strconv.FormatBool(granted)).Inc()
}
