// Package metrics holds the Prometheus collectors of the registration service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for registration operations.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	StageFailures      *prometheus.CounterVec
	SubmissionLatency  prometheus.Histogram
	UploadedBytes      *prometheus.CounterVec
	CategoryResolution *prometheus.CounterVec
	PaymentSchedules   *prometheus.CounterVec
	StagedFilesRemoved prometheus.Counter
}

// New registers the collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toros_registration_submissions_total",
			Help: "Total number of submissions, labeled by outcome",
		}, []string{"outcome"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toros_registration_stage_failures_total",
			Help: "Total number of failed submission stages, labeled by stage",
		}, []string{"stage"}),
		SubmissionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "toros_registration_submission_latency_seconds",
			Help:    "Latency of the whole submission pipeline in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		UploadedBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toros_registration_uploaded_bytes_total",
			Help: "Bytes uploaded to the file store, labeled by folder",
		}, []string{"folder"}),
		CategoryResolution: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toros_category_resolutions_total",
			Help: "Category resolutions, labeled by result (found, not_found, overlap)",
		}, []string{"result"}),
		PaymentSchedules: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "toros_payment_schedules_total",
			Help: "Payment schedule generation results, labeled by result (created, skipped, failed)",
		}, []string{"result"}),
		StagedFilesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "toros_staged_files_removed_total",
			Help: "Staged attachment files removed by the cleanup job",
		}),
	}
}

// NewNop returns collectors registered with a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementStageFailure(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveSubmissionLatency(seconds float64) {
	m.SubmissionLatency.Observe(seconds)
}

func (m *Metrics) AddUploadedBytes(folder string, n int) {
	m.UploadedBytes.WithLabelValues(folder).Add(float64(n))
}

func (m *Metrics) IncrementCategoryResolution(result string) {
	m.CategoryResolution.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementPaymentSchedule(result string) {
	m.PaymentSchedules.WithLabelValues(result).Inc()
}

func (m *Metrics) AddStagedFilesRemoved(n int) {
	m.StagedFilesRemoved.Add(float64(n))
}
