package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	AccountsRegistered *prometheus.CounterVec
	RequestsCreated    *prometheus.CounterVec
	StatusChanges      *prometheus.CounterVec
	DonorResponses     *prometheus.CounterVec
	DonorSearches      *prometheus.CounterVec
	SearchDuration     *prometheus.HistogramVec
	RequestsExpired    prometheus.Counter
	RequestsPurged     prometheus.Counter
	HTTPDuration       *prometheus.HistogramVec
}

// New registers all collectors with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_accounts_registered_total",
			Help: "Total number of accounts registered, by role",
		}, []string{"role"}),
		RequestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_created_total",
			Help: "Total number of blood requests created",
		}, []string{"blood_type", "urgency"}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_blood_request_status_changes_total",
			Help: "Total number of blood request status changes, by target status",
		}, []string{"status"}),
		DonorResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donor_responses_total",
			Help: "Total number of donor responses recorded",
		}, []string{"status"}),
		DonorSearches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donor_searches_total",
			Help: "Total number of donor searches, by kind",
		}, []string{"kind"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodlink_donor_search_duration_ms",
			Help:    "Latency of donor searches in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"kind"}),
		RequestsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_expired_total",
			Help: "Total number of blood requests marked expired by the sweeper",
		}),
		RequestsPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_purged_total",
			Help: "Total number of expired blood requests removed by the sweeper",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodlink_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) IncrementAccountsRegistered(role string) {
	if m == nil {
		return
	}
	m.AccountsRegistered.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementRequestsCreated(bloodType, urgency string, n int) {
	if m == nil {
		return
	}
	m.RequestsCreated.WithLabelValues(bloodType, urgency).Add(float64(n))
}

func (m *Metrics) IncrementStatusChanges(status string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementDonorResponses(status string) {
	if m == nil {
		return
	}
	m.DonorResponses.WithLabelValues(status).Inc()
}

// ObserveSearch counts a donor search and records its latency since start.
func (m *Metrics) ObserveSearch(kind string, start time.Time) {
	if m == nil {
		return
	}
	m.DonorSearches.WithLabelValues(kind).Inc()
	m.SearchDuration.WithLabelValues(kind).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func (m *Metrics) AddSweep(expired, purged int64) {
	if m == nil {
		return
	}
	m.RequestsExpired.Add(float64(expired))
	m.RequestsPurged.Add(float64(purged))
}

func (m *Metrics) ObserveHTTP(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(route, method, status).Observe(elapsed.Seconds())
}
