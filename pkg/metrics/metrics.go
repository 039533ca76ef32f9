package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Access code lifecycle
	AccessCodesIssued    prometheus.Counter
	AccessCodesRedeemed  prometheus.Counter
	AccessCodesRejected  prometheus.Counter
	AccessCodeSendErrors prometheus.Counter

	// Diagnosis write outcomes, labelled by authorization path
	DiagnosisWrites  *prometheus.CounterVec
	DiagnosisDenials prometheus.Counter
}

// New registers and returns the application metrics.
func New(namespace string) *Metrics {
	return &Metrics{
		AccessCodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_codes_issued_total",
			Help:      "Number of diagnosis access codes issued",
		}),
		AccessCodesRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_codes_redeemed_total",
			Help:      "Number of access codes successfully redeemed",
		}),
		AccessCodesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_codes_rejected_total",
			Help:      "Number of access code redemptions rejected",
		}),
		AccessCodeSendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_code_send_errors_total",
			Help:      "Number of failed approver notifications",
		}),
		DiagnosisWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnosis_writes_total",
			Help:      "Number of authorized diagnosis writes by path",
		}, []string{"path"}),
		DiagnosisDenials: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnosis_denials_total",
			Help:      "Number of rejected diagnosis write attempts",
		}),
	}
}
