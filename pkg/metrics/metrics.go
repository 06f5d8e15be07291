package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Relay request metrics. outcome is one of succeeded, failed, rejected.
	RelayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailrelay_requests_total",
		Help: "Total number of send-email requests handled, by outcome",
	}, []string{"outcome"})
	RelayRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailrelay_request_duration_seconds",
		Help:    "Time spent handling send-email requests, including the transport call",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailrelay_mail_send_success_total",
		Help: "Total number of mails accepted by the transport",
	}, []string{"provider"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailrelay_mail_send_failure_total",
		Help: "Total number of failed mail submissions",
	}, []string{"provider", "kind"})

	// Rate limiting
	RateLimitRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailrelay_ratelimit_rejected_total",
		Help: "Total number of requests rejected by the per-IP rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RelayRequests)
	prometheus.MustRegister(RelayRequestDuration)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(RateLimitRejected)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
