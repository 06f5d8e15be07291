// Package metrics defines Prometheus metrics for the mail relay,
// covering relay requests and mail delivery per transport.
package metrics
