package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "model_platform"
	labelOutcome     = "outcome"
	labelResult      = "result"
)

// serviceMetrics owns a registry per router so several routers can coexist in one process.
type serviceMetrics struct {
	registry       *prometheus.Registry
	normalizations *prometheus.CounterVec
	validations    *prometheus.CounterVec
}

func newServiceMetrics() *serviceMetrics {
	registry := prometheus.NewRegistry()
	normalizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "normalizations_total",
		Help:      "Platform normalizations served, by whether the input was a known alias.",
	}, []string{labelOutcome})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "validations_total",
		Help:      "Model validations performed, by result.",
	}, []string{labelResult})
	registry.MustRegister(normalizations, validations)
	return &serviceMetrics{
		registry:       registry,
		normalizations: normalizations,
		validations:    validations,
	}
}

func (metrics *serviceMetrics) observeNormalization(isAlias bool) {
	outcome := outcomePassthrough
	if isAlias {
		outcome = outcomeAlias
	}
	metrics.normalizations.WithLabelValues(outcome).Inc()
}

func (metrics *serviceMetrics) observeValidation(result string) {
	metrics.validations.WithLabelValues(result).Inc()
}

func (metrics *serviceMetrics) handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}
