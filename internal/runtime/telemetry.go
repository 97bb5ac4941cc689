// Package runtime holds the shared run infrastructure: the prometheus
// metric set and the logger constructor used by every command.
package runtime

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewLogger returns the service logger with a bracketed prefix, e.g.
// "[CLEAN] ".
func NewLogger(prefix string) *log.Logger {
	return log.New(os.Stdout, "["+prefix+"] ", log.LstdFlags)
}

// Metrics is the pipeline's counter set on a private registry, so tests
// and repeated runs never fight over the default registry.
type Metrics struct {
	registry *prometheus.Registry

	RecordsTotal       prometheus.Counter
	RecordsKept        prometheus.Counter
	RecordsRejected    *prometheus.CounterVec
	RecordsSkipped     prometheus.Counter
	ClassifierDegraded *prometheus.CounterVec
	PIIMasked          *prometheus.CounterVec
}

// NewMetrics builds and registers the counter set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpusfilter_records_total",
			Help: "Records read from the input stream.",
		}),
		RecordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpusfilter_records_kept_total",
			Help: "Records that passed every gate and were emitted.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpusfilter_records_rejected_total",
			Help: "Records rejected, by gate.",
		}, []string{"gate"}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corpusfilter_records_skipped_total",
			Help: "Malformed input lines skipped.",
		}),
		ClassifierDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpusfilter_classifier_degraded_total",
			Help: "Classifier calls that degraded to the unknown/benign default.",
		}, []string{"stage"}),
		PIIMasked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpusfilter_pii_masked_total",
			Help: "PII replacements made, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.RecordsTotal, m.RecordsKept, m.RecordsRejected,
		m.RecordsSkipped, m.ClassifierDegraded, m.PIIMasked,
	)
	return m
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a /metrics listener on port until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, port int, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Printf("warn: metrics listener: %v", err)
	}
}
