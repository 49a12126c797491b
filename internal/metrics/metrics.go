// Package metrics exposes pipeline stage counters for long-running
// extraction runs. Serving is optional; the recorder works standalone.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder tracks per-stage pipeline activity on its own registry, so
// repeated constructions (tests, reruns) never collide.
type Recorder struct {
	registry *prometheus.Registry

	stageRuns     *prometheus.CounterVec
	stageFailures *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	mapperOutcome *prometheus.CounterVec
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wrfexport_stage_runs_total",
				Help: "Pipeline stage executions",
			},
			[]string{"stage"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wrfexport_stage_failures_total",
				Help: "Pipeline stage failures",
			},
			[]string{"stage"},
		),
		stageDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wrfexport_stage_duration_seconds",
				Help: "Duration of the most recent run of each stage",
			},
			[]string{"stage"},
		),
		mapperOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wrfexport_mapper_outcomes_total",
				Help: "Mapper pipeline results by status (cached, fresh, recovered)",
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(r.stageRuns, r.stageFailures, r.stageDuration, r.mapperOutcome)
	return r
}

// ObserveStage records one stage execution.
func (r *Recorder) ObserveStage(stage string, d time.Duration, err error) {
	r.stageRuns.WithLabelValues(stage).Inc()
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
	if err != nil {
		r.stageFailures.WithLabelValues(stage).Inc()
	}
}

// ObserveMapperOutcome records how the mapper pipeline concluded.
func (r *Recorder) ObserveMapperOutcome(status string) {
	r.mapperOutcome.WithLabelValues(status).Inc()
}

// Handler serves the recorder's registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics and /healthz on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	router := mux.NewRouter()
	router.Handle("/metrics", r.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
