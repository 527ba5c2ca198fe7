package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "attendance"

// Metrics holds the application counters. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	checkIns          *prometheus.CounterVec
	checkOuts         *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	reconcileRuns     *prometheus.CounterVec
	absencesCreated   prometheus.Counter
	absenceDuplicates prometheus.Counter
}

// New registers the counters together with the Go and process collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_ins_total",
			Help:      "Check-ins recorded, by resulting status.",
		}, []string{"status"}),
		checkOuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_outs_total",
			Help:      "Check-outs recorded, by half-day flag.",
		}, []string{"half_day"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mark_rejections_total",
			Help:      "Mark attendance requests refused by policy, by reason.",
		}, []string{"reason"}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Absence sweeps executed, by outcome.",
		}, []string{"outcome"}),
		absencesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "absences_created_total",
			Help:      "Absent records written by the reconciler.",
		}),
		absenceDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "absence_duplicates_total",
			Help:      "Absent inserts skipped because a record already existed.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkIns,
		m.checkOuts,
		m.rejections,
		m.reconcileRuns,
		m.absencesCreated,
		m.absenceDuplicates,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CheckIn(status string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(status).Inc()
}

func (m *Metrics) CheckOut(halfDay bool) {
	if m == nil {
		return
	}
	m.checkOuts.WithLabelValues(strconv.FormatBool(halfDay)).Inc()
}

func (m *Metrics) Rejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// ReconcileRun records one sweep. outcome is "ok", "partial" or "error".
func (m *Metrics) ReconcileRun(outcome string, created, duplicates int) {
	if m == nil {
		return
	}
	m.reconcileRuns.WithLabelValues(outcome).Inc()
	m.absencesCreated.Add(float64(created))
	m.absenceDuplicates.Add(float64(duplicates))
}
