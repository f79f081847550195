// Package metrics exposes runtime counters and gauges to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielpatrickdp/narsvm/internal/navm"
)

const namespace = "narsvm"

// Metrics holds the collectors for one runtime.
type Metrics struct {
	cycles     prometheus.Counter
	commands   *prometheus.CounterVec
	outputs    *prometheus.CounterVec
	concepts   prometheus.Gauge
	newTasks   prometheus.Gauge
	novelTasks prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cycles_total",
			Help: "Work cycles run.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "commands_total",
			Help: "Commands executed, by verb.",
		}, []string{"verb"}),
		outputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outputs_total",
			Help: "Outputs emitted, by type.",
		}, []string{"type"}),
		concepts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "concepts",
			Help: "Concepts in memory.",
		}),
		newTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "new_tasks",
			Help: "Tasks waiting in the new-task queue.",
		}),
		novelTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "novel_tasks",
			Help: "Tasks waiting in the novel-task bag.",
		}),
	}
	for _, c := range []prometheus.Collector{m.cycles, m.commands, m.outputs, m.concepts, m.newTasks, m.novelTasks} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveCommand counts one command and the cycles it advanced.
func (m *Metrics) ObserveCommand(verb navm.Verb, cycles int64) {
	m.commands.WithLabelValues(string(verb)).Inc()
	if cycles > 0 {
		m.cycles.Add(float64(cycles))
	}
}

// ObserveOutputs counts outputs by type.
func (m *Metrics) ObserveOutputs(outs []navm.Output) {
	for _, o := range outs {
		m.outputs.WithLabelValues(string(o.Type)).Inc()
	}
}

// ObserveState sets the memory gauges.
func (m *Metrics) ObserveState(concepts, newTasks, novelTasks int) {
	m.concepts.Set(float64(concepts))
	m.newTasks.Set(float64(newTasks))
	m.novelTasks.Set(float64(novelTasks))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
