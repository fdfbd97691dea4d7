// Package metrics exposes simulator state as Prometheus gauges written to a
// node-exporter textfile. Values are polled from the simulator's accessors.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orrn/printsim/internal/core"
)

type Collector struct {
	registry *prometheus.Registry

	clock        prometheus.Gauge
	speed        prometheus.Gauge
	busy         prometheus.Gauge
	jobs         *prometheus.GaugeVec
	submitted    prometheus.Gauge
	meanWait     prometheus.Gauge
	meanDuration prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_clock_seconds",
			Help: "Simulated clock.",
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_speed_seconds_per_page",
			Help: "Printing cost per page.",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_busy",
			Help: "1 while a job is printing.",
		}),
		jobs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "printsim_jobs",
			Help: "Jobs by state.",
		}, []string{"state"}),
		submitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_jobs_submitted",
			Help: "Ids issued so far, cancelled jobs included.",
		}),
		meanWait: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_mean_wait_seconds",
			Help: "Mean wait time of completed jobs.",
		}),
		meanDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "printsim_mean_duration_seconds",
			Help: "Mean printing time of completed jobs.",
		}),
	}

	c.registry.MustRegister(c.clock, c.speed, c.busy, c.jobs, c.submitted, c.meanWait, c.meanDuration)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Update(sim *core.Simulator) {
	stats := sim.Stats()

	c.clock.Set(float64(sim.Clock()))
	c.speed.Set(sim.Speed())
	c.busy.Set(0)
	running := 0
	if sim.Busy() {
		c.busy.Set(1)
		running = 1
	}
	c.jobs.WithLabelValues(string(core.JobStatusWaiting)).Set(float64(sim.QueueLen()))
	c.jobs.WithLabelValues(string(core.JobStatusRunning)).Set(float64(running))
	c.jobs.WithLabelValues(string(core.JobStatusDone)).Set(float64(stats.Done))
	c.submitted.Set(float64(sim.NextID() - 1))
	c.meanWait.Set(stats.MeanWait)
	c.meanDuration.Set(stats.MeanDuration)
}

// WriteTextfile writes the current values in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
