// Package metric provides Prometheus metrics for calcmesh.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports build information and process uptime.
type Collector struct {
	version   string
	commit    string
	startedAt time.Time

	buildInfo *prometheus.Desc
	uptime    *prometheus.Desc
}

// NewCollector creates a collector reporting the given build.
func NewCollector(version, commit string) *Collector {
	return &Collector{
		version:   version,
		commit:    commit,
		startedAt: time.Now(),
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information, value is always 1.",
			[]string{"version", "commit"}, nil,
		),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "uptime_seconds"),
			"Seconds since the collector was created.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildInfo
	ch <- c.uptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1, c.version, c.commit)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.startedAt).Seconds())
}
