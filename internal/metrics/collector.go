// Package metrics exposes the snapshot store as a Prometheus collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitbeans/kaco/internal/store"
)

// Collector reads the snapshot store on every scrape and emits one gauge
// set per inverter. It holds no state of its own: the store is the single
// source of truth, so scrapes always see the latest published snapshot
// (stale-but-valid while the device is unreachable).
type Collector struct {
	store store.Store

	voltageDesc  *prometheus.Desc
	currentDesc  *prometheus.Desc
	powerDesc    *prometheus.Desc
	maxPowerDesc *prometheus.Desc
	energyDesc   *prometheus.Desc
	tempDesc     *prometheus.Desc
	statusDesc   *prometheus.Desc
	failsDesc    *prometheus.Desc
	intervalDesc *prometheus.Desc
	infoDesc     *prometheus.Desc
}

// NewCollector creates a [Collector] over the given store.
func NewCollector(st store.Store) *Collector {
	return &Collector{
		store:        st,
		voltageDesc:  prometheus.NewDesc("kaco_voltage_volts", "Scaled voltage register", []string{"inverter", "channel"}, nil),
		currentDesc:  prometheus.NewDesc("kaco_current_amperes", "Scaled current register", []string{"inverter", "channel"}, nil),
		powerDesc:    prometheus.NewDesc("kaco_power_watts", "Aggregate feed-in power", []string{"inverter"}, nil),
		maxPowerDesc: prometheus.NewDesc("kaco_max_power_watts", "Running maximum of feed-in power", []string{"inverter"}, nil),
		energyDesc:   prometheus.NewDesc("kaco_energy_today_kwh", "Cumulative energy produced today", []string{"inverter"}, nil),
		tempDesc:     prometheus.NewDesc("kaco_temperature_celsius", "Internal unit temperature", []string{"inverter"}, nil),
		statusDesc:   prometheus.NewDesc("kaco_status_code", "Raw inverter state register", []string{"inverter", "status"}, nil),
		failsDesc:    prometheus.NewDesc("kaco_consecutive_failures", "Consecutive realtime poll failures", []string{"inverter"}, nil),
		intervalDesc: prometheus.NewDesc("kaco_poll_interval_seconds", "Current (possibly backed-off) poll interval", []string{"inverter"}, nil),
		infoDesc:     prometheus.NewDesc("kaco_inverter_info", "Inverter identity", []string{"inverter", "serial", "model"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.voltageDesc
	ch <- c.currentDesc
	ch <- c.powerDesc
	ch <- c.maxPowerDesc
	ch <- c.energyDesc
	ch <- c.tempDesc
	ch <- c.statusDesc
	ch <- c.failsDesc
	ch <- c.intervalDesc
	ch <- c.infoDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range c.store.GetAll() {
		name := snap.Name

		ch <- prometheus.MustNewConstMetric(c.voltageDesc, prometheus.GaugeValue, snap.GeneratorVoltage1, name, "generator_1")
		ch <- prometheus.MustNewConstMetric(c.voltageDesc, prometheus.GaugeValue, snap.GeneratorVoltage2, name, "generator_2")
		ch <- prometheus.MustNewConstMetric(c.voltageDesc, prometheus.GaugeValue, snap.GridVoltage1, name, "grid_l1")
		ch <- prometheus.MustNewConstMetric(c.voltageDesc, prometheus.GaugeValue, snap.GridVoltage2, name, "grid_l2")
		ch <- prometheus.MustNewConstMetric(c.voltageDesc, prometheus.GaugeValue, snap.GridVoltage3, name, "grid_l3")
		ch <- prometheus.MustNewConstMetric(c.currentDesc, prometheus.GaugeValue, snap.GeneratorCurrent1, name, "generator_1")
		ch <- prometheus.MustNewConstMetric(c.currentDesc, prometheus.GaugeValue, snap.GeneratorCurrent2, name, "generator_2")
		ch <- prometheus.MustNewConstMetric(c.currentDesc, prometheus.GaugeValue, snap.GridCurrent1, name, "grid_l1")
		ch <- prometheus.MustNewConstMetric(c.currentDesc, prometheus.GaugeValue, snap.GridCurrent2, name, "grid_l2")
		ch <- prometheus.MustNewConstMetric(c.currentDesc, prometheus.GaugeValue, snap.GridCurrent3, name, "grid_l3")

		ch <- prometheus.MustNewConstMetric(c.powerDesc, prometheus.GaugeValue, float64(snap.CurrentPower), name)
		ch <- prometheus.MustNewConstMetric(c.maxPowerDesc, prometheus.GaugeValue, float64(snap.MaxPower), name)
		ch <- prometheus.MustNewConstMetric(c.energyDesc, prometheus.GaugeValue, snap.EnergyToday, name)
		ch <- prometheus.MustNewConstMetric(c.tempDesc, prometheus.GaugeValue, snap.Temperature, name)
		ch <- prometheus.MustNewConstMetric(c.statusDesc, prometheus.GaugeValue, float64(snap.StatusCode), name, snap.Status)
		ch <- prometheus.MustNewConstMetric(c.failsDesc, prometheus.GaugeValue, float64(snap.ConsecutiveFailures), name)
		ch <- prometheus.MustNewConstMetric(c.intervalDesc, prometheus.GaugeValue, snap.NextIntervalSeconds, name)
		ch <- prometheus.MustNewConstMetric(c.infoDesc, prometheus.GaugeValue, 1, name, snap.Serial, snap.Model)
	}
}
