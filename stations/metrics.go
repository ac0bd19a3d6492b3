/*
NAME
  metrics.go - Prometheus collection over the station aggregator.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
)

// Collector exposes an Aggregator's counters as Prometheus metrics.
// Each capture session carries a unique session label so restarts are
// distinguishable on the scrape side.
type Collector struct {
	agg *Aggregator

	packets  *prometheus.Desc
	bad      *prometheus.Desc
	traffic  *prometheus.Desc
}

// NewCollector returns a Collector over agg.
func NewCollector(agg *Aggregator) *Collector {
	session := xid.New().String()
	constLabels := prometheus.Labels{"session": session}
	return &Collector{
		agg: agg,
		packets: prometheus.NewDesc(
			"wifi_packets_total",
			"Frames decoded from the capture stream.",
			nil, constLabels,
		),
		bad: prometheus.NewDesc(
			"wifi_bad_fcs_total",
			"Decoded frames marked bad: FCS check failed or no radiotap flags captured.",
			nil, constLabels,
		),
		traffic: prometheus.NewDesc(
			"wifi_station_packets_total",
			"Data frames per access point, station and direction.",
			[]string{"ap", "station", "dir"}, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.packets
	descs <- c.bad
	descs <- c.traffic
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.agg.mu.Lock()
	defer c.agg.mu.Unlock()

	metrics <- prometheus.MustNewConstMetric(c.packets, prometheus.CounterValue, float64(c.agg.packets))
	metrics <- prometheus.MustNewConstMetric(c.bad, prometheus.CounterValue, float64(c.agg.bad))
	for apMAC, ent := range c.agg.aps {
		for staMAC, sd := range ent.stations {
			metrics <- prometheus.MustNewConstMetric(c.traffic, prometheus.CounterValue,
				float64(total(sd.PacketsTX)), apMAC, staMAC, "up")
			metrics <- prometheus.MustNewConstMetric(c.traffic, prometheus.CounterValue,
				float64(total(sd.PacketsRX)), apMAC, staMAC, "down")
		}
	}
}
