// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package metrics exposes a connection's reliability-layer bookkeeping
// (ack scoreboard depth, unacked/unwritten queue lengths, retransmit
// counts) as a prometheus.Collector, following the usual
// Describe/Collect shape for a per-connection stats exporter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source is implemented by *mozquic.Connection; it is defined here
// rather than imported to avoid a dependency from the root package back
// onto this one.
type Source interface {
	ScoreboardDepth() int
	UnackedLen() int
	UnwrittenLen() int
	RetransmitCount() uint64
	ConnectionIDHex() string
}

// ConnectionCollector reports one connection's reliability gauges.
type ConnectionCollector struct {
	conn Source

	scoreboardDepth  *prometheus.Desc
	unackedLen       *prometheus.Desc
	unwrittenLen     *prometheus.Desc
	retransmitCount  *prometheus.Desc
}

// NewConnectionCollector builds a collector for conn. labels are applied
// to every exported metric (typically {"connection_id": ...}).
func NewConnectionCollector(conn Source, constLabels prometheus.Labels) *ConnectionCollector {
	return &ConnectionCollector{
		conn: conn,
		scoreboardDepth: prometheus.NewDesc(
			"mozquic_ack_scoreboard_entries", "Number of coalesced ranges pending acknowledgement.", nil, constLabels),
		unackedLen: prometheus.NewDesc(
			"mozquic_unacked_chunks", "Chunks transmitted but not yet acknowledged.", nil, constLabels),
		unwrittenLen: prometheus.NewDesc(
			"mozquic_unwritten_chunks", "Chunks queued for their first or retransmitted send.", nil, constLabels),
		retransmitCount: prometheus.NewDesc(
			"mozquic_retransmits_total", "Chunks cloned for retransmission since the connection started.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *ConnectionCollector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.scoreboardDepth
	descs <- c.unackedLen
	descs <- c.unwrittenLen
	descs <- c.retransmitCount
}

// Collect implements prometheus.Collector.
func (c *ConnectionCollector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(c.scoreboardDepth, prometheus.GaugeValue, float64(c.conn.ScoreboardDepth()))
	metrics <- prometheus.MustNewConstMetric(c.unackedLen, prometheus.GaugeValue, float64(c.conn.UnackedLen()))
	metrics <- prometheus.MustNewConstMetric(c.unwrittenLen, prometheus.GaugeValue, float64(c.conn.UnwrittenLen()))
	metrics <- prometheus.MustNewConstMetric(c.retransmitCount, prometheus.CounterValue, float64(c.conn.RetransmitCount()))
}
