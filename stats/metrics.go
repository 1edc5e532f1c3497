// Package stats exposes Prometheus metrics describing rows flowing through Sources and Sinks
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons used as the "reason" label of RowsSkipped
const (
	ReasonMalformed    = "malformed"
	ReasonExtraColumns = "extra_columns"
	ReasonEncode       = "encode"
)

// Metrics holds all Prometheus metrics for rowstream. A nil *Metrics records nothing.
type Metrics struct {
	RowsRead     *prometheus.CounterVec
	RowsWritten  *prometheus.CounterVec
	RowsSkipped  *prometheus.CounterVec
	Flushes      *prometheus.CounterVec
	DroppedCells *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	rowsRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstream_rows_read_total",
		Help: "Total rows returned by sources",
	}, []string{"codec"})

	rowsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstream_rows_written_total",
		Help: "Total rows encoded by sinks",
	}, []string{"codec"})

	rowsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstream_rows_skipped_total",
		Help: "Total rows skipped or rejected, by reason",
	}, []string{"codec", "reason"})

	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstream_flushes_total",
		Help: "Total periodic and final flushes performed by sinks",
	}, []string{"codec"})

	cellsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstream_cells_dropped_total",
		Help: "Total non-empty cells dropped by sinks because their column is not in the header",
	}, []string{"codec"})

	reg.MustRegister(rowsRead, rowsWritten, rowsSkipped, flushes, cellsDropped)

	return &Metrics{
		RowsRead:     rowsRead,
		RowsWritten:  rowsWritten,
		RowsSkipped:  rowsSkipped,
		Flushes:      flushes,
		DroppedCells: cellsDropped,
	}
}

// RowRead records a row returned by a source
func (m *Metrics) RowRead(codec string) {
	if m == nil {
		return
	}
	m.RowsRead.WithLabelValues(codec).Inc()
}

// RowWritten records a row encoded by a sink
func (m *Metrics) RowWritten(codec string) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(codec).Inc()
}

// RowSkipped records a row which was skipped or rejected
func (m *Metrics) RowSkipped(codec string, reason string) {
	if m == nil {
		return
	}
	m.RowsSkipped.WithLabelValues(codec, reason).Inc()
}

// Flushed records a sink flush
func (m *Metrics) Flushed(codec string) {
	if m == nil {
		return
	}
	m.Flushes.WithLabelValues(codec).Inc()
}

// CellsDropped records cells a sink could not write, without rejecting their row
func (m *Metrics) CellsDropped(codec string, n int) {
	if m == nil {
		return
	}
	m.DroppedCells.WithLabelValues(codec).Add(float64(n))
}
