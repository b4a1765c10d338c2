// SPDX-License-Identifier: MIT

// Package metrics exposes the prometheus collectors for the render service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RenderStartTotal counts render admissions by mode.
	RenderStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renderd_render_start_total",
		Help: "Total number of render starts by mode",
	}, []string{"mode"})

	// RenderExitTotal counts render completions by mode and result.
	RenderExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "renderd_render_exit_total",
		Help: "Total number of render completions by mode and result",
	}, []string{"mode", "result"})

	// RenderDuration tracks wall-clock engine runtime per mode.
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "renderd_render_duration_seconds",
		Help:    "Engine runtime per render",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180, 300, 600},
	}, []string{"mode"})

	// AssetFetchTotal counts remote asset downloads that actually hit the
	// network. Cache and single-flight hits do not increment it.
	AssetFetchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renderd_asset_fetch_total",
		Help: "Total number of remote asset downloads performed",
	})

	// FileRequestDeniedTotal counts media file requests rejected by the
	// path containment check.
	FileRequestDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renderd_file_request_denied_total",
		Help: "Total number of media file requests denied",
	})
)

// IncRenderStart records one render admission.
func IncRenderStart(mode string) {
	RenderStartTotal.WithLabelValues(mode).Inc()
}

// IncRenderExit records one render completion outcome.
func IncRenderExit(mode, result string) {
	RenderExitTotal.WithLabelValues(mode, result).Inc()
}

// ObserveRenderDuration records the engine runtime for one render.
func ObserveRenderDuration(mode string, d time.Duration) {
	RenderDuration.WithLabelValues(mode).Observe(d.Seconds())
}
