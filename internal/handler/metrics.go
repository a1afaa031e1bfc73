package handler

import (
	"fmt"
	"net/http"

	"github.com/parceltrack/parceltrack/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "parceltrack_parcels_created_total %d\n", snap.ParcelsCreated)
	writeMetric(w, "parceltrack_parcels_deleted_total %d\n", snap.ParcelsDeleted)
	writeMetric(w, "parceltrack_parcel_cache_hits_total %d\n", snap.ParcelCacheHits)
	writeMetric(w, "parceltrack_parcel_cache_misses_total %d\n", snap.ParcelCacheMisses)

	writeMetric(w, "parceltrack_tracking_updates_total %d\n", snap.TrackingUpdates)
	writeMetric(w, "parceltrack_payments_total{status=\"recorded\"} %d\n", snap.PaymentsRecorded)
	writeMetric(w, "parceltrack_payments_total{status=\"failed\"} %d\n", snap.PaymentsFailed)

	writeMetric(w, "parceltrack_payment_intents_total{status=\"created\"} %d\n", snap.IntentsCreated)
	writeMetric(w, "parceltrack_payment_intents_total{status=\"failed\"} %d\n", snap.IntentsFailed)

	writeMetric(w, "parceltrack_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "parceltrack_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
