// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Status labels for event publishing.
const (
	StatusSuccess = "success"
	StatusDropped = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Parcel registry
	IncParcelCreated()
	IncParcelDeleted()
	IncParcelCacheHit()
	IncParcelCacheMiss()

	// Ledger
	IncTrackingUpdate()
	IncPaymentRecorded()
	IncPaymentFailed()

	// Payment processor
	IncIntentCreated()
	IncIntentFailed()

	// Lifecycle events
	IncEventPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
