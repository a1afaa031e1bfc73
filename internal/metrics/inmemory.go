package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ParcelsCreated    uint64
	ParcelsDeleted    uint64
	ParcelCacheHits   uint64
	ParcelCacheMisses uint64
	TrackingUpdates   uint64
	PaymentsRecorded  uint64
	PaymentsFailed    uint64
	IntentsCreated    uint64
	IntentsFailed     uint64
	EventsPublished   uint64
	EventsDropped     uint64
}

// InMemoryRecorder stores metrics in memory.
// It backs the /metrics endpoint and is used directly in tests.
type InMemoryRecorder struct {
	parcelsCreated    atomic.Uint64
	parcelsDeleted    atomic.Uint64
	parcelCacheHits   atomic.Uint64
	parcelCacheMisses atomic.Uint64
	trackingUpdates   atomic.Uint64
	paymentsRecorded  atomic.Uint64
	paymentsFailed    atomic.Uint64
	intentsCreated    atomic.Uint64
	intentsFailed     atomic.Uint64
	eventsPublished   atomic.Uint64
	eventsDropped     atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ParcelsCreated:    m.parcelsCreated.Load(),
		ParcelsDeleted:    m.parcelsDeleted.Load(),
		ParcelCacheHits:   m.parcelCacheHits.Load(),
		ParcelCacheMisses: m.parcelCacheMisses.Load(),
		TrackingUpdates:   m.trackingUpdates.Load(),
		PaymentsRecorded:  m.paymentsRecorded.Load(),
		PaymentsFailed:    m.paymentsFailed.Load(),
		IntentsCreated:    m.intentsCreated.Load(),
		IntentsFailed:     m.intentsFailed.Load(),
		EventsPublished:   m.eventsPublished.Load(),
		EventsDropped:     m.eventsDropped.Load(),
	}
}

func (m *InMemoryRecorder) IncParcelCreated() { m.parcelsCreated.Add(1) }
func (m *InMemoryRecorder) IncParcelDeleted() { m.parcelsDeleted.Add(1) }
func (m *InMemoryRecorder) IncParcelCacheHit() { m.parcelCacheHits.Add(1) }
func (m *InMemoryRecorder) IncParcelCacheMiss() { m.parcelCacheMisses.Add(1) }
func (m *InMemoryRecorder) IncTrackingUpdate() { m.trackingUpdates.Add(1) }
func (m *InMemoryRecorder) IncPaymentRecorded() { m.paymentsRecorded.Add(1) }
func (m *InMemoryRecorder) IncPaymentFailed() { m.paymentsFailed.Add(1) }
func (m *InMemoryRecorder) IncIntentCreated() { m.intentsCreated.Add(1) }
func (m *InMemoryRecorder) IncIntentFailed() { m.intentsFailed.Add(1) }

// IncEventPublished counts a publish attempt by outcome.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == StatusSuccess {
		m.eventsPublished.Add(1)
		return
	}
	m.eventsDropped.Add(1)
}
