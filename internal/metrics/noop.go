package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncParcelCreated() {}
func (n *NoopRecorder) IncParcelDeleted() {}
func (n *NoopRecorder) IncParcelCacheHit() {}
func (n *NoopRecorder) IncParcelCacheMiss() {}
func (n *NoopRecorder) IncTrackingUpdate() {}
func (n *NoopRecorder) IncPaymentRecorded() {}
func (n *NoopRecorder) IncPaymentFailed() {}
func (n *NoopRecorder) IncIntentCreated() {}
func (n *NoopRecorder) IncIntentFailed() {}
func (n *NoopRecorder) IncEventPublished(_ string) {}
