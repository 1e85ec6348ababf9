package metrics

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or
// propagate errors. If the metrics backend is unavailable, implementations
// log warnings and continue.
type Sink interface {
	// Ingest path
	IngestAccepted()
	IngestRejected(reason string)

	// Secondary-effect drift that operators reconcile by hand
	ConsistencyWarning(kind string)

	// Fan-out hub
	FanoutEvent()
	FanoutDropped()
	FanoutConsumers(n int)

	// Outbox worker
	OutboxRetry(jobType string)
	OutboxDeadLetter(jobType string)

	// Document expiry scan
	DocumentsExpiring(n int)
}

// Rejection reasons for IngestRejected.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonBadRequest   = "bad_request"
	ReasonNoVehicle    = "no_vehicle"
)

// ConsistencyWarning kinds.
const (
	WarnHistoryEnqueue = "history_enqueue"
	WarnCacheWrite     = "cache_write"
	WarnFanoutPublish  = "fanout_publish"
)

type noopSink struct{}

// Noop returns a sink that discards every observation.
func Noop() Sink { return noopSink{} }

func (noopSink) IngestAccepted()           {}
func (noopSink) IngestRejected(string)     {}
func (noopSink) ConsistencyWarning(string) {}
func (noopSink) FanoutEvent()              {}
func (noopSink) FanoutDropped()            {}
func (noopSink) FanoutConsumers(int)       {}
func (noopSink) OutboxRetry(string)        {}
func (noopSink) OutboxDeadLetter(string)   {}
func (noopSink) DocumentsExpiring(int)     {}
