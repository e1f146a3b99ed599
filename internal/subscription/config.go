package subscription

import "time"

// StartFrom sentinels for Config.StartFrom.
const (
	StartFromBeginning int64 = 0
	StartFromCurrent   int64 = -1
	// values >= 0 other than the sentinel above are explicit event numbers.
)

// Config is a finalized, immutable configuration value consumed by New. It
// replaces the source's builder pattern: construct it once with the desired
// fields set (zero values are filled from Default()'s corresponding field
// by the caller, or simply use Default() as a base) and pass it to New.
type Config struct {
	StreamName string
	GroupName  string

	// ResolveLinkTos instructs the event loader to resolve link events.
	ResolveLinkTos bool

	// StartFrom: 0 beginning, -1 current tail, n >= 0 explicit event number.
	// Only consulted when no checkpoint was ever persisted.
	StartFrom int64

	// Timeout is the in-flight ack deadline.
	Timeout time.Duration
	// MaxRetryCount is the number of timeouts/naks before an event is parked.
	MaxRetryCount int
	// LiveBufferSize caps the live segment of the event buffer.
	LiveBufferSize int
	// HistoryBufferSize caps the history segment of the event buffer.
	HistoryBufferSize int
	// ReadBatchSize is the count requested per history read.
	ReadBatchSize int
	// PreferRoundRobin selects the dispatch policy.
	PreferRoundRobin bool
	// LatencyStatistics enables dispatch-to-ack latency tracking per client.
	LatencyStatistics bool

	// CheckpointInterval: schedule a durable write after this many acks
	// since the last persisted value.
	CheckpointInterval int
	// CheckpointMaxDelay: schedule a durable write after this much time has
	// elapsed since the last persisted value, even if CheckpointInterval
	// acks haven't accumulated yet.
	CheckpointMaxDelay time.Duration
}

// Default returns the configuration defaults named in the design notes.
func Default() Config {
	return Config{
		Timeout:            30 * time.Second,
		ReadBatchSize:      500,
		LiveBufferSize:     500,
		HistoryBufferSize:  20,
		MaxRetryCount:      10,
		PreferRoundRobin:   true,
		StartFrom:          StartFromBeginning,
		CheckpointInterval: 100,
		CheckpointMaxDelay: time.Second,
	}
}

// SubscriptionID formats the engine's public identity as "{stream}:{group}".
func (c Config) SubscriptionID() string {
	return c.StreamName + ":" + c.GroupName
}

func (c Config) dispatchPolicy() DispatchPolicy {
	if c.PreferRoundRobin {
		return PreferRoundRobin
	}
	return PreferDispatchToSingle
}
