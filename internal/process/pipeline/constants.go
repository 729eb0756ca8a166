package pipeline

import "time"

// Phase labels for run duration metrics.
const (
	phaseLoad  = "load"
	phaseRules = "rules"
	phaseAI    = "ai"
	phaseApply = "apply"
)

const (
	// DefaultDayDelay spaces consecutive confirmation calls.
	DefaultDayDelay = 500 * time.Millisecond

	// DefaultDeleteBatchSize is the number of IDs sent per delete call.
	DefaultDeleteBatchSize = 50
)

const (
	logKeyRunID    = "run_id"
	logKeyDay      = "day"
	logKeyLoaded   = "loaded"
	logKeyBuckets  = "buckets"
	logKeyRemoved  = "removed"
	logKeyTokens   = "tokens"
	logKeyFiltered = "filtered"
	logKeyBatch    = "batch"
	logKeyDeleted  = "deleted"
)
