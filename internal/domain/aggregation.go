package domain

// Aggregation summaries are derived views over one in-memory case set.
// They are recomputed per call and never persisted.

// AssigneeAggregation is one per-assignee workload group.
type AssigneeAggregation struct {
	Assignee       string
	Count          int
	AverageAgeDays int
	OldestCase     *Case
	Cases          []Case
}

// PriorityAggregation is one per-priority group, keyed by the raw priority
// value (or the unknown bucket when absent).
type PriorityAggregation struct {
	Priority string
	Count    int
	Cases    []Case
}

// QueueAggregation is one per-assignment-group bucket.
type QueueAggregation struct {
	Queue string
	Count int
	Cases []Case
}

// OldestCaseSummary ranks a case by how long it has been open.
type OldestCaseSummary struct {
	Case    Case
	AgeDays int
}

// StaleCaseSummary flags a case that has gone without updates past a
// threshold. StaleDays counts whole days since the last update.
type StaleCaseSummary struct {
	Case           Case
	StaleDays      int
	AgeDays        int
	IsHighPriority bool
}
