package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaleCasesDetected EventType = "stale_cases_detected"
	EventSearchDegraded     EventType = "search_degraded"
)

// Event represents an in-process event emitted by the search service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StaleCasesDetectedPayload reports the outcome of a staleness sweep.
type StaleCasesDetectedPayload struct {
	StaleDays    int `json:"stale_days"`
	Total        int `json:"total"`
	HighPriority int `json:"high_priority"`
}

// SearchDegradedPayload reports a search the error firewall absorbed.
type SearchDegradedPayload struct {
	Reason        string `json:"reason"`
	FilterSummary string `json:"filter_summary"`
}
