package dto

// WorkloadRequest payload. GroupBy selects the aggregation dimension:
// assignee, priority, or queue.
type WorkloadRequest struct {
	SearchFiltersPayload
	GroupBy string `json:"group_by"`
}

// AssigneeWorkloadResponse is one per-assignee group.
type AssigneeWorkloadResponse struct {
	Assignee       string         `json:"assignee"`
	Count          int            `json:"count"`
	AverageAgeDays int            `json:"average_age_days"`
	OldestCase     *CaseResponse  `json:"oldest_case,omitempty"`
	Cases          []CaseResponse `json:"cases"`
}

// PriorityWorkloadResponse is one per-priority group.
type PriorityWorkloadResponse struct {
	Priority string         `json:"priority"`
	Count    int            `json:"count"`
	Cases    []CaseResponse `json:"cases"`
}

// QueueWorkloadResponse is one per-assignment-group bucket.
type QueueWorkloadResponse struct {
	Queue string         `json:"queue"`
	Count int            `json:"count"`
	Cases []CaseResponse `json:"cases"`
}

// WorkloadResponse payload. Exactly one of the group slices is populated,
// matching group_by.
type WorkloadResponse struct {
	GroupBy    string                     `json:"group_by"`
	TotalCases int                        `json:"total_cases"`
	Assignees  []AssigneeWorkloadResponse `json:"assignees,omitempty"`
	Priorities []PriorityWorkloadResponse `json:"priorities,omitempty"`
	Queues     []QueueWorkloadResponse    `json:"queues,omitempty"`
}
