// Package aggregate computes grouped and ranked summaries over one
// in-memory case set. Every function is pure: no I/O, no shared state,
// empty input yields an empty summary slice.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/support-kit/case-assistant/internal/domain"
)

const (
	// UnassignedBucket labels cases without an assignee or queue.
	UnassignedBucket = "Unassigned"
	// UnknownPriorityBucket labels cases without a priority value.
	UnknownPriorityBucket = "Unknown"
)

// ByAssignee groups cases per assignee with workload statistics. Groups are
// ordered by count descending, ties by assignee name ascending
// case-insensitively.
func ByAssignee(cases []domain.Case) []domain.AssigneeAggregation {
	groups := make(map[string][]domain.Case)
	for _, c := range cases {
		assignee := c.AssignedTo
		if assignee == "" {
			assignee = UnassignedBucket
		}
		groups[assignee] = append(groups[assignee], c)
	}

	result := make([]domain.AssigneeAggregation, 0, len(groups))
	for assignee, group := range groups {
		agg := domain.AssigneeAggregation{
			Assignee:       assignee,
			Count:          len(group),
			AverageAgeDays: averageAge(group),
			Cases:          group,
		}
		oldest := 0
		for i := range group {
			if group[i].AgeDays > group[oldest].AgeDays {
				oldest = i
			}
		}
		agg.OldestCase = &group[oldest]
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return strings.ToLower(result[i].Assignee) < strings.ToLower(result[j].Assignee)
	})
	return result
}

// ByPriority groups cases by raw priority value, ordered by severity
// ordinal ascending with the unknown bucket last.
func ByPriority(cases []domain.Case) []domain.PriorityAggregation {
	groups := make(map[string][]domain.Case)
	for _, c := range cases {
		label := string(c.Priority)
		if label == "" {
			label = UnknownPriorityBucket
		}
		groups[label] = append(groups[label], c)
	}

	result := make([]domain.PriorityAggregation, 0, len(groups))
	for label, group := range groups {
		result = append(result, domain.PriorityAggregation{
			Priority: label,
			Count:    len(group),
			Cases:    group,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		ri, rj := priorityRank(result[i].Priority), priorityRank(result[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return result[i].Priority < result[j].Priority
	})
	return result
}

// ByQueue groups cases per assignment group, ordered by count descending,
// ties by queue name ascending case-insensitively.
func ByQueue(cases []domain.Case) []domain.QueueAggregation {
	groups := make(map[string][]domain.Case)
	for _, c := range cases {
		queue := c.AssignmentGroup
		if queue == "" {
			queue = UnassignedBucket
		}
		groups[queue] = append(groups[queue], c)
	}

	result := make([]domain.QueueAggregation, 0, len(groups))
	for queue, group := range groups {
		result = append(result, domain.QueueAggregation{
			Queue: queue,
			Count: len(group),
			Cases: group,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return strings.ToLower(result[i].Queue) < strings.ToLower(result[j].Queue)
	})
	return result
}

// FindOldest ranks cases by time open, oldest first. Cases without an
// opened timestamp sort last; ties break by case number ascending. At most
// limit summaries are returned.
func FindOldest(cases []domain.Case, limit int) []domain.OldestCaseSummary {
	if limit <= 0 {
		return []domain.OldestCaseSummary{}
	}

	sorted := make([]domain.Case, len(cases))
	copy(sorted, cases)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.OpenedAt == nil && b.OpenedAt == nil:
			return a.Number < b.Number
		case a.OpenedAt == nil:
			return false
		case b.OpenedAt == nil:
			return true
		case !a.OpenedAt.Equal(*b.OpenedAt):
			return a.OpenedAt.Before(*b.OpenedAt)
		}
		return a.Number < b.Number
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}
	result := make([]domain.OldestCaseSummary, 0, limit)
	for _, c := range sorted[:limit] {
		result = append(result, domain.OldestCaseSummary{Case: c, AgeDays: c.AgeDays})
	}
	return result
}

// FindStale selects cases whose last update is at least staleDays old. The
// boundary is inclusive; cases without an update timestamp are excluded
// rather than treated as infinitely stale. High-priority cases come first,
// then staler before fresher within each band.
func FindStale(cases []domain.Case, staleDays int) []domain.StaleCaseSummary {
	now := time.Now().UTC()
	result := make([]domain.StaleCaseSummary, 0)
	for _, c := range cases {
		if c.UpdatedOn == nil {
			continue
		}
		days := wholeDaysSince(now, *c.UpdatedOn)
		if days < staleDays {
			continue
		}
		result = append(result, domain.StaleCaseSummary{
			Case:           c,
			StaleDays:      days,
			AgeDays:        c.AgeDays,
			IsHighPriority: c.Priority.IsHigh(),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].IsHighPriority != result[j].IsHighPriority {
			return result[i].IsHighPriority
		}
		return result[i].StaleDays > result[j].StaleDays
	})
	return result
}

func averageAge(group []domain.Case) int {
	if len(group) == 0 {
		return 0
	}
	sum := 0
	for _, c := range group {
		sum += c.AgeDays
	}
	return int(math.Round(float64(sum) / float64(len(group))))
}

// priorityRank orders known ordinals first, then raw unrecognized values,
// then the unknown bucket.
func priorityRank(label string) int {
	if label == UnknownPriorityBucket {
		return 1 << 10
	}
	if ordinal := domain.CasePriority(label).Ordinal(); ordinal > 0 {
		return ordinal
	}
	return 1<<10 - 1
}

func wholeDaysSince(now, ts time.Time) int {
	days := int(now.Sub(ts).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
