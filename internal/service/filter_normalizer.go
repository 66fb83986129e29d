package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/repository"
	"github.com/support-kit/case-assistant/internal/servicenow"
)

const (
	// DefaultSearchLimit applies when a caller sends no usable limit.
	DefaultSearchLimit = 25
	// MaxSearchLimit caps one page regardless of what the caller asks for.
	MaxSearchLimit = 50
)

// dateLayouts are the accepted inputs for loose date filters.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	servicenow.DateTimeLayout,
}

// FilterNormalizer turns raw filter input into canonical search criteria.
// Malformed optional fields are dropped, never surfaced as errors: a bad
// date must not abort the whole search.
type FilterNormalizer struct {
	logger *zap.Logger
}

// NewFilterNormalizer constructs the normalizer.
func NewFilterNormalizer(logger *zap.Logger) *FilterNormalizer {
	return &FilterNormalizer{logger: logger}
}

// Normalize produces criteria with clamped paging, validated sort keys and
// parsed date bounds. It never fails.
func (n *FilterNormalizer) Normalize(filters domain.SearchFilters) repository.SearchCriteria {
	criteria := repository.SearchCriteria{
		CustomerName:    strings.TrimSpace(filters.CustomerName),
		CompanyName:     strings.TrimSpace(filters.CompanyName),
		Query:           strings.TrimSpace(filters.Query),
		AssignmentGroup: strings.TrimSpace(filters.AssignmentGroup),
		AssignedTo:      strings.TrimSpace(filters.AssignedTo),
		Priority:        strings.TrimSpace(filters.Priority),
		State:           strings.TrimSpace(filters.State),

		ActiveOnly:          filters.ActiveOnly,
		SysDomain:           strings.TrimSpace(filters.SysDomain),
		IncludeChildDomains: filters.IncludeChildDomains,

		SortBy:    domain.SortByOpenedAt,
		SortOrder: domain.SortDesc,
		Limit:     clampLimit(filters.Limit),
		Offset:    clampOffset(filters.Offset),
	}

	if filters.SortBy.Valid() {
		criteria.SortBy = filters.SortBy
	}
	if filters.SortOrder.Valid() {
		criteria.SortOrder = filters.SortOrder
	}

	criteria.OpenedAfter = n.parseDateFilter("openedAfter", filters.OpenedAfter)
	criteria.OpenedBefore = n.parseDateFilter("openedBefore", filters.OpenedBefore)
	criteria.UpdatedAfter = n.parseDateFilter("updatedAfter", filters.UpdatedAfter)
	criteria.UpdatedBefore = n.parseDateFilter("updatedBefore", filters.UpdatedBefore)
	criteria.ResolvedAfter = n.parseDateFilter("resolvedAfter", filters.ResolvedAfter)
	criteria.ResolvedBefore = n.parseDateFilter("resolvedBefore", filters.ResolvedBefore)
	criteria.ClosedAfter = n.parseDateFilter("closedAfter", filters.ClosedAfter)
	criteria.ClosedBefore = n.parseDateFilter("closedBefore", filters.ClosedBefore)

	return criteria
}

// parseDateFilter drops a value that is not a valid calendar date, logging
// a warning so the dropped constraint is visible in traces.
func (n *FilterNormalizer) parseDateFilter(field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &ts
		}
	}
	n.logger.Warn("dropping unparseable date filter",
		zap.String("field", field),
		zap.String("value", value),
	)
	return nil
}

func clampLimit(requested int) int {
	if requested < 1 {
		return DefaultSearchLimit
	}
	if requested > MaxSearchLimit {
		return MaxSearchLimit
	}
	return requested
}

func clampOffset(requested int) int {
	if requested < 0 {
		return 0
	}
	return requested
}
