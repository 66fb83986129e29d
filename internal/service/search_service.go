package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/events"
	"github.com/support-kit/case-assistant/internal/observability"
	"github.com/support-kit/case-assistant/internal/repository"
	"github.com/support-kit/case-assistant/internal/servicenow"
)

const (
	// DefaultStaleDays is the staleness threshold used when a caller
	// supplies none.
	DefaultStaleDays = 7

	defaultSuggestLimit = 10
)

// NoFiltersApplied is the fixed summary for an empty filter set. Callers
// compare against it when deduplicating filter chips, so the literal must
// stay stable.
const NoFiltersApplied = "No filters applied"

// CaseSearchService orchestrates case searches: it normalizes filters,
// queries the case store, computes pagination metadata, and exposes the
// convenience queries built on top of the generic search.
//
// Search calls never return an error. A data-source failure is logged and
// absorbed; the caller sees an empty, well-formed result instead.
type CaseSearchService struct {
	cases       repository.CaseRepository
	accounts    repository.AccountRepository
	suggestions repository.SuggestionCache
	normalizer  *FilterNormalizer
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// SearchDependencies bundles collaborators for the search service.
type SearchDependencies struct {
	CaseRepo        repository.CaseRepository
	AccountRepo     repository.AccountRepository
	SuggestionCache repository.SuggestionCache
	Normalizer      *FilterNormalizer
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// NewCaseSearchService constructs the service.
func NewCaseSearchService(deps SearchDependencies) *CaseSearchService {
	if deps.Normalizer == nil {
		deps.Normalizer = NewFilterNormalizer(deps.Logger)
	}
	return &CaseSearchService{
		cases:       deps.CaseRepo,
		accounts:    deps.AccountRepo,
		suggestions: deps.SuggestionCache,
		normalizer:  deps.Normalizer,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// SearchWithMetadata runs one search and attaches pagination metadata.
// TotalFound is the store's count when it reports one; otherwise it falls
// back to offset+len(cases), which can under-report the remainder. The
// fallback is a known degradation kept for predictability.
func (s *CaseSearchService) SearchWithMetadata(ctx context.Context, filters domain.SearchFilters) domain.SearchResult {
	criteria := s.normalizer.Normalize(filters)
	applied := echoFilters(criteria)

	outcome, err := s.cases.Search(ctx, criteria)
	if err != nil {
		summary := s.BuildFilterSummary(applied)
		s.logger.Error("case search failed",
			zap.Error(err),
			zap.String("filters", summary),
		)
		s.metrics.RecordSearch(true)
		s.publishEvent(ctx, events.Event{
			Type: events.EventSearchDegraded,
			Payload: events.SearchDegradedPayload{
				Reason:        err.Error(),
				FilterSummary: summary,
			},
		})
		return emptyResult(applied)
	}

	total := outcome.Total
	if !outcome.TotalKnown {
		total = criteria.Offset + len(outcome.Cases)
	}

	result := domain.SearchResult{
		Cases:          outcome.Cases,
		TotalFound:     total,
		AppliedFilters: applied,
		HasMore:        criteria.Offset+len(outcome.Cases) < total,
	}
	if result.HasMore {
		next := criteria.Offset + criteria.Limit
		result.NextOffset = &next
	}
	s.metrics.RecordSearch(false)
	return result
}

// FindStaleCases returns active cases untouched for at least staleDays,
// least recently updated first. Finding any publishes an escalation event.
func (s *CaseSearchService) FindStaleCases(ctx context.Context, staleDays, limit int) []domain.Case {
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}
	cutoff := time.Now().UTC().Add(-time.Duration(staleDays) * 24 * time.Hour)

	result := s.SearchWithMetadata(ctx, domain.SearchFilters{
		ActiveOnly:    true,
		UpdatedBefore: cutoff.Format(servicenow.DateTimeLayout),
		SortBy:        domain.SortByUpdatedOn,
		SortOrder:     domain.SortAsc,
		Limit:         limit,
	})

	if len(result.Cases) > 0 {
		high := 0
		for _, c := range result.Cases {
			if c.Priority.IsHigh() {
				high++
			}
		}
		s.publishEvent(ctx, events.Event{
			Type: events.EventStaleCasesDetected,
			Payload: events.StaleCasesDetectedPayload{
				StaleDays:    staleDays,
				Total:        len(result.Cases),
				HighPriority: high,
			},
		})
	}
	return result.Cases
}

// FindOldestCases returns the longest-open active cases, oldest first.
func (s *CaseSearchService) FindOldestCases(ctx context.Context, limit int) []domain.Case {
	result := s.SearchWithMetadata(ctx, domain.SearchFilters{
		ActiveOnly: true,
		SortBy:     domain.SortByOpenedAt,
		SortOrder:  domain.SortAsc,
		Limit:      limit,
	})
	return result.Cases
}

// BuildFilterSummary renders the present filters in a fixed order. The
// ordering keeps the output stable across calls for identical filters.
func (s *CaseSearchService) BuildFilterSummary(filters domain.SearchFilters) string {
	parts := make([]string, 0, 8)
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Customer", filters.CustomerName)
	add("Company", filters.CompanyName)
	add("Queue", filters.AssignmentGroup)
	add("Assignee", filters.AssignedTo)
	add("Priority", filters.Priority)
	add("State", filters.State)
	add("Keyword", filters.Query)
	add("Opened after", filters.OpenedAfter)
	add("Opened before", filters.OpenedBefore)
	add("Updated after", filters.UpdatedAfter)
	add("Updated before", filters.UpdatedBefore)
	add("Resolved after", filters.ResolvedAfter)
	add("Resolved before", filters.ResolvedBefore)
	add("Closed after", filters.ClosedAfter)
	add("Closed before", filters.ClosedBefore)
	if filters.SysDomain != "" {
		value := filters.SysDomain
		if filters.IncludeChildDomains {
			value += " +children"
		}
		add("Domain", value)
	}

	if len(parts) == 0 {
		return NoFiltersApplied
	}
	return strings.Join(parts, " | ")
}

// SuggestCustomerNames resolves a partial customer name to known account
// names. Lookup failures yield an empty slice, never an error.
func (s *CaseSearchService) SuggestCustomerNames(ctx context.Context, partial string, limit int) []string {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	if s.suggestions != nil {
		if names, ok := s.suggestions.Get(ctx, partial, limit); ok {
			return names
		}
	}

	accounts, err := s.accounts.SearchByName(ctx, partial, limit)
	if err != nil {
		s.logger.Warn("customer suggestion lookup failed",
			zap.String("partial", partial),
			zap.Error(err),
		)
		return []string{}
	}

	seen := make(map[string]struct{}, len(accounts))
	names := make([]string, 0, len(accounts))
	for _, account := range accounts {
		if _, dup := seen[account.Name]; dup {
			continue
		}
		seen[account.Name] = struct{}{}
		names = append(names, account.Name)
		if len(names) == limit {
			break
		}
	}

	if s.suggestions != nil {
		s.suggestions.Set(ctx, partial, limit, names)
	}
	return names
}

// echoFilters renders the criteria actually queried back into the loose
// filter shape so results report what was used, not what was asked.
func echoFilters(criteria repository.SearchCriteria) domain.SearchFilters {
	return domain.SearchFilters{
		CustomerName:    criteria.CustomerName,
		CompanyName:     criteria.CompanyName,
		Query:           criteria.Query,
		AssignmentGroup: criteria.AssignmentGroup,
		AssignedTo:      criteria.AssignedTo,
		Priority:        criteria.Priority,
		State:           criteria.State,

		OpenedAfter:    formatBound(criteria.OpenedAfter),
		OpenedBefore:   formatBound(criteria.OpenedBefore),
		UpdatedAfter:   formatBound(criteria.UpdatedAfter),
		UpdatedBefore:  formatBound(criteria.UpdatedBefore),
		ResolvedAfter:  formatBound(criteria.ResolvedAfter),
		ResolvedBefore: formatBound(criteria.ResolvedBefore),
		ClosedAfter:    formatBound(criteria.ClosedAfter),
		ClosedBefore:   formatBound(criteria.ClosedBefore),

		ActiveOnly:          criteria.ActiveOnly,
		SysDomain:           criteria.SysDomain,
		IncludeChildDomains: criteria.IncludeChildDomains,

		SortBy:    criteria.SortBy,
		SortOrder: criteria.SortOrder,
		Limit:     criteria.Limit,
		Offset:    criteria.Offset,
	}
}

func formatBound(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(servicenow.DateTimeLayout)
}

func emptyResult(applied domain.SearchFilters) domain.SearchResult {
	return domain.SearchResult{
		Cases:          []domain.Case{},
		TotalFound:     0,
		AppliedFilters: applied,
		HasMore:        false,
	}
}

func (s *CaseSearchService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}
