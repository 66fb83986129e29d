package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/events"
	"github.com/support-kit/case-assistant/internal/repository"
	"github.com/support-kit/case-assistant/internal/service"
)

type fakeCaseRepo struct {
	outcome      *repository.SearchOutcome
	err          error
	lastCriteria repository.SearchCriteria
	calls        int
}

func (f *fakeCaseRepo) Search(_ context.Context, criteria repository.SearchCriteria) (*repository.SearchOutcome, error) {
	f.lastCriteria = criteria
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

type fakeAccountRepo struct {
	accounts []repository.Account
	err      error
	calls    int
}

func (f *fakeAccountRepo) SearchByName(_ context.Context, _ string, _ int) ([]repository.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

type fakeSuggestionCache struct {
	hit      []string
	hitOK    bool
	setCalls int
	lastSet  []string
}

func (f *fakeSuggestionCache) Get(_ context.Context, _ string, _ int) ([]string, bool) {
	return f.hit, f.hitOK
}

func (f *fakeSuggestionCache) Set(_ context.Context, _ string, _ int, names []string) {
	f.setCalls++
	f.lastSet = names
}

func makeCases(n int) []domain.Case {
	cases := make([]domain.Case, 0, n)
	for i := 0; i < n; i++ {
		cases = append(cases, domain.Case{SysID: "sys", Number: "CS"})
	}
	return cases
}

func newSearchService(repo repository.CaseRepository, accounts repository.AccountRepository, cache repository.SuggestionCache, dispatcher events.Dispatcher) *service.CaseSearchService {
	return service.NewCaseSearchService(service.SearchDependencies{
		CaseRepo:        repo,
		AccountRepo:     accounts,
		SuggestionCache: cache,
		Dispatcher:      dispatcher,
		Logger:          zap.NewNop(),
	})
}

func TestSearchWithMetadataReportsMorePages(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{
		Cases:      makeCases(25),
		Total:      100,
		TotalKnown: true,
	}}
	svc := newSearchService(repo, nil, nil, nil)

	result := svc.SearchWithMetadata(context.Background(), domain.SearchFilters{})

	require.Equal(t, 100, result.TotalFound)
	require.True(t, result.HasMore)
	require.NotNil(t, result.NextOffset)
	require.Equal(t, 25, *result.NextOffset)
}

func TestSearchWithMetadataLastPage(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{
		Cases:      makeCases(25),
		Total:      100,
		TotalKnown: true,
	}}
	svc := newSearchService(repo, nil, nil, nil)

	result := svc.SearchWithMetadata(context.Background(), domain.SearchFilters{Offset: 75})

	require.Equal(t, 100, result.TotalFound)
	require.False(t, result.HasMore)
	require.Nil(t, result.NextOffset)
}

func TestSearchWithMetadataTotalFallback(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{
		Cases:      makeCases(10),
		TotalKnown: false,
	}}
	svc := newSearchService(repo, nil, nil, nil)

	result := svc.SearchWithMetadata(context.Background(), domain.SearchFilters{Offset: 50, Limit: 25})

	// Without an authoritative count the total degrades to what was seen.
	require.Equal(t, 60, result.TotalFound)
	require.False(t, result.HasMore)
	require.Nil(t, result.NextOffset)
}

func TestSearchWithMetadataAbsorbsRepositoryErrors(t *testing.T) {
	repo := &fakeCaseRepo{err: errors.New("upstream 503")}
	dispatcher := events.NewInMemoryDispatcher()
	var degraded []events.Event
	dispatcher.Subscribe(events.EventSearchDegraded, func(_ context.Context, e events.Event) error {
		degraded = append(degraded, e)
		return nil
	})
	svc := newSearchService(repo, nil, nil, dispatcher)

	result := svc.SearchWithMetadata(context.Background(), domain.SearchFilters{CustomerName: "Acme"})

	require.NotNil(t, result.Cases)
	require.Empty(t, result.Cases)
	require.Zero(t, result.TotalFound)
	require.False(t, result.HasMore)
	require.Nil(t, result.NextOffset)
	require.Equal(t, "Acme", result.AppliedFilters.CustomerName)

	require.Len(t, degraded, 1)
	payload, ok := degraded[0].Payload.(events.SearchDegradedPayload)
	require.True(t, ok)
	require.Contains(t, payload.Reason, "upstream 503")
	require.Contains(t, payload.FilterSummary, "Customer: Acme")
}

func TestSearchWithMetadataEchoesNormalizedFilters(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{Cases: makeCases(1), Total: 1, TotalKnown: true}}
	svc := newSearchService(repo, nil, nil, nil)

	result := svc.SearchWithMetadata(context.Background(), domain.SearchFilters{
		CustomerName: "  Acme  ",
		OpenedAfter:  "2026-01-15",
		SortBy:       "nonsense",
		Limit:        500,
		Offset:       -3,
	})

	applied := result.AppliedFilters
	require.Equal(t, "Acme", applied.CustomerName)
	require.Equal(t, "2026-01-15 00:00:00", applied.OpenedAfter)
	require.Equal(t, domain.SortByOpenedAt, applied.SortBy)
	require.Equal(t, domain.SortDesc, applied.SortOrder)
	require.Equal(t, 50, applied.Limit)
	require.Equal(t, 0, applied.Offset)
}

func TestFindStaleCasesForcesStaleCriteria(t *testing.T) {
	stale := []domain.Case{
		{Number: "CS001", Priority: domain.CasePriorityCritical},
		{Number: "CS002", Priority: domain.CasePriorityLow},
	}
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{Cases: stale, Total: 2, TotalKnown: true}}
	dispatcher := events.NewInMemoryDispatcher()
	var detected []events.Event
	dispatcher.Subscribe(events.EventStaleCasesDetected, func(_ context.Context, e events.Event) error {
		detected = append(detected, e)
		return nil
	})
	svc := newSearchService(repo, nil, nil, dispatcher)

	got := svc.FindStaleCases(context.Background(), 14, 10)

	require.Len(t, got, 2)
	criteria := repo.lastCriteria
	require.True(t, criteria.ActiveOnly)
	require.Equal(t, domain.SortByUpdatedOn, criteria.SortBy)
	require.Equal(t, domain.SortAsc, criteria.SortOrder)
	require.NotNil(t, criteria.UpdatedBefore)

	cutoff := time.Now().UTC().Add(-14 * 24 * time.Hour)
	require.WithinDuration(t, cutoff, *criteria.UpdatedBefore, 2*time.Minute)

	require.Len(t, detected, 1)
	payload, ok := detected[0].Payload.(events.StaleCasesDetectedPayload)
	require.True(t, ok)
	require.Equal(t, 14, payload.StaleDays)
	require.Equal(t, 2, payload.Total)
	require.Equal(t, 1, payload.HighPriority)
}

func TestFindStaleCasesLogsFailedEventDelivery(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{Cases: makeCases(2), Total: 2, TotalKnown: true}}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventStaleCasesDetected, func(context.Context, events.Event) error {
		return errors.New("webhook down")
	})
	svc := service.NewCaseSearchService(service.SearchDependencies{
		CaseRepo:   repo,
		Dispatcher: dispatcher,
		Logger:     zap.New(core),
	})

	got := svc.FindStaleCases(context.Background(), 7, 10)

	// Delivery failures never surface to the caller, only to the log.
	require.Len(t, got, 2)
	entries := logs.FilterMessage("event delivery failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, string(events.EventStaleCasesDetected), entries[0].ContextMap()["event_type"])
}

func TestFindStaleCasesDefaultsThreshold(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{TotalKnown: true}}
	svc := newSearchService(repo, nil, nil, nil)

	svc.FindStaleCases(context.Background(), 0, 10)

	require.NotNil(t, repo.lastCriteria.UpdatedBefore)
	cutoff := time.Now().UTC().Add(-time.Duration(service.DefaultStaleDays) * 24 * time.Hour)
	require.WithinDuration(t, cutoff, *repo.lastCriteria.UpdatedBefore, 2*time.Minute)
}

func TestFindOldestCasesForcesOldestCriteria(t *testing.T) {
	repo := &fakeCaseRepo{outcome: &repository.SearchOutcome{Cases: makeCases(3), Total: 3, TotalKnown: true}}
	svc := newSearchService(repo, nil, nil, nil)

	got := svc.FindOldestCases(context.Background(), 5)

	require.Len(t, got, 3)
	criteria := repo.lastCriteria
	require.True(t, criteria.ActiveOnly)
	require.Equal(t, domain.SortByOpenedAt, criteria.SortBy)
	require.Equal(t, domain.SortAsc, criteria.SortOrder)
	require.Equal(t, 5, criteria.Limit)
}

func TestBuildFilterSummaryFixedOrder(t *testing.T) {
	svc := newSearchService(&fakeCaseRepo{}, nil, nil, nil)

	summary := svc.BuildFilterSummary(domain.SearchFilters{
		Priority:            "1",
		CustomerName:        "Acme",
		Query:               "vpn",
		SysDomain:           "TOP/ACME",
		IncludeChildDomains: true,
	})

	require.Equal(t, "Customer: Acme | Priority: 1 | Keyword: vpn | Domain: TOP/ACME +children", summary)
}

func TestBuildFilterSummaryEmpty(t *testing.T) {
	svc := newSearchService(&fakeCaseRepo{}, nil, nil, nil)
	require.Equal(t, service.NoFiltersApplied, svc.BuildFilterSummary(domain.SearchFilters{}))
}

func TestSuggestCustomerNamesDeduplicatesAndCaps(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: []repository.Account{
		{Name: "Acme Corp"},
		{Name: "Acme Corp"},
		{Name: "Acme Industries"},
		{Name: "Acme Labs"},
	}}
	cache := &fakeSuggestionCache{}
	svc := newSearchService(&fakeCaseRepo{}, accounts, cache, nil)

	names := svc.SuggestCustomerNames(context.Background(), "acme", 2)

	require.Equal(t, []string{"Acme Corp", "Acme Industries"}, names)
	require.Equal(t, 1, cache.setCalls)
	require.Equal(t, names, cache.lastSet)
}

func TestSuggestCustomerNamesServesFromCache(t *testing.T) {
	accounts := &fakeAccountRepo{}
	cache := &fakeSuggestionCache{hit: []string{"Cached Co"}, hitOK: true}
	svc := newSearchService(&fakeCaseRepo{}, accounts, cache, nil)

	names := svc.SuggestCustomerNames(context.Background(), "cached", 5)

	require.Equal(t, []string{"Cached Co"}, names)
	require.Zero(t, accounts.calls)
	require.Zero(t, cache.setCalls)
}

func TestSuggestCustomerNamesLookupFailure(t *testing.T) {
	accounts := &fakeAccountRepo{err: errors.New("boom")}
	svc := newSearchService(&fakeCaseRepo{}, accounts, nil, nil)

	names := svc.SuggestCustomerNames(context.Background(), "acme", 5)

	require.NotNil(t, names)
	require.Empty(t, names)
}

func TestSuggestCustomerNamesBlankInput(t *testing.T) {
	accounts := &fakeAccountRepo{}
	svc := newSearchService(&fakeCaseRepo{}, accounts, nil, nil)

	require.Empty(t, svc.SuggestCustomerNames(context.Background(), "   ", 5))
	require.Zero(t, accounts.calls)
}
