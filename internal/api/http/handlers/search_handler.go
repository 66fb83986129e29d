package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/case-assistant/internal/aggregate"
	"github.com/support-kit/case-assistant/internal/api/dto"
	"github.com/support-kit/case-assistant/internal/auth"
	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/pagination"
	"github.com/support-kit/case-assistant/internal/service"
	apperrors "github.com/support-kit/case-assistant/pkg/util"
)

// SearchHandler serves case search and browse endpoints.
type SearchHandler struct {
	service *service.CaseSearchService
	codec   *pagination.Codec
}

// NewSearchHandler constructs handler.
func NewSearchHandler(searchService *service.CaseSearchService, codec *pagination.Codec) *SearchHandler {
	return &SearchHandler{service: searchService, codec: codec}
}

// SearchCases POST /cases/search.
func (h *SearchHandler) SearchCases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SearchCasesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	filters := filtersFromPayload(req.SearchFiltersPayload)
	if req.PageToken != "" {
		// An unresolvable token falls through to the request's own filters.
		if state := h.codec.DecodeState(c.UserContext(), req.PageToken, principal.UserID); state != nil {
			filters = state.Filters
			filters.Offset = state.Offset
		}
	}

	result := h.service.SearchWithMetadata(c.UserContext(), filters)
	return c.JSON(fiber.Map{"data": h.searchResponse(c, result, principal.UserID)})
}

// StaleCases GET /cases/stale.
func (h *SearchHandler) StaleCases(c *fiber.Ctx) error {
	days := parseInt(c.Query("days"), service.DefaultStaleDays)
	limit := parseInt(c.Query("limit"), service.DefaultSearchLimit)

	cases := h.service.FindStaleCases(c.UserContext(), days, limit)
	summaries := aggregate.FindStale(cases, days)
	items := make([]dto.StaleCaseResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, dto.StaleCaseResponse{
			CaseResponse:   caseResponse(summaries[i].Case),
			StaleDays:      summaries[i].StaleDays,
			IsHighPriority: summaries[i].IsHighPriority,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// OldestCases GET /cases/oldest.
func (h *SearchHandler) OldestCases(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), service.DefaultSearchLimit)

	cases := h.service.FindOldestCases(c.UserContext(), limit)
	summaries := aggregate.FindOldest(cases, limit)
	items := make([]dto.CaseResponse, 0, len(summaries))
	for i := range summaries {
		item := caseResponse(summaries[i].Case)
		item.AgeDays = summaries[i].AgeDays
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}

// SuggestCustomers GET /customers/suggest.
func (h *SearchHandler) SuggestCustomers(c *fiber.Ctx) error {
	query := c.Query("q")
	limit := parseInt(c.Query("limit"), 0)

	suggestions := h.service.SuggestCustomerNames(c.UserContext(), query, limit)
	return c.JSON(fiber.Map{"data": dto.SuggestionsResponse{
		Query:       query,
		Suggestions: suggestions,
	}})
}

func (h *SearchHandler) searchResponse(c *fiber.Ctx, result domain.SearchResult, userID string) dto.SearchCasesResponse {
	resp := dto.SearchCasesResponse{
		Cases:          caseResponses(result.Cases),
		TotalFound:     result.TotalFound,
		FilterSummary:  h.service.BuildFilterSummary(result.AppliedFilters),
		AppliedFilters: payloadFromFilters(result.AppliedFilters),
		Pagination: dto.PaginationResponse{
			HasMore:    result.HasMore,
			NextOffset: result.NextOffset,
		},
	}
	if result.HasMore && result.NextOffset != nil {
		resp.Pagination.NextPageToken = h.codec.EncodeState(c.UserContext(), pagination.PageState{
			Filters: result.AppliedFilters,
			Offset:  *result.NextOffset,
			Total:   result.TotalFound,
		}, userID)
	}
	return resp
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func caseResponse(cs domain.Case) dto.CaseResponse {
	return dto.CaseResponse{
		SysID:            cs.SysID,
		Number:           cs.Number,
		ShortDescription: cs.ShortDescription,
		Priority:         string(cs.Priority),
		State:            cs.State,
		OpenedAt:         cs.OpenedAt,
		UpdatedOn:        cs.UpdatedOn,
		AgeDays:          cs.AgeDays,
		AssignedTo:       cs.AssignedTo,
		AssignmentGroup:  cs.AssignmentGroup,
		URL:              cs.URL,
	}
}

func caseResponses(cases []domain.Case) []dto.CaseResponse {
	items := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		items = append(items, caseResponse(cases[i]))
	}
	return items
}

func filtersFromPayload(p dto.SearchFiltersPayload) domain.SearchFilters {
	return domain.SearchFilters{
		CustomerName:        p.CustomerName,
		CompanyName:         p.CompanyName,
		Query:               p.Query,
		AssignmentGroup:     p.AssignmentGroup,
		AssignedTo:          p.AssignedTo,
		Priority:            p.Priority,
		State:               p.State,
		OpenedAfter:         p.OpenedAfter,
		OpenedBefore:        p.OpenedBefore,
		UpdatedAfter:        p.UpdatedAfter,
		UpdatedBefore:       p.UpdatedBefore,
		ResolvedAfter:       p.ResolvedAfter,
		ResolvedBefore:      p.ResolvedBefore,
		ClosedAfter:         p.ClosedAfter,
		ClosedBefore:        p.ClosedBefore,
		ActiveOnly:          p.ActiveOnly,
		SysDomain:           p.SysDomain,
		IncludeChildDomains: p.IncludeChildDomains,
		SortBy:              domain.SortField(p.SortBy),
		SortOrder:           domain.SortOrder(p.SortOrder),
		Limit:               p.Limit,
		Offset:              p.Offset,
	}
}

func payloadFromFilters(f domain.SearchFilters) dto.SearchFiltersPayload {
	return dto.SearchFiltersPayload{
		CustomerName:        f.CustomerName,
		CompanyName:         f.CompanyName,
		Query:               f.Query,
		AssignmentGroup:     f.AssignmentGroup,
		AssignedTo:          f.AssignedTo,
		Priority:            f.Priority,
		State:               f.State,
		OpenedAfter:         f.OpenedAfter,
		OpenedBefore:        f.OpenedBefore,
		UpdatedAfter:        f.UpdatedAfter,
		UpdatedBefore:       f.UpdatedBefore,
		ResolvedAfter:       f.ResolvedAfter,
		ResolvedBefore:      f.ResolvedBefore,
		ClosedAfter:         f.ClosedAfter,
		ClosedBefore:        f.ClosedBefore,
		ActiveOnly:          f.ActiveOnly,
		SysDomain:           f.SysDomain,
		IncludeChildDomains: f.IncludeChildDomains,
		SortBy:              string(f.SortBy),
		SortOrder:           string(f.SortOrder),
		Limit:               f.Limit,
		Offset:              f.Offset,
	}
}
