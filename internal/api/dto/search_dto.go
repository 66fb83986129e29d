package dto

import "time"

// SearchFiltersPayload carries the case filter set. It appears verbatim on
// requests and is echoed back normalized under applied_filters, so absent
// request fields stay absent in the echo.
type SearchFiltersPayload struct {
	CustomerName    string `json:"customer_name,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Query           string `json:"query,omitempty"`
	AssignmentGroup string `json:"assignment_group,omitempty"`
	AssignedTo      string `json:"assigned_to,omitempty"`
	Priority        string `json:"priority,omitempty"`
	State           string `json:"state,omitempty"`

	OpenedAfter    string `json:"opened_after,omitempty"`
	OpenedBefore   string `json:"opened_before,omitempty"`
	UpdatedAfter   string `json:"updated_after,omitempty"`
	UpdatedBefore  string `json:"updated_before,omitempty"`
	ResolvedAfter  string `json:"resolved_after,omitempty"`
	ResolvedBefore string `json:"resolved_before,omitempty"`
	ClosedAfter    string `json:"closed_after,omitempty"`
	ClosedBefore   string `json:"closed_before,omitempty"`

	ActiveOnly          bool   `json:"active_only,omitempty"`
	SysDomain           string `json:"sys_domain,omitempty"`
	IncludeChildDomains bool   `json:"include_child_domains,omitempty"`

	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

// SearchCasesRequest payload. A page token, when present, restores the
// filters and offset from a previous response before any explicit fields
// are considered.
type SearchCasesRequest struct {
	SearchFiltersPayload
	PageToken string `json:"page_token,omitempty"`
}

// CaseResponse is one case row.
type CaseResponse struct {
	SysID            string     `json:"sys_id"`
	Number           string     `json:"number"`
	ShortDescription string     `json:"short_description"`
	Priority         string     `json:"priority,omitempty"`
	State            string     `json:"state,omitempty"`
	OpenedAt         *time.Time `json:"opened_at,omitempty"`
	UpdatedOn        *time.Time `json:"updated_on,omitempty"`
	AgeDays          int        `json:"age_days"`
	AssignedTo       string     `json:"assigned_to,omitempty"`
	AssignmentGroup  string     `json:"assignment_group,omitempty"`
	URL              string     `json:"url,omitempty"`
}

// PaginationResponse tells the caller how to fetch the next page.
type PaginationResponse struct {
	HasMore       bool   `json:"has_more"`
	NextOffset    *int   `json:"next_offset,omitempty"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// SearchCasesResponse payload.
type SearchCasesResponse struct {
	Cases          []CaseResponse       `json:"cases"`
	TotalFound     int                  `json:"total_found"`
	FilterSummary  string               `json:"filter_summary"`
	AppliedFilters SearchFiltersPayload `json:"applied_filters"`
	Pagination     PaginationResponse   `json:"pagination"`
}

// StaleCaseResponse is one case flagged as untouched past the threshold.
type StaleCaseResponse struct {
	CaseResponse
	StaleDays      int  `json:"stale_days"`
	IsHighPriority bool `json:"is_high_priority"`
}

// SuggestionsResponse lists account names matching a partial query.
type SuggestionsResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}
