package domain

// SortField enumerates the case attributes a search may be ordered by.
type SortField string

const (
	SortByOpenedAt  SortField = "opened_at"
	SortByPriority  SortField = "priority"
	SortByUpdatedOn SortField = "updated_on"
	SortByState     SortField = "state"
)

// Valid reports whether the field is one of the supported sort keys.
func (f SortField) Valid() bool {
	switch f {
	case SortByOpenedAt, SortByPriority, SortByUpdatedOn, SortByState:
		return true
	}
	return false
}

// SortOrder enumerates sort directions.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether the order is supported.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// SearchFilters is the raw filter input supplied by a caller. Every field is
// optional; date bounds arrive as loose strings and are only parsed during
// normalization. A zero value means "not set", never "match empty".
type SearchFilters struct {
	CustomerName    string
	CompanyName     string
	Query           string
	AssignmentGroup string
	AssignedTo      string
	Priority        string
	State           string

	OpenedAfter    string
	OpenedBefore   string
	UpdatedAfter   string
	UpdatedBefore  string
	ResolvedAfter  string
	ResolvedBefore string
	ClosedAfter    string
	ClosedBefore   string

	ActiveOnly          bool
	SysDomain           string
	IncludeChildDomains bool

	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}
