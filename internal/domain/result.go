package domain

// SearchResult is the outcome of one search call. Cases keep exactly the
// order produced by the data source; downstream consumers must not reorder
// them. TotalFound is the source's authoritative count when available and
// offset+len(Cases) otherwise.
type SearchResult struct {
	Cases          []Case
	TotalFound     int
	AppliedFilters SearchFilters
	HasMore        bool
	NextOffset     *int
}
