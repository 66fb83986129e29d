package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the search surface.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	searchesTotal    int64
	searchesDegraded int64
	tokensInline     int64
	tokensReferenced int64
	decodeFailures   int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordSearch counts one search; degraded marks results produced by the
// error firewall rather than the data source.
func (m *Metrics) RecordSearch(degraded bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchesTotal++
	if degraded {
		m.searchesDegraded++
	}
}

// RecordToken counts one encoded pagination token by tier.
func (m *Metrics) RecordToken(referenced bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if referenced {
		m.tokensReferenced++
	} else {
		m.tokensInline++
	}
}

// RecordDecodeFailure counts one unreadable pagination token.
func (m *Metrics) RecordDecodeFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeFailures++
}

// Snapshot returns current counter values for the readiness payload.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int64{
		"searches_total":    m.searchesTotal,
		"searches_degraded": m.searchesDegraded,
		"tokens_inline":     m.tokensInline,
		"tokens_referenced": m.tokensReferenced,
		"decode_failures":   m.decodeFailures,
	}
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
