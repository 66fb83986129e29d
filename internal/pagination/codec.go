// Package pagination round-trips a (filters, offset) pair through a UI
// control whose value has a hard length ceiling. Small filter sets ride
// inline in the token itself; rich ones spill into an expiring persisted
// record and the token carries only a reference.
package pagination

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/observability"
	"github.com/support-kit/case-assistant/internal/repository"
)

const (
	inlineTag    = "s:"
	referenceTag = "d:"

	// WorkflowTypeCaseSearch keys persisted records in the state store.
	WorkflowTypeCaseSearch = "case_search"

	// DefaultInlineBudget is the maximum total token length, tag included.
	// The ceiling comes from the hosting UI control, not from this
	// package.
	DefaultInlineBudget = 75

	// DefaultStateTTL bounds the lifetime of a persisted record.
	DefaultStateTTL = time.Hour

	// reducedFieldLimit truncates name-like fields in the inline
	// projection. The reduction is lossy on purpose; a paging click only
	// needs enough to re-run the query.
	reducedFieldLimit = 20
)

// PageState is a decoded token: the filters to re-run plus the offset the
// caller left off at. Total carries the last known match count when the
// state came from a persisted record.
type PageState struct {
	Filters domain.SearchFilters
	Offset  int
	Total   int
}

// reducedState is the inline wire projection. Short keys keep the encoded
// form inside the budget for common filter sets.
type reducedState struct {
	Customer string `json:"c,omitempty"`
	Queue    string `json:"q,omitempty"`
	Assignee string `json:"a,omitempty"`
	Priority string `json:"p,omitempty"`
	State    string `json:"s,omitempty"`
	Offset   int    `json:"o"`
	Limit    int    `json:"l,omitempty"`
}

// recordPayload is the full persisted projection, untruncated.
type recordPayload struct {
	Filters domain.SearchFilters `json:"filters"`
	Offset  int                  `json:"offset"`
	Total   int                  `json:"total"`
	UserID  string               `json:"user_id,omitempty"`
}

// Options tune the codec; zero values select the defaults.
type Options struct {
	InlineBudget int
	StateTTL     time.Duration
}

// Codec encodes and decodes pagination tokens. Both directions fail open:
// an encode that cannot persist degrades to a minimal inline payload, a
// decode that cannot be resolved returns nil and the caller starts a
// fresh search.
type Codec struct {
	store   repository.SearchStateRepository
	logger  *zap.Logger
	metrics *observability.Metrics
	budget  int
	ttl     time.Duration
}

// NewCodec constructs the codec. The store may be nil, in which case every
// token is forced inline.
func NewCodec(store repository.SearchStateRepository, logger *zap.Logger, metrics *observability.Metrics, opts Options) *Codec {
	budget := opts.InlineBudget
	if budget <= 0 {
		budget = DefaultInlineBudget
	}
	ttl := opts.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &Codec{
		store:   store,
		logger:  logger,
		metrics: metrics,
		budget:  budget,
		ttl:     ttl,
	}
}

// EncodeState renders state as a token. Preference order: inline when the
// reduced projection fits the budget, a persisted-record reference when it
// does not, and a minimal inline payload when persisting fails.
func (c *Codec) EncodeState(ctx context.Context, state PageState, userID string) string {
	reduced := reduceFilters(state)
	if payload, err := json.Marshal(reduced); err == nil {
		token := inlineTag + base64.RawURLEncoding.EncodeToString(payload)
		if len(token) <= c.budget {
			c.metrics.RecordToken(false)
			return token
		}
	}

	if token, ok := c.persistState(ctx, state, userID); ok {
		c.metrics.RecordToken(true)
		return token
	}

	minimal, _ := json.Marshal(reducedState{Offset: state.Offset, Limit: reduced.Limit})
	c.metrics.RecordToken(false)
	return inlineTag + base64.RawURLEncoding.EncodeToString(minimal)
}

// DecodeState resolves a token back into page state. nil means the token
// is unusable (corrupt, expired, foreign) and the caller should run a
// fresh, unfiltered search.
func (c *Codec) DecodeState(ctx context.Context, token, userID string) *PageState {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(token, inlineTag):
		return c.decodeReduced(token[len(inlineTag):])
	case strings.HasPrefix(token, referenceTag):
		return c.decodeReference(ctx, token[len(referenceTag):], userID)
	default:
		// tokens minted before tagging carried the bare payload
		return c.decodeReduced(token)
	}
}

func (c *Codec) persistState(ctx context.Context, state PageState, userID string) (string, bool) {
	if c.store == nil {
		return "", false
	}
	payload, err := json.Marshal(recordPayload{
		Filters: state.Filters,
		Offset:  state.Offset,
		Total:   state.Total,
		UserID:  userID,
	})
	if err != nil {
		return "", false
	}

	record := &repository.SearchStateRecord{
		WorkflowType: WorkflowTypeCaseSearch,
		ReferenceID:  uuid.NewString(),
		State:        repository.SearchStateActive,
		Payload:      payload,
		ExpiresAt:    time.Now().Add(c.ttl),
	}
	if err := c.store.Start(ctx, record); err != nil {
		c.logger.Warn("persisting search state failed", zap.Error(err))
		return "", false
	}
	return referenceTag + record.ReferenceID, true
}

func (c *Codec) decodeReduced(payload string) *PageState {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		c.noteDecodeFailure("undecodable pagination token", err)
		return nil
	}
	var reduced reducedState
	if err := json.Unmarshal(raw, &reduced); err != nil {
		c.noteDecodeFailure("corrupt pagination token payload", err)
		return nil
	}
	return &PageState{
		Filters: domain.SearchFilters{
			CustomerName:    reduced.Customer,
			AssignmentGroup: reduced.Queue,
			AssignedTo:      reduced.Assignee,
			Priority:        reduced.Priority,
			State:           reduced.State,
			Limit:           reduced.Limit,
		},
		Offset: reduced.Offset,
	}
}

func (c *Codec) decodeReference(ctx context.Context, referenceID, userID string) *PageState {
	if c.store == nil {
		c.noteDecodeFailure("reference token without a state store", nil)
		return nil
	}
	record, err := c.store.FindActiveByReferenceID(ctx, WorkflowTypeCaseSearch, referenceID)
	if err != nil {
		c.noteDecodeFailure("search state expired or unavailable", err)
		return nil
	}

	var payload recordPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		c.noteDecodeFailure("corrupt persisted search state", err)
		return nil
	}
	if payload.UserID != "" && userID != "" && payload.UserID != userID {
		c.noteDecodeFailure("search state belongs to another user", nil)
		return nil
	}
	return &PageState{
		Filters: payload.Filters,
		Offset:  payload.Offset,
		Total:   payload.Total,
	}
}

func (c *Codec) noteDecodeFailure(reason string, err error) {
	c.metrics.RecordDecodeFailure()
	if err != nil {
		c.logger.Warn(reason, zap.Error(err))
		return
	}
	c.logger.Warn(reason)
}

// reduceFilters builds the lossy inline projection.
func reduceFilters(state PageState) reducedState {
	return reducedState{
		Customer: truncate(state.Filters.CustomerName, reducedFieldLimit),
		Queue:    truncate(state.Filters.AssignmentGroup, reducedFieldLimit),
		Assignee: truncate(state.Filters.AssignedTo, reducedFieldLimit),
		Priority: state.Filters.Priority,
		State:    state.Filters.State,
		Offset:   state.Offset,
		Limit:    state.Filters.Limit,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
