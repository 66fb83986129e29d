// Package servicenow is a minimal ServiceNow Table API client covering the
// read paths the assistant needs: encoded queries against a table, with
// pagination and field projection.
package servicenow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/config"
)

// DateTimeLayout is the wire format ServiceNow uses for datetime fields.
const DateTimeLayout = "2006-01-02 15:04:05"

// totalCountHeader carries the query's full match count on list responses.
const totalCountHeader = "X-Total-Count"

// Error is a non-2xx Table API response.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("servicenow: status %d: %s", e.StatusCode, e.Detail)
}

// Query describes one table query. Query holds the already-encoded
// sysparm_query expression ("^"-joined terms, ORDERBY/ORDERBYDESC suffix).
type Query struct {
	Query  string
	Fields []string
	Limit  int
	Offset int
}

// QueryResult is the decoded list response. TotalKnown is true only when
// the instance reported a real match count; callers must not trust Total
// otherwise.
type QueryResult struct {
	Records    []map[string]string
	Total      int
	TotalKnown bool
}

// Client talks to one ServiceNow instance with basic auth.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client from config. The HTTP timeout is the outer
// bound; callers pass a context for per-request control.
func NewClient(cfg config.ServiceNowConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.InstanceURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger,
	}
}

// QueryTable runs an encoded query against a table and decodes the result
// rows. Raw values are requested and reference links stripped, so every
// field arrives as a flat string; callers dot-walk reference fields
// (assigned_to.name) when they need the target's text.
func (c *Client) QueryTable(ctx context.Context, table string, q Query) (*QueryResult, error) {
	endpoint := fmt.Sprintf("%s/api/now/table/%s", c.baseURL, url.PathEscape(table))

	params := url.Values{}
	if q.Query != "" {
		params.Set("sysparm_query", q.Query)
	}
	if q.Limit > 0 {
		params.Set("sysparm_limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("sysparm_offset", strconv.Itoa(q.Offset))
	}
	if len(q.Fields) > 0 {
		params.Set("sysparm_fields", strings.Join(q.Fields, ","))
	}
	params.Set("sysparm_display_value", "false")
	params.Set("sysparm_exclude_reference_link", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var envelope struct {
		Result []map[string]string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", table, err)
	}

	result := &QueryResult{Records: envelope.Result}
	if raw := resp.Header.Get(totalCountHeader); raw != "" {
		if total, convErr := strconv.Atoi(raw); convErr == nil {
			result.Total = total
			result.TotalKnown = true
		}
	}

	c.logger.Debug("servicenow query",
		zap.String("table", table),
		zap.Int("records", len(result.Records)),
		zap.Bool("total_known", result.TotalKnown),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// ParseDateTime parses a ServiceNow datetime or date value. Values are
// interpreted as UTC; fractional seconds are tolerated.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	layouts := []string{
		DateTimeLayout,
		DateTimeLayout + ".999999",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}
