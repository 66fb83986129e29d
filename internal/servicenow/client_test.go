package servicenow_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/servicenow"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*servicenow.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := servicenow.NewClient(config.ServiceNowConfig{
		InstanceURL:    server.URL,
		Username:       "svc-bot",
		Password:       "hunter2",
		TimeoutSeconds: 5,
	}, zap.NewNop())
	return client, server
}

func TestQueryTableSendsTableAPIParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	var gotAuthUser, gotAuthPass string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			gotQuery[key] = values[0]
		}
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()

		w.Header().Set("X-Total-Count", "135")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"sys_id":"abc123","number":"CS0001"}]}`))
	})

	result, err := client.QueryTable(context.Background(), "sn_customerservice_case", servicenow.Query{
		Query:  "active=true^ORDERBYDESCopened_at",
		Fields: []string{"sys_id", "number"},
		Limit:  25,
		Offset: 50,
	})
	require.NoError(t, err)

	require.Equal(t, "/api/now/table/sn_customerservice_case", gotPath)
	require.Equal(t, "active=true^ORDERBYDESCopened_at", gotQuery["sysparm_query"])
	require.Equal(t, "25", gotQuery["sysparm_limit"])
	require.Equal(t, "50", gotQuery["sysparm_offset"])
	require.Equal(t, "sys_id,number", gotQuery["sysparm_fields"])
	require.Equal(t, "false", gotQuery["sysparm_display_value"])
	require.Equal(t, "true", gotQuery["sysparm_exclude_reference_link"])
	require.Equal(t, "svc-bot", gotAuthUser)
	require.Equal(t, "hunter2", gotAuthPass)

	require.Len(t, result.Records, 1)
	require.Equal(t, "abc123", result.Records[0]["sys_id"])
	require.True(t, result.TotalKnown)
	require.Equal(t, 135, result.Total)
}

func TestQueryTableOmitsEmptyParams(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	_, err := client.QueryTable(context.Background(), "customer_account", servicenow.Query{})
	require.NoError(t, err)

	require.NotContains(t, gotQuery, "sysparm_query")
	require.NotContains(t, gotQuery, "sysparm_limit")
	require.NotContains(t, gotQuery, "sysparm_offset")
	require.NotContains(t, gotQuery, "sysparm_fields")
}

func TestQueryTableMissingTotalHeader(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"number":"CS0001"},{"number":"CS0002"}]}`))
	})

	result, err := client.QueryTable(context.Background(), "sn_customerservice_case", servicenow.Query{Limit: 2})
	require.NoError(t, err)
	require.False(t, result.TotalKnown)
	require.Zero(t, result.Total)
	require.Len(t, result.Records, 2)
}

func TestQueryTableUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"Insufficient rights"}}`))
	})

	_, err := client.QueryTable(context.Background(), "sn_customerservice_case", servicenow.Query{})
	require.Error(t, err)

	var snErr *servicenow.Error
	require.ErrorAs(t, err, &snErr)
	require.Equal(t, http.StatusForbidden, snErr.StatusCode)
	require.Contains(t, snErr.Detail, "Insufficient rights")
}

func TestQueryTableContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.QueryTable(ctx, "sn_customerservice_case", servicenow.Query{})
	require.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"datetime", "2026-02-10 14:30:00", time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)},
		{"fractional seconds", "2026-02-10 14:30:00.123456", time.Date(2026, 2, 10, 14, 30, 0, 123456000, time.UTC)},
		{"date only", "2026-02-10", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"padded", "  2026-02-10 14:30:00 ", time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := servicenow.ParseDateTime(tt.value)
			require.NoError(t, err)
			require.True(t, got.Equal(tt.want))
		})
	}
}

func TestParseDateTimeRejectsJunk(t *testing.T) {
	_, err := servicenow.ParseDateTime("")
	require.Error(t, err)
	_, err = servicenow.ParseDateTime("yesterday")
	require.Error(t, err)
}
