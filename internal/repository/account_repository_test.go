package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/servicenow"
)

func newAccountRepo(t *testing.T, handler http.HandlerFunc) AccountRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.ServiceNowConfig{
		InstanceURL:    server.URL,
		AccountTable:   "customer_account",
		TimeoutSeconds: 5,
	}
	return NewAccountRepository(servicenow.NewClient(cfg, zap.NewNop()), cfg)
}

func TestAccountSearchByNameQueriesAccountTable(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	repo := newAccountRepo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"name":"Acme Corp"},{"name":""},{"name":"Acme Industries"}]}`))
	})

	accounts, err := repo.SearchByName(context.Background(), "Acme", 5)
	require.NoError(t, err)

	require.Equal(t, "/api/now/table/customer_account", gotPath)
	require.Equal(t, "nameLIKEAcme^ORDERBYname", gotQuery.Get("sysparm_query"))
	require.Equal(t, "name", gotQuery.Get("sysparm_fields"))
	require.Equal(t, "5", gotQuery.Get("sysparm_limit"))

	// Rows without a name are dropped rather than suggested as blanks.
	require.Equal(t, []Account{{Name: "Acme Corp"}, {Name: "Acme Industries"}}, accounts)
}

func TestAccountSearchByNameUpstreamError(t *testing.T) {
	repo := newAccountRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable"}}`))
	})

	_, err := repo.SearchByName(context.Background(), "Acme", 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "search accounts")
}
