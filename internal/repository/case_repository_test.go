package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/domain"
)

func TestBuildEncodedQueryAllTerms(t *testing.T) {
	openedAfter := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updatedBefore := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)

	query := buildEncodedQuery(SearchCriteria{
		CustomerName:    "Acme",
		CompanyName:     "Acme Holdings",
		Query:           "vpn outage",
		AssignmentGroup: "Network Ops",
		AssignedTo:      "Dana Ruiz",
		Priority:        "1",
		State:           "10",
		ActiveOnly:      true,
		OpenedAfter:     &openedAfter,
		UpdatedBefore:   &updatedBefore,
		SortBy:          domain.SortByOpenedAt,
		SortOrder:       domain.SortDesc,
	})

	require.Equal(t,
		"account.nameLIKEAcme"+
			"^company.nameLIKEAcme Holdings"+
			"^short_descriptionLIKEvpn outage"+
			"^assignment_group.nameLIKENetwork Ops"+
			"^assigned_to.nameLIKEDana Ruiz"+
			"^priority=1"+
			"^state=10"+
			"^active=true"+
			"^opened_at>=2026-01-01 00:00:00"+
			"^sys_updated_on<=2026-02-01 08:30:00"+
			"^ORDERBYDESCopened_at",
		query)
}

func TestBuildEncodedQueryEmptyCriteria(t *testing.T) {
	require.Equal(t, "", buildEncodedQuery(SearchCriteria{}))
}

func TestBuildEncodedQuerySortMapping(t *testing.T) {
	query := buildEncodedQuery(SearchCriteria{
		SortBy:    domain.SortByUpdatedOn,
		SortOrder: domain.SortAsc,
	})
	require.Equal(t, "ORDERBYsys_updated_on", query)
}

func TestBuildEncodedQueryDomainScoping(t *testing.T) {
	exact := buildEncodedQuery(SearchCriteria{SysDomain: "TOP/ACME"})
	require.Equal(t, "sys_domain=TOP/ACME", exact)

	subtree := buildEncodedQuery(SearchCriteria{SysDomain: "TOP/ACME", IncludeChildDomains: true})
	require.Equal(t, "sys_domain_pathSTARTSWITHTOP/ACME", subtree)
}

func TestRowToCaseMapsFields(t *testing.T) {
	repo := &caseRepository{
		table:       "sn_customerservice_case",
		instanceURL: "https://example.service-now.com",
		logger:      zap.NewNop(),
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	c := repo.rowToCase(map[string]string{
		"sys_id":                "abc123",
		"number":                "CS0042",
		"short_description":     "VPN drops hourly",
		"priority":              "2",
		"state":                 "10",
		"opened_at":             "2026-03-01 09:00:00",
		"sys_updated_on":        "2026-03-08 17:45:00",
		"assigned_to.name":      "Dana Ruiz",
		"assignment_group.name": "Network Ops",
	}, now)

	require.Equal(t, "abc123", c.SysID)
	require.Equal(t, "CS0042", c.Number)
	require.Equal(t, "VPN drops hourly", c.ShortDescription)
	require.Equal(t, domain.CasePriorityHigh, c.Priority)
	require.Equal(t, "10", c.State)
	require.Equal(t, "Dana Ruiz", c.AssignedTo)
	require.Equal(t, "Network Ops", c.AssignmentGroup)
	require.NotNil(t, c.OpenedAt)
	require.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), *c.OpenedAt)
	require.NotNil(t, c.UpdatedOn)
	require.Equal(t, 9, c.AgeDays)
	require.Equal(t, "https://example.service-now.com/sn_customerservice_case.do?sys_id=abc123", c.URL)
}

func TestRowToCaseToleratesMissingValues(t *testing.T) {
	repo := &caseRepository{
		table:       "sn_customerservice_case",
		instanceURL: "https://example.service-now.com",
		logger:      zap.NewNop(),
	}
	now := time.Now().UTC()

	c := repo.rowToCase(map[string]string{
		"sys_id":         "abc123",
		"number":         "CS0042",
		"opened_at":      "not a timestamp",
		"sys_updated_on": "",
	}, now)

	require.Nil(t, c.OpenedAt)
	require.Nil(t, c.UpdatedOn)
	require.Zero(t, c.AgeDays)
	require.Empty(t, c.AssignedTo)
}

func TestRowToCaseSkipsURLWithoutInstance(t *testing.T) {
	repo := &caseRepository{table: "sn_customerservice_case", logger: zap.NewNop()}

	c := repo.rowToCase(map[string]string{"sys_id": "abc123"}, time.Now().UTC())
	require.Empty(t, c.URL)
}
