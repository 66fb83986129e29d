package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/domain"
	"github.com/support-kit/case-assistant/internal/servicenow"
	apperrors "github.com/support-kit/case-assistant/pkg/util"
)

// SearchCriteria is the canonical, validated query input. It is produced
// only by the filter normalizer; date bounds are real timestamps and
// Limit/Offset are already clamped.
type SearchCriteria struct {
	CustomerName    string
	CompanyName     string
	Query           string
	AssignmentGroup string
	AssignedTo      string
	Priority        string
	State           string

	OpenedAfter    *time.Time
	OpenedBefore   *time.Time
	UpdatedAfter   *time.Time
	UpdatedBefore  *time.Time
	ResolvedAfter  *time.Time
	ResolvedBefore *time.Time
	ClosedAfter    *time.Time
	ClosedBefore   *time.Time

	ActiveOnly          bool
	SysDomain           string
	IncludeChildDomains bool

	SortBy    domain.SortField
	SortOrder domain.SortOrder
	Limit     int
	Offset    int
}

// SearchOutcome is the discriminated result at the data-source boundary.
// TotalKnown tells callers whether Total is the source's authoritative
// match count or must be derived.
type SearchOutcome struct {
	Cases      []domain.Case
	Total      int
	TotalKnown bool
}

// CaseRepository reads case snapshots from the case store.
type CaseRepository interface {
	Search(ctx context.Context, criteria SearchCriteria) (*SearchOutcome, error)
}

// caseFields is the projection requested per row. Reference fields are
// dot-walked so assignee and queue arrive as display names.
var caseFields = []string{
	"sys_id",
	"number",
	"short_description",
	"priority",
	"state",
	"opened_at",
	"sys_updated_on",
	"assigned_to.name",
	"assignment_group.name",
}

type caseRepository struct {
	client      *servicenow.Client
	table       string
	instanceURL string
	logger      *zap.Logger
}

// NewCaseRepository builds the ServiceNow-backed case repository.
func NewCaseRepository(client *servicenow.Client, cfg config.ServiceNowConfig, logger *zap.Logger) CaseRepository {
	return &caseRepository{
		client:      client,
		table:       cfg.CaseTable,
		instanceURL: strings.TrimRight(cfg.InstanceURL, "/"),
		logger:      logger,
	}
}

func (r *caseRepository) Search(ctx context.Context, criteria SearchCriteria) (*SearchOutcome, error) {
	result, err := r.client.QueryTable(ctx, r.table, servicenow.Query{
		Query:  buildEncodedQuery(criteria),
		Fields: caseFields,
		Limit:  criteria.Limit,
		Offset: criteria.Offset,
	})
	if err != nil {
		var snErr *servicenow.Error
		if errors.As(err, &snErr) {
			return nil, apperrors.NewUpstreamUnavailable("case store", err)
		}
		return nil, fmt.Errorf("search cases: %w", err)
	}

	cases := make([]domain.Case, 0, len(result.Records))
	now := time.Now().UTC()
	for _, row := range result.Records {
		cases = append(cases, r.rowToCase(row, now))
	}
	return &SearchOutcome{
		Cases:      cases,
		Total:      result.Total,
		TotalKnown: result.TotalKnown,
	}, nil
}

// buildEncodedQuery renders criteria as a ServiceNow encoded query:
// "^"-joined terms with an ORDERBY/ORDERBYDESC suffix.
func buildEncodedQuery(c SearchCriteria) string {
	terms := []string{}

	if c.CustomerName != "" {
		terms = append(terms, "account.nameLIKE"+c.CustomerName)
	}
	if c.CompanyName != "" {
		terms = append(terms, "company.nameLIKE"+c.CompanyName)
	}
	if c.Query != "" {
		terms = append(terms, "short_descriptionLIKE"+c.Query)
	}
	if c.AssignmentGroup != "" {
		terms = append(terms, "assignment_group.nameLIKE"+c.AssignmentGroup)
	}
	if c.AssignedTo != "" {
		terms = append(terms, "assigned_to.nameLIKE"+c.AssignedTo)
	}
	if c.Priority != "" {
		terms = append(terms, "priority="+c.Priority)
	}
	if c.State != "" {
		terms = append(terms, "state="+c.State)
	}
	if c.ActiveOnly {
		terms = append(terms, "active=true")
	}

	terms = appendDateTerm(terms, "opened_at", ">=", c.OpenedAfter)
	terms = appendDateTerm(terms, "opened_at", "<=", c.OpenedBefore)
	terms = appendDateTerm(terms, "sys_updated_on", ">=", c.UpdatedAfter)
	terms = appendDateTerm(terms, "sys_updated_on", "<=", c.UpdatedBefore)
	terms = appendDateTerm(terms, "resolved_at", ">=", c.ResolvedAfter)
	terms = appendDateTerm(terms, "resolved_at", "<=", c.ResolvedBefore)
	terms = appendDateTerm(terms, "closed_at", ">=", c.ClosedAfter)
	terms = appendDateTerm(terms, "closed_at", "<=", c.ClosedBefore)

	if c.SysDomain != "" {
		if c.IncludeChildDomains {
			terms = append(terms, "sys_domain_pathSTARTSWITH"+c.SysDomain)
		} else {
			terms = append(terms, "sys_domain="+c.SysDomain)
		}
	}

	if field := sortFieldColumn(c.SortBy); field != "" {
		if c.SortOrder == domain.SortDesc {
			terms = append(terms, "ORDERBYDESC"+field)
		} else {
			terms = append(terms, "ORDERBY"+field)
		}
	}

	return strings.Join(terms, "^")
}

func appendDateTerm(terms []string, field, op string, ts *time.Time) []string {
	if ts == nil {
		return terms
	}
	return append(terms, field+op+ts.UTC().Format(servicenow.DateTimeLayout))
}

func sortFieldColumn(field domain.SortField) string {
	switch field {
	case domain.SortByOpenedAt:
		return "opened_at"
	case domain.SortByPriority:
		return "priority"
	case domain.SortByUpdatedOn:
		return "sys_updated_on"
	case domain.SortByState:
		return "state"
	}
	return ""
}

func (r *caseRepository) rowToCase(row map[string]string, now time.Time) domain.Case {
	c := domain.Case{
		SysID:            row["sys_id"],
		Number:           row["number"],
		ShortDescription: row["short_description"],
		Priority:         domain.CasePriority(row["priority"]),
		State:            row["state"],
		AssignedTo:       row["assigned_to.name"],
		AssignmentGroup:  row["assignment_group.name"],
	}
	c.OpenedAt = r.parseRowTime(row, "opened_at", c.Number)
	c.UpdatedOn = r.parseRowTime(row, "sys_updated_on", c.Number)
	if c.OpenedAt != nil {
		days := int(now.Sub(*c.OpenedAt).Hours() / 24)
		if days > 0 {
			c.AgeDays = days
		}
	}
	if r.instanceURL != "" && c.SysID != "" {
		c.URL = fmt.Sprintf("%s/%s.do?sys_id=%s", r.instanceURL, r.table, c.SysID)
	}
	return c
}

// parseRowTime maps an absent or malformed timestamp to nil; a bad value
// is logged and skipped rather than failing the whole row.
func (r *caseRepository) parseRowTime(row map[string]string, field, number string) *time.Time {
	raw := row[field]
	if raw == "" {
		return nil
	}
	ts, err := servicenow.ParseDateTime(raw)
	if err != nil {
		r.logger.Warn("unparseable case timestamp",
			zap.String("case", number),
			zap.String("field", field),
			zap.String("value", raw),
		)
		return nil
	}
	return &ts
}
