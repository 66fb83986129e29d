package repository

import (
	"context"
	"fmt"

	"github.com/support-kit/case-assistant/internal/config"
	"github.com/support-kit/case-assistant/internal/servicenow"
)

// Account is the slim lookup projection used for name suggestions.
type Account struct {
	Name string
}

// AccountRepository resolves partial customer names against the account
// table.
type AccountRepository interface {
	SearchByName(ctx context.Context, partial string, limit int) ([]Account, error)
}

type accountRepository struct {
	client *servicenow.Client
	table  string
}

// NewAccountRepository builds the ServiceNow-backed account lookup.
func NewAccountRepository(client *servicenow.Client, cfg config.ServiceNowConfig) AccountRepository {
	return &accountRepository{
		client: client,
		table:  cfg.AccountTable,
	}
}

func (r *accountRepository) SearchByName(ctx context.Context, partial string, limit int) ([]Account, error) {
	result, err := r.client.QueryTable(ctx, r.table, servicenow.Query{
		Query:  "nameLIKE" + partial + "^ORDERBYname",
		Fields: []string{"name"},
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}

	accounts := make([]Account, 0, len(result.Records))
	for _, row := range result.Records {
		if name := row["name"]; name != "" {
			accounts = append(accounts, Account{Name: name})
		}
	}
	return accounts, nil
}
