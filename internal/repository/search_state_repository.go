package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchStateActive is the only state a record is created in. Records are
// never mutated afterward; they expire and get swept.
const SearchStateActive = "active"

// ErrStoreNotConfigured is returned when the repository was built without a
// pool. Callers treat it like any other store failure and degrade.
var ErrStoreNotConfigured = errors.New("search state store not configured")

// SearchStateRecord is one persisted pagination-state workflow record.
// Payload carries the full filter set plus offset as JSON.
type SearchStateRecord struct {
	ID           string
	WorkflowType string
	ReferenceID  string
	State        string
	Payload      []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// SearchStateRepository manages persisted search-state records.
type SearchStateRepository interface {
	Start(ctx context.Context, record *SearchStateRecord) error
	FindActiveByReferenceID(ctx context.Context, workflowType, referenceID string) (*SearchStateRecord, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type searchStateRepository struct {
	pool *pgxpool.Pool
}

// NewSearchStateRepository constructs the Postgres-backed store.
func NewSearchStateRepository(pool *pgxpool.Pool) SearchStateRepository {
	return &searchStateRepository{pool: pool}
}

func (r *searchStateRepository) Start(ctx context.Context, record *SearchStateRecord) error {
	if r.pool == nil {
		return ErrStoreNotConfigured
	}
	if record.State == "" {
		record.State = SearchStateActive
	}
	const query = `
        INSERT INTO search_state (workflow_type, reference_id, state, payload, expires_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.WorkflowType,
		record.ReferenceID,
		record.State,
		record.Payload,
		record.ExpiresAt,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *searchStateRepository) FindActiveByReferenceID(ctx context.Context, workflowType, referenceID string) (*SearchStateRecord, error) {
	if r.pool == nil {
		return nil, ErrStoreNotConfigured
	}
	const query = `
        SELECT id, workflow_type, reference_id, state, payload, expires_at, created_at
        FROM search_state
        WHERE workflow_type=$1 AND reference_id=$2 AND state=$3 AND expires_at > NOW()
        ORDER BY created_at DESC
        LIMIT 1`
	var record SearchStateRecord
	if err := r.pool.QueryRow(ctx, query, workflowType, referenceID, SearchStateActive).Scan(
		&record.ID,
		&record.WorkflowType,
		&record.ReferenceID,
		&record.State,
		&record.Payload,
		&record.ExpiresAt,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *searchStateRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, ErrStoreNotConfigured
	}
	const query = `DELETE FROM search_state WHERE expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
