package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchStateRepositoryWithoutPool(t *testing.T) {
	repo := NewSearchStateRepository(nil)

	err := repo.Start(context.Background(), &SearchStateRecord{
		WorkflowType: "case_search",
		ReferenceID:  "11111111-2222-3333-4444-555555555555",
		Payload:      []byte(`{}`),
	})
	require.ErrorIs(t, err, ErrStoreNotConfigured)

	record, err := repo.FindActiveByReferenceID(context.Background(), "case_search", "11111111-2222-3333-4444-555555555555")
	require.ErrorIs(t, err, ErrStoreNotConfigured)
	require.Nil(t, record)

	removed, err := repo.DeleteExpired(context.Background())
	require.ErrorIs(t, err, ErrStoreNotConfigured)
	require.Zero(t, removed)
}
