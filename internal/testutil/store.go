package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/chatbot-qa/internal/qa"
	"github.com/giantswarm/chatbot-qa/internal/store"
)

// NewTestStore opens an in-memory sqlite store with the full schema migrated.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	return s
}

// SeedCorpus inserts processed documents with chunks pages of content for a
// tenant and returns the document IDs.
func SeedCorpus(t *testing.T, s *store.Store, tenantID uuid.UUID, documents, chunksPerDocument int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, documents)
	for i := 0; i < documents; i++ {
		doc := qa.Document{
			ID:       uuid.New(),
			TenantID: tenantID,
			Name:     "handbook.pdf",
			Status:   qa.DocumentStatusProcessed,
		}
		require.NoError(t, s.DB().WithContext(context.Background()).Create(&doc).Error)
		for p := 1; p <= chunksPerDocument; p++ {
			chunk := qa.DocumentChunk{
				ID:         uuid.New(),
				TenantID:   tenantID,
				DocumentID: doc.ID,
				Page:       p,
				Content:    "Employees accrue 25 vacation days per calendar year.",
			}
			require.NoError(t, s.DB().Create(&chunk).Error)
		}
		ids = append(ids, doc.ID)
	}
	return ids
}
