package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// CorpusRepo reads the tenant's indexed corpus. The ingestion pipeline owns
// these tables; the QA engine only counts and samples.
type CorpusRepo interface {
	// CountProcessedDocuments returns the number of successfully processed
	// documents for the tenant. This drives the run's question budget.
	CountProcessedDocuments(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// SampleChunks draws up to n random chunks from the tenant's processed
	// documents, used as generation seed material.
	SampleChunks(ctx context.Context, tenantID uuid.UUID, n int) ([]*qa.DocumentChunk, error)
}

type corpusRepo struct {
	db *gorm.DB
}

// NewCorpusRepo creates a CorpusRepo backed by the given connection.
func NewCorpusRepo(db *gorm.DB) CorpusRepo {
	return &corpusRepo{db: db}
}

func (r *corpusRepo) CountProcessedDocuments(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&qa.Document{}).
		Where("tenant_id = ? AND status = ?", tenantID, qa.DocumentStatusProcessed).
		Count(&count).Error
	return count, err
}

func (r *corpusRepo) SampleChunks(ctx context.Context, tenantID uuid.UUID, n int) ([]*qa.DocumentChunk, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []*qa.DocumentChunk
	// RANDOM() is understood by both Postgres and sqlite.
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id IN (?)", tenantID,
			r.db.Model(&qa.Document{}).
				Select("id").
				Where("tenant_id = ? AND status = ?", tenantID, qa.DocumentStatusProcessed),
		).
		Order("RANDOM()").
		Limit(n).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
