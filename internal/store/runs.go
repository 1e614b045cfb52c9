package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RunRepo persists TestRun records.
type RunRepo interface {
	Create(ctx context.Context, run *qa.TestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*qa.TestRun, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*qa.TestRun, error)
	// UpdateFields applies a partial update (patch semantics) to the run row.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	// Delete removes a run and cascades to its questions.
	Delete(ctx context.Context, id uuid.UUID) error
}

type runRepo struct {
	db *gorm.DB
}

// NewRunRepo creates a RunRepo backed by the given connection.
func NewRunRepo(db *gorm.DB) RunRepo {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *qa.TestRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*qa.TestRun, error) {
	var run qa.TestRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("test run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*qa.TestRun, error) {
	var runs []*qa.TestRun
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&qa.TestRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *runRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&qa.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&qa.TestRun{}).Error
	})
}
