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

// TemplateRepo persists tenant-scoped reusable question templates.
type TemplateRepo interface {
	Create(ctx context.Context, tpl *qa.TestTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*qa.TestTemplate, error)
	// ListActive returns the tenant's active templates, optionally filtered
	// to the given categories.
	ListActive(ctx context.Context, tenantID uuid.UUID, categories ...qa.Category) ([]*qa.TestTemplate, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type templateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo creates a TemplateRepo backed by the given connection.
func NewTemplateRepo(db *gorm.DB) TemplateRepo {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, tpl *qa.TestTemplate) error {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*qa.TestTemplate, error) {
	var tpl qa.TestTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) ListActive(ctx context.Context, tenantID uuid.UUID, categories ...qa.Category) ([]*qa.TestTemplate, error) {
	var out []*qa.TestTemplate
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at ASC")
	if len(categories) > 0 {
		q = q.Where("category IN ?", categories)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *templateRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&qa.TestTemplate{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *templateRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"active": false})
}
