package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// QuestionRepo persists TestQuestion records.
type QuestionRepo interface {
	// CreateBatch inserts all questions in a single batch. A partial insert
	// failure is a generation-phase fatal error, so there is no per-row
	// fallback.
	CreateBatch(ctx context.Context, questions []*qa.TestQuestion) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*qa.TestQuestion, error)
	// ListByRunAndStatus returns the run's questions with one of the given
	// statuses, in generation (creation) order.
	ListByRunAndStatus(ctx context.Context, runID uuid.UUID, statuses ...qa.QuestionStatus) ([]*qa.TestQuestion, error)
	// ListUnscored returns executed questions of the run that have no score
	// yet. The judge scans these, so interrupted runs remain evaluable.
	ListUnscored(ctx context.Context, runID uuid.UUID) ([]*qa.TestQuestion, error)
	CountByRun(ctx context.Context, runID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type questionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a QuestionRepo backed by the given connection.
func NewQuestionRepo(db *gorm.DB) QuestionRepo {
	return &questionRepo{db: db}
}

func (r *questionRepo) CreateBatch(ctx context.Context, questions []*qa.TestQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	for _, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *questionRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*qa.TestQuestion, error) {
	var out []*qa.TestQuestion
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) ListByRunAndStatus(ctx context.Context, runID uuid.UUID, statuses ...qa.QuestionStatus) ([]*qa.TestQuestion, error) {
	var out []*qa.TestQuestion
	err := r.db.WithContext(ctx).
		Where("run_id = ? AND status IN ?", runID, statuses).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) ListUnscored(ctx context.Context, runID uuid.UUID) ([]*qa.TestQuestion, error) {
	var out []*qa.TestQuestion
	err := r.db.WithContext(ctx).
		Where("run_id = ? AND score IS NULL AND status IN ?", runID,
			[]qa.QuestionStatus{qa.QuestionStatusCompleted, qa.QuestionStatusEvaluating}).
		Order("updated_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) CountByRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&qa.TestQuestion{}).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}

func (r *questionRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&qa.TestQuestion{}).
		Where("id = ?", id).
		Updates(updates).Error
}
