package qa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RunStatus describes the lifecycle of a TestRun. Transitions are monotonic:
// pending -> generating -> running -> evaluating -> completed, with failed
// reachable from any non-terminal state. There is no backward transition.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusGenerating RunStatus = "generating"
	RunStatusRunning    RunStatus = "running"
	RunStatusEvaluating RunStatus = "evaluating"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Terminal reports whether the run can no longer be mutated.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// QuestionStatus describes the lifecycle of a single TestQuestion.
type QuestionStatus string

const (
	QuestionStatusPending    QuestionStatus = "pending"
	QuestionStatusExecuting  QuestionStatus = "executing"
	QuestionStatusEvaluating QuestionStatus = "evaluating"
	QuestionStatusCompleted  QuestionStatus = "completed"
	QuestionStatusFailed     QuestionStatus = "failed"
)

// PassThreshold is the minimum score for a question to count as passed.
const PassThreshold = 70.0

// TestRun is one QA campaign for one tenant.
type TestRun struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Status       RunStatus `gorm:"column:status;not null;index" json:"status"`
	CurrentPhase string    `gorm:"column:current_phase" json:"current_phase,omitempty"`

	Config datatypes.JSON `gorm:"column:config;type:jsonb" json:"config"`

	TotalQuestions     int `gorm:"column:total_questions;not null;default:0" json:"total_questions"`
	QuestionsCompleted int `gorm:"column:questions_completed;not null;default:0" json:"questions_completed"`

	OverallScore     *float64       `gorm:"column:overall_score" json:"overall_score,omitempty"`
	ScoresByCategory datatypes.JSON `gorm:"column:scores_by_category;type:jsonb" json:"scores_by_category,omitempty"`
	Summary          datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary,omitempty"`

	GenerationCost float64 `gorm:"column:generation_cost;not null;default:0" json:"generation_cost"`
	ExecutionCost  float64 `gorm:"column:execution_cost;not null;default:0" json:"execution_cost"`
	EvaluationCost float64 `gorm:"column:evaluation_cost;not null;default:0" json:"evaluation_cost"`
	TotalCost      float64 `gorm:"column:total_cost;not null;default:0" json:"total_cost"`

	StartedAt       *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	DurationSeconds float64    `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`

	ErrorMessage string         `gorm:"column:error_message" json:"error_message,omitempty"`
	ErrorDetails datatypes.JSON `gorm:"column:error_details;type:jsonb" json:"error_details,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TestRun) TableName() string { return "test_run" }

// RunError is the structured payload stored in TestRun.ErrorDetails.
type RunError struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// TestQuestion is one test case belonging to exactly one TestRun. The tenant
// id is denormalized for query convenience.
type TestQuestion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RunID    uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Category       Category `gorm:"column:category;not null;index" json:"category"`
	Question       string   `gorm:"column:question;not null" json:"question"`
	Language       string   `gorm:"column:language;not null;default:en" json:"language"`
	ExpectedAnswer string   `gorm:"column:expected_answer" json:"expected_answer,omitempty"`

	SourceDocumentID *uuid.UUID `gorm:"type:uuid;column:source_document_id" json:"source_document_id,omitempty"`
	SourcePage       *int       `gorm:"column:source_page" json:"source_page,omitempty"`
	AutoGenerated    bool       `gorm:"column:auto_generated;not null;default:true" json:"auto_generated"`
	TemplateID       *uuid.UUID `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`

	Answer          string         `gorm:"column:answer" json:"answer,omitempty"`
	Citations       datatypes.JSON `gorm:"column:citations;type:jsonb" json:"citations,omitempty"`
	DiagnosticTrace datatypes.JSON `gorm:"column:diagnostic_trace;type:jsonb" json:"diagnostic_trace,omitempty"`
	ResponseTimeMs  int64          `gorm:"column:response_time_ms;not null;default:0" json:"response_time_ms"`
	ExecutionCost   float64        `gorm:"column:execution_cost;not null;default:0" json:"execution_cost"`

	Score            *float64       `gorm:"column:score" json:"score,omitempty"`
	Passed           *bool          `gorm:"column:passed" json:"passed,omitempty"`
	EvaluationDetail datatypes.JSON `gorm:"column:evaluation_detail;type:jsonb" json:"evaluation_detail,omitempty"`
	EvaluationCost   float64        `gorm:"column:evaluation_cost;not null;default:0" json:"evaluation_cost"`

	Status       QuestionStatus `gorm:"column:status;not null;index" json:"status"`
	ErrorMessage string         `gorm:"column:error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TestQuestion) TableName() string { return "test_question" }

// Citation is a document reference the agent provides to justify an answer.
type Citation struct {
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	Page         int    `json:"page,omitempty"`
}

// EvaluationDetail is the structured judge verdict stored on a question.
type EvaluationDetail struct {
	Reasoning        string         `json:"reasoning"`
	Issues           []string       `json:"issues,omitempty"`
	CategorySpecific map[string]any `json:"category_specific,omitempty"`
}

// Summary is the qualitative roll-up stored on a finalized TestRun.
type Summary struct {
	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	CommonProblems  []string `json:"common_problems,omitempty"`
}

// TestTemplate is a tenant-scoped, manually authored question that can be
// included in any run's question set. Templates have their own lifecycle and
// are never required for a run.
type TestTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Category       Category `gorm:"column:category;not null" json:"category"`
	Question       string   `gorm:"column:question;not null" json:"question"`
	ExpectedAnswer string   `gorm:"column:expected_answer" json:"expected_answer,omitempty"`
	SourceRef      string   `gorm:"column:source_ref" json:"source_ref,omitempty"`
	Language       string   `gorm:"column:language;not null;default:en" json:"language"`
	Active         bool     `gorm:"column:active;not null;default:true;index" json:"active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TestTemplate) TableName() string { return "test_template" }

// Document is an indexed source document. Ingestion and chunking are owned by
// the ingestion pipeline; the QA engine only counts processed documents and
// samples their chunks.
type Document struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name      string `gorm:"column:name;not null" json:"name"`
	Status    string `gorm:"column:status;not null;index" json:"status"`
	PageCount int    `gorm:"column:page_count;not null;default:0" json:"page_count"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }

// DocumentStatusProcessed marks documents that finished ingestion and are
// eligible as generation seed material.
const DocumentStatusProcessed = "processed"

// DocumentChunk is a stored, indexed passage of a source document.
type DocumentChunk struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`

	Page    int    `gorm:"column:page;not null;default:0" json:"page"`
	Content string `gorm:"column:content;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DocumentChunk) TableName() string { return "document_chunk" }
