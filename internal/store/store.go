// Package store is the persistence layer for QA runs, questions, templates
// and the tenant corpus. Postgres backs production deployments; the sqlite
// driver serves tests and local development.
package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/giantswarm/chatbot-qa/internal/qa"
)

// Store bundles the repositories over a single gorm connection.
type Store struct {
	db *gorm.DB

	Runs      RunRepo
	Questions QuestionRepo
	Templates TemplateRepo
	Corpus    CorpusRepo
}

// OpenPostgres connects to Postgres with the given DSN and migrates the schema.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return newStore(db)
}

// OpenSQLite opens (or creates) a sqlite database at path. Use ":memory:"
// for an ephemeral database.
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&qa.TestRun{},
		&qa.TestQuestion{},
		&qa.TestTemplate{},
		&qa.Document{},
		&qa.DocumentChunk{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{
		db:        db,
		Runs:      NewRunRepo(db),
		Questions: NewQuestionRepo(db),
		Templates: NewTemplateRepo(db),
		Corpus:    NewCorpusRepo(db),
	}, nil
}

// DB exposes the underlying connection for callers that need raw access.
func (s *Store) DB() *gorm.DB { return s.db }

func gormConfig() *gorm.Config {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}
