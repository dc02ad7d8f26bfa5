package vectorstore

import (
	"context"
	"fmt"
	"log"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/hansik/backend/internal/model"
)

const insertBatchSize = 100

// PGVectorStore keeps documents in the recipe_documents table. On Postgres
// the pgvector cosine operator orders results; other dialects (SQLite in
// tests and local runs) fall back to scoring in Go.
type PGVectorStore struct {
	db *gorm.DB
}

// NewPGVectorStore creates a store on db. Call Migrate first.
func NewPGVectorStore(db *gorm.DB) *PGVectorStore {
	return &PGVectorStore{db: db}
}

// Migrate creates the vector extension (Postgres only) and the documents table
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	} else {
		log.Printf("[VectorStore] Using GORM auto-migration for %s", db.Dialector.Name())
	}
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

// Index implements Store. The replace runs in one transaction.
func (s *PGVectorStore) Index(ctx context.Context, docs []model.Document, vectors []pgvector.Vector) error {
	if err := validate(docs, vectors); err != nil {
		return err
	}

	rows := make([]model.Document, len(docs))
	sources := make(map[string]bool)
	for i, d := range docs {
		d.Embedding = vectors[i]
		rows[i] = d
		sources[d.Source] = true
	}
	sourceList := make([]string, 0, len(sources))
	for src := range sources {
		sourceList = append(sourceList, src)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source IN ?", sourceList).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous documents: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert documents: %w", err)
		}
		return nil
	})
}

// Search implements Store
func (s *PGVectorStore) Search(ctx context.Context, query pgvector.Vector, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	var docs []model.Document
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		err := db.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{query}},
		}).Limit(k).Find(&docs).Error
		if err != nil {
			return nil, fmt.Errorf("failed to search documents: %w", err)
		}
	} else if err := db.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	vectors := make([][]float32, len(docs))
	for i := range docs {
		vectors[i] = docs[i].Embedding.Slice()
	}
	return rank(query.Slice(), docs, vectors, k), nil
}

// Count implements Store
func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Document{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
