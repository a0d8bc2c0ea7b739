package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/zulandar/evodex/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the write side of the record store used by ingestion. Writes are
// serialized so concurrent entries of one batch never race on the database.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewStore wraps db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CountRecords returns how many records are stored.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("ingest: count records: %w", err)
	}
	return n, nil
}

// Clear deletes every relation, then every record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.Relation{}).Error; err != nil {
		return fmt.Errorf("ingest: clear relations: %w", err)
	}
	if err := tx.Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("ingest: clear records: %w", err)
	}
	return nil
}

// SaveRelation persists one relation.
func (s *Store) SaveRelation(ctx context.Context, rel *models.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
		return fmt.Errorf("ingest: save relation %d→%d: %w", rel.FromID, rel.ToID, err)
	}
	return nil
}

// SaveRecords upserts a batch of records in one statement.
func (s *Store) SaveRecords(ctx context.Context, recs []models.Record) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&recs)
	if result.Error != nil {
		return fmt.Errorf("ingest: save %d records: %w", len(recs), result.Error)
	}
	return nil
}
