// Package dex answers read queries over the ingested records.
package dex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/evodex/internal/lineage"
	"github.com/zulandar/evodex/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record id is not in the store.
var ErrNotFound = errors.New("dex: record not found")

// Summary is the list projection of a record.
type Summary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	ShinyImage string `json:"shinyImage"`
	Attribute  string `json:"attribute,omitempty"`
}

// Detail is a full record plus its evolution tree. Tree is nil when the
// record has no chain or the chain has no unique root.
type Detail struct {
	Record models.Record `json:"info"`
	Tree   *lineage.Node `json:"evolutionTree"`
}

// SearchQuery filters records by generation membership and name substring.
// An empty Generations list matches every generation.
type SearchQuery struct {
	Generations []int  `json:"generations"`
	Text        string `json:"searchText"`
}

// Service runs queries against the store.
type Service struct {
	db    *gorm.DB
	trees *lineage.Reconstructor
}

// NewService creates a Service over db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, trees: lineage.New(db)}
}

// FindOne loads the record with id and rebuilds its evolution tree.
func (s *Service) FindOne(ctx context.Context, id int) (*Detail, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("dex: find %d: %w", id, err)
	}

	d := &Detail{Record: rec}
	if rec.EvolutionChainID != nil {
		tree, err := s.trees.BuildTree(ctx, *rec.EvolutionChainID)
		if err != nil {
			return nil, fmt.Errorf("dex: tree for %d: %w", id, err)
		}
		d.Tree = tree
	}
	return d, nil
}

// Steps returns the flattened transitions of the chain containing id.
// A record without a chain has no steps.
func (s *Service) Steps(ctx context.Context, id int) ([]lineage.Step, error) {
	var rec models.Record
	err := s.db.WithContext(ctx).Select("id", "evolution_chain_id").Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("dex: find %d: %w", id, err)
	}
	if rec.EvolutionChainID == nil {
		return []lineage.Step{}, nil
	}
	steps, err := s.trees.Steps(ctx, *rec.EvolutionChainID)
	if err != nil {
		return nil, fmt.Errorf("dex: steps for %d: %w", id, err)
	}
	return steps, nil
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("dex: count records: %w", err)
	}
	return n, nil
}

// FindAll lists every record in id order.
func (s *Service) FindAll(ctx context.Context) ([]Summary, error) {
	return s.summaries(s.db.WithContext(ctx), false)
}

// FindByGeneration lists the records introduced in generation n.
func (s *Service) FindByGeneration(ctx context.Context, n int) ([]Summary, error) {
	return s.summaries(s.db.WithContext(ctx).Where("generation = ?", n), false)
}

// Search lists records matching q. Results carry the attribute field.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Summary, error) {
	tx := s.db.WithContext(ctx)
	if len(q.Generations) > 0 {
		tx = tx.Where("generation IN ?", q.Generations)
	}
	if q.Text != "" {
		tx = tx.Where("name LIKE ? ESCAPE '!'", "%"+escapeLike(q.Text)+"%")
	}
	return s.summaries(tx, true)
}

func (s *Service) summaries(tx *gorm.DB, withAttribute bool) ([]Summary, error) {
	cols := []string{"id", "name", "image", "shiny_image"}
	if withAttribute {
		cols = append(cols, "attribute")
	}
	var recs []models.Record
	if err := tx.Select(cols).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("dex: list records: %w", err)
	}
	out := make([]Summary, len(recs))
	for i, r := range recs {
		out[i] = Summary{
			ID:         r.ID,
			Name:       r.Name,
			Image:      r.Image,
			ShinyImage: r.ShinyImage,
			Attribute:  r.Attribute,
		}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
