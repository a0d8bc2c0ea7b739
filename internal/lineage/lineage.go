// Package lineage rebuilds evolution trees from the flat records and
// relations of one chain.
package lineage

import (
	"context"
	"fmt"

	"github.com/zulandar/evodex/internal/models"
	"gorm.io/gorm"
)

// Summary is the record projection carried by a tree node.
type Summary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	DotImage      string `json:"dotImage"`
	DotShinyImage string `json:"dotShinyImage"`
	Attribute     string `json:"attribute"`
}

// Node is one record in a reconstructed tree. Conditions describes the
// transition into this node; the root carries the sentinel.
type Node struct {
	Record     Summary `json:"pokemon"`
	Conditions string  `json:"evolutionConditions"`
	EvolvesTo  []*Node `json:"evolvesTo"`
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.EvolvesTo {
		size += c.Size()
	}
	return size
}

// Step is one transition flattened for display.
type Step struct {
	FromID         int    `json:"fromPokemonId"`
	BeforeDot      string `json:"beforeDot,omitempty"`
	BeforeShinyDot string `json:"beforeShinyDot,omitempty"`
	ToID           int    `json:"toPokemonId"`
	AfterDot       string `json:"afterDot,omitempty"`
	AfterShinyDot  string `json:"afterShinyDot,omitempty"`
	Conditions     string `json:"evolutionConditions"`
}

// Reconstructor loads chains from the store. It only reads.
type Reconstructor struct {
	db *gorm.DB
}

// New creates a Reconstructor over db.
func New(db *gorm.DB) *Reconstructor {
	return &Reconstructor{db: db}
}

// BuildTree rebuilds the tree for chainID. It returns nil, without error,
// when the chain has no records or no unique root.
func (r *Reconstructor) BuildTree(ctx context.Context, chainID int) (*Node, error) {
	records, relations, err := r.load(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return Build(records, relations), nil
}

// Steps returns every transition of chainID in load order, with the dot
// images of both ends when those records are present.
func (r *Reconstructor) Steps(ctx context.Context, chainID int) ([]Step, error) {
	records, relations, err := r.load(ctx, chainID)
	if err != nil {
		return nil, err
	}
	byID := indexRecords(records)
	steps := make([]Step, 0, len(relations))
	for _, rel := range relations {
		s := Step{FromID: rel.FromID, ToID: rel.ToID, Conditions: rel.Conditions}
		if from, ok := byID[rel.FromID]; ok {
			s.BeforeDot, s.BeforeShinyDot = from.DotImage, from.DotShinyImage
		}
		if to, ok := byID[rel.ToID]; ok {
			s.AfterDot, s.AfterShinyDot = to.DotImage, to.DotShinyImage
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func (r *Reconstructor) load(ctx context.Context, chainID int) ([]models.Record, []models.Relation, error) {
	var records []models.Record
	if err := r.db.WithContext(ctx).
		Where("evolution_chain_id = ?", chainID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, nil, fmt.Errorf("lineage: load records of chain %d: %w", chainID, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	ids := make([]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	var relations []models.Relation
	if err := r.db.WithContext(ctx).
		Where("from_id IN ?", ids).
		Order("id ASC").
		Find(&relations).Error; err != nil {
		return nil, nil, fmt.Errorf("lineage: load relations of chain %d: %w", chainID, err)
	}
	return records, relations, nil
}

// Build assembles the tree from already-loaded records (ascending id) and
// relations (load order). The root is the single record no relation points
// to; zero or several such records yield nil. Relations to records outside
// the set are skipped. A record reached twice is not expanded again, which
// bounds the walk even if the relations contain a cycle.
func Build(records []models.Record, relations []models.Relation) *Node {
	if len(records) == 0 {
		return nil
	}

	targets := make(map[int]struct{}, len(relations))
	children := make(map[int][]models.Relation)
	for _, rel := range relations {
		targets[rel.ToID] = struct{}{}
		children[rel.FromID] = append(children[rel.FromID], rel)
	}

	root, ok := findRoot(records, targets)
	if !ok {
		return nil
	}

	b := &builder{
		records:  indexRecords(records),
		children: children,
		visited:  make(map[int]bool, len(records)),
	}
	return b.node(root, models.NotAvailable)
}

// findRoot scans records once for identities absent from targets and
// succeeds only if there is exactly one.
func findRoot(records []models.Record, targets map[int]struct{}) (*models.Record, bool) {
	var root *models.Record
	for i := range records {
		if _, isTarget := targets[records[i].ID]; isTarget {
			continue
		}
		if root != nil {
			return nil, false
		}
		root = &records[i]
	}
	return root, root != nil
}

type builder struct {
	records  map[int]*models.Record
	children map[int][]models.Relation
	visited  map[int]bool
}

func (b *builder) node(rec *models.Record, conditions string) *Node {
	b.visited[rec.ID] = true
	n := &Node{
		Record:     summarize(rec),
		Conditions: conditions,
		EvolvesTo:  []*Node{},
	}
	for _, rel := range b.children[rec.ID] {
		next, ok := b.records[rel.ToID]
		if !ok || b.visited[rel.ToID] {
			continue
		}
		n.EvolvesTo = append(n.EvolvesTo, b.node(next, rel.Conditions))
	}
	return n
}

func indexRecords(records []models.Record) map[int]*models.Record {
	byID := make(map[int]*models.Record, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}
	return byID
}

func summarize(rec *models.Record) Summary {
	return Summary{
		ID:            rec.ID,
		Name:          rec.Name,
		DotImage:      rec.DotImage,
		DotShinyImage: rec.DotShinyImage,
		Attribute:     rec.Attribute,
	}
}
