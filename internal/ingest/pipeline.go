// Package ingest populates the record store from the remote catalog.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zulandar/evodex/internal/catalog"
	"github.com/zulandar/evodex/internal/conditions"
	"github.com/zulandar/evodex/internal/logger"
	"github.com/zulandar/evodex/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of entries fetched concurrently per batch.
const DefaultBatchSize = 50

// Source is the slice of the catalog client the pipeline needs.
type Source interface {
	ListRecords(ctx context.Context, limit int) ([]catalog.NamedResource, error)
	Detail(ctx context.Context, url string) (*catalog.Detail, error)
	Species(ctx context.Context, url string) (*catalog.Species, error)
	ResolveName(ctx context.Context, url string, langs catalog.Languages) (string, error)
}

// CacheBuilder produces the transition-condition cache for one run.
type CacheBuilder interface {
	Build(ctx context.Context) (conditions.Cache, conditions.Stats, error)
}

// Options configures a Pipeline.
type Options struct {
	BatchSize int
	Langs     catalog.Languages
	Log       *logger.Logger
	Metrics   *Metrics
}

// Result summarizes one IngestIfNeeded call.
type Result struct {
	Skipped      bool // store already complete, nothing fetched
	Existing     int64
	Entries      int
	Records      int
	Relations    int
	Failed       int
	FailedChains int
}

// Pipeline runs catalog ingestion.
type Pipeline struct {
	source    Source
	builder   CacheBuilder
	store     *Store
	batchSize int
	langs     catalog.Languages
	log       *logger.Logger
	metrics   *Metrics
}

// NewPipeline creates a Pipeline.
func NewPipeline(src Source, builder CacheBuilder, store *Store, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Pipeline{
		source:    src,
		builder:   builder,
		store:     store,
		batchSize: opts.BatchSize,
		langs:     opts.Langs,
		log:       opts.Log,
		metrics:   opts.Metrics,
	}
}

// IngestIfNeeded repopulates the store unless it already holds at least
// expectedTotal records. Entry and chain failures are absorbed; only failures
// of the store itself or of the record index abort the run.
func (p *Pipeline) IngestIfNeeded(ctx context.Context, expectedTotal int) (Result, error) {
	var res Result

	count, err := p.store.CountRecords(ctx)
	if err != nil {
		return res, err
	}
	res.Existing = count
	if count >= int64(expectedTotal) {
		p.log.Info("store is complete, skipping ingestion", "records", count, "expected", expectedTotal)
		res.Skipped = true
		return res, nil
	}

	p.log.Info("store is incomplete, starting ingestion", "records", count, "expected", expectedTotal)
	if err := p.store.Clear(ctx); err != nil {
		return res, err
	}

	cache, stats, err := p.builder.Build(ctx)
	res.FailedChains = stats.FailedChains
	p.metrics.chainsFailed(stats.FailedChains)
	if err != nil {
		p.log.Error("condition cache unavailable, relations will carry the sentinel", "err", err)
	}

	index, err := p.source.ListRecords(ctx, expectedTotal)
	if err != nil {
		return res, fmt.Errorf("ingest: fetch record index: %w", err)
	}
	res.Entries = len(index)
	p.log.Info("fetched record index", "entries", len(index))

	for start := 0; start < len(index); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := start + p.batchSize
		if end > len(index) {
			end = len(index)
		}

		began := time.Now()
		records, relations, failed := p.processBatch(ctx, cache, index[start:end])
		if err := p.store.SaveRecords(ctx, records); err != nil {
			return res, err
		}
		p.metrics.observeBatch(time.Since(began).Seconds())

		res.Records += len(records)
		res.Relations += relations
		res.Failed += failed
		p.log.Info("processed batch", "done", end, "total", len(index), "saved", len(records), "failed", failed)
	}

	p.log.Info("ingestion completed", "records", res.Records, "relations", res.Relations, "failed", res.Failed)
	return res, nil
}

// processBatch fetches every entry of batch concurrently and returns once all
// of them have resolved. Relations are saved as their entry completes;
// records are returned in index order for one bulk save.
func (p *Pipeline) processBatch(ctx context.Context, cache conditions.Cache, batch []catalog.NamedResource) ([]models.Record, int, int) {
	slots := make([]*models.Record, len(batch))
	var relations, failed int32

	var g errgroup.Group
	g.SetLimit(len(batch))
	for i, entry := range batch {
		if entry.URL == "" {
			continue
		}
		g.Go(func() error {
			rec, rel, err := p.fetchEntry(ctx, cache, entry.URL)
			if err == nil && rel != nil {
				err = p.store.SaveRelation(ctx, rel)
				if err == nil {
					atomic.AddInt32(&relations, 1)
					p.metrics.relationSaved()
				}
			}
			if err != nil {
				atomic.AddInt32(&failed, 1)
				p.metrics.entryFailed()
				p.log.Error("failed to fetch entry", "url", entry.URL, "err", err)
				return nil
			}
			slots[i] = rec
			p.metrics.entryIngested()
			return nil
		})
	}
	g.Wait()

	records := make([]models.Record, 0, len(batch))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, int(relations), int(failed)
}

// fetchEntry loads one entry's detail and species and normalizes them. The
// relation is nil when the species has no predecessor.
func (p *Pipeline) fetchEntry(ctx context.Context, cache conditions.Cache, url string) (*models.Record, *models.Relation, error) {
	d, err := p.source.Detail(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	s, err := p.source.Species(ctx, d.Species.URL)
	if err != nil {
		return nil, nil, err
	}

	var chainID *int
	if s.EvolutionChain != nil {
		if id, err := catalog.TrailingID(s.EvolutionChain.URL); err == nil {
			chainID = &id
		}
	}

	var rel *models.Relation
	if s.EvolvesFromSpecies != nil {
		fromID, err := catalog.TrailingID(s.EvolvesFromSpecies.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("predecessor of %d: %w", d.ID, err)
		}
		rel = &models.Relation{
			FromID:     fromID,
			ToID:       d.ID,
			Conditions: cache.Lookup(fromID, d.ID),
		}
	}

	generation, err := catalog.TrailingID(s.Generation.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("generation of %d: %w", d.ID, err)
	}

	typeRefs := make([]catalog.NamedResource, len(d.Types))
	for i, t := range d.Types {
		typeRefs[i] = t.Type
	}
	abilityRefs := make([]catalog.NamedResource, len(d.Abilities))
	for i, a := range d.Abilities {
		abilityRefs[i] = a.Ability
	}
	var types, abilities []string
	var g errgroup.Group
	g.Go(func() error {
		types = p.resolveNames(ctx, typeRefs)
		return nil
	})
	g.Go(func() error {
		abilities = p.resolveNames(ctx, abilityRefs)
		return nil
	})
	g.Wait()

	stats := make([]string, len(d.Stats))
	for i, st := range d.Stats {
		stats[i] = strconv.Itoa(st.BaseStat)
	}

	sp := d.Sprites
	bw := sp.Versions.GenerationV.BlackWhite
	rec := &models.Record{
		ID:               d.ID,
		Name:             p.langs.Pick(s.Names, catalog.FieldName),
		Status:           strings.Join(stats, ","),
		Classification:   p.langs.Pick(s.Genera, catalog.FieldGenus),
		Characteristic:   strings.Join(abilities, ","),
		Attribute:        strings.Join(types, ","),
		DotImage:         firstNonEmpty(bw.Animated.FrontDefault, sp.FrontDefault),
		DotShinyImage:    firstNonEmpty(bw.Animated.FrontShiny, sp.FrontShiny),
		Image:            firstNonEmpty(sp.Other.OfficialArtwork.FrontDefault, sp.FrontDefault),
		ShinyImage:       firstNonEmpty(sp.Other.OfficialArtwork.FrontShiny, sp.FrontShiny),
		Description:      p.langs.FlavorText(s.FlavorTextEntries),
		Generation:       generation,
		EvolutionChainID: chainID,
	}
	return rec, rel, nil
}

// resolveNames looks every reference up concurrently, keeping input order. A
// failed lookup falls back to the reference's raw identifier.
func (p *Pipeline) resolveNames(ctx context.Context, refs []catalog.NamedResource) []string {
	out := make([]string, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			name, err := p.source.ResolveName(ctx, ref.URL, p.langs)
			if err != nil {
				name = ref.Name
			}
			out[i] = name
			return nil
		})
	}
	g.Wait()
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
