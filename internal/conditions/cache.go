// Package conditions builds the per-run cache of transition condition text by
// walking every chain graph the catalog publishes.
package conditions

import (
	"context"
	"fmt"

	"github.com/zulandar/evodex/internal/catalog"
	"github.com/zulandar/evodex/internal/logger"
	"github.com/zulandar/evodex/internal/models"
)

// Key identifies one directed transition.
type Key struct {
	From int
	To   int
}

// Cache maps a transition to its condition text. It is built once per
// ingestion run and only read afterwards.
type Cache map[Key]string

// Lookup returns the condition text for from → to, or the sentinel.
func (c Cache) Lookup(from, to int) string {
	if v, ok := c[Key{From: from, To: to}]; ok {
		return v
	}
	return models.NotAvailable
}

// Source is the slice of the catalog client the builder needs.
type Source interface {
	NameResolver
	ListChains(ctx context.Context, limit int) ([]catalog.NamedResource, error)
	Chain(ctx context.Context, url string) (*catalog.ChainGraph, error)
}

// Stats summarizes one Build call.
type Stats struct {
	Chains       int
	FailedChains int
	Edges        int
}

// Builder walks chain graphs into a Cache.
type Builder struct {
	source    Source
	formatter *Formatter
	pageLimit int
	log       *logger.Logger
}

// NewBuilder creates a Builder. pageLimit bounds the single chain-list call.
func NewBuilder(src Source, langs catalog.Languages, pageLimit int, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		source:    src,
		formatter: NewFormatter(src, langs),
		pageLimit: pageLimit,
		log:       log,
	}
}

// Build fetches the chain list and walks every chain graph in sequence. A
// chain that fails to fetch or format is logged and contributes nothing; the
// walk moves on. Only a failure of the chain list itself is returned.
func (b *Builder) Build(ctx context.Context) (Cache, Stats, error) {
	cache := make(Cache)
	var stats Stats

	chains, err := b.source.ListChains(ctx, b.pageLimit)
	if err != nil {
		return cache, stats, fmt.Errorf("conditions: list chains: %w", err)
	}

	for _, ref := range chains {
		if ctx.Err() != nil {
			return cache, stats, ctx.Err()
		}
		stats.Chains++
		b.log.Debug("processing chain", "url", ref.URL)

		edges, err := b.walkChain(ctx, ref.URL)
		if err != nil {
			stats.FailedChains++
			b.log.Error("failed to cache chain", "url", ref.URL, "err", err)
			continue
		}
		for k, v := range edges {
			cache[k] = v
		}
		stats.Edges += len(edges)
	}

	b.log.Info("condition cache built", "chains", stats.Chains, "failed", stats.FailedChains, "edges", stats.Edges)
	return cache, stats, nil
}

// walkChain fetches one chain graph and descends it depth-first with an
// explicit stack, returning the chain's edges only if every edge formatted.
func (b *Builder) walkChain(ctx context.Context, url string) (Cache, error) {
	graph, err := b.source.Chain(ctx, url)
	if err != nil {
		return nil, err
	}

	edges := make(Cache)
	stack := []*catalog.ChainLink{&graph.Chain}
	for len(stack) > 0 {
		link := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(link.EvolvesTo) == 0 {
			continue
		}

		fromID, fromErr := catalog.TrailingID(link.Species.URL)
		for i := range link.EvolvesTo {
			next := &link.EvolvesTo[i]
			toID, toErr := catalog.TrailingID(next.Species.URL)
			if fromErr == nil && toErr == nil {
				text, err := b.formatter.Format(ctx, next.EvolutionDetails)
				if err != nil {
					return nil, fmt.Errorf("edge %d→%d: %w", fromID, toID, err)
				}
				edges[Key{From: fromID, To: toID}] = text
			}
			stack = append(stack, next)
		}
	}
	return edges, nil
}
