package conditions

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/evodex/internal/catalog"
	"github.com/zulandar/evodex/internal/models"
)

// NameResolver resolves a name-resolution resource to its localized name.
type NameResolver interface {
	ResolveName(ctx context.Context, url string, langs catalog.Languages) (string, error)
}

// Formatter renders transition details as condition text.
type Formatter struct {
	Names   NameResolver
	Langs   catalog.Languages
	Phrases Phrasebook
}

// NewFormatter builds a Formatter whose phrasing follows the preferred language.
func NewFormatter(names NameResolver, langs catalog.Languages) *Formatter {
	return &Formatter{Names: names, Langs: langs, Phrases: PhrasebookFor(langs.Preferred)}
}

// Format describes the first transition detail. Clauses appear in a fixed
// order (level, item, happiness, held item, time of day, trigger) and only
// when present. No details, or no clauses, yields the sentinel. A failed name
// lookup is returned as an error.
func (f *Formatter) Format(ctx context.Context, details []catalog.EvolutionDetail) (string, error) {
	if len(details) == 0 {
		return models.NotAvailable, nil
	}
	d := details[0]
	var clauses []string

	if d.MinLevel > 0 {
		clauses = append(clauses, fmt.Sprintf(f.Phrases.Level, d.MinLevel))
	}
	if d.Item != nil {
		name, err := f.Names.ResolveName(ctx, d.Item.URL, f.Langs)
		if err != nil {
			return "", fmt.Errorf("conditions: resolve item %s: %w", d.Item.Name, err)
		}
		clauses = append(clauses, fmt.Sprintf(f.Phrases.Item, name))
	}
	if d.MinHappiness > 0 {
		clauses = append(clauses, fmt.Sprintf(f.Phrases.Happiness, d.MinHappiness))
	}
	if d.HeldItem != nil {
		name, err := f.Names.ResolveName(ctx, d.HeldItem.URL, f.Langs)
		if err != nil {
			return "", fmt.Errorf("conditions: resolve held item %s: %w", d.HeldItem.Name, err)
		}
		clauses = append(clauses, fmt.Sprintf(f.Phrases.HeldItem, name))
	}
	if d.TimeOfDay != "" {
		if d.TimeOfDay == "day" {
			clauses = append(clauses, f.Phrases.Day)
		} else {
			clauses = append(clauses, f.Phrases.Night)
		}
	}
	if d.Trigger != nil {
		name, err := f.Names.ResolveName(ctx, d.Trigger.URL, f.Langs)
		if err != nil {
			return "", fmt.Errorf("conditions: resolve trigger %s: %w", d.Trigger.Name, err)
		}
		if name != models.NotAvailable {
			clauses = append(clauses, name)
		}
	}

	if len(clauses) == 0 {
		return models.NotAvailable, nil
	}
	return strings.Join(clauses, f.Phrases.Separator), nil
}
