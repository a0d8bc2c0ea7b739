package ingest

import (
	"fmt"
	"testing"

	"github.com/zulandar/evodex/internal/catalog"
	"github.com/zulandar/evodex/internal/catalog/catalogtest"
	"github.com/zulandar/evodex/internal/conditions"
	"github.com/zulandar/evodex/internal/db"
	"github.com/zulandar/evodex/internal/logger"
	"gorm.io/gorm"
)

var koEn = catalog.Languages{Preferred: "ko", Secondary: "en"}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gormDB
}

// entry describes one catalog record served by the fake.
type entry struct {
	id       int
	en, ko   string
	chain    int // 0 = no chain reference
	from     int // 0 = no predecessor
	typeID   int
	typeName string
}

// fixture is a small two-chain catalog:
//
//	chain 1:  1 → 2 → 3
//	chain 67: 133 → 134, 133 → 135
//	132 has no chain reference
var fixture = []entry{
	{id: 1, en: "Bulbasaur", ko: "이상해씨", chain: 1, typeID: 12, typeName: "grass"},
	{id: 2, en: "Ivysaur", ko: "이상해풀", chain: 1, from: 1, typeID: 12, typeName: "grass"},
	{id: 3, en: "Venusaur", ko: "이상해꽃", chain: 1, from: 2, typeID: 12, typeName: "grass"},
	{id: 132, en: "Ditto", ko: "메타몽", typeID: 1, typeName: "normal"},
	{id: 133, en: "Eevee", ko: "이브이", chain: 67, typeID: 1, typeName: "normal"},
	{id: 134, en: "Vaporeon", ko: "샤미드", chain: 67, from: 133, typeID: 11, typeName: "water"},
	{id: 135, en: "Jolteon", ko: "쥬피썬더", chain: 67, from: 133, typeID: 13, typeName: "electric"},
}

func newFixtureCatalog(t *testing.T) *catalogtest.FakeCatalog {
	t.Helper()
	fake := catalogtest.New()
	t.Cleanup(fake.Close)

	var index []map[string]string
	for _, e := range fixture {
		index = append(index, map[string]string{"name": e.en, "url": fake.URL(fmt.Sprintf("/pokemon/%d/", e.id))})
		fake.Handle(fmt.Sprintf("/pokemon/%d/", e.id), detailDoc(fake, e))
		fake.Handle(fmt.Sprintf("/pokemon-species/%d/", e.id), speciesDoc(fake, e))
	}
	fake.Handle("/pokemon", map[string]interface{}{"count": len(index), "results": index})

	fake.Handle("/type/1/", catalogtest.Names("en", "Normal", "ko", "노말"))
	fake.Handle("/type/11/", catalogtest.Names("en", "Water", "ko", "물"))
	fake.Handle("/type/12/", catalogtest.Names("en", "Grass", "ko", "풀"))
	fake.Handle("/type/13/", catalogtest.Names("en", "Electric"))
	fake.Handle("/ability/65/", catalogtest.Names("en", "Overgrow", "ko", "심록"))
	// /ability/34/ is intentionally missing so lookups fall back to the raw name.

	trigger := map[string]string{"name": "level-up", "url": fake.URL("/evolution-trigger/1/")}
	useItem := map[string]string{"name": "use-item", "url": fake.URL("/evolution-trigger/3/")}
	fake.Handle("/evolution-trigger/1/", catalogtest.Names("en", "Level up", "ko", "레벨업"))
	fake.Handle("/evolution-trigger/3/", catalogtest.Names("en", "Use item", "ko", "도구 사용"))
	fake.Handle("/item/84/", catalogtest.Names("en", "Water Stone", "ko", "물의돌"))
	fake.Handle("/item/83/", catalogtest.Names("en", "Thunder Stone", "ko", "천둥의돌"))

	fake.Handle("/evolution-chain", map[string]interface{}{
		"results": []map[string]string{
			{"url": fake.URL("/evolution-chain/1/")},
			{"url": fake.URL("/evolution-chain/67/")},
		},
	})
	fake.Handle("/evolution-chain/1/", map[string]interface{}{
		"id": 1,
		"chain": chainLink(fake, 1, nil,
			chainLink(fake, 2, detail(16, nil, trigger),
				chainLink(fake, 3, detail(32, nil, trigger)))),
	})
	fake.Handle("/evolution-chain/67/", map[string]interface{}{
		"id": 67,
		"chain": chainLink(fake, 133, nil,
			chainLink(fake, 134, detail(0, map[string]string{"name": "water-stone", "url": fake.URL("/item/84/")}, useItem)),
			chainLink(fake, 135, detail(0, map[string]string{"name": "thunder-stone", "url": fake.URL("/item/83/")}, useItem))),
	})
	return fake
}

func detail(minLevel int, item, trigger map[string]string) []map[string]interface{} {
	d := map[string]interface{}{"trigger": trigger}
	if minLevel > 0 {
		d["min_level"] = minLevel
	}
	if item != nil {
		d["item"] = item
	}
	return []map[string]interface{}{d}
}

func chainLink(fake *catalogtest.FakeCatalog, id int, details []map[string]interface{}, next ...map[string]interface{}) map[string]interface{} {
	if details == nil {
		details = []map[string]interface{}{}
	}
	if next == nil {
		next = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"species":           map[string]string{"url": fake.URL(fmt.Sprintf("/pokemon-species/%d/", id))},
		"evolution_details": details,
		"evolves_to":        next,
	}
}

func detailDoc(fake *catalogtest.FakeCatalog, e entry) map[string]interface{} {
	abilities := []map[string]interface{}{
		{"slot": 1, "ability": map[string]string{"name": "overgrow", "url": fake.URL("/ability/65/")}},
		{"slot": 3, "ability": map[string]string{"name": "chlorophyll", "url": fake.URL("/ability/34/")}},
	}
	return map[string]interface{}{
		"id":      e.id,
		"name":    e.en,
		"species": map[string]string{"name": e.en, "url": fake.URL(fmt.Sprintf("/pokemon-species/%d/", e.id))},
		"stats": []map[string]interface{}{
			{"base_stat": 45, "stat": map[string]string{"name": "hp"}},
			{"base_stat": 49, "stat": map[string]string{"name": "attack"}},
		},
		"types": []map[string]interface{}{
			{"slot": 1, "type": map[string]string{"name": e.typeName, "url": fake.URL(fmt.Sprintf("/type/%d/", e.typeID))}},
		},
		"abilities": abilities,
		"sprites": map[string]interface{}{
			"front_default": fmt.Sprintf("https://img/%d.png", e.id),
			"front_shiny":   fmt.Sprintf("https://img/shiny/%d.png", e.id),
			"other": map[string]interface{}{
				"official-artwork": map[string]interface{}{
					"front_default": fmt.Sprintf("https://img/art/%d.png", e.id),
					"front_shiny":   nil,
				},
			},
			"versions": map[string]interface{}{
				"generation-v": map[string]interface{}{
					"black-white": map[string]interface{}{
						"animated": map[string]interface{}{
							"front_default": fmt.Sprintf("https://img/bw/%d.gif", e.id),
							"front_shiny":   fmt.Sprintf("https://img/bw/shiny/%d.gif", e.id),
						},
					},
				},
			},
		},
	}
}

func speciesDoc(fake *catalogtest.FakeCatalog, e entry) map[string]interface{} {
	doc := map[string]interface{}{
		"id": e.id,
		"names": []map[string]interface{}{
			{"name": e.en, "language": map[string]string{"name": "en"}},
			{"name": e.ko, "language": map[string]string{"name": "ko"}},
		},
		"genera": []map[string]interface{}{
			{"genus": "Seed Pokémon", "language": map[string]string{"name": "en"}},
		},
		"flavor_text_entries": []map[string]interface{}{
			{"flavor_text": "first\nentry", "language": map[string]string{"name": "ko"}},
			{"flavor_text": "second entry", "language": map[string]string{"name": "ko"}},
		},
		"generation":           map[string]string{"name": "generation-i", "url": fake.URL("/generation/1/")},
		"evolution_chain":      nil,
		"evolves_from_species": nil,
	}
	if e.chain != 0 {
		doc["evolution_chain"] = map[string]string{"url": fake.URL(fmt.Sprintf("/evolution-chain/%d/", e.chain))}
	}
	if e.from != 0 {
		doc["evolves_from_species"] = map[string]string{"url": fake.URL(fmt.Sprintf("/pokemon-species/%d/", e.from))}
	}
	return doc
}

func newTestPipeline(t *testing.T, fake *catalogtest.FakeCatalog, batchSize int, metrics *Metrics) (*Pipeline, *Store, *gorm.DB) {
	t.Helper()
	gormDB := openTestDB(t)
	store := NewStore(gormDB)
	client := catalog.New(catalog.Options{BaseURL: fake.URL("")})
	builder := conditions.NewBuilder(client, koEn, 600, logger.Nop())
	p := NewPipeline(client, builder, store, Options{BatchSize: batchSize, Langs: koEn, Metrics: metrics})
	return p, store, gormDB
}
