package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zulandar/evodex/internal/db"
	"github.com/zulandar/evodex/internal/models"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb, err := db.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	records := []models.Record{
		{ID: 1, Name: "이상해씨", Image: "1.png", ShinyImage: "1s.png", Attribute: "풀,독", Generation: 1, EvolutionChainID: intPtr(1)},
		{ID: 2, Name: "이상해풀", Image: "2.png", ShinyImage: "2s.png", Attribute: "풀,독", Generation: 1, EvolutionChainID: intPtr(1)},
		{ID: 25, Name: "피카츄", Image: "25.png", ShinyImage: "25s.png", Attribute: "전기", Generation: 1, EvolutionChainID: intPtr(10)},
		{ID: 132, Name: "메타몽", Image: "132.png", ShinyImage: "132s.png", Attribute: "노말", Generation: 1},
		{ID: 172, Name: "피츄", Image: "172.png", ShinyImage: "172s.png", Attribute: "전기", Generation: 2, EvolutionChainID: intPtr(10)},
		{ID: 387, Name: "모부기", Image: "387.png", ShinyImage: "387s.png", Attribute: "풀", Generation: 4, EvolutionChainID: intPtr(200)},
		{ID: 900, Name: "100%_name", Image: "900.png", Generation: 9},
	}
	if err := gdb.Create(&records).Error; err != nil {
		t.Fatalf("seed records: %v", err)
	}
	relations := []models.Relation{
		{FromID: 1, ToID: 2, Conditions: "레벨 16 이상"},
		{FromID: 172, ToID: 25, Conditions: "행복도 220 이상"},
	}
	if err := gdb.Create(&relations).Error; err != nil {
		t.Fatalf("seed relations: %v", err)
	}
	return NewService(gdb), gdb
}

func ids(list []Summary) []int {
	out := make([]int, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestFindOne_WithTree(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.FindOne(context.Background(), 2)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.Record.Name != "이상해풀" {
		t.Errorf("Record.Name = %q, want %q", got.Record.Name, "이상해풀")
	}
	if got.Tree == nil {
		t.Fatal("Tree = nil, want tree rooted at 1")
	}
	if got.Tree.Record.ID != 1 {
		t.Errorf("root id = %d, want 1", got.Tree.Record.ID)
	}
	if got.Tree.Conditions != models.NotAvailable {
		t.Errorf("root conditions = %q, want %q", got.Tree.Conditions, models.NotAvailable)
	}
	if len(got.Tree.EvolvesTo) != 1 || got.Tree.EvolvesTo[0].Conditions != "레벨 16 이상" {
		t.Errorf("children = %+v, want one child with level condition", got.Tree.EvolvesTo)
	}
}

func TestFindOne_NoChain(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.FindOne(context.Background(), 132)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if got.Tree != nil {
		t.Errorf("Tree = %+v, want nil", got.Tree)
	}
}

func TestFindOne_NotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.FindOne(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindAll_OrderedSummaries(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 25, 132, 172, 387, 900}, ids(got)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	want := Summary{ID: 25, Name: "피카츄", Image: "25.png", ShinyImage: "25s.png"}
	if diff := cmp.Diff(want, got[2]); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestFindByGeneration(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		gen  int
		want []int
	}{
		{1, []int{1, 2, 25, 132}},
		{2, []int{172}},
		{3, []int{}},
	}
	for _, tt := range tests {
		got, err := svc.FindByGeneration(context.Background(), tt.gen)
		if err != nil {
			t.Fatalf("FindByGeneration(%d): %v", tt.gen, err)
		}
		if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
			t.Errorf("FindByGeneration(%d) mismatch (-want +got):\n%s", tt.gen, diff)
		}
	}
}

func TestSearch(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name string
		q    SearchQuery
		want []int
	}{
		{"text in one generation", SearchQuery{Generations: []int{1}, Text: "피"}, []int{25}},
		{"text across generations", SearchQuery{Generations: []int{1, 2}, Text: "피"}, []int{25, 172}},
		{"empty generations means all", SearchQuery{Text: "이상해"}, []int{1, 2}},
		{"empty text", SearchQuery{Generations: []int{4}}, []int{387}},
		{"no match", SearchQuery{Generations: []int{2}, Text: "이상해"}, []int{}},
		{"wildcards are literal", SearchQuery{Text: "%_"}, []int{900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(context.Background(), tt.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch_IncludesAttribute(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.Search(context.Background(), SearchQuery{Text: "피카츄"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Attribute != "전기" {
		t.Errorf("Attribute = %q, want %q", got[0].Attribute, "전기")
	}
}

func TestSteps(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.Steps(context.Background(), 25)
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].FromID != 172 || got[0].ToID != 25 {
		t.Errorf("step = %d->%d, want 172->25", got[0].FromID, got[0].ToID)
	}

	none, err := svc.Steps(context.Background(), 132)
	if err != nil {
		t.Fatalf("Steps(132): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Steps(132) len = %d, want 0", len(none))
	}

	if _, err := svc.Steps(context.Background(), 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Steps(9999) err = %v, want ErrNotFound", err)
	}
}

func TestCount(t *testing.T) {
	svc, _ := setupService(t)

	got, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 7 {
		t.Errorf("Count = %d, want 7", got)
	}
}
