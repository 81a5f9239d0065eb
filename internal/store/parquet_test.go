package store

import (
	"testing"
	"time"

	"github.com/everstacklabs/modelfuse/internal/cache"
	"github.com/everstacklabs/modelfuse/internal/merge"
	"github.com/everstacklabs/modelfuse/internal/source/aa"
	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
)

func newStore(t *testing.T) (*Store, *cache.FileCache) {
	t.Helper()
	fc, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return New(fc), fc
}

func TestWriteReadMerged(t *testing.T) {
	s, fc := newStore(t)

	score := 61.4
	rows := []merge.Row{
		{
			ID:           1,
			Name:         "Claude 3.5 Sonnet",
			Slug:         "claude-3-5-sonnet",
			Creator:      "Anthropic",
			CreatorSlug:  "anthropic",
			Intelligence: &score,
			MatchKind:    "fuzzy",
			Matched:      true,
		},
		{
			ID:          2,
			Name:        "Mystery Model",
			Slug:        "mystery-model",
			Creator:     "Acme",
			CreatorSlug: "acme",
		},
	}

	if err := s.WriteMerged(rows); err != nil {
		t.Fatal(err)
	}
	if !fc.HasParquet("llms") {
		t.Fatal("llms.parquet not written")
	}

	got, err := s.ReadMerged()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}

	if got[0].Slug != "claude-3-5-sonnet" || !got[0].Matched || got[0].MatchKind != "fuzzy" {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[0].Intelligence == nil || *got[0].Intelligence != 61.4 {
		t.Errorf("Intelligence = %v, want 61.4", got[0].Intelligence)
	}
	// Optional fields absent on write stay absent on read.
	if got[1].Intelligence != nil || got[1].Matched {
		t.Errorf("row 1 = %+v", got[1])
	}
}

func TestWriteMedia(t *testing.T) {
	s, fc := newStore(t)

	elo := 1250.5
	rank := int32(1)
	models := []aa.MediaModel{
		{ID: 2, Name: "Midjourney", Slug: "midjourney", Creator: aa.Creator{Name: "Midjourney", Slug: "midjourney"}},
		{ID: 1, Name: "DALL-E 3", Slug: "dall-e-3", Creator: aa.Creator{Name: "OpenAI", Slug: "openai"}, ELO: &elo, Rank: &rank},
	}

	if err := s.WriteMedia("text_to_image", models); err != nil {
		t.Fatal(err)
	}
	if !fc.HasParquet("text_to_image") {
		t.Fatal("text_to_image.parquet not written")
	}

	rows, err := readParquet[MediaRow](fc.ParquetPath("text_to_image"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("read %d rows, want 2", len(rows))
	}

	// Sorted by slug, IDs stored as text.
	if rows[0].Slug != "dall-e-3" || rows[0].ID != "1" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].ELO == nil || *rows[0].ELO != 1250.5 {
		t.Errorf("ELO = %v, want 1250.5", rows[0].ELO)
	}
	if rows[0].Rank == nil || *rows[0].Rank != 1 {
		t.Errorf("Rank = %v, want 1", rows[0].Rank)
	}
	if rows[1].ELO != nil || rows[1].Rank != nil {
		t.Errorf("unranked row = %+v", rows[1])
	}
}

// Capability rows come out sorted by provider then model, whatever order the
// snapshot maps iterate in.
func TestWriteCapabilitiesDeterministic(t *testing.T) {
	s, fc := newStore(t)

	snapshot := modelsdev.Snapshot{
		"zeta": {
			ID:   "zeta",
			Name: "Zeta",
			Models: map[string]modelsdev.Model{
				"z-2": {ID: "z-2", Name: "Z 2"},
				"z-1": {ID: "z-1", Name: "Z 1"},
			},
		},
		"alpha": {
			ID:   "alpha",
			Name: "Alpha",
			Models: map[string]modelsdev.Model{
				"a-1": {ID: "a-1", Name: "A 1"},
			},
		},
	}

	if err := s.WriteCapabilities(snapshot); err != nil {
		t.Fatal(err)
	}

	rows, err := readParquet[CapabilityRow](fc.ParquetPath("models"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("read %d rows, want 3", len(rows))
	}
	wantOrder := []string{"a-1", "z-1", "z-2"}
	for i, want := range wantOrder {
		if rows[i].ModelID != want {
			t.Errorf("row %d = %s, want %s", i, rows[i].ModelID, want)
		}
	}
	if rows[0].ProviderName != "Alpha" {
		t.Errorf("ProviderName = %q", rows[0].ProviderName)
	}
}
