package collection

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := NewStore()
	p1 := testPack(1, models.RarityCommon, models.RarityRare, models.RarityCommon)
	p1.Cards[1].Holo = models.HoloStandard
	src.Append(p1)
	src.Append(testPack(2, models.RarityCommon, models.RarityMythic))
	src.SetPity(models.PityState{PacksSinceLegendary: 17})

	data, err := src.Export()
	if err != nil {
		t.Fatal(err)
	}

	dst := NewStore()
	if err := dst.Import(data); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(src.Snapshot(), dst.Snapshot()) {
		t.Error("imported collection differs from exported one")
	}
	if src.Pity() != dst.Pity() {
		t.Errorf("pity state did not round-trip: %+v vs %+v", src.Pity(), dst.Pity())
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	valid := func() map[string]any {
		s := NewStore()
		s.Append(testPack(1, models.RarityCommon, models.RarityRare))
		data, _ := s.Export()
		var doc map[string]any
		_ = json.Unmarshal(data, &doc)
		return doc
	}

	tests := []struct {
		name   string
		mutate func(map[string]any) any
	}{
		{"not json", func(map[string]any) any { return "{{{" }},
		{"missing collection", func(doc map[string]any) any {
			delete(doc, "collection")
			return doc
		}},
		{"collection not object", func(doc map[string]any) any {
			doc["collection"] = 42
			return doc
		}},
		{"packs not a sequence", func(doc map[string]any) any {
			doc["collection"].(map[string]any)["packs"] = "nope"
			return doc
		}},
		{"missing packs", func(doc map[string]any) any {
			delete(doc["collection"].(map[string]any), "packs")
			return doc
		}},
		{"missing metadata", func(doc map[string]any) any {
			delete(doc["collection"].(map[string]any), "metadata")
			return doc
		}},
		{"unsupported version", func(doc map[string]any) any {
			doc["version"] = 99
			return doc
		}},
		{"pack with unknown rarity", func(doc map[string]any) any {
			packs := doc["collection"].(map[string]any)["packs"].([]any)
			card := packs[0].(map[string]any)["cards"].([]any)[0].(map[string]any)
			card["rarity"] = "shiny"
			return doc
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := tt.mutate(valid())
			var data []byte
			if s, ok := payload.(string); ok {
				data = []byte(s)
			} else {
				data, _ = json.Marshal(payload)
			}

			dst := NewStore()
			dst.Append(testPack(9, models.RarityCommon, models.RarityCommon))
			before := dst.Snapshot()

			err := dst.Import(data)
			if !errors.Is(err, models.ErrInvalidFormat) {
				t.Fatalf("err = %v, want ErrInvalidFormat", err)
			}
			// Never partially applied.
			if !reflect.DeepEqual(before, dst.Snapshot()) {
				t.Error("failed import mutated the store")
			}
		})
	}
}

func TestRoundTripKeepsArchivedUniqueCards(t *testing.T) {
	src := NewStore()
	src.Append(testPack(1, models.RarityCommon, models.RarityRare))
	src.Append(testPack(2, models.RarityEpic, models.RarityMythic))

	// Move the first pack to the cold archive: it leaves the live lists
	// but its cards remain in the totals-ever metadata.
	trimmed := src.Snapshot()
	trimmed.Packs = trimmed.Packs[1:]
	src.ApplyRemediation(trimmed)

	before := src.Snapshot().Metadata.UniqueCardIDs
	if len(before) != 4 {
		t.Fatalf("unique ids before export = %d, want 4", len(before))
	}

	data, err := src.Export()
	if err != nil {
		t.Fatal(err)
	}
	dst := NewStore()
	if err := dst.Import(data); err != nil {
		t.Fatal(err)
	}

	after := dst.Snapshot().Metadata.UniqueCardIDs
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("unique ids changed across export/import: %v vs %v", before, after)
	}
}
