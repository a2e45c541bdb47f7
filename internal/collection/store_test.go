package collection

import (
	"fmt"
	"testing"
	"time"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

func testPack(n int, rarities ...models.Rarity) *models.Pack {
	cards := make([]models.DrawnCard, 0, len(rarities))
	best := rarities[0]
	for i, r := range rarities {
		cards = append(cards, models.DrawnCard{
			Card: models.Card{ID: fmt.Sprintf("card-%s-%d", r, i), Rarity: r},
			Holo: models.HoloNone,
		})
		best = models.MaxRarity(best, r)
	}
	return &models.Pack{
		ID:         fmt.Sprintf("pack-%d", n),
		Cards:      cards,
		OpenedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour),
		BestRarity: best,
	}
}

func TestAppendKeepsMetadataConsistent(t *testing.T) {
	s := NewStore()

	s.Append(testPack(1, models.RarityCommon, models.RarityCommon, models.RarityRare))
	s.Append(testPack(2, models.RarityCommon, models.RarityEpic, models.RarityRare))

	stats := s.Stats()
	if stats.TotalPacks != 2 {
		t.Errorf("total packs = %d, want 2", stats.TotalPacks)
	}
	if stats.RarityCounts[models.RarityCommon] != 3 {
		t.Errorf("common count = %d, want 3", stats.RarityCounts[models.RarityCommon])
	}
	if stats.RarityCounts[models.RarityRare] != 2 {
		t.Errorf("rare count = %d, want 2", stats.RarityCounts[models.RarityRare])
	}
	if stats.RarityCounts[models.RarityEpic] != 1 {
		t.Errorf("epic count = %d, want 1", stats.RarityCounts[models.RarityEpic])
	}
	if err := s.ConsistencyCheck(); err != nil {
		t.Errorf("consistency check failed: %v", err)
	}
}

func TestAppendTracksUniqueCards(t *testing.T) {
	s := NewStore()

	// Same card ids in both packs: unique count must not double.
	s.Append(testPack(1, models.RarityCommon, models.RarityRare))
	s.Append(testPack(2, models.RarityCommon, models.RarityRare))

	if got := s.Stats().UniqueCards; got != 2 {
		t.Errorf("unique cards = %d, want 2", got)
	}
}

func TestAppendCountsHolos(t *testing.T) {
	s := NewStore()
	pack := testPack(1, models.RarityCommon, models.RarityCommon)
	pack.Cards[1].Holo = models.HoloPrismatic
	s.Append(pack)

	if got := s.Stats().HoloCards; got != 1 {
		t.Errorf("holo cards = %d, want 1", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	s.Append(testPack(1, models.RarityCommon, models.RarityRare))

	snap := s.Snapshot()
	snap.Packs[0].Cards[0].ID = "tampered"
	snap.Metadata.RarityCounts[models.RarityCommon] = 99

	if s.Snapshot().Packs[0].Cards[0].ID == "tampered" {
		t.Error("snapshot shares card storage with the live collection")
	}
	if s.Stats().RarityCounts[models.RarityCommon] == 99 {
		t.Error("snapshot shares metadata storage with the live collection")
	}
}

func TestHydrateRebuildsUniqueIndex(t *testing.T) {
	col := models.NewCollection()
	p := testPack(1, models.RarityCommon, models.RarityRare)
	col.Packs = append(col.Packs, *p)
	col.Compressed = append(col.Compressed, models.CompressedPack{
		ID:         "old-pack",
		Cards:      []models.CompressedCard{{ID: "ancient-card", Rarity: models.RarityCommon}},
		OpenedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BestRarity: models.RarityCommon,
	})

	s := NewStore()
	s.Hydrate(col, &models.PityState{PacksSinceRare: 4})

	stats := s.Stats()
	if stats.LivePacks != 2 {
		t.Errorf("live packs = %d, want 2", stats.LivePacks)
	}
	// Two ids from the full pack plus one from the compressed pack.
	if got := len(s.Snapshot().Metadata.UniqueCardIDs); got != 3 {
		t.Errorf("unique card ids = %d, want 3", got)
	}
	if s.Pity().PacksSinceRare != 4 {
		t.Errorf("pity not hydrated: %+v", s.Pity())
	}
}

func TestPityRecordSemantics(t *testing.T) {
	pity := &models.PityState{
		PacksSinceRare:      3,
		PacksSinceEpic:      7,
		PacksSinceLegendary: 20,
		PacksSinceMythic:    50,
	}
	pity.Record(models.RarityEpic)

	if pity.PacksSinceRare != 0 || pity.PacksSinceEpic != 0 {
		t.Errorf("tiers at or below epic must reset: %+v", *pity)
	}
	if pity.PacksSinceLegendary != 21 || pity.PacksSinceMythic != 51 {
		t.Errorf("tiers above epic must increment by 1: %+v", *pity)
	}

	pity.Record(models.RarityCommon)
	if pity.PacksSinceRare != 1 {
		t.Errorf("rare counter after common pack = %d, want 1", pity.PacksSinceRare)
	}
}

func TestDrawAppendsUnderOneLock(t *testing.T) {
	s := NewStore()

	// Writer opens packs through Draw while readers poll the pity state
	// and stats; the race detector flags any split locking here.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_, err := s.Draw(func(p *models.PityState) (*models.Pack, error) {
				p.Record(models.RarityCommon)
				return testPack(i, models.RarityCommon), nil
			})
			if err != nil {
				t.Errorf("draw %d failed: %v", i, err)
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		_ = s.Pity()
		_ = s.Stats()
	}
	<-done

	if got := s.Stats().TotalPacks; got != 200 {
		t.Fatalf("total packs = %d, want 200", got)
	}
	if s.Pity().PacksSinceRare != 200 {
		t.Fatalf("pity counter = %d, want 200", s.Pity().PacksSinceRare)
	}
}

func TestDrawErrorAppendsNothing(t *testing.T) {
	s := NewStore()
	_, err := s.Draw(func(*models.PityState) (*models.Pack, error) {
		return nil, models.ErrCatalogExhausted
	})
	if err == nil {
		t.Fatal("expected the draw error to surface")
	}
	if s.Stats().TotalPacks != 0 {
		t.Fatalf("failed draw appended a pack: %+v", s.Stats())
	}
}
