package models

import (
	"time"
)

// Metadata holds aggregate counts over everything the user ever pulled.
// Archiving packs out of the live collection never decrements these, so
// live pack lists are a lower bound on the counts, not an exact match.
type Metadata struct {
	TotalPacks    int            `json:"total_packs"`
	RarityCounts  map[Rarity]int `json:"rarity_counts"`
	HoloCards     int            `json:"holo_cards"`
	UniqueCardIDs []string       `json:"unique_card_ids"`
	LastOpenedAt  time.Time      `json:"last_opened_at,omitempty"`
}

// NewMetadata returns empty metadata with every tier present in the counts
// map. Total mappings are validated at startup; no runtime fallbacks.
func NewMetadata() Metadata {
	counts := make(map[Rarity]int, len(Rarities))
	for _, r := range Rarities {
		counts[r] = 0
	}
	return Metadata{RarityCounts: counts, UniqueCardIDs: []string{}}
}

// Collection is the user's ordered pack history plus aggregate metadata.
// Compressed packs are always older than every full pack; insertion order
// within each list is chronological.
type Collection struct {
	Packs      []Pack           `json:"packs"`
	Compressed []CompressedPack `json:"compressed,omitempty"`
	Metadata   Metadata         `json:"metadata"`
}

// NewCollection returns an empty collection for a first-time user.
func NewCollection() *Collection {
	return &Collection{
		Packs:    []Pack{},
		Metadata: NewMetadata(),
	}
}

// PackCount returns the number of packs still held live (full + compressed).
func (c *Collection) PackCount() int {
	return len(c.Packs) + len(c.Compressed)
}

// PityState counts packs opened since the last qualifying pull per tier.
// Counters never go negative; a tier resets exactly when a pack contains a
// card of that tier or higher.
type PityState struct {
	PacksSinceRare      int `json:"packs_since_rare"`
	PacksSinceEpic      int `json:"packs_since_epic"`
	PacksSinceLegendary int `json:"packs_since_legendary"`
	PacksSinceMythic    int `json:"packs_since_mythic"`
}

// Count returns the counter for a pity-protected tier. Tiers below rare have
// no counter and always return 0.
func (p *PityState) Count(tier Rarity) int {
	switch tier {
	case RarityRare:
		return p.PacksSinceRare
	case RarityEpic:
		return p.PacksSinceEpic
	case RarityLegendary:
		return p.PacksSinceLegendary
	case RarityMythic:
		return p.PacksSinceMythic
	}
	return 0
}

func (p *PityState) set(tier Rarity, v int) {
	switch tier {
	case RarityRare:
		p.PacksSinceRare = v
	case RarityEpic:
		p.PacksSinceEpic = v
	case RarityLegendary:
		p.PacksSinceLegendary = v
	case RarityMythic:
		p.PacksSinceMythic = v
	}
}

// Record updates the counters after a pack whose best pull was best:
// tiers at or below best reset to 0, tiers above increment by 1.
func (p *PityState) Record(best Rarity) {
	for _, tier := range PityTiers {
		if best.AtLeast(tier) {
			p.set(tier, 0)
		} else {
			p.set(tier, p.Count(tier)+1)
		}
	}
}
