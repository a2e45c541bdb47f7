package models

// Rarity is one of six ordered tiers a card belongs to.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

// Rarities lists all tiers in ascending order of scarcity.
var Rarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
}

// PityTiers are the tiers protected by bad-luck counters, ascending.
var PityTiers = []Rarity{
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
}

var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
	RarityMythic:    5,
}

// Valid reports whether r is one of the six known tiers.
func (r Rarity) Valid() bool {
	_, ok := rarityRank[r]
	return ok
}

// Rank returns the position of r in the rarity order (common=0 .. mythic=5).
// Unknown tiers rank below common.
func (r Rarity) Rank() int {
	if rank, ok := rarityRank[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r is the same tier as other or a higher one.
func (r Rarity) AtLeast(other Rarity) bool {
	return r.Rank() >= other.Rank()
}

// MaxRarity returns the higher of the two tiers.
func MaxRarity(a, b Rarity) Rarity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// HoloVariant is a cosmetic overlay on a drawn card, independent of rarity.
type HoloVariant string

const (
	HoloNone      HoloVariant = "none"
	HoloStandard  HoloVariant = "standard"
	HoloReverse   HoloVariant = "reverse"
	HoloFullArt   HoloVariant = "full_art"
	HoloPrismatic HoloVariant = "prismatic"
)

// HoloVariants lists the non-none variants a holo roll can produce.
var HoloVariants = []HoloVariant{
	HoloStandard,
	HoloReverse,
	HoloFullArt,
	HoloPrismatic,
}

// Valid reports whether v is a known variant (including none).
func (v HoloVariant) Valid() bool {
	switch v {
	case HoloNone, HoloStandard, HoloReverse, HoloFullArt, HoloPrismatic:
		return true
	}
	return false
}
