// Package packgen draws booster packs: slot-by-slot weighted rarity rolls
// with bad-luck protection and holo overlays.
package packgen

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// weightEpsilon is the tolerance when checking a pool sums to 1.0.
const weightEpsilon = 1e-6

// Slot is one card position in a pack: either a fixed tier or a weighted
// rarity pool. Slots are static configuration, read-only at draw time.
type Slot struct {
	Guaranteed models.Rarity             `yaml:"guaranteed,omitempty" json:"guaranteed,omitempty"`
	Pool       map[models.Rarity]float64 `yaml:"pool,omitempty" json:"pool,omitempty"`
}

// Config describes how packs are assembled.
type Config struct {
	CardsPerPack   int                            `yaml:"cards_per_pack" json:"cards_per_pack"`
	Slots          []Slot                         `yaml:"slots" json:"slots"`
	HoloChance     float64                        `yaml:"holo_chance" json:"holo_chance"`
	HoloWeights    map[models.HoloVariant]float64 `yaml:"holo_weights" json:"holo_weights"`
	PityThresholds map[models.Rarity]int          `yaml:"pity_thresholds" json:"pity_thresholds"`
}

// Default returns the stock six-card pack: one guaranteed common, four
// common-heavy pool slots and a "rare slot" weighted toward the high tiers.
func Default() *Config {
	commonPool := map[models.Rarity]float64{
		models.RarityCommon:    0.60,
		models.RarityUncommon:  0.25,
		models.RarityRare:      0.10,
		models.RarityEpic:      0.03,
		models.RarityLegendary: 0.015,
		models.RarityMythic:    0.005,
	}
	rareSlot := map[models.Rarity]float64{
		models.RarityRare:      0.79,
		models.RarityEpic:      0.15,
		models.RarityLegendary: 0.05,
		models.RarityMythic:    0.01,
	}
	slots := []Slot{{Guaranteed: models.RarityCommon}}
	for i := 0; i < 4; i++ {
		slots = append(slots, Slot{Pool: clonePool(commonPool)})
	}
	slots = append(slots, Slot{Pool: rareSlot})

	return &Config{
		CardsPerPack: 6,
		Slots:        slots,
		HoloChance:   0.08,
		HoloWeights: map[models.HoloVariant]float64{
			models.HoloStandard:  0.60,
			models.HoloReverse:   0.25,
			models.HoloFullArt:   0.10,
			models.HoloPrismatic: 0.05,
		},
		PityThresholds: map[models.Rarity]int{
			models.RarityRare:      10,
			models.RarityEpic:      30,
			models.RarityLegendary: 60,
			models.RarityMythic:    100,
		},
	}
}

func clonePool(pool map[models.Rarity]float64) map[models.Rarity]float64 {
	out := make(map[models.Rarity]float64, len(pool))
	for r, w := range pool {
		out[r] = w
	}
	return out
}

// LoadFile reads a YAML pack config and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pack config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pack config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config at startup so draw-time code can trust it.
func (c *Config) Validate() error {
	if c.CardsPerPack < 1 {
		return fmt.Errorf("pack config: cards_per_pack must be >= 1, got %d", c.CardsPerPack)
	}
	if len(c.Slots) != c.CardsPerPack {
		return fmt.Errorf("pack config: %d slots for %d cards per pack", len(c.Slots), c.CardsPerPack)
	}

	poolSlots := 0
	for i, slot := range c.Slots {
		switch {
		case slot.Guaranteed != "" && len(slot.Pool) > 0:
			return fmt.Errorf("pack config: slot %d has both a guaranteed tier and a pool", i+1)
		case slot.Guaranteed != "":
			if !slot.Guaranteed.Valid() {
				return fmt.Errorf("pack config: slot %d guarantees unknown tier %q", i+1, slot.Guaranteed)
			}
		case len(slot.Pool) > 0:
			poolSlots++
			total := 0.0
			for tier, w := range slot.Pool {
				if !tier.Valid() {
					return fmt.Errorf("pack config: slot %d pool has unknown tier %q", i+1, tier)
				}
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return fmt.Errorf("pack config: slot %d tier %s has invalid weight %v", i+1, tier, w)
				}
				total += w
			}
			if math.Abs(total-1.0) > weightEpsilon {
				return fmt.Errorf("pack config: slot %d pool sums to %v, want 1.0", i+1, total)
			}
		default:
			return fmt.Errorf("pack config: slot %d has neither a guaranteed tier nor a pool", i+1)
		}
	}

	if c.HoloChance < 0 || c.HoloChance > 1 {
		return fmt.Errorf("pack config: holo_chance %v outside [0,1]", c.HoloChance)
	}
	if c.HoloChance > 0 {
		if len(c.HoloWeights) == 0 {
			return fmt.Errorf("pack config: holo_chance set but no holo_weights")
		}
		for variant, w := range c.HoloWeights {
			if !variant.Valid() || variant == models.HoloNone {
				return fmt.Errorf("pack config: invalid holo variant %q", variant)
			}
			if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("pack config: holo variant %s has invalid weight %v", variant, w)
			}
		}
	}

	// Pity thresholds must be a total mapping over the protected tiers.
	for _, tier := range models.PityTiers {
		threshold, ok := c.PityThresholds[tier]
		if !ok {
			return fmt.Errorf("pack config: missing pity threshold for %s", tier)
		}
		if threshold < 1 {
			return fmt.Errorf("pack config: pity threshold for %s must be >= 1, got %d", tier, threshold)
		}
	}
	if poolSlots == 0 {
		// A pity guarantee needs a pool slot to land in.
		return fmt.Errorf("pack config: at least one slot must carry a rarity pool")
	}

	return nil
}

// HighestQualifying returns the highest pity-protected tier whose counter has
// reached its threshold. When several tiers qualify at once the highest one
// wins; lower tiers reset anyway once the higher card lands.
func (c *Config) HighestQualifying(pity *models.PityState) (models.Rarity, bool) {
	for i := len(models.PityTiers) - 1; i >= 0; i-- {
		tier := models.PityTiers[i]
		if pity.Count(tier) >= c.PityThresholds[tier] {
			return tier, true
		}
	}
	return "", false
}
