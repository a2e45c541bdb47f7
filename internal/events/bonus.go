// Package events supplies probability-modifying bonuses from the live-events
// system and applies them to rarity pools.
package events

import (
	"fmt"
	"sync"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// BonusKind tags a bonus payload; every kind is matched exhaustively when
// applied.
type BonusKind string

const (
	// BonusMythicChance multiplies the mythic weight, subject to MythicCap.
	BonusMythicChance BonusKind = "mythic_chance"
	// BonusRarityBoost multiplies the weights of the target tiers.
	BonusRarityBoost BonusKind = "rarity_boost"
)

// MythicCap is the hard ceiling on the mythic weight after any bonus.
const MythicCap = 0.10

// Bonus is one active probability modifier.
type Bonus struct {
	Kind       BonusKind       `json:"kind"`
	Multiplier float64         `json:"multiplier"`
	Targets    []models.Rarity `json:"targets,omitempty"`
}

// Validate rejects unknown kinds, non-positive multipliers and bad targets.
func (b Bonus) Validate() error {
	if b.Multiplier <= 0 {
		return fmt.Errorf("bonus %s: multiplier must be positive, got %v", b.Kind, b.Multiplier)
	}
	switch b.Kind {
	case BonusMythicChance:
		return nil
	case BonusRarityBoost:
		if len(b.Targets) == 0 {
			return fmt.Errorf("bonus %s: no target tiers", b.Kind)
		}
		for _, t := range b.Targets {
			if !t.Valid() {
				return fmt.Errorf("bonus %s: unknown target tier %q", b.Kind, t)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown bonus kind %q", b.Kind)
}

// targetTiers resolves which tiers a bonus rescales.
func (b Bonus) targetTiers() []models.Rarity {
	switch b.Kind {
	case BonusMythicChance:
		return []models.Rarity{models.RarityMythic}
	case BonusRarityBoost:
		return b.Targets
	}
	return nil
}

// Provider supplies the currently active bonuses.
type Provider interface {
	ActiveBonuses() []Bonus
}

// StaticProvider is an explicitly constructed, explicitly lifetimed bonus
// source owned by the composition root. The admin API swaps its contents.
type StaticProvider struct {
	mu      sync.RWMutex
	bonuses []Bonus
}

func NewStaticProvider(bonuses ...Bonus) *StaticProvider {
	return &StaticProvider{bonuses: bonuses}
}

func (p *StaticProvider) ActiveBonuses() []Bonus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Bonus, len(p.bonuses))
	copy(out, p.bonuses)
	return out
}

// SetActive replaces the active bonus list after validating every entry.
func (p *StaticProvider) SetActive(bonuses []Bonus) error {
	for _, b := range bonuses {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.bonuses = append([]Bonus(nil), bonuses...)
	p.mu.Unlock()
	return nil
}

// Apply rescales a rarity pool by the active bonuses and renormalizes so the
// pool still sums to 1.0. Boosted tiers are scaled first (mythic clamped to
// MythicCap), then the untouched tiers are shrunk proportionally to absorb
// the difference. The input map is not mutated.
func Apply(weights map[models.Rarity]float64, bonuses []Bonus) map[models.Rarity]float64 {
	out := make(map[models.Rarity]float64, len(weights))
	for r, w := range weights {
		out[r] = w
	}
	if len(bonuses) == 0 {
		return out
	}

	boosted := make(map[models.Rarity]bool)
	for _, b := range bonuses {
		for _, tier := range b.targetTiers() {
			if _, present := out[tier]; !present {
				continue
			}
			out[tier] *= b.Multiplier
			boosted[tier] = true
		}
	}
	if boosted[models.RarityMythic] && out[models.RarityMythic] > MythicCap {
		out[models.RarityMythic] = MythicCap
	}

	var boostedSum, restSum float64
	for r, w := range out {
		if boosted[r] {
			boostedSum += w
		} else {
			restSum += w
		}
	}

	if boostedSum >= 1 || restSum <= 0 {
		// Degenerate pool: nothing left to absorb the boost, fall back to a
		// straight normalization.
		total := boostedSum + restSum
		if total <= 0 {
			return out
		}
		for r := range out {
			out[r] /= total
		}
		return out
	}

	scale := (1 - boostedSum) / restSum
	for r := range out {
		if !boosted[r] {
			out[r] *= scale
		}
	}
	return out
}
