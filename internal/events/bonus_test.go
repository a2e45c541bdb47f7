package events

import (
	"math"
	"testing"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

func basePool() map[models.Rarity]float64 {
	return map[models.Rarity]float64{
		models.RarityCommon:    0.60,
		models.RarityUncommon:  0.25,
		models.RarityRare:      0.10,
		models.RarityEpic:      0.03,
		models.RarityLegendary: 0.015,
		models.RarityMythic:    0.005,
	}
}

func sum(weights map[models.Rarity]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

func TestApplyNoBonusesCopies(t *testing.T) {
	in := basePool()
	out := Apply(in, nil)
	out[models.RarityCommon] = 0
	if in[models.RarityCommon] != 0.60 {
		t.Fatal("Apply mutated its input")
	}
}

func TestApplyMythicChanceRenormalizes(t *testing.T) {
	out := Apply(basePool(), []Bonus{{Kind: BonusMythicChance, Multiplier: 2}})

	if got := out[models.RarityMythic]; math.Abs(got-0.01) > 1e-9 {
		t.Errorf("mythic weight = %v, want 0.01", got)
	}
	if total := sum(out); math.Abs(total-1.0) > 1e-9 {
		t.Errorf("pool sums to %v after bonus, want 1.0", total)
	}
}

func TestApplyMythicCap(t *testing.T) {
	out := Apply(basePool(), []Bonus{{Kind: BonusMythicChance, Multiplier: 100}})

	if got := out[models.RarityMythic]; got > MythicCap+1e-9 {
		t.Errorf("mythic weight %v exceeds cap %v", got, MythicCap)
	}
	if total := sum(out); math.Abs(total-1.0) > 1e-9 {
		t.Errorf("pool sums to %v after capped bonus, want 1.0", total)
	}
}

func TestApplyRarityBoost(t *testing.T) {
	out := Apply(basePool(), []Bonus{{
		Kind:       BonusRarityBoost,
		Multiplier: 3,
		Targets:    []models.Rarity{models.RarityRare, models.RarityEpic},
	}})

	if got := out[models.RarityRare]; math.Abs(got-0.30) > 1e-9 {
		t.Errorf("rare weight = %v, want 0.30", got)
	}
	if got := out[models.RarityEpic]; math.Abs(got-0.09) > 1e-9 {
		t.Errorf("epic weight = %v, want 0.09", got)
	}
	if total := sum(out); math.Abs(total-1.0) > 1e-9 {
		t.Errorf("pool sums to %v after boost, want 1.0", total)
	}
	// Untouched tiers keep their relative proportions.
	ratio := out[models.RarityCommon] / out[models.RarityUncommon]
	if math.Abs(ratio-0.60/0.25) > 1e-9 {
		t.Errorf("untouched tiers no longer proportional: ratio %v", ratio)
	}
}

func TestBonusValidate(t *testing.T) {
	tests := []struct {
		name    string
		bonus   Bonus
		wantErr bool
	}{
		{"valid mythic chance", Bonus{Kind: BonusMythicChance, Multiplier: 2}, false},
		{"valid rarity boost", Bonus{Kind: BonusRarityBoost, Multiplier: 1.5, Targets: []models.Rarity{models.RarityRare}}, false},
		{"zero multiplier", Bonus{Kind: BonusMythicChance, Multiplier: 0}, true},
		{"boost without targets", Bonus{Kind: BonusRarityBoost, Multiplier: 2}, true},
		{"boost with bad target", Bonus{Kind: BonusRarityBoost, Multiplier: 2, Targets: []models.Rarity{"shiny"}}, true},
		{"unknown kind", Bonus{Kind: "coupon", Multiplier: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bonus.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStaticProviderSetActiveRejectsInvalid(t *testing.T) {
	p := NewStaticProvider()
	err := p.SetActive([]Bonus{{Kind: "coupon", Multiplier: 2}})
	if err == nil {
		t.Fatal("expected error for invalid bonus")
	}
	if len(p.ActiveBonuses()) != 0 {
		t.Fatal("invalid SetActive must not partially apply")
	}
}

func TestApplyLeavesUntargetedMythicUncapped(t *testing.T) {
	// A config is free to run a mythic weight above the cap; the cap only
	// limits what a bonus can push it to.
	pool := map[models.Rarity]float64{
		models.RarityCommon: 0.70,
		models.RarityRare:   0.10,
		models.RarityMythic: 0.20,
	}
	out := Apply(pool, []Bonus{{
		Kind:       BonusRarityBoost,
		Multiplier: 2,
		Targets:    []models.Rarity{models.RarityRare},
	}})

	if out[models.RarityMythic] <= MythicCap {
		t.Fatalf("untargeted mythic weight clamped to %v", out[models.RarityMythic])
	}
	if math.Abs(sum(out)-1.0) > 1e-9 {
		t.Fatalf("pool no longer sums to 1.0: %v", sum(out))
	}
}
