package packgen

import (
	"testing"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cards per pack", func(c *Config) { c.CardsPerPack = 0 }},
		{"slot count mismatch", func(c *Config) { c.Slots = c.Slots[:3] }},
		{"pool not summing to one", func(c *Config) {
			c.Slots[1].Pool[models.RarityCommon] = 0.9
		}},
		{"unknown tier in pool", func(c *Config) {
			c.Slots[1].Pool["shiny"] = 0.0
		}},
		{"negative weight", func(c *Config) {
			c.Slots[1].Pool[models.RarityCommon] -= 0.2
			c.Slots[1].Pool[models.RarityUncommon] += 0.2
			c.Slots[1].Pool[models.RarityRare] = -c.Slots[1].Pool[models.RarityRare]
		}},
		{"empty slot", func(c *Config) { c.Slots[1] = Slot{} }},
		{"both guaranteed and pool", func(c *Config) {
			c.Slots[1].Guaranteed = models.RarityCommon
		}},
		{"holo chance out of range", func(c *Config) { c.HoloChance = 1.5 }},
		{"missing pity threshold", func(c *Config) {
			delete(c.PityThresholds, models.RarityEpic)
		}},
		{"zero pity threshold", func(c *Config) {
			c.PityThresholds[models.RarityRare] = 0
		}},
		{"no pool slot anywhere", func(c *Config) {
			for i := range c.Slots {
				c.Slots[i] = Slot{Guaranteed: models.RarityCommon}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestHighestQualifyingPrecedence(t *testing.T) {
	cfg := Default()

	pity := &models.PityState{}
	if _, due := cfg.HighestQualifying(pity); due {
		t.Fatal("fresh pity state should not qualify")
	}

	// Both epic and legendary thresholds reached at once: highest wins.
	pity.PacksSinceEpic = 30
	pity.PacksSinceLegendary = 60
	tier, due := cfg.HighestQualifying(pity)
	if !due {
		t.Fatal("expected a qualifying tier")
	}
	if tier != models.RarityLegendary {
		t.Errorf("qualifying tier = %s, want legendary", tier)
	}
}
