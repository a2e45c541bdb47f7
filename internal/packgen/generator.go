package packgen

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BowmanStephen/dadpack-backend/internal/catalog"
	"github.com/BowmanStephen/dadpack-backend/internal/events"
	"github.com/BowmanStephen/dadpack-backend/internal/models"
	"github.com/BowmanStephen/dadpack-backend/internal/rng"
)

// Generator produces packs from a validated config, a catalog and an engine.
// It is not safe for concurrent use; the open-pack flow is its sole caller.
type Generator struct {
	cfg     *Config
	cat     *catalog.Catalog
	bonuses events.Provider
	eng     *rng.Engine
	now     func() time.Time
}

// New builds a generator. The bonus provider may be nil when no live events
// are wired in.
func New(cfg *Config, cat *catalog.Catalog, bonuses events.Provider, eng *rng.Engine) *Generator {
	return &Generator{
		cfg:     cfg,
		cat:     cat,
		bonuses: bonuses,
		eng:     eng,
		now:     time.Now,
	}
}

// Open draws exactly one pack and updates the pity counters. The pity
// override, when due, lands in the first rarity-pool slot and the highest
// qualifying tier takes precedence.
func (g *Generator) Open(pity *models.PityState) (*models.Pack, error) {
	var active []events.Bonus
	if g.bonuses != nil {
		active = g.bonuses.ActiveBonuses()
	}

	pityTier, pityDue := g.cfg.HighestQualifying(pity)

	cards := make([]models.DrawnCard, 0, g.cfg.CardsPerPack)
	for i, slot := range g.cfg.Slots {
		var tier models.Rarity
		switch {
		case slot.Guaranteed != "":
			tier = slot.Guaranteed
		case pityDue:
			// Pity guarantee takes precedence over the configured pool for
			// this slot only.
			tier = pityTier
			pityDue = false
		default:
			effective := events.Apply(slot.Pool, active)
			picked, err := g.drawRarity(effective)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", i+1, err)
			}
			tier = picked
		}

		card, err := g.drawCard(tier)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i+1, err)
		}
		cards = append(cards, g.rollHolo(card))
	}

	best := cards[0].Rarity
	for _, c := range cards[1:] {
		best = models.MaxRarity(best, c.Rarity)
	}

	pack := &models.Pack{
		ID:         uuid.New().String(),
		Cards:      cards,
		OpenedAt:   g.now(),
		BestRarity: best,
	}

	pity.Record(best)
	return pack, nil
}

// drawRarity runs the weighted roll over an effective probability table.
func (g *Generator) drawRarity(weights map[models.Rarity]float64) (models.Rarity, error) {
	labels := make(map[string]float64, len(weights))
	for tier, w := range weights {
		labels[string(tier)] = w
	}
	label, err := g.eng.WeightedRandom(labels)
	if err != nil {
		return "", fmt.Errorf("rarity roll: %w", err)
	}
	return models.Rarity(label), nil
}

// drawCard picks uniformly among the catalog's cards of the given tier.
func (g *Generator) drawCard(tier models.Rarity) (models.Card, error) {
	pool := g.cat.OfRarity(tier)
	card, ok := rng.Pick(g.eng, pool)
	if !ok {
		return models.Card{}, fmt.Errorf("%w: no cards of rarity %s", models.ErrCatalogExhausted, tier)
	}
	return card, nil
}

// rollHolo independently upgrades a drawn card to a holo variant.
func (g *Generator) rollHolo(card models.Card) models.DrawnCard {
	drawn := models.DrawnCard{Card: card, Holo: models.HoloNone}
	if g.cfg.HoloChance <= 0 || g.eng.Next() >= g.cfg.HoloChance {
		return drawn
	}
	labels := make(map[string]float64, len(g.cfg.HoloWeights))
	for variant, w := range g.cfg.HoloWeights {
		labels[string(variant)] = w
	}
	label, err := g.eng.WeightedRandom(labels)
	if err != nil {
		// Validated config cannot get here; keep the card non-holo.
		return drawn
	}
	drawn.Holo = models.HoloVariant(label)
	return drawn
}
