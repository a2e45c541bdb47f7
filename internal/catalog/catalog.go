// Package catalog supplies the static card reference data. The pack
// generator treats it as read-only; cards never change after load.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// Catalog indexes the full card list by id and by rarity.
type Catalog struct {
	all      []models.Card
	byID     map[string]models.Card
	byRarity map[models.Rarity][]models.Card
}

// New builds a catalog from a card list, validating card integrity up front
// so draw-time code never has to handle malformed reference data.
func New(cards []models.Card) (*Catalog, error) {
	c := &Catalog{
		all:      make([]models.Card, 0, len(cards)),
		byID:     make(map[string]models.Card, len(cards)),
		byRarity: make(map[models.Rarity][]models.Card),
	}

	for i, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("catalog: card %d has no id", i)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate card id %q", card.ID)
		}
		if !card.Rarity.Valid() {
			return nil, fmt.Errorf("catalog: card %q has unknown rarity %q", card.ID, card.Rarity)
		}
		if !card.Stats.Bounded() {
			return nil, fmt.Errorf("catalog: card %q has stats outside %d-%d", card.ID, models.StatMin, models.StatMax)
		}
		c.all = append(c.all, card)
		c.byID[card.ID] = card
		c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], card)
	}

	return c, nil
}

type catalogFile struct {
	Cards []models.Card `yaml:"cards"`
}

// LoadFile reads a YAML catalog file and builds the catalog from it.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("catalog: %s contains no cards", path)
	}
	return New(file.Cards)
}

// ByID looks up a single card.
func (c *Catalog) ByID(id string) (models.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// OfRarity returns every card of the given tier. The returned slice is
// shared; callers must not mutate it.
func (c *Catalog) OfRarity(r models.Rarity) []models.Card {
	return c.byRarity[r]
}

// Size returns the total number of cards in the catalog.
func (c *Catalog) Size() int {
	return len(c.all)
}

// CountByRarity returns how many cards exist per tier, with every tier
// present in the result.
func (c *Catalog) CountByRarity() map[models.Rarity]int {
	counts := make(map[models.Rarity]int, len(models.Rarities))
	for _, r := range models.Rarities {
		counts[r] = len(c.byRarity[r])
	}
	return counts
}
