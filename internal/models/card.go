package models

import (
	"time"
)

// CardStats are the eight attributes printed on a card, each bounded 1-10.
type CardStats struct {
	Grilling     int `json:"grilling" yaml:"grilling"`
	LawnCare     int `json:"lawn_care" yaml:"lawn_care"`
	DadJokes     int `json:"dad_jokes" yaml:"dad_jokes"`
	Thermostat   int `json:"thermostat" yaml:"thermostat"`
	DIYRepair    int `json:"diy_repair" yaml:"diy_repair"`
	SportsTrivia int `json:"sports_trivia" yaml:"sports_trivia"`
	CarTalk      int `json:"car_talk" yaml:"car_talk"`
	Napping      int `json:"napping" yaml:"napping"`
}

const (
	StatMin = 1
	StatMax = 10
)

// Bounded reports whether every stat sits inside [StatMin, StatMax].
func (s CardStats) Bounded() bool {
	for _, v := range []int{
		s.Grilling, s.LawnCare, s.DadJokes, s.Thermostat,
		s.DIYRepair, s.SportsTrivia, s.CarTalk, s.Napping,
	} {
		if v < StatMin || v > StatMax {
			return false
		}
	}
	return true
}

// Card is immutable reference data from the static catalog.
type Card struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Subtitle   string    `json:"subtitle" yaml:"subtitle"`
	Type       string    `json:"type" yaml:"type"`
	FlavorText string    `json:"flavor_text" yaml:"flavor_text"`
	Artwork    string    `json:"artwork" yaml:"artwork"`
	Rarity     Rarity    `json:"rarity" yaml:"rarity"`
	Stats      CardStats `json:"stats" yaml:"stats"`
}

// DrawnCard is a card as pulled from a pack: catalog data by value plus the
// holo variant rolled at draw time.
type DrawnCard struct {
	Card
	Holo HoloVariant `json:"holo_variant"`
}

// IsHolo reports whether the draw rolled any holo overlay.
func (d DrawnCard) IsHolo() bool {
	return d.Holo != HoloNone && d.Holo != ""
}

// Pack is an atomically created, never-mutated sequence of drawn cards.
type Pack struct {
	ID         string      `json:"id"`
	Cards      []DrawnCard `json:"cards"`
	OpenedAt   time.Time   `json:"opened_at"`
	BestRarity Rarity      `json:"best_rarity"`
}

// HoloCount returns how many cards in the pack rolled a holo overlay.
func (p *Pack) HoloCount() int {
	n := 0
	for _, c := range p.Cards {
		if c.IsHolo() {
			n++
		}
	}
	return n
}

// CompressedCard is the stripped per-card record kept after quota compression.
type CompressedCard struct {
	ID     string `json:"id"`
	Rarity Rarity `json:"rarity"`
	Holo   bool   `json:"holo"`
}

// CompressedPack is a pack with non-essential display fields dropped.
// Flavor text and stat detail are gone; identity, rarity and timing stay.
type CompressedPack struct {
	ID         string           `json:"id"`
	Cards      []CompressedCard `json:"cards"`
	OpenedAt   time.Time        `json:"opened_at"`
	BestRarity Rarity           `json:"best_rarity"`
}

// Compress strips a pack down to its compressed form.
func (p *Pack) Compress() CompressedPack {
	cards := make([]CompressedCard, len(p.Cards))
	for i, c := range p.Cards {
		cards[i] = CompressedCard{ID: c.ID, Rarity: c.Rarity, Holo: c.IsHolo()}
	}
	return CompressedPack{
		ID:         p.ID,
		Cards:      cards,
		OpenedAt:   p.OpenedAt,
		BestRarity: p.BestRarity,
	}
}
