// Package collection holds the user's in-memory pack history. The open-pack
// flow is the sole writer; readers get copies, never internal state.
package collection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// Store wraps a Collection and PityState behind a mutex and keeps the
// aggregate metadata consistent with the pack lists on every mutation.
type Store struct {
	mu   sync.RWMutex
	col  *models.Collection
	pity *models.PityState
	seen map[string]struct{}
}

// NewStore returns an empty store for a first-time user.
func NewStore() *Store {
	return &Store{
		col:  models.NewCollection(),
		pity: &models.PityState{},
		seen: make(map[string]struct{}),
	}
}

// Hydrate replaces the store contents with persisted state, rebuilding the
// unique-card index from the pack lists.
func (s *Store) Hydrate(col *models.Collection, pity *models.PityState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col == nil {
		col = models.NewCollection()
	}
	if pity == nil {
		pity = &models.PityState{}
	}
	if col.Metadata.RarityCounts == nil {
		col.Metadata = recomputeMetadata(col)
	}

	// Persisted unique ids are the baseline: archived packs may be the only
	// place a card was ever pulled, so live packs can only add to the set.
	seen := make(map[string]struct{})
	for _, id := range col.Metadata.UniqueCardIDs {
		seen[id] = struct{}{}
	}
	for _, p := range col.Packs {
		for _, c := range p.Cards {
			seen[c.ID] = struct{}{}
		}
	}
	for _, p := range col.Compressed {
		for _, c := range p.Cards {
			seen[c.ID] = struct{}{}
		}
	}

	s.col = col
	s.pity = pity
	s.seen = seen
	s.col.Metadata.UniqueCardIDs = sortedKeys(seen)
}

// Draw runs one pack draw against the live pity state and appends the
// result, all inside a single critical section so pity readers never
// observe a half-updated state.
func (s *Store) Draw(open func(*models.PityState) (*models.Pack, error)) (*models.Pack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pack, err := open(s.pity)
	if err != nil {
		return nil, err
	}
	s.appendLocked(pack)
	return pack, nil
}

// Append records one freshly opened pack and updates metadata in step.
func (s *Store) Append(pack *models.Pack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(pack)
}

func (s *Store) appendLocked(pack *models.Pack) {
	s.col.Packs = append(s.col.Packs, *pack)

	md := &s.col.Metadata
	md.TotalPacks++
	md.LastOpenedAt = pack.OpenedAt
	for _, c := range pack.Cards {
		md.RarityCounts[c.Rarity]++
		if c.IsHolo() {
			md.HoloCards++
		}
		if _, ok := s.seen[c.ID]; !ok {
			s.seen[c.ID] = struct{}{}
		}
	}
	md.UniqueCardIDs = sortedKeys(s.seen)
}

// Snapshot returns a deep copy of the collection for saving or exporting.
func (s *Store) Snapshot() *models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCollection(s.col)
}

// Pity returns a copy of the current pity counters.
func (s *Store) Pity() models.PityState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.pity
}

// SetPity replaces the pity counters wholesale, for hydration and tests.
func (s *Store) SetPity(pity models.PityState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.pity = pity
}

// ApplyRemediation adopts the compressed/archived shape produced by a save
// remediation so the in-memory state matches what was persisted.
func (s *Store) ApplyRemediation(col *models.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.col = cloneCollection(col)
}

// Stats is the aggregate view served to the collection screen.
type Stats struct {
	TotalPacks   int                   `json:"total_packs"`
	LivePacks    int                   `json:"live_packs"`
	RarityCounts map[models.Rarity]int `json:"rarity_counts"`
	HoloCards    int                   `json:"holo_cards"`
	UniqueCards  int                   `json:"unique_cards"`
	LastOpenedAt string                `json:"last_opened_at,omitempty"`
}

// Stats summarizes the collection.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Rarity]int, len(models.Rarities))
	for _, r := range models.Rarities {
		counts[r] = s.col.Metadata.RarityCounts[r]
	}
	st := Stats{
		TotalPacks:   s.col.Metadata.TotalPacks,
		LivePacks:    s.col.PackCount(),
		RarityCounts: counts,
		HoloCards:    s.col.Metadata.HoloCards,
		UniqueCards:  len(s.col.Metadata.UniqueCardIDs),
	}
	if !s.col.Metadata.LastOpenedAt.IsZero() {
		st.LastOpenedAt = s.col.Metadata.LastOpenedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return st
}

// ConsistencyCheck verifies metadata against the pack lists. Used by tests
// and the admin endpoint; drift is a bug.
func (s *Store) ConsistencyCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := recomputeMetadata(s.col)
	got := s.col.Metadata
	if got.TotalPacks < s.col.PackCount() {
		return fmt.Errorf("metadata: total packs %d below live pack count %d", got.TotalPacks, s.col.PackCount())
	}
	for _, r := range models.Rarities {
		// Rarity counts cover all packs ever opened; the recomputed view only
		// sees live packs, so live counts can never exceed the metadata.
		if got.RarityCounts[r] < want.RarityCounts[r] {
			return fmt.Errorf("metadata: %s count %d below live count %d", r, got.RarityCounts[r], want.RarityCounts[r])
		}
	}
	return nil
}

func recomputeMetadata(col *models.Collection) models.Metadata {
	md := models.NewMetadata()
	seen := make(map[string]struct{})
	md.TotalPacks = col.PackCount()
	for _, p := range col.Packs {
		for _, c := range p.Cards {
			md.RarityCounts[c.Rarity]++
			if c.IsHolo() {
				md.HoloCards++
			}
			seen[c.ID] = struct{}{}
		}
		if p.OpenedAt.After(md.LastOpenedAt) {
			md.LastOpenedAt = p.OpenedAt
		}
	}
	for _, p := range col.Compressed {
		for _, c := range p.Cards {
			md.RarityCounts[c.Rarity]++
			if c.Holo {
				md.HoloCards++
			}
			seen[c.ID] = struct{}{}
		}
		if p.OpenedAt.After(md.LastOpenedAt) {
			md.LastOpenedAt = p.OpenedAt
		}
	}
	md.UniqueCardIDs = sortedKeys(seen)
	return md
}

func cloneCollection(col *models.Collection) *models.Collection {
	out := &models.Collection{
		Packs:      make([]models.Pack, len(col.Packs)),
		Compressed: append([]models.CompressedPack(nil), col.Compressed...),
		Metadata:   col.Metadata,
	}
	for i, p := range col.Packs {
		cp := p
		cp.Cards = append([]models.DrawnCard(nil), p.Cards...)
		out.Packs[i] = cp
	}
	out.Metadata.RarityCounts = make(map[models.Rarity]int, len(col.Metadata.RarityCounts))
	for r, n := range col.Metadata.RarityCounts {
		out.Metadata.RarityCounts[r] = n
	}
	out.Metadata.UniqueCardIDs = append([]string(nil), col.Metadata.UniqueCardIDs...)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
