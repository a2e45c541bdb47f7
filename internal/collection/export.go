package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// ExportVersion is bumped whenever the portable document shape changes.
const ExportVersion = 1

// ExportDocument is the portable backup envelope, versioned explicitly so
// old backups stay importable as the shape evolves.
type ExportDocument struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Collection models.Collection `json:"collection"`
	Pity       models.PityState  `json:"pity"`
}

// Export serializes the full collection and pity state as a backup document.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	col := cloneCollection(s.col)
	pity := *s.pity
	s.mu.RUnlock()

	doc := ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Collection: *col,
		Pity:       pity,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import validates and applies a backup document. A corrupt document is
// rejected wholesale with ErrInvalidFormat; the store is never left half
// applied.
func (s *Store) Import(data []byte) error {
	// Structural shape first: packs must be a sequence, metadata must be
	// present. Raw-message probing catches shapes the typed unmarshal would
	// silently zero-fill.
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidFormat, err)
	}
	rawCol, ok := envelope["collection"]
	if !ok {
		return fmt.Errorf("%w: missing collection", models.ErrInvalidFormat)
	}
	var colFields map[string]json.RawMessage
	if err := json.Unmarshal(rawCol, &colFields); err != nil {
		return fmt.Errorf("%w: collection is not an object", models.ErrInvalidFormat)
	}
	rawPacks, ok := colFields["packs"]
	if !ok {
		return fmt.Errorf("%w: missing packs", models.ErrInvalidFormat)
	}
	var packsProbe []json.RawMessage
	if err := json.Unmarshal(rawPacks, &packsProbe); err != nil {
		return fmt.Errorf("%w: packs is not a sequence", models.ErrInvalidFormat)
	}
	if _, ok := colFields["metadata"]; !ok {
		return fmt.Errorf("%w: missing metadata", models.ErrInvalidFormat)
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidFormat, err)
	}
	if doc.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d", models.ErrInvalidFormat, doc.Version)
	}
	for i, p := range doc.Collection.Packs {
		if p.ID == "" || len(p.Cards) == 0 {
			return fmt.Errorf("%w: pack %d is malformed", models.ErrInvalidFormat, i)
		}
		for _, c := range p.Cards {
			if !c.Rarity.Valid() {
				return fmt.Errorf("%w: pack %d has card with unknown rarity %q", models.ErrInvalidFormat, i, c.Rarity)
			}
		}
	}

	col := doc.Collection
	pity := doc.Pity
	s.Hydrate(&col, &pity)
	return nil
}
