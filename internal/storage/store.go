package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// Storage keys for the live state and the cold archive. Drivers may add
// their own namespace on top (the Redis driver does).
const (
	KeyCollection = "collection"
	KeyPity       = "pity"
	KeyArchive    = "archive"
)

// Quota policy and retry knobs, configuration-visible by design.
const (
	// WarnThreshold: saves proceed but the caller gets a warning to surface.
	WarnThreshold = 0.90
	// FullThreshold: remediation kicks in; still over afterwards means
	// ErrStorageFull.
	FullThreshold = 0.95

	// DefaultCompressAfter is how old a pack must be before compression and
	// archiving consider it.
	DefaultCompressAfter = 30 * 24 * time.Hour
	// EscalatedArchiveAfter is the aggressive cutoff used when the first
	// remediation round is not enough.
	EscalatedArchiveAfter = 15 * 24 * time.Hour

	maxSaveAttempts = 3
	retryBaseDelay  = 100 * time.Millisecond
)

// SaveReport says what a save did beyond writing bytes: quota warnings and
// every remediation action taken. Remediation is never silent.
type SaveReport struct {
	Warning          string   `json:"warning,omitempty"`
	CompressedPacks  int      `json:"compressed_packs,omitempty"`
	ArchivedPackIDs  []string `json:"archived_pack_ids,omitempty"`
	Escalated        bool     `json:"escalated,omitempty"`
	Attempts         int      `json:"attempts"`
	ProjectedPercent float64  `json:"projected_percent"`
}

// Store is the quota-aware persistence layer over a key-value driver.
type Store struct {
	driver        Driver
	compressAfter time.Duration

	// Injection points for tests; production uses the real clock.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewStore(driver Driver) *Store {
	return &Store{
		driver:        driver,
		compressAfter: DefaultCompressAfter,
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// Load returns the persisted collection and pity state. A first-time user
// has nothing saved; that is ok=false, not an error.
func (s *Store) Load(ctx context.Context) (*models.Collection, *models.PityState, bool, error) {
	raw, ok, err := s.driver.Get(ctx, KeyCollection)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load collection: %w", err)
	}
	if !ok {
		return nil, nil, false, nil
	}

	var col models.Collection
	if err := json.Unmarshal(raw, &col); err != nil {
		return nil, nil, false, fmt.Errorf("load collection: %w", err)
	}

	pity := &models.PityState{}
	rawPity, ok, err := s.driver.Get(ctx, KeyPity)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load pity: %w", err)
	}
	if ok {
		if err := json.Unmarshal(rawPity, pity); err != nil {
			return nil, nil, false, fmt.Errorf("load pity: %w", err)
		}
	}
	return &col, pity, true, nil
}

// Archive returns the cold-archived packs, oldest first.
func (s *Store) Archive(ctx context.Context) ([]models.CompressedPack, error) {
	raw, ok, err := s.driver.Get(ctx, KeyArchive)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var packs []models.CompressedPack
	if err := json.Unmarshal(raw, &packs); err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	return packs, nil
}

// Status returns the driver's current quota estimate.
func (s *Store) Status(ctx context.Context) (Quota, error) {
	return s.driver.Estimate(ctx)
}

// Save persists the collection and pity state. When projected usage crosses
// FullThreshold it compresses packs older than the configured age, archives
// them, and escalates to a 15-day cutoff before giving up with
// ErrStorageFull. The collection is mutated in place by remediation so the
// caller's in-memory state matches what was written; every action taken is
// reported. Transient write failures are retried with exponential backoff.
func (s *Store) Save(ctx context.Context, col *models.Collection, pity *models.PityState) (*SaveReport, error) {
	archive, err := s.Archive(ctx)
	if err != nil {
		return &SaveReport{}, err
	}
	return s.saveWith(ctx, col, pity, archive, false)
}

// saveWith is the single write pipeline. Every archive mutation in a save,
// whether from a caller's pre-pass or from quota remediation here, flows
// through the one archive slice so nothing written is later clobbered.
func (s *Store) saveWith(ctx context.Context, col *models.Collection, pity *models.PityState, archive []models.CompressedPack, archiveDirty bool) (*SaveReport, error) {
	report := &SaveReport{}

	payload, err := json.Marshal(col)
	if err != nil {
		return report, fmt.Errorf("marshal collection: %w", err)
	}
	pityPayload, err := json.Marshal(pity)
	if err != nil {
		return report, fmt.Errorf("marshal pity: %w", err)
	}
	archivePayload, err := json.Marshal(archive)
	if err != nil {
		return report, fmt.Errorf("marshal archive: %w", err)
	}

	projected, err := s.projected(ctx, int64(len(payload)+len(pityPayload)+len(archivePayload)))
	if err != nil {
		return report, err
	}
	report.ProjectedPercent = projected

	if projected >= FullThreshold {
		log.Printf("Persistence: projected usage %.1f%%, starting remediation", projected*100)

		// Round one: compress old packs in place.
		report.CompressedPacks = compressOlderThan(col, s.now().Add(-s.compressAfter))
		if report.CompressedPacks > 0 {
			payload, _ = json.Marshal(col)
			projected, err = s.projected(ctx, int64(len(payload)+len(pityPayload)+len(archivePayload)))
			if err != nil {
				return report, err
			}
		}

		// Round two: move old packs out of the live collection entirely.
		if projected >= FullThreshold {
			moved := archiveOlderThan(col, s.now().Add(-s.compressAfter))
			if len(moved) > 0 {
				archive = append(archive, moved...)
				for _, p := range moved {
					report.ArchivedPackIDs = append(report.ArchivedPackIDs, p.ID)
				}
				archiveDirty = true
				payload, _ = json.Marshal(col)
				archivePayload, _ = json.Marshal(archive)
				projected, err = s.projected(ctx, int64(len(payload)+len(pityPayload)+len(archivePayload)))
				if err != nil {
					return report, err
				}
			}
		}

		// Round three: escalate to the aggressive cutoff.
		if projected >= FullThreshold {
			report.Escalated = true
			cutoff := s.now().Add(-EscalatedArchiveAfter)
			report.CompressedPacks += compressOlderThan(col, cutoff)
			moved := archiveOlderThan(col, cutoff)
			if len(moved) > 0 {
				archive = append(archive, moved...)
				for _, p := range moved {
					report.ArchivedPackIDs = append(report.ArchivedPackIDs, p.ID)
				}
				archiveDirty = true
			}
			payload, _ = json.Marshal(col)
			archivePayload, _ = json.Marshal(archive)
			projected, err = s.projected(ctx, int64(len(payload)+len(pityPayload)+len(archivePayload)))
			if err != nil {
				return report, err
			}
		}

		report.ProjectedPercent = projected
		if projected >= FullThreshold {
			return report, models.ErrStorageFull
		}
		log.Printf("Persistence: remediation compressed %d packs, archived %d, usage now %.1f%%",
			report.CompressedPacks, len(report.ArchivedPackIDs), projected*100)
	} else if projected >= WarnThreshold {
		report.Warning = fmt.Sprintf("storage %.0f%% full; consider exporting your collection", projected*100)
	}

	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		report.Attempts = attempt
		lastErr = s.writeAll(ctx, payload, pityPayload, archivePayload, archiveDirty)
		if lastErr == nil {
			return report, nil
		}
		log.Printf("Persistence: save attempt %d/%d failed: %v", attempt, maxSaveAttempts, lastErr)
		if attempt < maxSaveAttempts {
			s.sleep(retryBaseDelay << (attempt - 1))
		}
	}
	return report, fmt.Errorf("%w after %d attempts: %v", models.ErrPersistenceFailed, maxSaveAttempts, lastErr)
}

// Remediate runs compression and archiving unconditionally (the settings
// screen's "free up space" action) and persists the result through the
// same pipeline a quota-pressed save uses.
func (s *Store) Remediate(ctx context.Context, col *models.Collection, pity *models.PityState) (*SaveReport, error) {
	archive, err := s.Archive(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-s.compressAfter)
	compressed := compressOlderThan(col, cutoff)
	moved := archiveOlderThan(col, cutoff)
	archive = append(archive, moved...)

	report, err := s.saveWith(ctx, col, pity, archive, len(moved) > 0)
	if report != nil {
		report.CompressedPacks += compressed
		for _, p := range moved {
			report.ArchivedPackIDs = append(report.ArchivedPackIDs, p.ID)
		}
	}
	return report, err
}

// writeAll writes the live keys, and the archive only when it changed.
// The archive goes first: packs being moved out of the collection must be
// durable before the trimmed collection lands, so a crash between the two
// writes duplicates packs instead of losing them.
func (s *Store) writeAll(ctx context.Context, collection, pity, archive []byte, archiveDirty bool) error {
	if archiveDirty {
		if err := s.driver.Set(ctx, KeyArchive, archive); err != nil {
			return err
		}
	}
	if err := s.driver.Set(ctx, KeyCollection, collection); err != nil {
		return err
	}
	return s.driver.Set(ctx, KeyPity, pity)
}

// projected computes usage as if our keys were replaced by newBytes of data.
func (s *Store) projected(ctx context.Context, newBytes int64) (float64, error) {
	quota, err := s.driver.Estimate(ctx)
	if err != nil {
		return 0, fmt.Errorf("quota estimate: %w", err)
	}
	if quota.TotalBytes <= 0 {
		return 0, nil
	}
	used := quota.UsedBytes
	for _, key := range []string{KeyCollection, KeyPity, KeyArchive} {
		if value, ok, gerr := s.driver.Get(ctx, key); gerr == nil && ok {
			used -= int64(len(value))
		}
	}
	if used < 0 {
		used = 0
	}
	return float64(used+newBytes) / float64(quota.TotalBytes), nil
}

// compressOlderThan converts full packs opened before the cutoff into their
// compressed form. Returns how many packs were compressed.
func compressOlderThan(col *models.Collection, cutoff time.Time) int {
	kept := col.Packs[:0]
	n := 0
	for _, p := range col.Packs {
		if p.OpenedAt.Before(cutoff) {
			col.Compressed = append(col.Compressed, p.Compress())
			n++
			continue
		}
		kept = append(kept, p)
	}
	col.Packs = kept
	return n
}

// archiveOlderThan removes packs opened before the cutoff from the live
// collection and returns them in compressed form, oldest data first.
func archiveOlderThan(col *models.Collection, cutoff time.Time) []models.CompressedPack {
	var moved []models.CompressedPack

	keptCompressed := col.Compressed[:0]
	for _, p := range col.Compressed {
		if p.OpenedAt.Before(cutoff) {
			moved = append(moved, p)
			continue
		}
		keptCompressed = append(keptCompressed, p)
	}
	col.Compressed = keptCompressed

	keptPacks := col.Packs[:0]
	for _, p := range col.Packs {
		if p.OpenedAt.Before(cutoff) {
			moved = append(moved, p.Compress())
			continue
		}
		keptPacks = append(keptPacks, p)
	}
	col.Packs = keptPacks

	return moved
}
