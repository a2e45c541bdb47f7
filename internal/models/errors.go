package models

import "errors"

// Error taxonomy for the pack/persistence core. Handlers map these to
// specific HTTP responses; "no prior collection" is a boolean, never an error.
var (
	// ErrCatalogExhausted: a guaranteed slot or pity override needed a tier
	// the catalog has no cards of. Configuration-integrity bug, not a
	// recoverable runtime condition.
	ErrCatalogExhausted = errors.New("catalog exhausted for required rarity")

	// ErrStorageFull: quota remediation could not bring usage under the
	// full threshold. Recoverable by user action (export or clear).
	ErrStorageFull = errors.New("storage full")

	// ErrPersistenceFailed: transient I/O failure that survived all retries.
	// The in-memory collection remains the session's source of truth.
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrInvalidFormat: malformed import document, rejected wholesale.
	ErrInvalidFormat = errors.New("invalid collection format")
)
