// Package persistence provides the repository interfaces for papers,
// digests, and settings, with SQLite and PostgreSQL implementations.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scholarly/internal/core"
)

// ErrNotFound is returned when a requested row does not exist. Callers
// branch on it with errors.Is.
var ErrNotFound = errors.New("not found")

// ListOptions provides pagination for list queries.
type ListOptions struct {
	Limit  int // Maximum results, 0 uses the repository default
	Offset int // Rows to skip
}

// DigestFilter narrows digest listings.
type DigestFilter struct {
	ListOptions
	Status core.DigestStatus // Zero value matches every status
}

// Papers handles paper persistence.
type Papers interface {
	// Create inserts a new paper, stamping CreatedAt/UpdatedAt when unset.
	Create(ctx context.Context, paper *core.Paper) error

	// Get retrieves a paper by ID.
	Get(ctx context.Context, id string) (*core.Paper, error)

	// List retrieves papers ordered by creation time, newest first.
	List(ctx context.Context, opts ListOptions) ([]core.Paper, error)

	// Update rewrites a paper's mutable fields and bumps UpdatedAt.
	Update(ctx context.Context, paper *core.Paper) error

	// Delete removes a paper and its digest membership rows.
	Delete(ctx context.Context, id string) error
}

// Digests handles digest persistence.
type Digests interface {
	// Create inserts a digest together with its ordered paper references.
	Create(ctx context.Context, digest *core.Digest) error

	// Get retrieves a digest by ID, including its ordered paper IDs.
	Get(ctx context.Context, id string) (*core.Digest, error)

	// List retrieves digests, newest first, optionally filtered by status.
	List(ctx context.Context, filter DigestFilter) ([]core.Digest, error)

	// UpdateStatus moves a digest through its lifecycle. ProcessedAt is
	// stamped when status is completed and cleared otherwise, and the
	// error message is stored verbatim (empty clears it).
	UpdateStatus(ctx context.Context, id string, status core.DigestStatus, errorMessage string) error

	// UpdateTexts stores the generated intro, narrative, and conclusion.
	UpdateTexts(ctx context.Context, id, intro, narrative, conclusion string) error

	// SetImage stores the digest's batch illustration reference.
	SetImage(ctx context.Context, id, imageRef string) error

	// PaperIDs returns the digest's paper IDs in reading order.
	PaperIDs(ctx context.Context, id string) ([]string, error)

	// Delete removes a digest and its paper references.
	Delete(ctx context.Context, id string) error
}

// Settings handles the singleton settings row.
type Settings interface {
	// Get returns the settings, creating the default row on first read.
	Get(ctx context.Context) (*core.Settings, error)

	// Update persists provider/model/style and weights as given.
	Update(ctx context.Context, settings *core.Settings) error

	// UpdateWeights normalizes and persists the scoring weights, returning
	// the stored settings.
	UpdateWeights(ctx context.Context, weights core.ScoringWeights) (*core.Settings, error)
}

// Store bundles the repositories behind one database handle.
type Store interface {
	Papers() Papers
	Digests() Digests
	Settings() Settings

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// Open selects a Store implementation by driver name.
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return NewSQLite(dsn)
	case "postgres", "postgresql":
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}
