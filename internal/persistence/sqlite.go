package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"scholarly/internal/core"
)

// SQLite is the default Store: a single database file, or ":memory:" for
// an ephemeral store.
type SQLite struct {
	db       *sql.DB
	papers   *sqlitePapers
	digests  *sqliteDigests
	settings *sqliteSettings
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens the database at path, creating the file and schema as
// needed.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "scholarly.db"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// A second pooled connection to :memory: would see a fresh empty
		// database, so the pool is pinned to one connection.
		db.SetMaxOpenConns(1)
	}

	s := &SQLite{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	s.papers = &sqlitePapers{db: db}
	s.digests = &sqliteDigests{db: db}
	s.settings = &sqliteSettings{db: db}
	return s, nil
}

// initialize creates the schema.
func (s *SQLite) initialize() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			journal TEXT,
			source TEXT,
			doi TEXT,
			url TEXT,
			published DATETIME,
			citations INTEGER,
			impact_factor REAL,
			is_preprint BOOLEAN,
			is_peer_reviewed BOOLEAN,
			authors TEXT,
			credibility_score REAL,
			credibility_breakdown TEXT,
			credibility_note TEXT,
			sample_size INTEGER,
			methodology TEXT,
			summary_headline TEXT,
			summary_takeaway TEXT,
			summary_why_matters TEXT,
			key_takeaways TEXT,
			tags TEXT,
			image_ref TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS digests (
			id TEXT PRIMARY KEY,
			name TEXT,
			status TEXT,
			error_message TEXT,
			ai_provider TEXT,
			ai_model TEXT,
			summary_style TEXT,
			intro_text TEXT,
			connecting_narrative TEXT,
			conclusion_text TEXT,
			image_ref TEXT,
			created_at DATETIME,
			processed_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS digest_papers (
			digest_id TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (digest_id, paper_id),
			FOREIGN KEY (digest_id) REFERENCES digests (id)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY,
			credibility_weights TEXT,
			default_provider TEXT,
			default_model TEXT,
			default_style TEXT,
			updated_at DATETIME
		);`,
	}

	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Papers() Papers     { return s.papers }
func (s *SQLite) Digests() Digests   { return s.digests }
func (s *SQLite) Settings() Settings { return s.settings }

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqlitePapers implements Papers for SQLite.
type sqlitePapers struct {
	db *sql.DB
}

func (r *sqlitePapers) Create(ctx context.Context, paper *core.Paper) error {
	now := time.Now().UTC()
	if paper.CreatedAt.IsZero() {
		paper.CreatedAt = now
	}
	if paper.UpdatedAt.IsZero() {
		paper.UpdatedAt = now
	}

	args, err := paperArgs(paper)
	if err != nil {
		return err
	}
	query := `INSERT INTO papers (` + paperColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert paper: %w", err)
	}
	return nil
}

func (r *sqlitePapers) Get(ctx context.Context, id string) (*core.Paper, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan paper: %w", err)
	}
	return paper, nil
}

func (r *sqlitePapers) List(ctx context.Context, opts ListOptions) ([]core.Paper, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + paperColumns + ` FROM papers ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []core.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, *paper)
	}
	return papers, rows.Err()
}

func (r *sqlitePapers) Update(ctx context.Context, paper *core.Paper) error {
	paper.UpdatedAt = time.Now().UTC()

	args, err := paperArgs(paper)
	if err != nil {
		return err
	}
	query := `UPDATE papers SET title = ?, abstract = ?, journal = ?, source = ?, doi = ?,
		url = ?, published = ?, citations = ?, impact_factor = ?, is_preprint = ?,
		is_peer_reviewed = ?, authors = ?, credibility_score = ?, credibility_breakdown = ?,
		credibility_note = ?, sample_size = ?, methodology = ?, summary_headline = ?,
		summary_takeaway = ?, summary_why_matters = ?, key_takeaways = ?, tags = ?,
		image_ref = ?, created_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, append(args[1:], paper.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update paper: %w", err)
	}
	return requireRow(res, "paper", paper.ID)
}

func (r *sqlitePapers) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_papers WHERE paper_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete digest references: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	if err := requireRow(res, "paper", id); err != nil {
		return err
	}
	return tx.Commit()
}

// sqliteDigests implements Digests for SQLite.
type sqliteDigests struct {
	db *sql.DB
}

func (r *sqliteDigests) Create(ctx context.Context, digest *core.Digest) error {
	if digest.CreatedAt.IsZero() {
		digest.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO digests (` + digestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, digestArgs(digest)...); err != nil {
		return fmt.Errorf("failed to insert digest: %w", err)
	}
	for i, paperID := range digest.PaperIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO digest_papers (digest_id, paper_id, position) VALUES (?, ?, ?)`,
			digest.ID, paperID, i); err != nil {
			return fmt.Errorf("failed to insert digest paper %s: %w", paperID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteDigests) Get(ctx context.Context, id string) (*core.Digest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+digestColumns+` FROM digests WHERE id = ?`, id)
	digest, err := scanDigest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("digest %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan digest: %w", err)
	}

	digest.PaperIDs, err = r.PaperIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return digest, nil
}

func (r *sqliteDigests) List(ctx context.Context, filter DigestFilter) ([]core.Digest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + digestColumns + ` FROM digests`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []core.Digest
	for rows.Next() {
		digest, err := scanDigest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan digest: %w", err)
		}
		digests = append(digests, *digest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range digests {
		if digests[i].PaperIDs, err = r.PaperIDs(ctx, digests[i].ID); err != nil {
			return nil, err
		}
	}
	return digests, nil
}

func (r *sqliteDigests) UpdateStatus(ctx context.Context, id string, status core.DigestStatus, errorMessage string) error {
	var processedAt any
	if status == core.DigestCompleted {
		processedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE digests SET status = ?, error_message = ?, processed_at = ? WHERE id = ?`,
		string(status), errorMessage, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update digest status: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *sqliteDigests) UpdateTexts(ctx context.Context, id, intro, narrative, conclusion string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE digests SET intro_text = ?, connecting_narrative = ?, conclusion_text = ? WHERE id = ?`,
		intro, narrative, conclusion, id)
	if err != nil {
		return fmt.Errorf("failed to update digest texts: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *sqliteDigests) SetImage(ctx context.Context, id, imageRef string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE digests SET image_ref = ? WHERE id = ?`, imageRef, id)
	if err != nil {
		return fmt.Errorf("failed to update digest image: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *sqliteDigests) PaperIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT paper_id FROM digest_papers WHERE digest_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var paperID string
		if err := rows.Scan(&paperID); err != nil {
			return nil, err
		}
		ids = append(ids, paperID)
	}
	return ids, rows.Err()
}

func (r *sqliteDigests) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_papers WHERE digest_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete digest papers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM digests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete digest: %w", err)
	}
	if err := requireRow(res, "digest", id); err != nil {
		return err
	}
	return tx.Commit()
}

// sqliteSettings implements Settings for SQLite.
type sqliteSettings struct {
	db *sql.DB
}

func (r *sqliteSettings) Get(ctx context.Context) (*core.Settings, error) {
	settings, err := r.fetch(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	defaults := defaultSettings()
	weights, err := jsonString(defaults.Weights)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal weights: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (id, credibility_weights, default_provider, default_model, default_style, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)`,
		weights, defaults.DefaultProvider, defaults.DefaultModel, defaults.DefaultStyle, defaults.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return r.fetch(ctx)
}

func (r *sqliteSettings) fetch(ctx context.Context) (*core.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT credibility_weights, default_provider, default_model, default_style, updated_at FROM settings WHERE id = 1`)
	return scanSettings(row)
}

func (r *sqliteSettings) Update(ctx context.Context, settings *core.Settings) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}

	settings.UpdatedAt = time.Now().UTC()
	weights, err := jsonString(settings.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE settings SET credibility_weights = ?, default_provider = ?, default_model = ?, default_style = ?, updated_at = ? WHERE id = 1`,
		weights, settings.DefaultProvider, settings.DefaultModel, settings.DefaultStyle, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *sqliteSettings) UpdateWeights(ctx context.Context, weights core.ScoringWeights) (*core.Settings, error) {
	settings, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	settings.Weights = weights.Normalized()
	if err := r.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// requireRow maps a zero-row update or delete to ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
