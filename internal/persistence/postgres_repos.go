package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"scholarly/internal/core"
)

// postgresPapers implements Papers for PostgreSQL.
type postgresPapers struct {
	db *sql.DB
}

func (r *postgresPapers) Create(ctx context.Context, paper *core.Paper) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert paper: %w", err)
	}
	return nil
}

func (r *postgresPapers) Get(ctx context.Context, id string) (*core.Paper, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = $1`, id)
	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan paper: %w", err)
	}
	return paper, nil
}

func (r *postgresPapers) List(ctx context.Context, opts ListOptions) ([]core.Paper, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + paperColumns + ` FROM papers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
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

func (r *postgresPapers) Update(ctx context.Context, paper *core.Paper) error {
	paper.UpdatedAt = time.Now().UTC()

	args, err := paperArgs(paper)
	if err != nil {
		return err
	}
	query := `UPDATE papers SET title = $1, abstract = $2, journal = $3, source = $4, doi = $5,
		url = $6, published = $7, citations = $8, impact_factor = $9, is_preprint = $10,
		is_peer_reviewed = $11, authors = $12, credibility_score = $13, credibility_breakdown = $14,
		credibility_note = $15, sample_size = $16, methodology = $17, summary_headline = $18,
		summary_takeaway = $19, summary_why_matters = $20, key_takeaways = $21, tags = $22,
		image_ref = $23, created_at = $24, updated_at = $25
		WHERE id = $26`
	res, err := r.db.ExecContext(ctx, query, append(args[1:], paper.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update paper: %w", err)
	}
	return requireRow(res, "paper", paper.ID)
}

func (r *postgresPapers) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_papers WHERE paper_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete digest references: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	if err := requireRow(res, "paper", id); err != nil {
		return err
	}
	return tx.Commit()
}

// postgresDigests implements Digests for PostgreSQL.
type postgresDigests struct {
	db *sql.DB
}

func (r *postgresDigests) Create(ctx context.Context, digest *core.Digest) error {
	if digest.CreatedAt.IsZero() {
		digest.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO digests (` + digestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := tx.ExecContext(ctx, query, digestArgs(digest)...); err != nil {
		return fmt.Errorf("failed to insert digest: %w", err)
	}
	for i, paperID := range digest.PaperIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO digest_papers (digest_id, paper_id, position) VALUES ($1, $2, $3)`,
			digest.ID, paperID, i); err != nil {
			return fmt.Errorf("failed to insert digest paper %s: %w", paperID, err)
		}
	}
	return tx.Commit()
}

func (r *postgresDigests) Get(ctx context.Context, id string) (*core.Digest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+digestColumns+` FROM digests WHERE id = $1`, id)
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

func (r *postgresDigests) List(ctx context.Context, filter DigestFilter) ([]core.Digest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if filter.Status != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+digestColumns+` FROM digests WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			string(filter.Status), limit, filter.Offset)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+digestColumns+` FROM digests ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, filter.Offset)
	}
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

func (r *postgresDigests) UpdateStatus(ctx context.Context, id string, status core.DigestStatus, errorMessage string) error {
	var processedAt any
	if status == core.DigestCompleted {
		processedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE digests SET status = $1, error_message = $2, processed_at = $3 WHERE id = $4`,
		string(status), errorMessage, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update digest status: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *postgresDigests) UpdateTexts(ctx context.Context, id, intro, narrative, conclusion string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE digests SET intro_text = $1, connecting_narrative = $2, conclusion_text = $3 WHERE id = $4`,
		intro, narrative, conclusion, id)
	if err != nil {
		return fmt.Errorf("failed to update digest texts: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *postgresDigests) SetImage(ctx context.Context, id, imageRef string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE digests SET image_ref = $1 WHERE id = $2`, imageRef, id)
	if err != nil {
		return fmt.Errorf("failed to update digest image: %w", err)
	}
	return requireRow(res, "digest", id)
}

func (r *postgresDigests) PaperIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT paper_id FROM digest_papers WHERE digest_id = $1 ORDER BY position`, id)
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

func (r *postgresDigests) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_papers WHERE digest_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete digest papers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM digests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete digest: %w", err)
	}
	if err := requireRow(res, "digest", id); err != nil {
		return err
	}
	return tx.Commit()
}

// postgresSettings implements Settings for PostgreSQL.
type postgresSettings struct {
	db *sql.DB
}

func (r *postgresSettings) Get(ctx context.Context) (*core.Settings, error) {
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
		`INSERT INTO settings (id, credibility_weights, default_provider, default_model, default_style, updated_at)
		VALUES (1, $1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
		weights, defaults.DefaultProvider, defaults.DefaultModel, defaults.DefaultStyle, defaults.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return r.fetch(ctx)
}

func (r *postgresSettings) fetch(ctx context.Context) (*core.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT credibility_weights, default_provider, default_model, default_style, updated_at FROM settings WHERE id = 1`)
	return scanSettings(row)
}

func (r *postgresSettings) Update(ctx context.Context, settings *core.Settings) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}

	settings.UpdatedAt = time.Now().UTC()
	weights, err := jsonString(settings.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE settings SET credibility_weights = $1, default_provider = $2, default_model = $3, default_style = $4, updated_at = $5 WHERE id = 1`,
		weights, settings.DefaultProvider, settings.DefaultModel, settings.DefaultStyle, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

func (r *postgresSettings) UpdateWeights(ctx context.Context, weights core.ScoringWeights) (*core.Settings, error) {
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
