package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// Postgres is the Store for shared deployments.
type Postgres struct {
	db       *sql.DB
	papers   *postgresPapers
	digests  *postgresDigests
	settings *postgresSettings
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects with a bounded pool and ensures the schema exists.
func NewPostgres(connectionString string) (*Postgres, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.initialize(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	p.papers = &postgresPapers{db: db}
	p.digests = &postgresDigests{db: db}
	p.settings = &postgresSettings{db: db}
	return p, nil
}

// initialize creates the schema. Same logical shape as SQLite with
// Postgres column types.
func (p *Postgres) initialize(ctx context.Context) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			journal TEXT,
			source TEXT,
			doi TEXT,
			url TEXT,
			published TIMESTAMPTZ,
			citations BIGINT,
			impact_factor DOUBLE PRECISION,
			is_preprint BOOLEAN,
			is_peer_reviewed BOOLEAN,
			authors JSONB,
			credibility_score DOUBLE PRECISION,
			credibility_breakdown JSONB,
			credibility_note TEXT,
			sample_size BIGINT,
			methodology TEXT,
			summary_headline TEXT,
			summary_takeaway TEXT,
			summary_why_matters TEXT,
			key_takeaways JSONB,
			tags JSONB,
			image_ref TEXT,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
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
			created_at TIMESTAMPTZ,
			processed_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS digest_papers (
			digest_id TEXT NOT NULL REFERENCES digests (id),
			paper_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (digest_id, paper_id)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY,
			credibility_weights JSONB,
			default_provider TEXT,
			default_model TEXT,
			default_style TEXT,
			updated_at TIMESTAMPTZ
		);`,
	}

	for _, table := range tables {
		if _, err := p.db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Papers() Papers     { return p.papers }
func (p *Postgres) Digests() Digests   { return p.digests }
func (p *Postgres) Settings() Settings { return p.settings }

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
