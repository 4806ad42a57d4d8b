package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobletter/jobletter/internal/model"
)

// PostgresStore keeps jobs and profiles in Postgres, for deployments where
// several processes share one corpus.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	fingerprint      TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT NOT NULL,
	city             TEXT,
	country          TEXT,
	description      TEXT,
	url              TEXT,
	source           TEXT NOT NULL,
	career_path      TEXT,
	experience_level TEXT,
	languages        TEXT[],
	posted_at        TIMESTAMPTZ,
	first_seen       TIMESTAMPTZ NOT NULL,
	last_seen        TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
	id               TEXT PRIMARY KEY,
	target_cities    TEXT[],
	languages        TEXT[],
	experience_level TEXT,
	keywords         TEXT[],
	tier             TEXT NOT NULL,
	career_path      TEXT
);
CREATE INDEX IF NOT EXISTS idx_jobs_first_seen ON jobs(first_seen);
`

// NewPostgresStore connects to databaseURL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// UpsertJobs inserts new jobs and refreshes last_seen on fingerprint
// conflicts. Returns how many rows were newly inserted.
func (s *PostgresStore) UpsertJobs(ctx context.Context, jobs []model.CandidateJob) (int, error) {
	inserted := 0
	now := s.now()
	for _, j := range jobs {
		firstSeen := j.FirstSeen
		if firstSeen.IsZero() {
			firstSeen = now
		}
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO jobs
			 (fingerprint, title, company, location, city, country, description,
			  url, source, career_path, experience_level, languages, posted_at,
			  first_seen, last_seen)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 ON CONFLICT (fingerprint) DO NOTHING`,
			j.Fingerprint(), j.Title, j.Company, j.Location, j.City, j.Country,
			j.Description, j.URL, j.Source, j.CareerPath, j.ExperienceLevel,
			j.Languages, j.PostedAt, firstSeen, now,
		)
		if err != nil {
			return inserted, fmt.Errorf("upserting job %s: %w", j.Fingerprint(), err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
			continue
		}
		if _, err := s.pool.Exec(ctx,
			"UPDATE jobs SET last_seen = $1 WHERE fingerprint = $2",
			now, j.Fingerprint(),
		); err != nil {
			return inserted, fmt.Errorf("refreshing job %s: %w", j.Fingerprint(), err)
		}
	}
	return inserted, nil
}

// RecentJobs returns jobs first seen within the window, newest postings
// first, up to limit.
func (s *PostgresStore) RecentJobs(ctx context.Context, window time.Duration, limit int) ([]model.CandidateJob, error) {
	cutoff := s.now().Add(-window)
	rows, err := s.pool.Query(ctx,
		`SELECT title, company, location, city, country, description,
		        url, source, career_path, experience_level, languages, posted_at, first_seen
		 FROM jobs
		 WHERE first_seen >= $1
		 ORDER BY posted_at DESC NULLS LAST
		 LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.CandidateJob
	for rows.Next() {
		var j model.CandidateJob
		if err := rows.Scan(
			&j.Title, &j.Company, &j.Location, &j.City, &j.Country,
			&j.Description, &j.URL, &j.Source, &j.CareerPath, &j.ExperienceLevel,
			&j.Languages, &j.PostedAt, &j.FirstSeen,
		); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetProfile loads one subscriber profile.
func (s *PostgresStore) GetProfile(ctx context.Context, subscriberID string) (model.SubscriberProfile, error) {
	var p model.SubscriberProfile
	var tier string
	err := s.pool.QueryRow(ctx,
		`SELECT id, target_cities, languages, experience_level, keywords, tier, career_path
		 FROM profiles WHERE id = $1`,
		subscriberID,
	).Scan(&p.ID, &p.TargetCities, &p.Languages, &p.ExperienceLevel, &p.Keywords, &tier, &p.CareerPath)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SubscriberProfile{}, fmt.Errorf("subscriber %s: %w", subscriberID, model.ErrProfileNotFound)
	}
	if err != nil {
		return model.SubscriberProfile{}, fmt.Errorf("loading profile %s: %w", subscriberID, err)
	}
	p.Tier = model.SubscriptionTier(tier)
	return p, nil
}

// SaveProfile inserts or updates a subscriber profile.
func (s *PostgresStore) SaveProfile(ctx context.Context, p model.SubscriberProfile) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, target_cities, languages, experience_level, keywords, tier, career_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   target_cities = EXCLUDED.target_cities,
		   languages = EXCLUDED.languages,
		   experience_level = EXCLUDED.experience_level,
		   keywords = EXCLUDED.keywords,
		   tier = EXCLUDED.tier,
		   career_path = EXCLUDED.career_path`,
		p.ID, p.TargetCities, p.Languages, p.ExperienceLevel, p.Keywords, string(p.Tier), p.CareerPath,
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.ID, err)
	}
	return nil
}

// ListProfiles returns every stored subscriber profile.
func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.SubscriberProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, target_cities, languages, experience_level, keywords, tier, career_path
		 FROM profiles ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.SubscriberProfile
	for rows.Next() {
		var p model.SubscriberProfile
		var tier string
		if err := rows.Scan(&p.ID, &p.TargetCities, &p.Languages, &p.ExperienceLevel, &p.Keywords, &tier, &p.CareerPath); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		p.Tier = model.SubscriptionTier(tier)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
