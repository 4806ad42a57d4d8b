// Package store persists candidate jobs and subscriber profiles. The sqlite
// backend is the default for single-process deployments; postgres serves
// shared ones.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobletter/jobletter/internal/model"
)

// SQLiteStore keeps jobs and profiles in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const sqliteSchema = `
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
	languages        TEXT,
	posted_at        DATETIME,
	first_seen       DATETIME NOT NULL,
	last_seen        DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
	id               TEXT PRIMARY KEY,
	target_cities    TEXT,
	languages        TEXT,
	experience_level TEXT,
	keywords         TEXT,
	tier             TEXT NOT NULL,
	career_path      TEXT
);
CREATE INDEX IF NOT EXISTS idx_jobs_first_seen ON jobs(first_seen);
`

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// UpsertJobs inserts new jobs and refreshes last_seen for already-known
// fingerprints. Returns how many rows were newly inserted.
func (s *SQLiteStore) UpsertJobs(ctx context.Context, jobs []model.CandidateJob) (int, error) {
	inserted := 0
	now := s.now()
	for _, j := range jobs {
		langs, _ := json.Marshal(j.Languages)
		firstSeen := j.FirstSeen
		if firstSeen.IsZero() {
			firstSeen = now
		}
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO jobs
			 (fingerprint, title, company, location, city, country, description,
			  url, source, career_path, experience_level, languages, posted_at,
			  first_seen, last_seen)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.Fingerprint(), j.Title, j.Company, j.Location, j.City, j.Country,
			j.Description, j.URL, j.Source, j.CareerPath, j.ExperienceLevel,
			string(langs), j.PostedAt, firstSeen, now,
		)
		if err != nil {
			return inserted, fmt.Errorf("upserting job %s: %w", j.Fingerprint(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("upserting job %s: %w", j.Fingerprint(), err)
		}
		if n > 0 {
			inserted++
			continue
		}
		// Conflict: refresh last-seen metadata only.
		if _, err := s.db.ExecContext(ctx,
			"UPDATE jobs SET last_seen = ? WHERE fingerprint = ?",
			now, j.Fingerprint(),
		); err != nil {
			return inserted, fmt.Errorf("refreshing job %s: %w", j.Fingerprint(), err)
		}
	}
	return inserted, nil
}

// RecentJobs returns jobs first seen within the window, newest postings
// first, up to limit.
func (s *SQLiteStore) RecentJobs(ctx context.Context, window time.Duration, limit int) ([]model.CandidateJob, error) {
	cutoff := s.now().Add(-window)
	rows, err := s.db.QueryContext(ctx,
		`SELECT fingerprint, title, company, location, city, country, description,
		        url, source, career_path, experience_level, languages, posted_at, first_seen
		 FROM jobs
		 WHERE first_seen >= ?
		 ORDER BY posted_at DESC
		 LIMIT ?`,
		cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.CandidateJob
	for rows.Next() {
		var j model.CandidateJob
		var fingerprint, langs string
		var postedAt sql.NullTime
		if err := rows.Scan(
			&fingerprint, &j.Title, &j.Company, &j.Location, &j.City, &j.Country,
			&j.Description, &j.URL, &j.Source, &j.CareerPath, &j.ExperienceLevel,
			&langs, &postedAt, &j.FirstSeen,
		); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		if postedAt.Valid {
			t := postedAt.Time
			j.PostedAt = &t
		}
		if langs != "" {
			_ = json.Unmarshal([]byte(langs), &j.Languages)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetProfile loads one subscriber profile.
func (s *SQLiteStore) GetProfile(ctx context.Context, subscriberID string) (model.SubscriberProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, target_cities, languages, experience_level, keywords, tier, career_path
		 FROM profiles WHERE id = ?`,
		subscriberID,
	)
	p, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return model.SubscriberProfile{}, fmt.Errorf("subscriber %s: %w", subscriberID, model.ErrProfileNotFound)
	}
	if err != nil {
		return model.SubscriberProfile{}, fmt.Errorf("loading profile %s: %w", subscriberID, err)
	}
	return p, nil
}

// SaveProfile inserts or replaces a subscriber profile.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p model.SubscriberProfile) error {
	cities, _ := json.Marshal(p.TargetCities)
	langs, _ := json.Marshal(p.Languages)
	keywords, _ := json.Marshal(p.Keywords)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, target_cities, languages, experience_level, keywords, tier, career_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   target_cities = excluded.target_cities,
		   languages = excluded.languages,
		   experience_level = excluded.experience_level,
		   keywords = excluded.keywords,
		   tier = excluded.tier,
		   career_path = excluded.career_path`,
		p.ID, string(cities), string(langs), p.ExperienceLevel, string(keywords), string(p.Tier), p.CareerPath,
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.ID, err)
	}
	return nil
}

// ListProfiles returns every stored subscriber profile.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.SubscriberProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_cities, languages, experience_level, keywords, tier, career_path
		 FROM profiles ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.SubscriberProfile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// scanProfile decodes one profile row from either QueryRow or Rows.
func scanProfile(scan func(dest ...any) error) (model.SubscriberProfile, error) {
	var p model.SubscriberProfile
	var cities, langs, keywords, tier string
	if err := scan(&p.ID, &cities, &langs, &p.ExperienceLevel, &keywords, &tier, &p.CareerPath); err != nil {
		return p, err
	}
	p.Tier = model.SubscriptionTier(tier)
	_ = json.Unmarshal([]byte(cities), &p.TargetCities)
	_ = json.Unmarshal([]byte(langs), &p.Languages)
	_ = json.Unmarshal([]byte(keywords), &p.Keywords)
	return p, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
