// Package store provides a SQLite-backed implementation of the profile
// repository port.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // database/sql driver

	"github.com/example/voiceforge/internal/voice"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL UNIQUE,
	language       TEXT NOT NULL,
	reference_text TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	profile_id       TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	source_ref       TEXT NOT NULL,
	duration_seconds REAL NOT NULL,
	sample_rate_hz   INTEGER NOT NULL,
	channel_count    INTEGER NOT NULL,
	bit_depth        INTEGER NOT NULL,
	valid            INTEGER NOT NULL,
	errors           TEXT NOT NULL DEFAULT '[]',
	warnings         TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (profile_id, position)
);
`

// SQLite implements voice.Repository on a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and runs the schema
// migration.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save upserts a profile and replaces its sample rows. Name uniqueness
// is enforced here: saving a profile whose name belongs to a different
// profile returns voice.ErrDuplicateName.
func (s *SQLite) Save(ctx context.Context, p *voice.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, name, language, reference_text, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			language = excluded.language,
			reference_text = excluded.reference_text
	`, p.ID, p.Name, p.Language, p.ReferenceText, p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueNameViolation(err) {
			return fmt.Errorf("save profile %q: %w", p.Name, voice.ErrDuplicateName)
		}

		return fmt.Errorf("save profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE profile_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}

	for i, smp := range p.Samples {
		errsJSON, warnsJSON, err := encodeNotes(smp)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO samples
				(profile_id, position, source_ref, duration_seconds,
				 sample_rate_hz, channel_count, bit_depth, valid, errors, warnings)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, smp.SourceRef, smp.DurationSeconds,
			smp.SampleRateHz, smp.ChannelCount, smp.BitDepth, smp.Valid, errsJSON, warnsJSON)
		if err != nil {
			return fmt.Errorf("save sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return nil
}

// FindByID loads one profile with its samples in insertion order.
func (s *SQLite) FindByID(ctx context.Context, id string) (*voice.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, language, reference_text, created_at
		FROM profiles WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, voice.ErrNotFound
		}

		return nil, fmt.Errorf("load profile: %w", err)
	}

	if err := s.loadSamples(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// ListAll returns every stored profile, samples included, ordered by
// creation time.
func (s *SQLite) ListAll(ctx context.Context) ([]*voice.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, language, reference_text, created_at
		FROM profiles ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*voice.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	for _, p := range profiles {
		if err := s.loadSamples(ctx, p); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

// Delete removes a profile and, via the foreign key cascade, its
// samples. Deleting an unknown ID returns voice.ErrNotFound.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n == 0 {
		return voice.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*voice.Profile, error) {
	var p voice.Profile
	var createdAt string

	if err := row.Scan(&p.ID, &p.Name, &p.Language, &p.ReferenceText, &createdAt); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = ts

	return &p, nil
}

func (s *SQLite) loadSamples(ctx context.Context, p *voice.Profile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_ref, duration_seconds, sample_rate_hz,
		       channel_count, bit_depth, valid, errors, warnings
		FROM samples WHERE profile_id = ? ORDER BY position ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var smp voice.Sample
		var errsJSON, warnsJSON string

		err := rows.Scan(&smp.SourceRef, &smp.DurationSeconds, &smp.SampleRateHz,
			&smp.ChannelCount, &smp.BitDepth, &smp.Valid, &errsJSON, &warnsJSON)
		if err != nil {
			return fmt.Errorf("scan sample: %w", err)
		}

		if err := json.Unmarshal([]byte(errsJSON), &smp.Errors); err != nil {
			return fmt.Errorf("decode sample errors: %w", err)
		}
		if err := json.Unmarshal([]byte(warnsJSON), &smp.Warnings); err != nil {
			return fmt.Errorf("decode sample warnings: %w", err)
		}

		// AddSample recomputes the derived duration, so the stored total
		// never drifts from the samples actually loaded.
		p.AddSample(smp)
	}

	return rows.Err()
}

func encodeNotes(smp voice.Sample) (string, string, error) {
	errs := smp.Errors
	if errs == nil {
		errs = []string{}
	}
	warns := smp.Warnings
	if warns == nil {
		warns = []string{}
	}

	errsJSON, err := json.Marshal(errs)
	if err != nil {
		return "", "", fmt.Errorf("encode sample errors: %w", err)
	}
	warnsJSON, err := json.Marshal(warns)
	if err != nil {
		return "", "", fmt.Errorf("encode sample warnings: %w", err)
	}

	return string(errsJSON), string(warnsJSON), nil
}

func isUniqueNameViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: profiles.name")
}
