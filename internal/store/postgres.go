package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// PostgresProfiles is a ProfileRepository backed by the profiles table.
// Rules and sample headers are stored as JSONB.
type PostgresProfiles struct {
	pool *pgxpool.Pool
}

// NewPostgresProfiles creates a profile repository on pool.
func NewPostgresProfiles(pool *pgxpool.Pool) *PostgresProfiles {
	return &PostgresProfiles{pool: pool}
}

const profileColumns = `id, name, description, last_updated, sample_headers, rules`

func (s *PostgresProfiles) Get(ctx context.Context, id string) (Profile, error) {
	uid, ok := toPgUUID(id)
	if !ok {
		return Profile{}, ErrNotFound
	}

	row := s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, uid)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresProfiles) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY lower(name), id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *PostgresProfiles) Put(ctx context.Context, p Profile) error {
	uid, ok := toPgUUID(p.ID)
	if !ok {
		return fmt.Errorf("put profile: invalid id %q", p.ID)
	}

	headers, err := json.Marshal(nonNil(p.SampleHeaders))
	if err != nil {
		return fmt.Errorf("marshal sample headers: %w", err)
	}
	rules, err := json.Marshal(nonNilRules(p.Rules))
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			last_updated = EXCLUDED.last_updated,
			sample_headers = EXCLUDED.sample_headers,
			rules = EXCLUDED.rules`,
		uid, p.Name, p.Description,
		pgtype.Timestamptz{Time: p.LastUpdated, Valid: true},
		headers, rules,
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (s *PostgresProfiles) Delete(ctx context.Context, id string) error {
	uid, ok := toPgUUID(id)
	if !ok {
		return ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p       Profile
		id      pgtype.UUID
		updated pgtype.Timestamptz
		headers []byte
		rules   []byte
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &updated, &headers, &rules); err != nil {
		return Profile{}, err
	}

	p.ID = uuid.UUID(id.Bytes).String()
	p.LastUpdated = updated.Time
	if err := json.Unmarshal(headers, &p.SampleHeaders); err != nil {
		return Profile{}, fmt.Errorf("decode sample headers: %w", err)
	}
	if err := json.Unmarshal(rules, &p.Rules); err != nil {
		return Profile{}, fmt.Errorf("decode rules: %w", err)
	}
	return p, nil
}

// PostgresHistory is a HistoryRepository backed by the validation_history table.
type PostgresHistory struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgresHistory creates a history repository that keeps at most limit entries.
func NewPostgresHistory(pool *pgxpool.Pool, limit int) *PostgresHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &PostgresHistory{pool: pool, limit: limit}
}

func (h *PostgresHistory) Add(ctx context.Context, e validation.HistoryEntry) error {
	uid, ok := toPgUUID(e.ID)
	if !ok {
		return fmt.Errorf("add history entry: invalid id %q", e.ID)
	}

	return pgx.BeginFunc(ctx, h.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO validation_history
				(id, recorded_at, file_name, profile_name, profile_id, row_count, error_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uid, pgtype.Timestamptz{Time: e.Timestamp, Valid: true},
			e.FileName, e.ProfileName, e.ProfileID,
			e.Summary.RowCount, e.Summary.ErrorCount,
		)
		if err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM validation_history
			WHERE seq NOT IN (
				SELECT seq FROM validation_history ORDER BY seq DESC LIMIT $1
			)`, h.limit)
		if err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (h *PostgresHistory) List(ctx context.Context) ([]validation.HistoryEntry, error) {
	rows, err := h.pool.Query(ctx, `
		SELECT id, recorded_at, file_name, profile_name, profile_id, row_count, error_count
		FROM validation_history
		ORDER BY seq DESC
		LIMIT $1`, h.limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []validation.HistoryEntry{}
	for rows.Next() {
		var (
			e  validation.HistoryEntry
			id pgtype.UUID
			ts pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &ts, &e.FileName, &e.ProfileName, &e.ProfileID,
			&e.Summary.RowCount, &e.Summary.ErrorCount); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.ID = uuid.UUID(id.Bytes).String()
		e.Timestamp = ts.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func toPgUUID(id string) (pgtype.UUID, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: uid, Valid: true}, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilRules(r []validation.RuleDefinition) []validation.RuleDefinition {
	if r == nil {
		return []validation.RuleDefinition{}
	}
	return r
}
