package store

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		pack_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		game_id TEXT NOT NULL REFERENCES games(id),
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		final_sum BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (game_id, name, role)
	)`,
	`CREATE TABLE IF NOT EXISTS score_events (
		id BIGSERIAL PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES games(id),
		player TEXT NOT NULL,
		delta BIGINT NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id BIGSERIAL PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES games(id),
		player TEXT NOT NULL,
		theme TEXT NOT NULL,
		price BIGINT NOT NULL,
		answer TEXT NOT NULL,
		is_right BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		game_id TEXT PRIMARY KEY REFERENCES games(id),
		body JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema applies the bootstrap DDL. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
