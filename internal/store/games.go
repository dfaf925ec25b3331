package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type GameRow struct {
	ID         string
	PackName   string
	Status     string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

func (s *Store) CreateGame(ctx context.Context, id, packName string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO games (id, pack_name, status) VALUES ($1, $2, 'active')`, id, packName)
	return err
}

func (s *Store) EndGame(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE games SET status = 'finished', finished_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddParticipant(ctx context.Context, gameID, name, role string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO participants (game_id, name, role) VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, name, role) DO NOTHING`, gameID, name, role)
	return err
}

func (s *Store) SetFinalSum(ctx context.Context, gameID, name string, sum int64) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE participants SET final_sum = $3 WHERE game_id = $1 AND name = $2 AND role = 'player'`,
		gameID, name, sum)
	return err
}

func (s *Store) RecordScoreEvent(ctx context.Context, gameID, player string, delta int64, reason string) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO score_events (game_id, player, delta, reason) VALUES ($1, $2, $3, $4)`,
		gameID, player, delta, reason)
	return err
}

func (s *Store) RecordAnswer(ctx context.Context, gameID, player, theme string, price int64, answer string, isRight bool) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO answers (game_id, player, theme, price, answer, is_right) VALUES ($1, $2, $3, $4, $5, $6)`,
		gameID, player, theme, price, answer, isRight)
	return err
}

func (s *Store) SaveReport(ctx context.Context, gameID string, body []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO reports (game_id, body) VALUES ($1, $2)
		 ON CONFLICT (game_id) DO UPDATE SET body = EXCLUDED.body`, gameID, body)
	return err
}

func (s *Store) GetGame(ctx context.Context, id string) (*GameRow, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, pack_name, status, created_at, finished_at FROM games WHERE id = $1`, id)
	var g GameRow
	if err := row.Scan(&g.ID, &g.PackName, &g.Status, &g.CreatedAt, &g.FinishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListRecentGames(ctx context.Context, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, pack_name, status, created_at, finished_at FROM games ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.PackName, &g.Status, &g.CreatedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
