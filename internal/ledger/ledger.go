// Package ledger journals score movements. Every delta the game applies
// (answers, stakes, appellation reversals) flows through here so a
// finished game can be audited.
package ledger

import (
	"context"

	"quiz-arena/internal/store"
)

type Journal struct {
	Store *store.Store
}

func New(s *store.Store) *Journal {
	return &Journal{Store: s}
}

func (j *Journal) RecordDelta(ctx context.Context, gameID, player string, delta int, reason string) error {
	if j == nil || j.Store == nil {
		return nil
	}
	return j.Store.RecordScoreEvent(ctx, gameID, player, int64(delta), reason)
}

func (j *Journal) RecordAnswer(ctx context.Context, gameID, player, theme string, price int, answer string, isRight bool) error {
	if j == nil || j.Store == nil {
		return nil
	}
	return j.Store.RecordAnswer(ctx, gameID, player, theme, int64(price), answer, isRight)
}
