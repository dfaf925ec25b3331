package game

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCandidateSet = errors.New("game: no eligible player for this step")
	ErrNoQuestionActive  = errors.New("game: no active question")
	ErrIndexOutOfRange   = errors.New("game: actor index out of range")
	ErrDecisionStuck     = errors.New("game: decision handler rejected a complete default")
	ErrDuplicateOrder    = errors.New("game: player appears twice in auction order")
	ErrGameFinished      = errors.New("game: session already finished")
	ErrNotStarted        = errors.New("game: session not started")
)

func errUnknownTask(k TaskKind) error {
	return fmt.Errorf("game: no handler for task %s", k)
}
