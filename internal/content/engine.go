// Package content walks a question package in presentation order and
// reports what it sees to a Listener. It holds no game rules: scores,
// timers and turn order belong to the session layer, which drives the
// traversal through Advance and the navigation commands.
package content

import (
	"errors"
	"fmt"

	"quiz-arena/internal/pack"
)

type stage int

const (
	stageBegin stage = iota
	stageGameThemes
	stageRoundHeader
	stageRoundThemes
	stageWaitChoice
	stageQuestionBody
	stageWaitPress
	stagePostInfo
	stageQuestionDone
	stageAfterQuestion
	stageFinalThemes
	stageWaitDelete
	stageEnd
)

var (
	ErrNoQuestion       = errors.New("no_question_selected")
	ErrQuestionPlayed   = errors.New("question_already_played")
	ErrBadIndex         = errors.New("bad_index")
	ErrThemeUnavailable = errors.New("theme_unavailable")
)

// Engine traverses one package for one game. Not safe for concurrent
// use; the owning session loop must serialize all calls.
type Engine struct {
	pkg      *pack.Package
	listener Listener

	roundIdx int
	round    *pack.Round

	played   [][]bool
	left     int
	themeIdx int
	qIdx     int
	question *pack.Question
	atomIdx  int

	deleted  []bool
	final    bool
	timedOut bool

	stage stage
}

func NewEngine(p *pack.Package, l Listener) *Engine {
	return &Engine{pkg: p, listener: l, roundIdx: 0, themeIdx: -1, stage: stageBegin}
}

func (e *Engine) Package() *pack.Package { return e.pkg }
func (e *Engine) RoundIndex() int        { return e.roundIdx }

// CanMoveBack reports whether the traversal is inside a question that
// can be returned to the board.
func (e *Engine) CanMoveBack() bool {
	switch e.stage {
	case stageQuestionBody, stageWaitPress, stagePostInfo, stageQuestionDone:
		return !e.final
	}
	return false
}

// Advance performs exactly one traversal step and emits its event.
func (e *Engine) Advance() {
	switch e.stage {
	case stageBegin:
		e.listener.PackageLoaded(e.pkg)
		e.stage = stageGameThemes
	case stageGameThemes:
		e.listener.GameThemesRevealed(e.allThemeNames())
		e.stage = stageRoundHeader
	case stageRoundHeader:
		e.startRound()
	case stageRoundThemes:
		e.listener.RoundThemesRevealed(themeRefs(e.round))
		e.stage = stageWaitChoice
	case stageWaitChoice:
		// Waiting for SelectQuestion; a bare Advance re-announces the board.
		e.listener.NextQuestionReady()
	case stageQuestionBody:
		if e.atomIdx < len(e.question.Body) {
			e.listener.ContentAtomRevealed(e.question.Body[e.atomIdx])
			e.atomIdx++
			return
		}
		e.stage = stageWaitPress
		e.listener.WaitingForPress()
	case stageWaitPress:
		e.stage = stagePostInfo
		e.listener.AnswerRevealed(e.question.Right)
	case stagePostInfo:
		e.stage = stageQuestionDone
		if hasPostInfo(e.question) {
			e.listener.QuestionPostInfo(e.question)
			return
		}
		e.Advance()
	case stageQuestionDone:
		e.stage = stageAfterQuestion
		e.listener.QuestionFinished()
	case stageAfterQuestion:
		e.afterQuestion()
	case stageFinalThemes:
		e.advanceFinal()
	case stageWaitDelete:
		e.advanceFinal()
	case stageEnd:
		e.listener.GameEnded()
	}
}

func (e *Engine) startRound() {
	if e.roundIdx >= len(e.pkg.Rounds) {
		e.stage = stageEnd
		e.listener.GameEnded()
		return
	}
	e.round = &e.pkg.Rounds[e.roundIdx]
	e.timedOut = false
	e.themeIdx = -1
	e.question = nil
	e.final = e.round.IsFinal()
	e.listener.RoundStarted(e.round, e.roundIdx)
	if e.final {
		e.deleted = make([]bool, len(e.round.Themes))
		e.stage = stageFinalThemes
		return
	}
	e.played = make([][]bool, len(e.round.Themes))
	e.left = 0
	for i, th := range e.round.Themes {
		e.played[i] = make([]bool, len(th.Questions))
		e.left += len(th.Questions)
	}
	e.stage = stageRoundThemes
}

func (e *Engine) afterQuestion() {
	switch {
	case e.final:
		e.stage = stageEnd
		e.listener.GameEnded()
	case e.timedOut:
		e.nextRound()
		e.listener.RoundTimedOut()
	case e.left == 0:
		e.nextRound()
		e.listener.RoundExhausted()
	default:
		e.stage = stageWaitChoice
		e.listener.NextQuestionReady()
	}
}

func (e *Engine) advanceFinal() {
	switch remaining := e.remainingThemes(); {
	case len(remaining) == 0:
		e.stage = stageEnd
		e.listener.GameEnded()
	case len(remaining) == 1:
		ti := remaining[0]
		th := &e.round.Themes[ti]
		if len(th.Questions) == 0 {
			e.stage = stageEnd
			e.listener.EngineError(fmt.Errorf("final theme %q: %w", th.Name, ErrNoQuestion))
			return
		}
		e.themeIdx = ti
		e.qIdx = 0
		e.question = &th.Questions[0]
		e.atomIdx = 0
		e.stage = stageQuestionBody
		e.listener.FinalQuestionPrepared(th, e.question)
	default:
		if e.stage == stageFinalThemes {
			e.stage = stageWaitDelete
			e.listener.FinalThemesRevealed(themeRefs(e.round))
			return
		}
		e.listener.ThemeDeletionRequested(remaining)
	}
}

// SelectQuestion consumes an unplayed board question.
func (e *Engine) SelectQuestion(themeIdx, questionIdx int) bool {
	if e.stage != stageWaitChoice {
		return false
	}
	if themeIdx < 0 || themeIdx >= len(e.round.Themes) {
		e.listener.EngineError(fmt.Errorf("select question theme %d: %w", themeIdx, ErrBadIndex))
		return false
	}
	th := &e.round.Themes[themeIdx]
	if questionIdx < 0 || questionIdx >= len(th.Questions) {
		e.listener.EngineError(fmt.Errorf("select question %d/%d: %w", themeIdx, questionIdx, ErrBadIndex))
		return false
	}
	if e.played[themeIdx][questionIdx] {
		e.listener.EngineError(fmt.Errorf("select question %d/%d: %w", themeIdx, questionIdx, ErrQuestionPlayed))
		return false
	}
	e.played[themeIdx][questionIdx] = true
	e.left--
	if themeIdx != e.themeIdx {
		e.listener.ThemeStarted(th, themeIdx)
	}
	e.themeIdx = themeIdx
	e.qIdx = questionIdx
	e.question = &th.Questions[questionIdx]
	e.atomIdx = 0
	e.stage = stageQuestionBody
	e.listener.QuestionSelected(themeIdx, questionIdx, e.question)
	return true
}

// SelectTheme removes a theme during final-round setup.
func (e *Engine) SelectTheme(themeIdx int) bool {
	if e.stage != stageWaitDelete {
		return false
	}
	if themeIdx < 0 || themeIdx >= len(e.deleted) || e.deleted[themeIdx] {
		e.listener.EngineError(fmt.Errorf("delete theme %d: %w", themeIdx, ErrThemeUnavailable))
		return false
	}
	e.deleted[themeIdx] = true
	return true
}

// SkipQuestion abandons the current question without revealing the rest
// of its body or its answer.
func (e *Engine) SkipQuestion() {
	if e.question == nil {
		return
	}
	e.stage = stageAfterQuestion
}

// MoveBack returns the current question to the board unplayed.
func (e *Engine) MoveBack() {
	if !e.CanMoveBack() {
		return
	}
	e.played[e.themeIdx][e.qIdx] = false
	e.left++
	e.question = nil
	e.themeIdx = -1
	e.stage = stageWaitChoice
	e.listener.NextQuestionReady()
}

func (e *Engine) MoveToRound(index int) bool {
	if index < 0 || index >= len(e.pkg.Rounds) {
		return false
	}
	e.roundIdx = index
	e.stage = stageRoundHeader
	return true
}

func (e *Engine) MoveToNextRound() bool {
	return e.MoveToRound(e.roundIdx + 1)
}

func (e *Engine) MoveToPreviousRound() bool {
	return e.MoveToRound(e.roundIdx - 1)
}

// SetTimeout marks the running round as expired; the round ends after
// the in-flight question completes.
func (e *Engine) SetTimeout() {
	e.timedOut = true
}

func (e *Engine) nextRound() {
	e.roundIdx++
	e.stage = stageRoundHeader
}

// AvailableQuestions lists the unplayed board cells as
// {theme index, question index} pairs.
func (e *Engine) AvailableQuestions() [][2]int {
	if e.round == nil || e.final {
		return nil
	}
	var out [][2]int
	for ti, qs := range e.played {
		for qi, done := range qs {
			if !done {
				out = append(out, [2]int{ti, qi})
			}
		}
	}
	return out
}

func (e *Engine) remainingThemes() []int {
	var out []int
	for i, d := range e.deleted {
		if !d {
			out = append(out, i)
		}
	}
	return out
}

func (e *Engine) allThemeNames() []string {
	var names []string
	for _, r := range e.pkg.Rounds {
		for _, th := range r.Themes {
			names = append(names, th.Name)
		}
	}
	return names
}

func themeRefs(r *pack.Round) []*pack.Theme {
	out := make([]*pack.Theme, len(r.Themes))
	for i := range r.Themes {
		out[i] = &r.Themes[i]
	}
	return out
}

func hasPostInfo(q *pack.Question) bool {
	return len(q.Authors) > 0 || len(q.Sources) > 0 || q.Comments != ""
}
