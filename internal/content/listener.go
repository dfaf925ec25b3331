package content

import "quiz-arena/internal/pack"

// Listener receives traversal events in document order. Implementations
// must not call back into the Engine from inside a callback other than
// through the navigation methods, which are re-entrancy safe.
type Listener interface {
	PackageLoaded(p *pack.Package)
	GameThemesRevealed(names []string)
	RoundStarted(r *pack.Round, index int)
	RoundThemesRevealed(themes []*pack.Theme)
	ThemeStarted(t *pack.Theme, index int)

	QuestionSelected(themeIdx, questionIdx int, q *pack.Question)

	ContentAtomRevealed(a pack.Atom)
	WaitingForPress()
	AnswerRevealed(right []string)
	QuestionPostInfo(q *pack.Question)
	QuestionFinished()
	NextQuestionReady()
	RoundExhausted()
	RoundTimedOut()

	FinalThemesRevealed(themes []*pack.Theme)
	ThemeDeletionRequested(remaining []int)
	FinalQuestionPrepared(t *pack.Theme, q *pack.Question)

	GameEnded()
	EngineError(err error)
}
