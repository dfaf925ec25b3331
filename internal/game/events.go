package game

import (
	"strconv"

	"quiz-arena/internal/pack"
)

// The scheduler doubles as the content traversal listener: every event
// lands here on the owning loop and turns into the next scheduled task.

func (s *Scheduler) PackageLoaded(*pack.Package) {
	s.ScheduleTask(TaskPackage, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) GameThemesRevealed(names []string) {
	s.out.SendAll(msg(MsgGameThemes, names...))
	s.ScheduleTask(TaskMoveNext, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) RoundStarted(r *pack.Round, index int) {
	s.sess.Round = r
	s.sess.Theme = nil
	s.sess.Question = nil
	s.out.SendAll(msg(MsgStage, "Round", strconv.Itoa(index), r.Name))
	if !r.IsFinal() {
		s.timers.ArmRound(s.cfg.RoundTime)
		s.timers.StartClock(TimerRound)
		s.out.SendAll(timerMsg(TimerRound, "Go", itoa(int(s.cfg.RoundTime.Seconds()))))
	}
	s.ScheduleTask(TaskRoundThemes, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) RoundThemesRevealed(themes []*pack.Theme) {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	s.out.SendAll(msg(MsgRoundThemes, names...))
	s.ScheduleTask(TaskMoveNext, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) ThemeStarted(t *pack.Theme, index int) {
	s.sess.Theme = t
	s.out.SendAll(msg(MsgTheme, t.Name))
}

func (s *Scheduler) QuestionSelected(themeIdx, questionIdx int, q *pack.Question) {
	s.sess.Question = q
	s.sess.CurPrice = q.Price
	s.out.SendAll(choiceMsg(themeIdx, questionIdx))
	s.ScheduleTask(TaskQuestionType, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) ContentAtomRevealed(a pack.Atom) {
	s.out.SendAll(msg(MsgAtom, string(a.Kind), a.Text))
	s.ScheduleTask(TaskMoveNext, 0, s.atomDelay(len(a.Text)), false)
}

func (s *Scheduler) WaitingForPress() {
	switch s.sess.AnswerMode {
	case AnswerByAll:
		s.ScheduleTask(TaskAskAnswer, 0, 0, false)
	case AnswerFixed:
		s.ScheduleTask(TaskAskAnswer, 0, 0, false)
	default:
		s.ScheduleTask(TaskAskToTry, 0, 0, false)
	}
}

func (s *Scheduler) AnswerRevealed(right []string) {
	s.out.SendAll(msg(MsgRightAnswer, right...))
	s.ScheduleTask(TaskMoveNext, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) QuestionPostInfo(*pack.Question) {
	s.ScheduleTask(TaskQuestionPostInfo, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) QuestionFinished() {
	s.out.SendAll(msg(MsgQuestionCaption))
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
}

// NextQuestionReady starts a fresh board pick. The very first pick of
// the game goes through starter selection instead.
func (s *Scheduler) NextQuestionReady() {
	s.sess.ClearQuestionScratch()
	s.sess.Question = nil
	if s.sess.ChooserIndex < 0 {
		s.ScheduleTask(TaskAskFirst, 0, s.cfg.StepDelay, false)
		return
	}
	s.ScheduleTask(TaskAskToChoose, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) RoundExhausted() {
	s.roundOver("all questions played")
}

func (s *Scheduler) RoundTimedOut() {
	s.roundOver("round time is up")
}

func (s *Scheduler) roundOver(text string) {
	s.timers.CancelRound()
	s.timers.StopClock(TimerRound)
	s.out.SendAll(timerMsg(TimerRound, "Stop"))
	s.replic(text)
	s.ScheduleTask(TaskEndRound, 0, 2*s.cfg.StepDelay, false)
}

// OnRoundTimeout is the round one-shot callback: the round finishes
// after the in-flight question completes, never mid-question.
func (s *Scheduler) OnRoundTimeout() {
	s.nav.SetTimeout()
	s.timers.StopClock(TimerRound)
	s.out.SendAll(timerMsg(TimerRound, "Stop"))
}

func (s *Scheduler) FinalThemesRevealed(themes []*pack.Theme) {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	s.out.SendAll(msg(MsgFinalRound, names...))

	for i, p := range s.sess.Players {
		if p.InGame && p.Sum <= 0 {
			p.InGame = false
			s.out.SendAll(msg(MsgOut, itoa(i)))
		}
	}
	// With one qualifier there is nothing to play for; with zero,
	// nothing to play with. Either way the game ends here.
	switch s.sess.InGameCount() {
	case 0:
		s.replic("nobody qualifies for the final round")
		s.ScheduleTask(TaskEndGame, 0, 2*s.cfg.StepDelay, false)
		return
	case 1:
		s.replic("only one player qualifies, the final round is skipped")
		s.ScheduleTask(TaskEndGame, 0, 2*s.cfg.StepDelay, false)
		return
	}

	remaining := make([]int, len(themes))
	for i := range themes {
		remaining[i] = i
	}
	s.sess.FinalThemes = remaining
	s.sess.Deleters = NewThemeDeleters(s.sess, s.rnd)
	s.ScheduleTask(TaskAskToDelete, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) ThemeDeletionRequested(remaining []int) {
	s.sess.FinalThemes = remaining
	s.ScheduleTask(TaskAskToDelete, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) FinalQuestionPrepared(t *pack.Theme, q *pack.Question) {
	s.sess.Theme = t
	s.sess.Question = q
	s.sess.AnswerMode = AnswerByAll
	s.sess.CurPrice = 0
	s.out.SendAll(msg(MsgTheme, t.Name))
	s.ScheduleTask(TaskPrintFinal, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) GameEnded() {
	s.ScheduleTask(TaskEndGame, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) EngineError(err error) {
	s.log.Warn().Str("game_id", s.sess.ID).Err(err).Msg("content engine rejected a command")
}
