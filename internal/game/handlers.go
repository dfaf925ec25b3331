package game

import (
	"context"
	"strings"

	"quiz-arena/internal/pack"
)

// SetNavigator closes the construction loop: the content engine needs
// the scheduler as its listener, the scheduler needs the engine for
// navigation.
func (s *Scheduler) SetNavigator(nav ContentNavigator) { s.nav = nav }

// dispatch is the closed task table: every TaskKind has exactly one
// handler and unknown kinds fail loudly instead of stalling the game.
func (s *Scheduler) dispatch(t Task) {
	switch t.Kind {
	case TaskNone:
		// parked

	case TaskStartGame:
		s.taskStartGame()
	case TaskPackage:
		s.taskPackage(t.Step)
	case TaskRoundHeader, TaskRoundThemes, TaskMoveNext:
		s.nav.Advance()

	case TaskAskFirst:
		s.taskAskFirst()
	case TaskWaitFirst:
		s.taskWaitFirst()
	case TaskAskToChoose:
		s.taskAskToChoose()
	case TaskWaitChoose:
		s.taskWaitChoose()
	case TaskTheme:
		s.taskTheme(t.Step)
	case TaskQuestionType:
		s.taskQuestionType()

	case TaskPrintQuestion:
		s.taskPrintQuestion()
	case TaskPrintStakeQuestion:
		s.taskPrintStakeQuestion()
	case TaskPrintSecretQuestion:
		s.taskPrintSecretQuestion()
	case TaskPrintSponsored:
		s.taskPrintSponsored()

	case TaskAskCat:
		s.taskAskCat()
	case TaskWaitCat:
		s.taskWaitCat()
	case TaskCatInfo:
		s.taskCatInfo()
	case TaskAskCatCost:
		s.taskAskCatCost()
	case TaskWaitCatCost:
		s.taskWaitCatCost()

	case TaskAskStake:
		s.taskAskStake()
	case TaskWaitStake:
		s.taskWaitStake()
	case TaskWaitNextPersonStake:
		s.taskWaitNextPersonStake()
	case TaskPrintAuctPlayer:
		s.taskPrintAuctPlayer()

	case TaskAskToTry:
		s.taskAskToTry()
	case TaskWaitTry:
		s.taskWaitTry()
	case TaskAskAnswer:
		s.taskAskAnswer()
	case TaskWaitAnswer:
		s.taskWaitAnswer()
	case TaskAskRight:
		s.taskAskRight()
	case TaskWaitRight:
		s.taskWaitRight()
	case TaskContinueQuestion:
		s.taskContinueQuestion()
	case TaskQuestionPostInfo:
		s.taskQuestionPostInfo(t.Step)

	case TaskPrintFinal:
		s.taskPrintFinal()
	case TaskAskToDelete:
		s.taskAskToDelete()
	case TaskWaitDelete:
		s.taskWaitDelete()
	case TaskWaitNextPersonDelete:
		s.taskWaitNextPersonDelete()
	case TaskAskFinalStake:
		s.taskAskFinalStake()
	case TaskWaitFinalStake:
		s.taskWaitFinalStake()
	case TaskAnnounce:
		s.taskAnnounce(t.Step)
	case TaskAnnounceStake:
		s.taskAnnounceStake(t.Step)

	case TaskEndRound:
		s.nav.Advance()
	case TaskEndGame:
		s.taskEndGame()
	case TaskGoodLuck:
		s.taskGoodLuck()
	case TaskWaitReport:
		s.taskWaitReport()

	case TaskPrintAppellation:
		s.taskPrintAppellation()
	case TaskWaitAppellationDecision:
		s.taskWaitAppellationDecision()
	case TaskCheckAppellation:
		s.taskCheckAppellation()

	default:
		s.FailTask(errUnknownTask(t.Kind))
	}
}

func (s *Scheduler) taskStartGame() {
	s.sess.Started = true
	s.out.SendAll(msg(MsgStage, "Begin"))
	s.nav.Advance()
}

// taskPackage pages through optional package metadata: each step shows
// one field if present or falls straight through, so absent fields cost
// no time.
func (s *Scheduler) taskPackage(step int) {
	p := s.pkg()
	switch step {
	case 0:
		s.sess.AnythingShown = false
		s.out.SendAll(msg(MsgPackage, p.Name))
		s.ScheduleTask(TaskPackage, 1, s.cfg.StepDelay, false)
	case 1:
		s.pageField(TaskPackage, step, strings.Join(p.Authors, ", "), "authors")
	case 2:
		s.pageField(TaskPackage, step, strings.Join(p.Sources, ", "), "sources")
	case 3:
		s.pageField(TaskPackage, step, p.Comments, "comments")
	default:
		s.endPaging()
	}
}

// pageField implements the shared paging idiom.
func (s *Scheduler) pageField(kind TaskKind, step int, value, caption string) {
	if value == "" {
		s.ScheduleTask(kind, step+1, 0, false)
		return
	}
	s.sess.AnythingShown = true
	s.replic(caption + ": " + value)
	s.ScheduleTask(kind, step+1, s.cfg.StepDelay, false)
}

// endPaging continues traversal, granting a pause only if anything was
// actually announced.
func (s *Scheduler) endPaging() {
	delay := s.cfg.StepDelay
	if !s.sess.AnythingShown {
		delay = 0
	}
	s.ScheduleTask(TaskMoveNext, 0, delay, false)
}

func (s *Scheduler) taskTheme(step int) {
	th := s.sess.Theme
	if th == nil {
		s.ScheduleTask(TaskMoveNext, 0, 0, false)
		return
	}
	switch step {
	case 0:
		s.sess.AnythingShown = false
		s.out.SendAll(msg(MsgTheme, th.Name))
		s.ScheduleTask(TaskTheme, 1, s.cfg.StepDelay, false)
	case 1:
		s.pageField(TaskTheme, step, strings.Join(th.Authors, ", "), "authors")
	case 2:
		s.pageField(TaskTheme, step, strings.Join(th.Sources, ", "), "sources")
	case 3:
		s.pageField(TaskTheme, step, th.Comments, "comments")
	default:
		s.endPaging()
	}
}

func (s *Scheduler) taskQuestionPostInfo(step int) {
	q := s.sess.Question
	if q == nil {
		s.ScheduleTask(TaskMoveNext, 0, 0, false)
		return
	}
	switch step {
	case 0:
		s.sess.AnythingShown = false
		s.pageField(TaskQuestionPostInfo, step, strings.Join(q.Authors, ", "), "authors")
	case 1:
		s.pageField(TaskQuestionPostInfo, step, strings.Join(q.Sources, ", "), "sources")
	case 2:
		s.pageField(TaskQuestionPostInfo, step, q.Comments, "comments")
	default:
		s.endPaging()
	}
}

// --- choosing ---

func (s *Scheduler) taskAskFirst() {
	candidates := s.inGameIndices()
	if len(candidates) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	if len(candidates) == 1 {
		s.sess.StarterPick = candidates[0]
		s.sess.Decision = DecisionStarterChoosing
		if !s.OnDecision() {
			s.FailTask(ErrEmptyCandidateSet)
		}
		return
	}
	s.sess.StarterPick = -1
	args := make([]string, 0, len(candidates))
	for _, i := range candidates {
		args = append(args, itoa(i))
	}
	s.out.SendTo(s.sess.Showman, msg(MsgFirst, args...))
	s.WaitFor(DecisionStarterChoosing, s.cfg.ChooseTime, -1, TimerDecision, TaskWaitFirst)
}

func (s *Scheduler) taskWaitFirst() {
	candidates := s.inGameIndices()
	if len(candidates) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.sess.StarterPick = candidates[s.rnd.Intn(len(candidates))]
	if !s.OnDecision() {
		s.FailTask(ErrEmptyCandidateSet)
	}
}

func (s *Scheduler) taskAskToChoose() {
	if !s.sess.ValidPlayer(s.sess.ChooserIndex) || !s.sess.Players[s.sess.ChooserIndex].InGame {
		candidates := s.inGameIndices()
		if len(candidates) == 0 {
			s.FailTask(ErrEmptyCandidateSet)
			return
		}
		s.sess.ChooserIndex = candidates[s.rnd.Intn(len(candidates))]
		s.out.SendAll(setChooserMsg(s.sess.ChooserIndex, false))
	}
	s.sess.ChoiceTheme = -1
	s.sess.ChoiceQuestion = -1
	chooser := s.sess.Players[s.sess.ChooserIndex]
	s.out.SendTo(chooser.Name, msg(MsgChoose))
	s.WaitFor(DecisionQuestionChoosing, s.cfg.ChooseTime, s.sess.ChooserIndex, TimerDecision, TaskWaitChoose)
}

func (s *Scheduler) taskWaitChoose() {
	avail := s.nav.AvailableQuestions()
	if len(avail) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	pick := avail[s.rnd.Intn(len(avail))]
	s.sess.ChoiceTheme = pick[0]
	s.sess.ChoiceQuestion = pick[1]
	if !s.OnDecision() {
		s.FailTask(ErrEmptyCandidateSet)
	}
}

// --- question kinds ---

func (s *Scheduler) taskQuestionType() {
	q := s.sess.Question
	if q == nil {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	switch q.EffectiveKind() {
	case pack.KindStake:
		s.out.SendAll(msg(MsgQType, string(pack.KindStake)))
		s.ScheduleTask(TaskPrintStakeQuestion, 0, s.cfg.StepDelay, false)
	case pack.KindSecret:
		s.out.SendAll(msg(MsgQType, string(pack.KindSecret)))
		s.ScheduleTask(TaskPrintSecretQuestion, 0, s.cfg.StepDelay, false)
	case pack.KindSponsored:
		s.out.SendAll(msg(MsgQType, string(pack.KindSponsored)))
		s.ScheduleTask(TaskPrintSponsored, 0, s.cfg.StepDelay, false)
	default:
		s.ScheduleTask(TaskPrintQuestion, 0, 0, false)
	}
}

func (s *Scheduler) taskPrintQuestion() {
	s.out.SendAll(questionMsg(s.sess.CurPrice))
	s.sess.AnswerMode = AnswerByPress
	if s.cfg.FalseStart {
		// Presses open only once the question is fully shown.
		s.setCanPress(false)
	} else {
		s.setCanPressEligible()
	}
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) taskPrintSponsored() {
	s.sess.AnswerMode = AnswerFixed
	s.sess.NoRisk = true
	s.sess.AnswererIndex = s.sess.ChooserIndex
	s.out.SendAll(questionMsg(s.sess.CurPrice))
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
}

// --- press flow ---

func (s *Scheduler) taskAskToTry() {
	if s.countEligiblePressers() == 0 {
		// Nobody left to press; reveal and move on.
		s.ScheduleTask(TaskMoveNext, 0, 0, false)
		return
	}
	s.setCanPressEligible()
	s.out.SendAll(msg(MsgTry))
	s.sess.PresserIndex = -1
	s.WaitFor(DecisionPressing, s.cfg.PressTime, -1, TimerThinking, TaskWaitTry)
}

func (s *Scheduler) taskWaitTry() {
	// Press window expired with no press: reveal the right answer.
	s.stopWaiting(TimerThinking)
	s.out.SendAll(msg(MsgEndTry))
	s.setCanPress(false)
	s.ScheduleTask(TaskMoveNext, 0, 0, false)
}

func (s *Scheduler) taskAskAnswer() {
	if s.sess.AnswerMode == AnswerByAll {
		s.out.SendAll(msg(MsgFinalThink))
		for _, p := range s.sess.Players {
			if p.InGame && !p.Answered {
				s.out.SendTo(p.Name, msg(MsgAnswer))
			}
		}
		s.WaitFor(DecisionAnswering, s.cfg.FinalThinkTime, -1, TimerThinking, TaskWaitAnswer)
		return
	}
	if !s.sess.ValidPlayer(s.sess.AnswererIndex) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	answerer := s.sess.Players[s.sess.AnswererIndex]
	answerer.CanPress = false
	s.out.SendAll(msg(MsgEndTry, itoa(s.sess.AnswererIndex)))
	s.out.SendTo(answerer.Name, msg(MsgAnswer))
	s.WaitFor(DecisionAnswering, s.cfg.AnswerTime, s.sess.AnswererIndex, TimerDecision, TaskWaitAnswer)
}

func (s *Scheduler) taskWaitAnswer() {
	if s.sess.AnswerMode == AnswerByAll {
		for _, p := range s.sess.Players {
			if p.InGame && !p.Answered {
				p.Answer = ""
				p.Answered = true
			}
		}
		if !s.OnDecision() {
			s.FailTask(ErrDecisionStuck)
		}
		return
	}
	if !s.sess.ValidPlayer(s.sess.AnswererIndex) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	p := s.sess.Players[s.sess.AnswererIndex]
	p.Answer = ""
	p.Answered = true
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

func (s *Scheduler) taskAskRight() {
	if !s.sess.ValidPlayer(s.sess.AnswererIndex) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	p := s.sess.Players[s.sess.AnswererIndex]
	q := s.sess.Question
	s.sess.Validated = nil
	s.out.SendTo(s.sess.Showman, validationMsg(p.Name, p.Answer, true, q.Right, q.Wrong))
	s.WaitFor(DecisionAnswerValidating, s.cfg.ValidationTime, -1, TimerDecision, TaskWaitRight)
}

func (s *Scheduler) taskWaitRight() {
	// Showman silent: fall back to literal comparison.
	if !s.sess.ValidPlayer(s.sess.AnswererIndex) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	p := s.sess.Players[s.sess.AnswererIndex]
	v := answerMatches(p.Answer, s.sess.Question.Right)
	s.sess.Validated = &v
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

func (s *Scheduler) taskContinueQuestion() {
	if s.sess.AnswerMode != AnswerByPress {
		s.ScheduleTask(TaskMoveNext, 0, 0, false)
		return
	}
	if s.countEligiblePressers() > 0 {
		s.ScheduleTask(TaskAskToTry, 0, s.cfg.StepDelay, false)
		return
	}
	s.ScheduleTask(TaskMoveNext, 0, 0, false)
}

// --- terminal ---

func (s *Scheduler) taskEndGame() {
	s.timers.CancelRound()
	s.timers.StopClock(TimerRound)
	winner, best := -1, 0
	for i, p := range s.sess.Players {
		if winner == -1 || p.Sum > best {
			winner, best = i, p.Sum
		}
	}
	s.out.SendAll(msg(MsgStage, "After"))
	if winner >= 0 {
		s.out.SendAll(msg(MsgWinner, itoa(winner)))
	}
	s.ScheduleTask(TaskGoodLuck, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) taskGoodLuck() {
	s.out.SendAll(msg(MsgFinish))
	for _, p := range s.sess.Players {
		p.Reported = false
		if p.IsHuman && p.Connected {
			s.out.SendTo(p.Name, msg(MsgReport))
		}
	}
	s.WaitFor(DecisionReporting, s.cfg.ReportTime, -1, TimerDecision, TaskWaitReport)
}

func (s *Scheduler) taskWaitReport() {
	for _, p := range s.sess.Players {
		p.Reported = true
	}
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

// --- helpers ---

func (s *Scheduler) pkg() *pack.Package {
	if p, ok := s.nav.(interface{ Package() *pack.Package }); ok {
		return p.Package()
	}
	return &pack.Package{}
}

func (s *Scheduler) inGameIndices() []int {
	var out []int
	for i, p := range s.sess.Players {
		if p.InGame {
			out = append(out, i)
		}
	}
	return out
}

func (s *Scheduler) setCanPress(v bool) {
	for _, p := range s.sess.Players {
		p.CanPress = v
	}
}

// setCanPressEligible opens presses for everyone still in the running
// for the current question.
func (s *Scheduler) setCanPressEligible() {
	for _, p := range s.sess.Players {
		p.CanPress = p.InGame && !p.Answered
	}
}

func (s *Scheduler) countEligiblePressers() int {
	n := 0
	for _, p := range s.sess.Players {
		if p.InGame && !p.Answered {
			n++
		}
	}
	return n
}

func answerMatches(answer string, right []string) bool {
	norm := normalizeAnswer(answer)
	if norm == "" {
		return false
	}
	for _, r := range right {
		if normalizeAnswer(r) == norm {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// persistReport stores the final standings; failures are logged and the
// game finishes regardless.
func (s *Scheduler) persistReport() {
	if s.journal == nil || s.journal.Store == nil {
		return
	}
	ctx := context.Background()
	for _, p := range s.sess.Players {
		if err := s.journal.Store.SetFinalSum(ctx, s.sess.ID, p.Name, int64(p.Sum)); err != nil {
			s.log.Warn().Err(err).Str("game_id", s.sess.ID).Msg("final sum persist failed")
		}
	}
	if err := s.journal.Store.SaveReport(ctx, s.sess.ID, buildReportBody(s.sess)); err != nil {
		s.log.Warn().Err(err).Str("game_id", s.sess.ID).Msg("report persist failed")
	}
}
