package game

import (
	"context"

	"quiz-arena/internal/pack"
)

// OnDecision checks whether the awaited input has fully arrived and, if
// so, consumes it and schedules the continuation. Returning false keeps
// the window open (partial input, or nothing usable yet).
func (s *Scheduler) OnDecision() bool {
	switch s.sess.Decision {
	case DecisionStarterChoosing:
		return s.onStarterChosen()
	case DecisionQuestionChoosing:
		return s.onQuestionChosen()
	case DecisionAnswering:
		return s.onAnswered()
	case DecisionAnswerValidating:
		return s.onValidated()
	case DecisionCatGiving:
		return s.onCatGiven()
	case DecisionCatCostSetting:
		return s.onCatCostSet()
	case DecisionAuctionStakeMaking:
		return s.onAuctionStake()
	case DecisionNextPersonStakeMaking:
		return s.onNextStakerPicked()
	case DecisionFinalThemeDeleting:
		return s.onThemeDeleted()
	case DecisionNextPersonFinalThemeDeleting:
		return s.onNextDeleterPicked()
	case DecisionFinalStakeMaking:
		return s.onFinalStakes()
	case DecisionAppellationDecision:
		return s.onAppellationVotes()
	case DecisionReporting:
		return s.onReports()
	}
	return false
}

func (s *Scheduler) onStarterChosen() bool {
	pick := s.sess.StarterPick
	if !s.sess.ValidPlayer(pick) || !s.sess.Players[pick].InGame {
		return false
	}
	s.stopWaiting(TimerDecision)
	s.sess.ChooserIndex = pick
	s.sess.StarterPick = -1
	s.out.SendAll(setChooserMsg(pick, false))
	s.ScheduleTask(TaskAskToChoose, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onQuestionChosen() bool {
	ti, qi := s.sess.ChoiceTheme, s.sess.ChoiceQuestion
	if ti < 0 || qi < 0 {
		return false
	}
	if !s.nav.SelectQuestion(ti, qi) {
		// Stale or bogus pick: drop it and keep the window open.
		s.sess.ChoiceTheme = -1
		s.sess.ChoiceQuestion = -1
		return false
	}
	// QuestionSelected already scheduled the continuation.
	s.stopWaiting(TimerDecision)
	return true
}

func (s *Scheduler) onAnswered() bool {
	if s.sess.AnswerMode == AnswerByAll {
		for _, p := range s.sess.Players {
			if p.InGame && !p.Answered {
				return false
			}
		}
		s.stopWaiting(TimerThinking)
		s.sess.AnnounceOrder = announceOrder(s.sess)
		s.ScheduleTask(TaskAnnounce, 0, s.cfg.StepDelay, false)
		return true
	}
	if !s.sess.ValidPlayer(s.sess.AnswererIndex) || !s.sess.Players[s.sess.AnswererIndex].Answered {
		return false
	}
	s.stopWaiting(TimerDecision)
	s.ScheduleTask(TaskAskRight, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onValidated() bool {
	if s.sess.Validated == nil {
		return false
	}
	verdict := *s.sess.Validated
	s.sess.Validated = nil
	s.stopWaiting(TimerDecision)

	if s.sess.AnswerMode == AnswerByAll {
		s.ScheduleTask(TaskAnnounceStake, 0, s.cfg.StepDelay, false)
		if verdict {
			s.replic("right")
		} else {
			s.replic("wrong")
		}
		s.setVerdict(verdict)
		return true
	}

	idx := s.sess.AnswererIndex
	price := s.sess.CurPrice
	if verdict {
		s.ApplyScoreRecorded(idx, price, true)
		s.sess.ChooserIndex = idx
		s.out.SendAll(setChooserMsg(idx, true))
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
		return true
	}
	if s.sess.NoRisk {
		s.ApplyScoreRecorded(idx, 0, false)
	} else {
		s.ApplyScoreRecorded(idx, -price, false)
	}
	if s.sess.AnswerMode == AnswerByPress {
		s.ScheduleTask(TaskContinueQuestion, 0, s.cfg.StepDelay, false)
	} else {
		// Fixed answerer: the question is spent either way.
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	}
	return true
}

// setVerdict stashes the final-round verdict for TaskAnnounceStake.
func (s *Scheduler) setVerdict(v bool) { s.finalVerdict = v }

// ApplyScoreRecorded applies a delta and appends the history entry
// carrying the price, the form appellation reversal needs.
func (s *Scheduler) ApplyScoreRecorded(playerIdx, delta int, isRight bool) {
	reason := "answer_wrong"
	if isRight {
		reason = "answer_right"
	}
	s.applyDelta(playerIdx, delta, reason)
	s.sess.History = append(s.sess.History, AnswerRecord{
		PlayerIndex: playerIdx,
		IsRight:     isRight,
		Delta:       delta,
		Price:       abs(delta),
	})
	p := s.sess.Players[playerIdx]
	theme := ""
	if s.sess.Theme != nil {
		theme = s.sess.Theme.Name
	}
	_ = s.journal.RecordAnswer(context.Background(), s.sess.ID, p.Name, theme, abs(delta), p.Answer, isRight)
}

func (s *Scheduler) onCatGiven() bool {
	r := s.sess.CatReceiver
	if !s.sess.ValidPlayer(r) || !s.sess.Players[r].InGame {
		return false
	}
	s.stopWaiting(TimerDecision)
	s.sess.AnswererIndex = r
	s.sess.AnswerMode = AnswerFixed
	s.out.SendAll(msg(MsgCat, itoa(r)))
	s.ScheduleTask(TaskCatInfo, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onCatCostSet() bool {
	q := s.sess.Question
	if q == nil || q.Secret == nil {
		return false
	}
	c := s.sess.CatCost
	if !validCatCost(c, q.Secret) {
		return false
	}
	s.stopWaiting(TimerDecision)
	s.sess.CurPrice = c
	s.out.SendAll(msg(MsgCatCost, itoa(c)))
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onFinalStakes() bool {
	for _, p := range s.sess.Players {
		if p.InGame && !p.Staked {
			return false
		}
	}
	s.stopWaiting(TimerDecision)
	s.replic("all stakes are in")
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onReports() bool {
	for _, p := range s.sess.Players {
		if p.IsHuman && p.Connected && !p.Reported {
			return false
		}
	}
	s.stopWaiting(TimerDecision)
	s.persistReport()
	s.sess.Finished = true
	s.log.Info().Str("game_id", s.sess.ID).Msg("game finished")
	if s.onFinished != nil {
		s.onFinished()
	}
	return true
}

func validCatCost(c int, sc *pack.SecretCost) bool {
	if c < sc.Min || c > sc.Max {
		return false
	}
	if sc.Step > 0 && (c-sc.Min)%sc.Step != 0 {
		return false
	}
	return true
}

// PlayerLeft substitutes the timeout default for whatever the departed
// player still owes the open window, then re-checks it. A disconnect
// must never leave the table waiting out a full window on someone who
// cannot act.
func (s *Scheduler) PlayerLeft(idx int) {
	sess := s.sess
	if !sess.ValidPlayer(idx) {
		return
	}
	p := sess.Players[idx]
	p.CanPress = false
	switch sess.Decision {
	case DecisionAnswering:
		if p.InGame && !p.Answered && (sess.AnswerMode == AnswerByAll || sess.AnswererIndex == idx) {
			p.Answer = ""
			p.Answered = true
		}
	case DecisionFinalStakeMaking:
		if p.InGame && !p.Staked {
			p.FinalStake = 1
			p.Staked = true
			s.out.SendAll(msg(MsgFinalStake, itoa(idx)))
		}
	case DecisionReporting, DecisionAppellationDecision:
		// Connected=false alone may complete these; nothing to default.
	default:
		return
	}
	s.OnDecision()
}

// --- reported input (called from the Host loop on behalf of clients) ---

// ReportPress claims the press window. First valid press wins; the
// scheduler re-enters immediately through the Answer stop reason.
func (s *Scheduler) ReportPress(playerIdx int) bool {
	if s.sess.Decision != DecisionPressing {
		return false
	}
	if !s.sess.ValidPlayer(playerIdx) || !s.sess.Players[playerIdx].CanPress {
		return false
	}
	if s.sess.PresserIndex >= 0 {
		return false
	}
	s.sess.PresserIndex = playerIdx
	s.sess.SetStopReason(StopAnswer)
	s.Interrupt()
	return true
}

func (s *Scheduler) ReportStarter(playerIdx int) bool {
	if s.sess.Decision != DecisionStarterChoosing {
		return false
	}
	if !s.sess.ValidPlayer(playerIdx) || !s.sess.Players[playerIdx].InGame {
		return false
	}
	s.sess.StarterPick = playerIdx
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportChoice(playerIdx, themeIdx, questionIdx int) bool {
	if s.sess.Decision != DecisionQuestionChoosing || playerIdx != s.sess.ChooserIndex {
		return false
	}
	s.sess.ChoiceTheme = themeIdx
	s.sess.ChoiceQuestion = questionIdx
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportAnswer(playerIdx int, text string) bool {
	if s.sess.Decision != DecisionAnswering || !s.sess.ValidPlayer(playerIdx) {
		return false
	}
	p := s.sess.Players[playerIdx]
	if s.sess.AnswerMode == AnswerByAll {
		if !p.InGame || p.Answered {
			return false
		}
		p.Answer = text
		p.Answered = true
		for _, q := range s.sess.Players {
			if q.InGame && !q.Answered {
				return true // recorded, window stays open
			}
		}
		s.decisionArrived()
		return true
	}
	if playerIdx != s.sess.AnswererIndex || p.Answered {
		return false
	}
	p.Answer = text
	p.Answered = true
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportValidation(verdict bool) bool {
	if s.sess.Decision != DecisionAnswerValidating || s.sess.Validated != nil {
		return false
	}
	v := verdict
	s.sess.Validated = &v
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportCatReceiver(playerIdx, receiver int) bool {
	if s.sess.Decision != DecisionCatGiving || playerIdx != s.sess.ChooserIndex {
		return false
	}
	if !s.sess.ValidPlayer(receiver) || !s.sess.Players[receiver].InGame {
		return false
	}
	s.sess.CatReceiver = receiver
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportCatCost(playerIdx, cost int) bool {
	if s.sess.Decision != DecisionCatCostSetting || playerIdx != s.sess.AnswererIndex {
		return false
	}
	q := s.sess.Question
	if q == nil || q.Secret == nil || !validCatCost(cost, q.Secret) {
		return false
	}
	s.sess.CatCost = cost
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportFinalStake(playerIdx, amount int) bool {
	if s.sess.Decision != DecisionFinalStakeMaking || !s.sess.ValidPlayer(playerIdx) {
		return false
	}
	p := s.sess.Players[playerIdx]
	if !p.InGame || p.Staked || amount < 1 || amount > p.Sum {
		return false
	}
	p.FinalStake = amount
	p.Staked = true
	s.out.SendAll(msg(MsgFinalStake, itoa(playerIdx)))
	for _, q := range s.sess.Players {
		if q.InGame && !q.Staked {
			return true
		}
	}
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportGameReport(playerIdx int) bool {
	if s.sess.Decision != DecisionReporting || !s.sess.ValidPlayer(playerIdx) {
		return false
	}
	p := s.sess.Players[playerIdx]
	if p.Reported {
		return false
	}
	p.Reported = true
	for _, q := range s.sess.Players {
		if q.IsHuman && q.Connected && !q.Reported {
			return true
		}
	}
	s.decisionArrived()
	return true
}

// decisionArrived routes a complete report through the stop-reason
// machinery so it lands on the owning loop's execution path.
func (s *Scheduler) decisionArrived() {
	s.sess.SetStopReason(StopDecision)
	s.Interrupt()
}
