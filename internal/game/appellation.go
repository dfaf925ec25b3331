package game

// Appellation: a player contests an already-judged answer. The running
// task is shelved, everyone else votes, and on acceptance the score
// history is rewound and replayed with the verdict flipped. Afterwards
// the shelved task resumes with its original window.

// waitResume maps a shelved wait task back to the decision window it
// was holding open, so the window can be reopened after the interrupt.
var waitResume = map[TaskKind]struct {
	decision Decision
	timerID  int
}{
	TaskWaitFirst:            {DecisionStarterChoosing, TimerDecision},
	TaskWaitChoose:           {DecisionQuestionChoosing, TimerDecision},
	TaskWaitTry:              {DecisionPressing, TimerThinking},
	TaskWaitAnswer:           {DecisionAnswering, TimerDecision},
	TaskWaitRight:            {DecisionAnswerValidating, TimerDecision},
	TaskWaitCat:              {DecisionCatGiving, TimerDecision},
	TaskWaitCatCost:          {DecisionCatCostSetting, TimerDecision},
	TaskWaitStake:            {DecisionAuctionStakeMaking, TimerDecision},
	TaskWaitNextPersonStake:  {DecisionNextPersonStakeMaking, TimerDecision},
	TaskWaitDelete:           {DecisionFinalThemeDeleting, TimerDecision},
	TaskWaitNextPersonDelete: {DecisionNextPersonFinalThemeDeleting, TimerDecision},
	TaskWaitFinalStake:       {DecisionFinalStakeMaking, TimerDecision},
	TaskWaitReport:           {DecisionReporting, TimerDecision},
}

// ReportAppellation opens an appellation. forRight contests the
// player's own rejected answer; otherwise the player disputes somebody
// else's accepted one.
func (s *Scheduler) ReportAppellation(playerIdx int, forRight bool) bool {
	sess := s.sess
	if !sess.Started || sess.Finished || sess.AppellantIndex >= 0 {
		return false
	}
	if !sess.ValidPlayer(playerIdx) || !s.hasPending {
		return false
	}
	rec := findAppealRecord(sess.History, playerIdx, forRight)
	if rec < 0 {
		return false
	}
	sess.AppellantIndex = playerIdx
	sess.AppealRecord = rec
	sess.AppealForRight = forRight
	sess.AppealVotesFor = 1
	sess.AppealVotesAgst = 0
	sess.AppealVoted = make([]bool, len(sess.Players))
	sess.AppealVoted[playerIdx] = true
	answerer := sess.History[rec].PlayerIndex
	if answerer != playerIdx {
		// The judged player defends their verdict.
		sess.AppealVotesAgst = 1
		sess.AppealVoted[answerer] = true
	}
	if !sess.SetStopReason(StopAppellation) {
		sess.AppellantIndex = -1
		sess.AppealRecord = -1
		sess.AppealVoted = nil
		return false
	}
	s.Interrupt()
	return true
}

func findAppealRecord(history []AnswerRecord, playerIdx int, forRight bool) int {
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		if forRight {
			if r.PlayerIndex == playerIdx && !r.IsRight {
				return i
			}
			continue
		}
		if r.IsRight && r.PlayerIndex != playerIdx {
			return i
		}
	}
	return -1
}

func (s *Scheduler) taskPrintAppellation() {
	sess := s.sess
	if sess.AppealRecord < 0 || sess.AppealRecord >= len(sess.History) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	rec := sess.History[sess.AppealRecord]
	answerer := sess.Players[rec.PlayerIndex]
	s.out.SendAll(msg(MsgAppellation,
		itoa(sess.AppellantIndex), flag(sess.AppealForRight),
		itoa(rec.PlayerIndex), answerer.Answer))
	if s.appealVotesComplete() {
		s.ScheduleTask(TaskCheckAppellation, 0, s.cfg.StepDelay, false)
		return
	}
	s.WaitFor(DecisionAppellationDecision, s.cfg.AppellationTime, -1, TimerDecision, TaskWaitAppellationDecision)
}

// taskWaitAppellationDecision: voting time is up, silence abstains.
func (s *Scheduler) taskWaitAppellationDecision() {
	for i := range s.sess.AppealVoted {
		s.sess.AppealVoted[i] = true
	}
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

func (s *Scheduler) onAppellationVotes() bool {
	if !s.appealVotesComplete() {
		return false
	}
	s.stopWaiting(TimerDecision)
	s.ScheduleTask(TaskCheckAppellation, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) appealVotesComplete() bool {
	for i, voted := range s.sess.AppealVoted {
		if !voted && s.sess.Players[i].IsHuman && s.sess.Players[i].Connected {
			return false
		}
	}
	return true
}

func (s *Scheduler) ReportAppellationVote(playerIdx int, voteFor bool) bool {
	sess := s.sess
	if sess.Decision != DecisionAppellationDecision || !sess.ValidPlayer(playerIdx) {
		return false
	}
	if sess.AppealVoted == nil || sess.AppealVoted[playerIdx] {
		return false
	}
	sess.AppealVoted[playerIdx] = true
	if voteFor {
		sess.AppealVotesFor++
	} else {
		sess.AppealVotesAgst++
	}
	if s.appealVotesComplete() {
		s.decisionArrived()
	}
	return true
}

// taskCheckAppellation counts the votes, rewinds on acceptance, and
// resumes the shelved task.
func (s *Scheduler) taskCheckAppellation() {
	sess := s.sess
	accepted := sess.AppealVotesFor > sess.AppealVotesAgst
	s.log.Info().
		Str("game_id", sess.ID).
		Int("appellant", sess.AppellantIndex).
		Bool("for_right", sess.AppealForRight).
		Int("votes_for", sess.AppealVotesFor).
		Int("votes_against", sess.AppealVotesAgst).
		Bool("accepted", accepted).
		Msg("appellation resolved")

	if accepted {
		s.reverseAppealRecord()
		s.replic("appellation accepted")
	} else {
		s.replic("appellation rejected")
	}

	sess.AppellantIndex = -1
	sess.AppealRecord = -1
	sess.AppealVoted = nil
	sess.AppealVotesFor = 0
	sess.AppealVotesAgst = 0

	s.resumeShelved()
}

// reverseAppealRecord flips the contested verdict. Everything judged
// after it within the same question is voided first so the rewind is
// exact, then the flipped delta is applied.
func (s *Scheduler) reverseAppealRecord() {
	sess := s.sess
	at := sess.AppealRecord
	if at < 0 || at >= len(sess.History) {
		return
	}
	for i := len(sess.History) - 1; i > at; i-- {
		r := sess.History[i]
		s.applyDelta(r.PlayerIndex, -r.Delta, "appellation_void")
	}
	sess.History = sess.History[:at+1]

	rec := &sess.History[at]
	if sess.AppealForRight {
		// wrong -> right: undo the penalty, grant the price.
		s.applyDelta(rec.PlayerIndex, -rec.Delta+rec.Price, "appellation_accepted")
		rec.IsRight = true
		rec.Delta = rec.Price
		sess.ChooserIndex = rec.PlayerIndex
		s.out.SendAll(setChooserMsg(rec.PlayerIndex, false))
		return
	}
	// right -> wrong: revoke the award, apply the penalty.
	s.applyDelta(rec.PlayerIndex, -rec.Delta-rec.Price, "appellation_accepted")
	rec.IsRight = false
	rec.Delta = -rec.Price
}

// resumeShelved restores the interrupted task, reopening its decision
// window when it was a wait.
func (s *Scheduler) resumeShelved() {
	saved, ok := s.sess.PopTask()
	if !ok {
		return
	}
	if r, isWait := waitResume[saved.Task.Kind]; isWait {
		delay := saved.Delay
		if delay <= 0 {
			delay = s.cfg.StepDelay
		}
		s.sess.Decision = r.decision
		s.out.SendAll(timerMsg(r.timerID, "Go", itoa(int(delay.Seconds()))))
		s.timers.StartClock(r.timerID)
		s.ScheduleTask(saved.Task.Kind, saved.Task.Step, delay, true)
		return
	}
	s.ScheduleTask(saved.Task.Kind, saved.Task.Step, saved.Delay, true)
}
