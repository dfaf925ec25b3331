package game

// Secret question: the chooser hands it to any player in the game, who
// then answers alone. A cost range, if present, lets the receiver set
// the price themselves.

func (s *Scheduler) taskPrintSecretQuestion() {
	if s.sess.Question == nil {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	s.sess.AnswerMode = AnswerFixed
	s.ScheduleTask(TaskAskCat, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) taskAskCat() {
	sess := s.sess
	if !sess.ValidPlayer(sess.ChooserIndex) {
		s.FailTask(ErrIndexOutOfRange)
		return
	}
	sess.CatReceiver = -1
	s.out.SendTo(sess.Players[sess.ChooserIndex].Name, msg(MsgCat))
	s.WaitFor(DecisionCatGiving, s.cfg.CatGiveTime, sess.ChooserIndex, TimerDecision, TaskWaitCat)
}

// taskWaitCat: chooser silent, the question goes to a random player.
func (s *Scheduler) taskWaitCat() {
	candidates := s.inGameIndices()
	if len(candidates) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.sess.CatReceiver = candidates[s.rnd.Intn(len(candidates))]
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

// taskCatInfo announces the cost, or defers to the receiver when the
// package defines a range.
func (s *Scheduler) taskCatInfo() {
	q := s.sess.Question
	if q == nil {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	sc := q.Secret
	switch {
	case sc == nil || sc.Max == 0:
		// Nominal price stands.
		s.out.SendAll(msg(MsgCatCost, itoa(s.sess.CurPrice)))
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	case sc.Min == sc.Max:
		s.sess.CurPrice = sc.Min
		s.out.SendAll(msg(MsgCatCost, itoa(sc.Min)))
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	default:
		s.ScheduleTask(TaskAskCatCost, 0, s.cfg.StepDelay, false)
	}
}

func (s *Scheduler) taskAskCatCost() {
	sess := s.sess
	q := sess.Question
	if q == nil || q.Secret == nil || !sess.ValidPlayer(sess.AnswererIndex) {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	sess.CatCost = 0
	sc := q.Secret
	s.out.SendTo(sess.Players[sess.AnswererIndex].Name,
		msg(MsgCatCost, itoa(sc.Min), itoa(sc.Max), itoa(sc.Step)))
	s.WaitFor(DecisionCatCostSetting, s.cfg.CatCostTime, sess.AnswererIndex, TimerDecision, TaskWaitCatCost)
}

// taskWaitCatCost: receiver silent, minimum cost applies.
func (s *Scheduler) taskWaitCatCost() {
	q := s.sess.Question
	if q == nil || q.Secret == nil {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	s.sess.CatCost = q.Secret.Min
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}
