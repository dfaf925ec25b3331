package game

// Auction sub-phase. The chooser opens as holder at the nominal price;
// the remaining eligible players bid in ascending-sum order until
// everyone but the holder has passed or been priced out. AnswererIndex
// tracks the current holder throughout.

func (s *Scheduler) taskPrintStakeQuestion() {
	sess := s.sess
	q := sess.Question
	if q == nil {
		s.FailTask(ErrNoQuestionActive)
		return
	}
	sess.AnswerMode = AnswerFixed
	sess.Stake = sess.CurPrice
	sess.AnswererIndex = sess.ChooserIndex
	// The opener occupies the first turn slot; bidders claim theirs as
	// they are prompted.
	sess.Order = []int{sess.ChooserIndex}
	sess.LastBidder = -1

	bidders := 0
	for i, p := range sess.Players {
		if i == sess.ChooserIndex {
			// Holder keeps the nominal bid; no need to outbid themselves.
			p.StakeMaking = false
			continue
		}
		p.StakeMaking = p.InGame && p.Sum > sess.Stake
		if p.StakeMaking {
			bidders++
		}
	}
	s.out.SendAll(personStakeMsg(sess.ChooserIndex, StakeNominal, sess.Stake))
	if bidders == 0 {
		s.ScheduleTask(TaskPrintAuctPlayer, 0, s.cfg.StepDelay, false)
		return
	}
	s.ScheduleTask(TaskAskStake, 0, s.cfg.StepDelay, false)
}

// taskAskStake picks the next bidder or closes the auction.
func (s *Scheduler) taskAskStake() {
	sess := s.sess
	candidates := s.biddingCandidates()
	if len(candidates) == 0 {
		s.ScheduleTask(TaskPrintAuctPlayer, 0, s.cfg.StepDelay, false)
		return
	}

	minSum := sess.Players[candidates[0]].Sum
	for _, i := range candidates[1:] {
		if sess.Players[i].Sum < minSum {
			minSum = sess.Players[i].Sum
		}
	}
	var ties []int
	for _, i := range candidates {
		if sess.Players[i].Sum == minSum {
			ties = append(ties, i)
		}
	}
	if len(ties) > 1 {
		sess.NextStakerSet = ties
		sess.StakerPick = -1
		args := make([]string, 0, len(ties))
		for _, i := range ties {
			args = append(args, itoa(i))
		}
		s.out.SendTo(sess.Showman, msg(MsgPersonStake, args...))
		s.WaitFor(DecisionNextPersonStakeMaking, s.cfg.StakeTime, -1, TimerDecision, TaskWaitNextPersonStake)
		return
	}
	s.promptStake(ties[0])
}

func (s *Scheduler) biddingCandidates() []int {
	var out []int
	for i, p := range s.sess.Players {
		if p.StakeMaking && p.InGame && i != s.sess.AnswererIndex {
			out = append(out, i)
		}
	}
	return out
}

// promptStake opens the bid window for one player. A re-entering outbid
// holder keeps the slot they already have; consecutive prompts to the
// same player mean the rotation logic is broken.
func (s *Scheduler) promptStake(idx int) {
	sess := s.sess
	if idx == sess.LastBidder {
		s.FailTask(ErrDuplicateOrder)
		return
	}
	sess.LastBidder = idx
	if !contains(sess.Order, idx) {
		sess.Order = append(sess.Order, idx)
	}
	if err := sess.CheckOrder(); err != nil {
		s.FailTask(err)
		return
	}
	sess.StakerIndex = idx
	sess.StakeReported = false

	p := sess.Players[idx]
	canRaise := p.Sum > sess.Stake
	s.out.SendTo(p.Name, stakeMsg(false, canRaise, true, true, sess.Stake+1))
	s.WaitFor(DecisionAuctionStakeMaking, s.cfg.StakeTime, idx, TimerDecision, TaskWaitStake)
}

// taskWaitStake: bid window expired, the player passes.
func (s *Scheduler) taskWaitStake() {
	s.sess.StakerMode = StakePass
	s.sess.StakerSum = 0
	s.sess.StakeReported = true
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

// taskWaitNextPersonStake: showman silent on a tie, pick at random.
func (s *Scheduler) taskWaitNextPersonStake() {
	set := s.sess.NextStakerSet
	if len(set) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.sess.StakerPick = set[s.rnd.Intn(len(set))]
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

// taskPrintAuctPlayer closes the auction: the holder answers alone at
// the final stake.
func (s *Scheduler) taskPrintAuctPlayer() {
	sess := s.sess
	sess.CurPrice = sess.Stake
	// The winner takes the board too, win or lose the question.
	if sess.ValidPlayer(sess.AnswererIndex) {
		sess.ChooserIndex = sess.AnswererIndex
		s.out.SendAll(setChooserMsg(sess.AnswererIndex, true))
	}
	s.out.SendAll(personStakeMsg(sess.AnswererIndex, StakeSum, sess.Stake))
	for _, p := range sess.Players {
		p.StakeMaking = false
	}
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) onAuctionStake() bool {
	sess := s.sess
	if !sess.StakeReported || !sess.ValidPlayer(sess.StakerIndex) {
		return false
	}
	s.stopWaiting(TimerDecision)
	idx := sess.StakerIndex
	p := sess.Players[idx]

	switch sess.StakerMode {
	case StakePass:
		p.StakeMaking = false
		s.out.SendAll(personStakeMsg(idx, StakePass, 0))
	case StakeAllIn:
		s.acceptBid(idx, p.Sum, StakeAllIn)
	case StakeSum:
		if sess.StakerSum <= sess.Stake || sess.StakerSum > p.Sum {
			// Malformed bid slipped through: treat as a pass.
			p.StakeMaking = false
			s.out.SendAll(personStakeMsg(idx, StakePass, 0))
		} else {
			s.acceptBid(idx, sess.StakerSum, StakeSum)
		}
	default:
		p.StakeMaking = false
	}

	sess.StakerIndex = -1
	sess.StakeReported = false
	s.ScheduleTask(TaskAskStake, 0, s.cfg.StepDelay, false)
	return true
}

// acceptBid installs a new holder and prices out everyone who can no
// longer overbid.
func (s *Scheduler) acceptBid(idx, amount int, mode StakeMode) {
	sess := s.sess
	prev := sess.AnswererIndex
	sess.Stake = amount
	sess.AnswererIndex = idx
	sess.Players[idx].StakeMaking = false
	if sess.ValidPlayer(prev) && prev != idx {
		// The outbid holder may come back if they can still raise.
		sess.Players[prev].StakeMaking = sess.Players[prev].InGame && sess.Players[prev].Sum > amount
	}
	for i, p := range sess.Players {
		if i != idx && p.StakeMaking && p.Sum <= amount {
			p.StakeMaking = false
			s.out.SendAll(personStakeMsg(i, StakePass, 0))
		}
	}
	s.out.SendAll(personStakeMsg(idx, mode, amount))
}

func (s *Scheduler) onNextStakerPicked() bool {
	sess := s.sess
	pick := sess.StakerPick
	if pick < 0 || !contains(sess.NextStakerSet, pick) {
		return false
	}
	s.stopWaiting(TimerDecision)
	sess.NextStakerSet = nil
	sess.StakerPick = -1
	s.promptStake(pick)
	return true
}

func (s *Scheduler) ReportStake(playerIdx int, mode StakeMode, amount int) bool {
	sess := s.sess
	if sess.Decision != DecisionAuctionStakeMaking || playerIdx != sess.StakerIndex || sess.StakeReported {
		return false
	}
	p := sess.Players[playerIdx]
	switch mode {
	case StakePass, StakeAllIn:
	case StakeSum:
		if amount <= sess.Stake || amount > p.Sum {
			return false
		}
	default:
		return false
	}
	sess.StakerMode = mode
	sess.StakerSum = amount
	sess.StakeReported = true
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportNextStaker(pick int) bool {
	sess := s.sess
	if sess.Decision != DecisionNextPersonStakeMaking || !contains(sess.NextStakerSet, pick) {
		return false
	}
	sess.StakerPick = pick
	s.decisionArrived()
	return true
}

func contains(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
