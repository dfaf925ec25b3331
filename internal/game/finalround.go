package game

import (
	"math/rand"
	"sort"
)

// ThemeDeleters is the rotation of players taking turns deleting final
// themes: poorest first, equals resolved by the showman as they come
// up, then cycling once everyone has had a turn.
type ThemeDeleters struct {
	groups [][]int
	order  []int
	served int
}

func NewThemeDeleters(sess *Session, _ *rand.Rand) *ThemeDeleters {
	idxs := make([]int, 0, len(sess.Players))
	for i, p := range sess.Players {
		if p.InGame {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return sess.Players[idxs[a]].Sum < sess.Players[idxs[b]].Sum
	})
	d := &ThemeDeleters{}
	for _, i := range idxs {
		n := len(d.groups)
		if n > 0 && sess.Players[d.groups[n-1][0]].Sum == sess.Players[i].Sum {
			d.groups[n-1] = append(d.groups[n-1], i)
			continue
		}
		d.groups = append(d.groups, []int{i})
	}
	return d
}

// Next yields the next deleter, or the unresolved tie group when the
// showman has to pick first.
func (d *ThemeDeleters) Next() (int, []int) {
	if d.served < len(d.order) {
		idx := d.order[d.served]
		d.served++
		return idx, nil
	}
	if len(d.groups) > 0 {
		g := d.groups[0]
		if len(g) > 1 {
			return -1, g
		}
		d.groups = d.groups[1:]
		d.order = append(d.order, g[0])
		d.served++
		return g[0], nil
	}
	if len(d.order) == 0 {
		return -1, nil
	}
	idx := d.order[d.served%len(d.order)]
	d.served++
	return idx, nil
}

// Resolve applies the showman's pick inside the current tie group.
func (d *ThemeDeleters) Resolve(pick int) bool {
	if len(d.groups) == 0 || !contains(d.groups[0], pick) {
		return false
	}
	g := d.groups[0]
	rest := make([]int, 0, len(g)-1)
	for _, i := range g {
		if i != pick {
			rest = append(rest, i)
		}
	}
	if len(rest) == 0 {
		d.groups = d.groups[1:]
	} else {
		d.groups[0] = rest
	}
	d.order = append(d.order, pick)
	d.served++
	return true
}

// --- theme deletion ---

func (s *Scheduler) taskAskToDelete() {
	sess := s.sess
	if len(sess.FinalThemes) <= 1 {
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
		return
	}
	if sess.Deleters == nil {
		sess.Deleters = NewThemeDeleters(sess, s.rnd)
	}
	idx, ties := sess.Deleters.Next()
	if len(ties) > 0 {
		sess.DeleterSet = ties
		sess.DeleterPick = -1
		args := make([]string, 0, len(ties))
		for _, i := range ties {
			args = append(args, itoa(i))
		}
		s.out.SendTo(sess.Showman, msg(MsgDelete, args...))
		s.WaitFor(DecisionNextPersonFinalThemeDeleting, s.cfg.DeleteTime, -1, TimerDecision, TaskWaitNextPersonDelete)
		return
	}
	if idx < 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.promptDelete(idx)
}

func (s *Scheduler) promptDelete(idx int) {
	sess := s.sess
	sess.DeleterIndex = idx
	sess.DeleteChoice = -1
	s.out.SendTo(sess.Players[idx].Name, msg(MsgDelete))
	s.WaitFor(DecisionFinalThemeDeleting, s.cfg.DeleteTime, idx, TimerDecision, TaskWaitDelete)
}

// taskWaitDelete: the deleter overslept, pick a theme for them.
func (s *Scheduler) taskWaitDelete() {
	remaining := s.sess.FinalThemes
	if len(remaining) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.sess.DeleteChoice = remaining[s.rnd.Intn(len(remaining))]
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

func (s *Scheduler) taskWaitNextPersonDelete() {
	set := s.sess.DeleterSet
	if len(set) == 0 {
		s.FailTask(ErrEmptyCandidateSet)
		return
	}
	s.sess.DeleterPick = set[s.rnd.Intn(len(set))]
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

func (s *Scheduler) onThemeDeleted() bool {
	sess := s.sess
	choice := sess.DeleteChoice
	if choice < 0 || !contains(sess.FinalThemes, choice) {
		return false
	}
	if !sess.ValidPlayer(sess.DeleterIndex) {
		return false
	}
	if !s.nav.SelectTheme(choice) {
		sess.DeleteChoice = -1
		return false
	}
	s.stopWaiting(TimerDecision)
	s.out.SendAll(msg(MsgOut, "theme", itoa(choice)))
	sess.DeleteChoice = -1
	sess.DeleterIndex = -1
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
	return true
}

func (s *Scheduler) onNextDeleterPicked() bool {
	sess := s.sess
	pick := sess.DeleterPick
	if pick < 0 || sess.Deleters == nil || !sess.Deleters.Resolve(pick) {
		return false
	}
	s.stopWaiting(TimerDecision)
	sess.DeleterSet = nil
	sess.DeleterPick = -1
	s.promptDelete(pick)
	return true
}

func (s *Scheduler) ReportThemeDelete(playerIdx, themeIdx int) bool {
	sess := s.sess
	if sess.Decision != DecisionFinalThemeDeleting || playerIdx != sess.DeleterIndex {
		return false
	}
	if !contains(sess.FinalThemes, themeIdx) {
		return false
	}
	sess.DeleteChoice = themeIdx
	s.decisionArrived()
	return true
}

func (s *Scheduler) ReportNextDeleter(pick int) bool {
	sess := s.sess
	if sess.Decision != DecisionNextPersonFinalThemeDeleting || !contains(sess.DeleterSet, pick) {
		return false
	}
	sess.DeleterPick = pick
	s.decisionArrived()
	return true
}

// --- final stakes and announcement ---

func (s *Scheduler) taskPrintFinal() {
	for _, p := range s.sess.Players {
		p.Staked = false
		p.FinalStake = 0
		p.Answered = false
		p.Answer = ""
	}
	s.replic("place your bets")
	s.ScheduleTask(TaskAskFinalStake, 0, s.cfg.StepDelay, false)
}

func (s *Scheduler) taskAskFinalStake() {
	for _, p := range s.sess.Players {
		if p.InGame && !p.Staked {
			s.out.SendTo(p.Name, stakeMsg(false, true, false, true, 1))
		}
	}
	s.WaitFor(DecisionFinalStakeMaking, s.cfg.FinalStakeTime, -1, TimerDecision, TaskWaitFinalStake)
}

// taskWaitFinalStake: silent players bet the minimum.
func (s *Scheduler) taskWaitFinalStake() {
	for i, p := range s.sess.Players {
		if p.InGame && !p.Staked {
			p.FinalStake = 1
			p.Staked = true
			s.out.SendAll(msg(MsgFinalStake, itoa(i)))
		}
	}
	if !s.OnDecision() {
		s.FailTask(ErrDecisionStuck)
	}
}

// announceOrder walks the final answers poorest first.
func announceOrder(sess *Session) []int {
	var idxs []int
	for i, p := range sess.Players {
		if p.InGame {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return sess.Players[idxs[a]].Sum < sess.Players[idxs[b]].Sum
	})
	return idxs
}

func (s *Scheduler) taskAnnounce(int) {
	sess := s.sess
	if len(sess.AnnounceOrder) == 0 {
		// Everyone announced: reveal the right answer and wrap up.
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
		return
	}
	idx := sess.AnnounceOrder[0]
	sess.AnswererIndex = idx
	s.out.SendAll(msg(MsgAnswer, itoa(idx), sess.Players[idx].Answer))
	s.ScheduleTask(TaskAskRight, 0, 2*s.cfg.StepDelay, false)
}

func (s *Scheduler) taskAnnounceStake(int) {
	sess := s.sess
	if len(sess.AnnounceOrder) == 0 {
		s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, false)
		return
	}
	idx := sess.AnnounceOrder[0]
	sess.AnnounceOrder = sess.AnnounceOrder[1:]
	stake := sess.Players[idx].FinalStake
	delta := stake
	if !s.finalVerdict {
		delta = -stake
	}
	s.out.SendAll(personStakeMsg(idx, StakeSum, stake))
	s.ApplyScoreRecorded(idx, delta, s.finalVerdict)
	s.ScheduleTask(TaskAnnounce, 0, 2*s.cfg.StepDelay, false)
}
