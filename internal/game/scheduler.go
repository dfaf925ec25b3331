package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"quiz-arena/internal/config"
	"quiz-arena/internal/ledger"
)

// ContentNavigator is the command half of the content engine boundary.
type ContentNavigator interface {
	Advance()
	MoveBack()
	CanMoveBack() bool
	MoveToRound(index int) bool
	MoveToNextRound() bool
	MoveToPreviousRound() bool
	SelectQuestion(themeIdx, questionIdx int) bool
	SelectTheme(themeIdx int) bool
	SkipQuestion()
	SetTimeout()
	RoundIndex() int
	AvailableQuestions() [][2]int
}

// SavedTask is a stack entry for interrupted waits (appellation).
type SavedTask struct {
	Task  Task
	Delay time.Duration
}

// Scheduler is the cooperative task machine: one pending task at a
// time, executed on the owning loop, never concurrently. All methods
// must be called from that loop; timer callbacks re-enter through the
// reenter callback handed to the TimerFacility by the Host.
type Scheduler struct {
	sess    *Session
	out     OutboundChannel
	nav     ContentNavigator
	timers  *TimerFacility
	journal *ledger.Journal
	cfg     config.GameConfig
	rnd     *rand.Rand
	log     zerolog.Logger

	pending       Task
	pendingDelay  time.Duration
	hasPending    bool
	suspended     bool          // managed mode swallowed the last schedule
	gen           uint64        // bumped on every schedule; stale fires mismatch
	interruptLeft time.Duration // window time left captured by Interrupt
	finalVerdict  bool          // verdict for the announcement being processed

	onFinished func()
}

func NewScheduler(sess *Session, out OutboundChannel, nav ContentNavigator, timers *TimerFacility, journal *ledger.Journal, cfg config.GameConfig, rnd *rand.Rand, log zerolog.Logger) *Scheduler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{
		sess:    sess,
		out:     out,
		nav:     nav,
		timers:  timers,
		journal: journal,
		cfg:     cfg,
		rnd:     rnd,
		log:     log,
	}
}

func (s *Scheduler) Session() *Session       { return s.sess }
func (s *Scheduler) SetOnFinished(fn func()) { s.onFinished = fn }

// Pending reports the task currently scheduled or suspended.
func (s *Scheduler) Pending() (Task, bool) { return s.pending, s.hasPending }

// ScheduleTask records the next task and arms the re-entry timer. In
// managed mode non-host-initiated tasks are recorded but not armed; an
// operator must advance them with ExecuteImmediate.
func (s *Scheduler) ScheduleTask(kind TaskKind, step int, delay time.Duration, force bool) {
	if s.hasPending && !s.suspended && s.pending.Kind != kind {
		// The previous schedule never ran. Cancel-and-replace is the
		// normal path for navigation; anything else is a logic bug
		// worth surfacing before it silently eats a game step.
		s.log.Warn().
			Str("game_id", s.sess.ID).
			Str("old_task", s.pending.Kind.String()).
			Str("new_task", kind.String()).
			Msg("pending task replaced")
	}
	s.pending = Task{Kind: kind, Step: step}
	s.pendingDelay = delay
	s.hasPending = true
	s.gen++
	if s.cfg.Managed && !force && !HostInitiated(kind) {
		s.suspended = true
		s.timers.CancelTask()
		return
	}
	s.suspended = false
	s.timers.ArmTask(delay, s.gen)
}

// ExecuteScheduled is the timer re-entry point. gen is the value the
// firing timer was armed with; a mismatch means the schedule was
// replaced after the fire was queued, and the fire must not consume
// the new task.
func (s *Scheduler) ExecuteScheduled(gen uint64) {
	if gen != s.gen {
		s.log.Debug().
			Str("game_id", s.sess.ID).
			Uint64("fired", gen).
			Uint64("current", s.gen).
			Msg("stale timer fire dropped")
		return
	}
	s.runPending()
}

// ExecuteImmediate runs the pending task now, bypassing both the timer
// and managed-mode suppression. The operator "next" action.
func (s *Scheduler) ExecuteImmediate() {
	if !s.hasPending {
		return
	}
	s.timers.CancelTask()
	s.runPending()
}

func (s *Scheduler) runPending() {
	if !s.hasPending {
		return
	}
	t := s.pending
	s.hasPending = false
	s.suspended = false
	s.executeTask(t)
}

// Interrupt forces a re-entry so a freshly set StopReason is consulted
// without waiting out the scheduled delay. The window time left is
// captured before the cancel so a not-ready re-poll can restore it.
func (s *Scheduler) Interrupt() {
	if s.sess.StopReason == StopNone {
		return
	}
	s.interruptLeft = s.timers.TaskRemaining()
	s.timers.CancelTask()
	if s.hasPending {
		t := s.pending
		s.hasPending = false
		s.suspended = false
		s.executeTask(t)
	} else {
		s.executeTask(Task{Kind: TaskNone})
	}
	s.interruptLeft = 0
}

func (s *Scheduler) executeTask(t Task) {
	defer s.recoverTask(t)

	if s.sess.StopReason != StopNone {
		next, proceed := s.processStopReason(t)
		if !proceed {
			return
		}
		t = next
	}
	s.sess.Current = t
	s.log.Debug().
		Str("game_id", s.sess.ID).
		Str("task", t.Kind.String()).
		Int("step", t.Step).
		Msg("task_execute")
	s.dispatch(t)
}

// recoverTask converts a handler panic into a visible in-session error
// and parks the machine; the session survives, the operator decides.
func (s *Scheduler) recoverTask(t Task) {
	r := recover()
	if r == nil {
		return
	}
	s.log.Error().
		Str("game_id", s.sess.ID).
		Str("task", t.Kind.String()).
		Int("step", t.Step).
		Str("decision", s.sess.Decision.String()).
		Int("history_len", len(s.sess.History)).
		Interface("panic", r).
		Msg("task handler failed")
	s.sess.MoveBlocked = true
	s.sess.Decision = DecisionNone
	s.hasPending = false
	s.out.SendAll(msg(MsgGameError))
}

// FailTask is the non-panic route to the same parking behavior, used by
// handlers that detect an invariant violation themselves.
func (s *Scheduler) FailTask(err error) {
	s.log.Error().
		Str("game_id", s.sess.ID).
		Str("task", s.sess.Current.Kind.String()).
		Err(err).
		Msg("task invariant violated")
	s.sess.MoveBlocked = true
	s.sess.Decision = DecisionNone
	s.hasPending = false
	s.out.SendAll(msg(MsgGameError))
}

// processStopReason decides whether the scheduled task runs, is
// replaced, or stays parked. Returns the task to run and whether to
// proceed with it.
func (s *Scheduler) processStopReason(t Task) (Task, bool) {
	reason := s.sess.StopReason
	s.log.Debug().
		Str("game_id", s.sess.ID).
		Str("reason", reason.String()).
		Str("task", t.Kind.String()).
		Msg("stop_reason")
	switch reason {
	case StopPause:
		// Pause() already froze the timers; remember what was coming.
		s.pending = t
		s.hasPending = true
		return t, false

	case StopDecision:
		s.sess.StopReason = StopNone
		if s.OnDecision() {
			return t, false
		}
		// Not ready: keep waiting out the rest of the window.
		s.rearm(t)
		return t, false

	case StopAnswer:
		s.sess.StopReason = StopNone
		if s.sess.Decision != DecisionPressing || !s.sess.ValidPlayer(s.sess.PresserIndex) {
			s.rearm(t)
			return t, false
		}
		s.stopWaiting(TimerThinking)
		s.sess.AnswererIndex = s.sess.PresserIndex
		s.sess.PresserIndex = -1
		return Task{Kind: TaskAskAnswer}, true

	case StopAppellation:
		s.sess.StopReason = StopNone
		s.sess.PushTask(SavedTask{Task: t, Delay: s.pendingDelay})
		s.suspendWait()
		return Task{Kind: TaskPrintAppellation}, true

	case StopMove:
		s.sess.StopReason = StopNone
		s.handleMove(t)
		return t, false

	case StopWait:
		s.sess.StopReason = StopNone
		s.ScheduleTask(t.Kind, t.Step, s.sess.WaitDelay, true)
		return t, false
	}
	s.sess.StopReason = StopNone
	return t, true
}

// rearm restores the interrupted wait with whatever time it has left.
// Interrupt cancels the timer before this runs, so the live remaining
// value comes from the capture it made.
func (s *Scheduler) rearm(t Task) {
	left := s.timers.TaskRemaining()
	if left <= 0 {
		left = s.interruptLeft
	}
	if left <= 0 {
		left = time.Second
	}
	s.pending = t
	s.pendingDelay = left
	s.hasPending = true
	s.suspended = false
	s.gen++
	s.timers.ArmTask(left, s.gen)
}

// suspendWait pauses the active decision window while an interrupt
// (appellation) runs; the saved task re-waits in full afterwards.
func (s *Scheduler) suspendWait() {
	if s.sess.Decision != DecisionNone {
		s.out.SendAll(timerMsg(TimerDecision, "Stop"))
		s.sess.Decision = DecisionNone
	}
}

func (s *Scheduler) handleMove(t Task) {
	s.cancelWait()
	switch s.sess.MoveDir {
	case MoveNext:
		s.ScheduleTask(TaskMoveNext, 0, 0, true)
	case MoveBack:
		if s.nav.CanMoveBack() {
			s.sess.ClearQuestionScratch()
			s.nav.MoveBack()
		} else {
			s.rearm(t)
		}
	case MoveNextRound:
		if s.nav.MoveToNextRound() {
			s.roundChanged()
		} else {
			s.rearm(t)
		}
	case MovePreviousRound:
		if s.nav.MoveToPreviousRound() {
			s.roundChanged()
		} else {
			s.rearm(t)
		}
	case MoveToRound:
		if s.nav.MoveToRound(s.sess.MoveRound) {
			s.roundChanged()
		} else {
			s.rearm(t)
		}
	}
}

func (s *Scheduler) roundChanged() {
	s.sess.ClearQuestionScratch()
	s.timers.CancelRound()
	s.timers.StopClock(TimerRound)
	s.out.SendAll(timerMsg(TimerRound, "Stop"))
	s.ScheduleTask(TaskMoveNext, 0, s.cfg.StepDelay, true)
}

// cancelWait aborts a pending decision window after navigation.
func (s *Scheduler) cancelWait() {
	if s.sess.Decision == DecisionNone {
		return
	}
	s.out.SendAll(msg(MsgCancel))
	s.out.SendAll(timerMsg(TimerDecision, "Stop"))
	s.sess.Decision = DecisionNone
}

// WaitFor opens a decision window: mark what input is awaited, start
// the matching timer, and schedule the timeout task that substitutes a
// default if nothing arrives.
func (s *Scheduler) WaitFor(d Decision, timeout time.Duration, personIdx, timerID int, wait TaskKind) {
	s.sess.Decision = d
	args := []string{itoa(int(timeout / time.Second))}
	if personIdx >= 0 {
		args = append(args, itoa(personIdx))
	}
	s.out.SendAll(timerMsg(timerID, "Go", args...))
	s.timers.StartClock(timerID)
	s.ScheduleTask(wait, 0, timeout, false)
}

// stopWaiting closes the window opened by WaitFor.
func (s *Scheduler) stopWaiting(timerID int) {
	s.timers.StopClock(timerID)
	s.out.SendAll(timerMsg(timerID, "Stop"))
	s.sess.Decision = DecisionNone
}

// applyDelta moves a player's sum, journals it, and broadcasts the new
// standings. History bookkeeping is the caller's business.
func (s *Scheduler) applyDelta(playerIdx, delta int, reason string) {
	p := s.sess.Players[playerIdx]
	p.Sum += delta
	s.out.SendAll(personMsg(delta >= 0, playerIdx, abs(delta)))
	s.sendSums()
	_ = s.journal.RecordDelta(context.Background(), s.sess.ID, p.Name, delta, reason)
}

func (s *Scheduler) sendSums() {
	args := make([]string, 0, len(s.sess.Players))
	for _, p := range s.sess.Players {
		args = append(args, itoa(p.Sum))
	}
	s.out.SendAll(msg(MsgSums, args...))
}

func (s *Scheduler) replic(text string) {
	s.out.SendAll(msg(MsgReplic, text))
}

// atomDelay grants reading time proportional to atom length.
func (s *Scheduler) atomDelay(textLen int) time.Duration {
	d := s.cfg.AtomTime
	if s.cfg.ReadingSpeed > 0 {
		d += time.Duration(textLen/s.cfg.ReadingSpeed) * time.Second
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
