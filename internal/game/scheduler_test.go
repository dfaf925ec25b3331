package game

import (
	"testing"
	"time"
)

func TestSetStopReasonPriority(t *testing.T) {
	sess := NewSession("g", "sm", []string{"a"}, []bool{true})

	if !sess.SetStopReason(StopMove) {
		t.Fatal("first reason rejected")
	}
	// Weaker (larger) reasons must not displace a set one.
	if sess.SetStopReason(StopWait) {
		t.Fatal("StopWait displaced StopMove")
	}
	if sess.SetStopReason(StopMove) {
		t.Fatal("equal reason displaced itself")
	}
	// Stronger (smaller) reasons do.
	if !sess.SetStopReason(StopPause) {
		t.Fatal("StopPause rejected over StopMove")
	}
	if sess.StopReason != StopPause {
		t.Fatalf("StopReason = %v, want Pause", sess.StopReason)
	}
	if sess.SetStopReason(StopDecision) {
		t.Fatal("StopDecision displaced StopPause")
	}
}

func TestManagedModeSuppressesAutoAdvance(t *testing.T) {
	nav := &fakeNav{}
	sess := NewSession("g", "sm", []string{"a", "b"}, nil)
	out := newRecorder()
	tf := NewTimerFacility(func(uint64) {}, func() {})
	cfg := testGameConfig()
	cfg.Managed = true
	s := NewScheduler(sess, out, nav, tf, nil, cfg, nil, zerologNop())

	s.ScheduleTask(TaskMoveNext, 0, time.Second, false)
	if !s.suspended {
		t.Fatal("task not suspended in managed mode")
	}
	if got := tf.TaskRemaining(); got != 0 {
		t.Fatalf("timer armed despite suppression: %v left", got)
	}

	// The operator advance still runs it.
	s.ExecuteImmediate()
	if nav.advances != 1 {
		t.Fatalf("advances = %d, want 1", nav.advances)
	}

	// Host-initiated waits bypass suppression.
	s.ScheduleTask(TaskWaitTry, 0, time.Second, false)
	if s.suspended {
		t.Fatal("host-initiated task suspended")
	}

	// force bypasses it too.
	s.ScheduleTask(TaskMoveNext, 0, time.Second, true)
	if s.suspended {
		t.Fatal("forced task suspended")
	}
}

func TestPressWindowTimeoutRevealsAnswer(t *testing.T) {
	nav := &fakeNav{}
	s, out := newTestScheduler([]string{"a", "b"}, nil, nav)
	s.sess.Question = testQuestion(100)

	s.ScheduleTask(TaskAskToTry, 0, 0, true)
	s.ExecuteImmediate()
	if s.sess.Decision != DecisionPressing {
		t.Fatalf("Decision = %v, want Pressing", s.sess.Decision)
	}

	// Simulate the window timer firing with nobody pressing.
	s.ExecuteScheduled(s.gen)
	if s.sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v after timeout, want None", s.sess.Decision)
	}
	if _, ok := out.lastAll(MsgEndTry); !ok {
		t.Fatal("no ENDTRY after press timeout")
	}
	for _, p := range s.sess.Players {
		if p.CanPress {
			t.Fatal("presses still open after timeout")
		}
	}
	if !s.hasPending || s.pending.Kind != TaskMoveNext {
		t.Fatalf("pending = %v, want MoveNext", s.pending.Kind)
	}
}

func TestFailTaskParksMachine(t *testing.T) {
	nav := &fakeNav{}
	s, out := newTestScheduler([]string{"a"}, nil, nav)

	s.FailTask(ErrEmptyCandidateSet)
	if !s.sess.MoveBlocked {
		t.Fatal("MoveBlocked = false after FailTask")
	}
	if s.hasPending {
		t.Fatal("pending task survived FailTask")
	}
	if _, ok := out.lastAll(MsgGameError); !ok {
		t.Fatal("no GAMEERROR broadcast")
	}
}

func TestHandlerPanicParksMachine(t *testing.T) {
	// A nil navigator makes TaskMoveNext panic inside dispatch; the
	// recover path must park the session instead of killing the loop.
	sess := NewSession("g", "sm", []string{"a"}, nil)
	out := newRecorder()
	tf := NewTimerFacility(func(uint64) {}, func() {})
	s := NewScheduler(sess, out, nil, tf, nil, testGameConfig(), nil, zerologNop())

	s.ScheduleTask(TaskMoveNext, 0, 0, true)
	s.ExecuteImmediate()

	if !sess.MoveBlocked {
		t.Fatal("MoveBlocked = false after handler panic")
	}
	if _, ok := out.lastAll(MsgGameError); !ok {
		t.Fatal("no GAMEERROR broadcast")
	}
}

func TestPendingReplacedKeepsLatest(t *testing.T) {
	nav := &fakeNav{}
	s, _ := newTestScheduler([]string{"a"}, nil, nav)

	s.ScheduleTask(TaskAskFirst, 0, time.Minute, true)
	s.ScheduleTask(TaskMoveNext, 0, 0, true)
	if s.pending.Kind != TaskMoveNext {
		t.Fatalf("pending = %v, want MoveNext", s.pending.Kind)
	}
	s.ExecuteImmediate()
	if nav.advances != 1 {
		t.Fatalf("advances = %d, want 1", nav.advances)
	}
	if s.hasPending {
		t.Fatal("stale pending after execute")
	}
}

func TestDisconnectedAnswererGetsEmptyAnswer(t *testing.T) {
	nav := &fakeNav{}
	s, out := newTestScheduler([]string{"a", "b"}, nil, nav)
	sess := s.sess
	sess.Started = true
	sess.Question = testQuestion(100)
	sess.AnswerMode = AnswerFixed
	sess.AnswererIndex = 1

	s.ScheduleTask(TaskAskAnswer, 0, 0, true)
	s.ExecuteImmediate()
	if sess.Decision != DecisionAnswering {
		t.Fatalf("Decision = %v, want Answering", sess.Decision)
	}

	sess.Players[1].Connected = false
	s.PlayerLeft(1)
	if !sess.Players[1].Answered || sess.Players[1].Answer != "" {
		t.Fatalf("answered=%v answer=%q, want empty default",
			sess.Players[1].Answered, sess.Players[1].Answer)
	}
	if sess.Players[1].CanPress {
		t.Fatal("departed player can still press")
	}

	// The empty answer goes to validation like any other.
	step(t, s, 20)
	if sess.Decision != DecisionAnswerValidating {
		t.Fatalf("Decision = %v, want AnswerValidating", sess.Decision)
	}
	if _, ok := out.lastTo("showman", MsgValidation); !ok {
		t.Fatal("showman never asked to validate the default")
	}
}

func TestDisconnectedFinalStakerDefaultsToMinimum(t *testing.T) {
	s, out := newTestScheduler([]string{"a", "b", "c"}, nil, &fakeNav{})
	sess := s.sess
	for i, sum := range []int{100, 200, 300} {
		sess.Players[i].Sum = sum
	}
	s.ScheduleTask(TaskAskFinalStake, 0, 0, true)
	s.ExecuteImmediate()
	if sess.Decision != DecisionFinalStakeMaking {
		t.Fatalf("Decision = %v", sess.Decision)
	}
	if !s.ReportFinalStake(2, 250) {
		t.Fatal("stake rejected")
	}

	sess.Players[0].Connected = false
	s.PlayerLeft(0)
	if sess.Players[0].FinalStake != 1 || !sess.Players[0].Staked {
		t.Fatalf("stake = %d staked=%v, want minimum default",
			sess.Players[0].FinalStake, sess.Players[0].Staked)
	}
	if sess.Decision != DecisionFinalStakeMaking {
		t.Fatalf("window closed with a stake outstanding: %v", sess.Decision)
	}
	if _, ok := out.lastAll(MsgFinalStake); !ok {
		t.Fatal("no FINALSTAKE broadcast for the default")
	}

	sess.Players[1].Connected = false
	s.PlayerLeft(1)
	if sess.Decision != DecisionNone {
		t.Fatalf("Decision = %v after last stake, want closed window", sess.Decision)
	}
	if sess.Players[2].FinalStake != 250 {
		t.Fatalf("explicit stake = %d, want 250", sess.Players[2].FinalStake)
	}
}
