package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quiz-arena/internal/config"
	"quiz-arena/internal/ledger"
	"quiz-arena/internal/pack"
)

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func testQuestion(price int) *pack.Question {
	return &pack.Question{
		Price: price,
		Body:  []pack.Atom{{Kind: pack.AtomText, Text: "question text"}},
		Right: []string{"right answer"},
	}
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		AutomaticStart:  true,
		FalseStart:      false,
		RoundTime:       time.Hour,
		ChooseTime:      time.Minute,
		PressTime:       time.Minute,
		AnswerTime:      time.Minute,
		ValidationTime:  time.Minute,
		StakeTime:       time.Minute,
		CatGiveTime:     time.Minute,
		CatCostTime:     time.Minute,
		DeleteTime:      time.Minute,
		FinalStakeTime:  time.Minute,
		FinalThinkTime:  time.Minute,
		AppellationTime: time.Minute,
		ReportTime:      time.Minute,
	}
}

// recorder captures outbound traffic for assertions.
type recorder struct {
	all []Message
	to  map[string][]Message
}

func newRecorder() *recorder {
	return &recorder{to: map[string][]Message{}}
}

func (r *recorder) SendAll(m Message) { r.all = append(r.all, m) }

func (r *recorder) SendTo(person string, m Message) {
	r.to[person] = append(r.to[person], m)
}

func (r *recorder) lastAll(tag string) (Message, bool) {
	for i := len(r.all) - 1; i >= 0; i-- {
		if r.all[i].Tag == tag {
			return r.all[i], true
		}
	}
	return Message{}, false
}

func (r *recorder) countAll(tag string) int {
	n := 0
	for _, m := range r.all {
		if m.Tag == tag {
			n++
		}
	}
	return n
}

func (r *recorder) lastTo(person, tag string) (Message, bool) {
	msgs := r.to[person]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Tag == tag {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// fakeNav satisfies ContentNavigator without a real package behind it.
type fakeNav struct {
	advances int
	avail    [][2]int
	selected [][2]int
	themes   []int
	timeouts int
}

func (f *fakeNav) Advance()                  { f.advances++ }
func (f *fakeNav) MoveBack()                 {}
func (f *fakeNav) CanMoveBack() bool         { return false }
func (f *fakeNav) MoveToRound(int) bool      { return false }
func (f *fakeNav) MoveToNextRound() bool     { return false }
func (f *fakeNav) MoveToPreviousRound() bool { return false }
func (f *fakeNav) SkipQuestion()             {}
func (f *fakeNav) SetTimeout()               { f.timeouts++ }
func (f *fakeNav) RoundIndex() int           { return 0 }

func (f *fakeNav) SelectQuestion(ti, qi int) bool {
	f.selected = append(f.selected, [2]int{ti, qi})
	return true
}

func (f *fakeNav) SelectTheme(ti int) bool {
	f.themes = append(f.themes, ti)
	return true
}

func (f *fakeNav) AvailableQuestions() [][2]int { return f.avail }

func newTestScheduler(names []string, humans []bool, nav ContentNavigator) (*Scheduler, *recorder) {
	sess := NewSession("test-game", "showman", names, humans)
	out := newRecorder()
	tf := NewTimerFacility(func(uint64) {}, func() {})
	sched := NewScheduler(sess, out, nav, tf, ledger.New(nil), testGameConfig(),
		rand.New(rand.NewSource(1)), zerolog.Nop())
	return sched, out
}

// step advances the machine until it either waits on a decision, parks,
// or runs out of pending work.
func step(t *testing.T, s *Scheduler, max int) {
	t.Helper()
	for i := 0; i < max; i++ {
		if s.sess.Decision != DecisionNone || s.sess.MoveBlocked || !s.hasPending {
			return
		}
		s.ExecuteImmediate()
	}
	t.Fatalf("machine still running after %d steps (task %s)", max, s.sess.Current.Kind)
}
