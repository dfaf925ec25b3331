package content

import (
	"testing"

	"quiz-arena/internal/pack"
)

// tape records every listener callback by name, in order.
type tape struct {
	events []string
	errs   []error
}

func (l *tape) push(s string) { l.events = append(l.events, s) }

func (l *tape) PackageLoaded(*pack.Package)               { l.push("package") }
func (l *tape) GameThemesRevealed([]string)               { l.push("game_themes") }
func (l *tape) RoundStarted(*pack.Round, int)             { l.push("round") }
func (l *tape) RoundThemesRevealed([]*pack.Theme)         { l.push("round_themes") }
func (l *tape) ThemeStarted(*pack.Theme, int)             { l.push("theme") }
func (l *tape) QuestionSelected(int, int, *pack.Question) { l.push("question") }
func (l *tape) ContentAtomRevealed(pack.Atom)             { l.push("atom") }
func (l *tape) WaitingForPress()                          { l.push("press") }
func (l *tape) AnswerRevealed([]string)                   { l.push("answer") }
func (l *tape) QuestionPostInfo(*pack.Question)           { l.push("post_info") }
func (l *tape) QuestionFinished()                         { l.push("finished") }
func (l *tape) NextQuestionReady()                        { l.push("next") }
func (l *tape) RoundExhausted()                           { l.push("exhausted") }
func (l *tape) RoundTimedOut()                            { l.push("timed_out") }
func (l *tape) FinalThemesRevealed([]*pack.Theme)         { l.push("final_themes") }
func (l *tape) ThemeDeletionRequested([]int)              { l.push("delete_request") }
func (l *tape) GameEnded()                                { l.push("end") }

func (l *tape) FinalQuestionPrepared(*pack.Theme, *pack.Question) {
	l.push("final_question")
}

func (l *tape) EngineError(err error) {
	l.push("error")
	l.errs = append(l.errs, err)
}

func (l *tape) last() string {
	if len(l.events) == 0 {
		return ""
	}
	return l.events[len(l.events)-1]
}

func q(price int, atoms int) pack.Question {
	body := make([]pack.Atom, atoms)
	for i := range body {
		body[i] = pack.Atom{Kind: pack.AtomText, Text: "t"}
	}
	return pack.Question{Price: price, Body: body, Right: []string{"r"}}
}

func boardPackage() *pack.Package {
	return &pack.Package{
		Name: "p",
		Rounds: []pack.Round{{
			Name: "r1",
			Themes: []pack.Theme{
				{Name: "t1", Questions: []pack.Question{q(100, 2), q(200, 1)}},
				{Name: "t2", Questions: []pack.Question{q(100, 1)}},
			},
		}},
	}
}

func TestAdvanceEmitsOneEventPerStep(t *testing.T) {
	l := &tape{}
	e := NewEngine(boardPackage(), l)

	want := []string{"package", "game_themes", "round", "round_themes", "next"}
	for i, w := range want {
		e.Advance()
		if len(l.events) != i+1 || l.last() != w {
			t.Fatalf("step %d: events = %v, want last %q", i, l.events, w)
		}
	}
}

func TestQuestionTraversal(t *testing.T) {
	l := &tape{}
	e := NewEngine(boardPackage(), l)
	for i := 0; i < 4; i++ {
		e.Advance()
	}

	if !e.SelectQuestion(0, 0) {
		t.Fatal("select rejected")
	}
	// Entering a fresh theme announces it before the question.
	n := len(l.events)
	if l.events[n-2] != "theme" || l.events[n-1] != "question" {
		t.Fatalf("events tail = %v", l.events[n-2:])
	}

	// Two atoms, then the press window, answer, wrap-up.
	for _, w := range []string{"atom", "atom", "press", "answer", "finished", "next"} {
		e.Advance()
		if l.last() != w {
			t.Fatalf("events = %v, want last %q", l.events, w)
		}
	}

	// Same theme again: no theme announcement.
	if !e.SelectQuestion(0, 1) {
		t.Fatal("second select rejected")
	}
	if l.last() != "question" || l.events[len(l.events)-2] == "theme" {
		t.Fatalf("events tail = %v, theme re-announced", l.events[len(l.events)-3:])
	}

	if e.SelectQuestion(0, 1) {
		t.Fatal("replayed question accepted")
	}
	if e.SelectQuestion(5, 0) {
		t.Fatal("bad theme index accepted")
	}
}

func TestRoundExhaustionEndsGame(t *testing.T) {
	l := &tape{}
	e := NewEngine(boardPackage(), l)
	for i := 0; i < 4; i++ {
		e.Advance()
	}

	picks := [][2]int{{0, 0}, {0, 1}, {1, 0}}
	for _, p := range picks {
		if !e.SelectQuestion(p[0], p[1]) {
			t.Fatalf("select %v rejected", p)
		}
		for i := 0; l.last() != "next" && l.last() != "exhausted"; i++ {
			if i > 10 {
				t.Fatalf("question never finished: %v", l.events)
			}
			e.Advance()
		}
	}
	if l.last() != "exhausted" {
		t.Fatalf("events tail = %v, want exhausted", l.events[len(l.events)-3:])
	}
	// No further round to start.
	e.Advance()
	if l.last() != "end" {
		t.Fatalf("single-round package = %q, want end", l.last())
	}
}

func TestMoveBackReturnsQuestionToBoard(t *testing.T) {
	l := &tape{}
	e := NewEngine(boardPackage(), l)
	for i := 0; i < 4; i++ {
		e.Advance()
	}
	e.SelectQuestion(0, 0)
	if !e.CanMoveBack() {
		t.Fatal("cannot move back inside a question")
	}
	e.MoveBack()
	if len(e.AvailableQuestions()) != 3 {
		t.Fatalf("available = %v, want full board", e.AvailableQuestions())
	}
	if !e.SelectQuestion(0, 0) {
		t.Fatal("returned question not selectable")
	}
}

func TestRoundTimeoutFinishesAfterCurrentQuestion(t *testing.T) {
	l := &tape{}
	e := NewEngine(boardPackage(), l)
	for i := 0; i < 4; i++ {
		e.Advance()
	}
	e.SelectQuestion(0, 0)
	e.SetTimeout()
	for i := 0; l.last() != "timed_out"; i++ {
		if i > 10 {
			t.Fatalf("round never timed out: %v", l.events)
		}
		e.Advance()
	}
}

func TestFinalRoundTraversal(t *testing.T) {
	p := &pack.Package{
		Name: "p",
		Rounds: []pack.Round{{
			Name: "final",
			Type: pack.RoundFinal,
			Themes: []pack.Theme{
				{Name: "a", Questions: []pack.Question{q(0, 1)}},
				{Name: "b", Questions: []pack.Question{q(0, 1)}},
				{Name: "c", Questions: []pack.Question{q(0, 1)}},
			},
		}},
	}
	l := &tape{}
	e := NewEngine(p, l)
	for i := 0; i < 3; i++ {
		e.Advance()
	}
	e.Advance()
	if l.last() != "final_themes" {
		t.Fatalf("events = %v, want final_themes", l.events)
	}
	if e.CanMoveBack() {
		t.Fatal("move back allowed in the final")
	}

	if e.SelectTheme(5) || !e.SelectTheme(1) {
		t.Fatal("theme deletion mishandled")
	}
	if e.SelectTheme(1) {
		t.Fatal("double deletion accepted")
	}
	e.Advance()
	if l.last() != "delete_request" {
		t.Fatalf("events = %v, want delete_request", l.events)
	}

	if !e.SelectTheme(0) {
		t.Fatal("second deletion rejected")
	}
	e.Advance()
	if l.last() != "final_question" {
		t.Fatalf("events = %v, want final_question", l.events)
	}

	for _, w := range []string{"atom", "press", "answer", "finished", "end"} {
		e.Advance()
		if l.last() != w {
			t.Fatalf("events = %v, want last %q", l.events, w)
		}
	}
}

func TestPostInfoEmittedWhenPresent(t *testing.T) {
	p := boardPackage()
	p.Rounds[0].Themes[1].Questions[0].Comments = "tricky one"
	l := &tape{}
	e := NewEngine(p, l)
	for i := 0; i < 4; i++ {
		e.Advance()
	}
	e.SelectQuestion(1, 0)
	for _, w := range []string{"atom", "press", "answer", "post_info", "finished"} {
		e.Advance()
		if l.last() != w {
			t.Fatalf("events = %v, want last %q", l.events, w)
		}
	}
}
