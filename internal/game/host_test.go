package game

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"quiz-arena/internal/content"
	"quiz-arena/internal/ledger"
	"quiz-arena/internal/pack"
)

func newTestHost(t *testing.T, p *pack.Package, names []string) (*Host, chan struct{}) {
	t.Helper()
	sess := NewSession("host-game", "showman", names, nil)
	h := NewHost(sess, NopChannel{}, ledger.New(nil), testGameConfig(),
		rand.New(rand.NewSource(1)), zerologNop())
	eng := content.NewEngine(p, h.Scheduler())
	h.Scheduler().SetNavigator(eng)
	done := make(chan struct{})
	h.SetOnFinished(func() { close(done) })
	go h.Run()
	t.Cleanup(h.Stop)
	return h, done
}

// waitState polls the snapshot until cond holds. All reads go through
// the loop goroutine, so polling is race-free.
func waitState(t *testing.T, h *Host, what string, cond func(HostState) bool) HostState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		st := h.State()
		if cond(st) {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; task=%s decision=%s", what, st.Task, st.Decision)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestHostLoopFullGame(t *testing.T) {
	p := onePack(pack.Question{
		Price: 200,
		Body:  []pack.Atom{{Kind: pack.AtomText, Text: "6 times 7?"}},
		Right: []string{"forty two"},
	})
	h, done := newTestHost(t, p, []string{"alice", "bob", "carol"})

	if !h.StartGame() {
		t.Fatalf("StartGame rejected")
	}
	waitState(t, h, "starter window", func(st HostState) bool {
		return st.Started && st.Decision == "StarterChoosing"
	})
	if h.StartGame() {
		t.Fatalf("StartGame accepted twice")
	}

	// Input is gated while paused; the window survives the pause.
	if !h.Pause() {
		t.Fatalf("Pause rejected")
	}
	if h.Pause() {
		t.Fatalf("Pause accepted twice")
	}
	if !h.Paused() {
		t.Fatalf("Paused() = false after Pause")
	}
	if h.PickStarter(0) {
		t.Fatalf("PickStarter accepted while paused")
	}
	if !h.Resume() {
		t.Fatalf("Resume rejected")
	}
	if h.Resume() {
		t.Fatalf("Resume accepted twice")
	}

	if !h.PickStarter(0) {
		t.Fatalf("PickStarter rejected after resume")
	}
	waitState(t, h, "choosing window", func(st HostState) bool {
		return st.Decision == "QuestionChoosing"
	})

	if !h.Choose(0, 0, 0) {
		t.Fatalf("Choose rejected")
	}
	waitState(t, h, "press window", func(st HostState) bool {
		return st.Decision == "Pressing"
	})

	if !h.Press(1) {
		t.Fatalf("Press rejected")
	}
	waitState(t, h, "answer window", func(st HostState) bool {
		return st.Decision == "Answering"
	})
	if !h.Answer(1, "forty two") {
		t.Fatalf("Answer rejected")
	}
	waitState(t, h, "validation window", func(st HostState) bool {
		return st.Decision == "AnswerValidating"
	})
	if !h.Validate(true) {
		t.Fatalf("Validate rejected")
	}

	st := waitState(t, h, "score applied", func(st HostState) bool {
		return st.Players[1].Sum == 200
	})
	if st.Players[0].Sum != 0 || st.Players[2].Sum != 0 {
		t.Fatalf("bystander sums changed: %+v", st.Players)
	}

	// The lone question is spent, so the round and the game wind down
	// to the report phase on their own.
	waitState(t, h, "report phase", func(st HostState) bool {
		return st.Decision == "Reporting"
	})
	h.Next()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("game did not finish after final Next")
	}
	if st := h.State(); !st.Finished {
		t.Fatalf("snapshot after finish: Finished = false")
	}
	if h.StartGame() {
		t.Fatalf("StartGame accepted after finish")
	}
}

func TestHostCancelStopsLoop(t *testing.T) {
	p := onePack(*testQuestion(100))
	h, done := newTestHost(t, p, []string{"alice", "bob"})

	if !h.StartGame() {
		t.Fatalf("StartGame rejected")
	}
	h.Cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Cancel did not stop the loop")
	}
	if h.Pause() {
		t.Fatalf("Pause accepted after Cancel")
	}
	if !h.State().Finished {
		t.Fatalf("snapshot after Cancel: Finished = false")
	}
}

func TestReportBodyIsJSON(t *testing.T) {
	sess := NewSession("report-game", "showman", []string{"alice", "bob"}, nil)
	sess.Players[0].Sum = 300
	sess.Players[1].Sum = -200
	sess.History = append(sess.History,
		AnswerRecord{PlayerIndex: 0, IsRight: true, Delta: 300, Price: 300},
		AnswerRecord{PlayerIndex: 1, IsRight: false, Delta: -200, Price: 200},
	)

	var got struct {
		GameID  string `json:"game_id"`
		Players []struct {
			Name string `json:"name"`
			Sum  int    `json:"sum"`
		} `json:"players"`
		History []struct {
			PlayerIndex int  `json:"player_index"`
			IsRight     bool `json:"is_right"`
			Delta       int  `json:"delta"`
		} `json:"history"`
	}
	body := buildReportBody(sess)
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("report body is not JSON: %v\n%s", err, body)
	}
	if got.GameID != "report-game" || len(got.Players) != 2 || len(got.History) != 2 {
		t.Fatalf("report = %+v", got)
	}
	if got.Players[1].Name != "bob" || got.Players[1].Sum != -200 {
		t.Fatalf("players = %+v", got.Players)
	}
	if got.History[1].PlayerIndex != 1 || got.History[1].IsRight || got.History[1].Delta != -200 {
		t.Fatalf("history = %+v", got.History)
	}
}
