package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quiz-arena/internal/config"
	"quiz-arena/internal/ledger"
)

// Host is the single owner of a Session. Every mutation funnels through
// its loop goroutine: client inputs, timer fires, operator commands.
// The Scheduler, Session, and TimerFacility it wraps are never touched
// from anywhere else once Run starts.
type Host struct {
	sched  *Scheduler
	timers *TimerFacility
	log    zerolog.Logger

	ops  chan func()
	done chan struct{}
	stop sync.Once

	paused bool

	onFinished func()
}

func NewHost(sess *Session, out OutboundChannel, journal *ledger.Journal, cfg config.GameConfig, rnd *rand.Rand, log zerolog.Logger) *Host {
	h := &Host{
		log:  log.With().Str("game_id", sess.ID).Logger(),
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
	h.timers = NewTimerFacility(
		func(gen uint64) { h.do(func() { h.sched.ExecuteScheduled(gen) }) },
		func() { h.do(func() { h.sched.OnRoundTimeout() }) },
	)
	h.sched = NewScheduler(sess, out, nil, h.timers, journal, cfg, rnd, h.log)
	h.sched.SetOnFinished(h.finished)
	return h
}

// Scheduler exposes the inner machine for wiring the content engine.
// Callers must not invoke it after Run starts; use the Host API.
func (h *Host) Scheduler() *Scheduler { return h.sched }

func (h *Host) SetOnFinished(fn func()) { h.onFinished = fn }

// Run processes the op queue until Stop. Blocks; run it on its own
// goroutine.
func (h *Host) Run() {
	h.log.Info().Msg("session loop started")
	for {
		select {
		case op := <-h.ops:
			op()
		case <-h.done:
			h.log.Info().Msg("session loop stopped")
			return
		}
	}
}

// Stop kills the loop and all timers. Idempotent.
func (h *Host) Stop() {
	h.stop.Do(func() {
		h.timers.Close()
		close(h.done)
	})
}

func (h *Host) do(fn func()) {
	select {
	case h.ops <- fn:
	case <-h.done:
	}
}

func (h *Host) ask(fn func() bool) bool {
	res := make(chan bool, 1)
	h.do(func() { res <- fn() })
	select {
	case v := <-res:
		return v
	case <-h.done:
		return false
	}
}

func (h *Host) finished() {
	if j := h.sched.journal; j != nil && j.Store != nil {
		if err := j.Store.EndGame(context.Background(), h.sched.sess.ID); err != nil {
			h.log.Warn().Err(err).Msg("end game persist failed")
		}
	}
	if h.onFinished != nil {
		h.onFinished()
	}
	h.Stop()
}

// --- lifecycle ---

func (h *Host) StartGame() bool {
	return h.ask(func() bool {
		sess := h.sched.sess
		if sess.Started || sess.Finished {
			return false
		}
		h.sched.ScheduleTask(TaskStartGame, 0, 0, true)
		return true
	})
}

// Cancel aborts the game without the report phase.
func (h *Host) Cancel() {
	h.do(func() {
		sess := h.sched.sess
		if sess.Finished {
			return
		}
		sess.Finished = true
		h.sched.out.SendAll(msg(MsgStop))
		h.finished()
	})
}

func (h *Host) Pause() bool {
	return h.ask(func() bool {
		if h.paused || h.sched.sess.Finished {
			return false
		}
		h.paused = true
		h.sched.sess.SetStopReason(StopPause)
		h.timers.Pause()
		h.sched.out.SendAll(msg(MsgPause, "+"))
		h.log.Info().Msg("game paused")
		return true
	})
}

func (h *Host) Resume() bool {
	return h.ask(func() bool {
		if !h.paused {
			return false
		}
		h.paused = false
		if h.sched.sess.StopReason == StopPause {
			h.sched.sess.StopReason = StopNone
		}
		h.timers.Resume()
		h.sched.out.SendAll(msg(MsgPause, "-"))
		h.log.Info().Msg("game resumed")
		return true
	})
}

func (h *Host) Paused() bool {
	return h.ask(func() bool { return h.paused })
}

// Next forces the pending task to run now: the operator advance in
// managed games, a skip-the-delay everywhere else.
func (h *Host) Next() {
	h.do(func() {
		if h.paused {
			return
		}
		h.sched.ExecuteImmediate()
	})
}

// Move requests navigation; the scheduler applies it at the next safe
// point. round is only meaningful with MoveToRound.
func (h *Host) Move(dir MoveDirection, round int) bool {
	return h.ask(func() bool {
		sess := h.sched.sess
		if h.paused || sess.Finished || sess.MoveBlocked && dir == MoveBack {
			return false
		}
		sess.MoveBlocked = false
		sess.MoveDir = dir
		sess.MoveRound = round
		if !sess.SetStopReason(StopMove) {
			return false
		}
		h.sched.Interrupt()
		return true
	})
}

// --- player input ---

func (h *Host) Press(playerIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportPress(playerIdx) })
}

func (h *Host) PickStarter(playerIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportStarter(playerIdx) })
}

func (h *Host) Choose(playerIdx, themeIdx, questionIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportChoice(playerIdx, themeIdx, questionIdx) })
}

func (h *Host) Answer(playerIdx int, text string) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportAnswer(playerIdx, text) })
}

func (h *Host) Validate(verdict bool) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportValidation(verdict) })
}

func (h *Host) GiveCat(playerIdx, receiver int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportCatReceiver(playerIdx, receiver) })
}

func (h *Host) SetCatCost(playerIdx, cost int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportCatCost(playerIdx, cost) })
}

func (h *Host) Stake(playerIdx int, mode StakeMode, amount int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportStake(playerIdx, mode, amount) })
}

// PickPerson routes a showman person-pick to whichever window is open.
func (h *Host) PickPerson(playerIdx int) bool {
	return h.ask(func() bool {
		if h.paused {
			return false
		}
		switch h.sched.sess.Decision {
		case DecisionStarterChoosing:
			return h.sched.ReportStarter(playerIdx)
		case DecisionNextPersonStakeMaking:
			return h.sched.ReportNextStaker(playerIdx)
		case DecisionNextPersonFinalThemeDeleting:
			return h.sched.ReportNextDeleter(playerIdx)
		}
		return false
	})
}

func (h *Host) PickNextStaker(playerIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportNextStaker(playerIdx) })
}

func (h *Host) DeleteTheme(playerIdx, themeIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportThemeDelete(playerIdx, themeIdx) })
}

func (h *Host) PickNextDeleter(playerIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportNextDeleter(playerIdx) })
}

func (h *Host) FinalStake(playerIdx, amount int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportFinalStake(playerIdx, amount) })
}

func (h *Host) Appellate(playerIdx int, forRight bool) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportAppellation(playerIdx, forRight) })
}

func (h *Host) VoteAppellation(playerIdx int, voteFor bool) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportAppellationVote(playerIdx, voteFor) })
}

func (h *Host) AckReport(playerIdx int) bool {
	return h.ask(func() bool { return !h.paused && h.sched.ReportGameReport(playerIdx) })
}

// SetConnected flips a player's connection flag. On disconnect the
// player's pending obligation gets its timeout default so the table
// never waits out a window on someone who is gone.
func (h *Host) SetConnected(name string, connected bool) {
	h.do(func() {
		sess := h.sched.sess
		idx := sess.PlayerIndex(name)
		if idx < 0 {
			return
		}
		sess.Players[idx].Connected = connected
		h.log.Info().Str("player", name).Bool("connected", connected).Msg("connection change")
		if connected || h.paused {
			return
		}
		h.sched.PlayerLeft(idx)
	})
}

// --- inspection ---

// PlayerState is a read-only snapshot row.
type PlayerState struct {
	Name      string `json:"name"`
	Sum       int    `json:"sum"`
	InGame    bool   `json:"in_game"`
	Connected bool   `json:"connected"`
}

type HostState struct {
	GameID   string        `json:"game_id"`
	Started  bool          `json:"started"`
	Finished bool          `json:"finished"`
	Paused   bool          `json:"paused"`
	Task     string        `json:"task"`
	Decision string        `json:"decision"`
	Players  []PlayerState `json:"players"`
	Elapsed  time.Duration `json:"elapsed"` // running round clock
}

func (h *Host) State() HostState {
	res := make(chan HostState, 1)
	h.do(func() {
		sess := h.sched.sess
		st := HostState{
			GameID:   sess.ID,
			Started:  sess.Started,
			Finished: sess.Finished,
			Paused:   h.paused,
			Task:     sess.Current.Kind.String(),
			Decision: sess.Decision.String(),
			Elapsed:  h.timers.Elapsed(TimerRound),
		}
		for _, p := range sess.Players {
			st.Players = append(st.Players, PlayerState{
				Name: p.Name, Sum: p.Sum, InGame: p.InGame, Connected: p.Connected,
			})
		}
		res <- st
	})
	select {
	case st := <-res:
		return st
	case <-h.done:
		return HostState{GameID: h.sched.sess.ID, Finished: true}
	}
}

type reportPlayer struct {
	Name string `json:"name"`
	Sum  int    `json:"sum"`
}

type reportAnswer struct {
	PlayerIndex int  `json:"player_index"`
	IsRight     bool `json:"is_right"`
	Delta       int  `json:"delta"`
	Price       int  `json:"price"`
}

type gameReport struct {
	GameID  string         `json:"game_id"`
	Players []reportPlayer `json:"players"`
	History []reportAnswer `json:"history"`
}

// buildReportBody renders the final standings as the JSON document the
// reports table stores.
func buildReportBody(sess *Session) []byte {
	r := gameReport{GameID: sess.ID, Players: []reportPlayer{}, History: []reportAnswer{}}
	for _, p := range sess.Players {
		r.Players = append(r.Players, reportPlayer{Name: p.Name, Sum: p.Sum})
	}
	for _, rec := range sess.History {
		r.History = append(r.History, reportAnswer{
			PlayerIndex: rec.PlayerIndex,
			IsRight:     rec.IsRight,
			Delta:       rec.Delta,
			Price:       rec.Price,
		})
	}
	b, _ := json.Marshal(r)
	return b
}
