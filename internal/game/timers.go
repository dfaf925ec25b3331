package game

import (
	"sync"
	"time"
)

// TimerFacility owns every piece of wall-clock state in a session: the
// one-shot re-entry timer for the next scheduled task, the round expiry
// timer, and the three protocol clocks (round / thinking / decision)
// whose elapsed time must survive pause/resume cycles.
//
// Arming and cancelling happen on the session loop; the fire callbacks
// run on timer goroutines and must only post back into the loop.
type TimerFacility struct {
	mu  sync.Mutex
	now func() time.Time

	onTaskFire  func(gen uint64)
	onRoundFire func()

	task    oneShot
	taskGen uint64
	round   oneShot
	paused  bool

	clocks [4]clock // index by timer ID, 0 unused
}

type oneShot struct {
	timer     *time.Timer
	fireAt    time.Time
	remaining time.Duration
	armed     bool
}

type clock struct {
	running     bool
	startedAt   time.Time
	accumulated time.Duration
}

func NewTimerFacility(onTaskFire func(gen uint64), onRoundFire func()) *TimerFacility {
	return &TimerFacility{now: time.Now, onTaskFire: onTaskFire, onRoundFire: onRoundFire}
}

// ArmTask cancels any pending re-entry and arms a new one. The fire
// callback carries gen back, so a fire queued behind a cancel-and-
// replace identifies itself as stale.
func (tf *TimerFacility) ArmTask(d time.Duration, gen uint64) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.taskGen = gen
	tf.arm(&tf.task, d, func() { tf.onTaskFire(gen) })
}

func (tf *TimerFacility) CancelTask() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.disarm(&tf.task)
}

func (tf *TimerFacility) ArmRound(d time.Duration) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.arm(&tf.round, d, tf.onRoundFire)
}

func (tf *TimerFacility) CancelRound() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.disarm(&tf.round)
}

// TaskRemaining reports time left on the pending re-entry, zero if none.
func (tf *TimerFacility) TaskRemaining() time.Duration {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.task.armed {
		return 0
	}
	if tf.paused {
		return tf.task.remaining
	}
	if r := tf.task.fireAt.Sub(tf.now()); r > 0 {
		return r
	}
	return 0
}

// Pause freezes both one-shots and all running clocks.
func (tf *TimerFacility) Pause() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if tf.paused {
		return
	}
	tf.paused = true
	now := tf.now()
	tf.freeze(&tf.task, now)
	tf.freeze(&tf.round, now)
	for i := range tf.clocks {
		c := &tf.clocks[i]
		if c.running {
			c.accumulated += now.Sub(c.startedAt)
		}
	}
}

// Resume re-arms frozen one-shots with their owed remaining time.
func (tf *TimerFacility) Resume() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.paused {
		return
	}
	tf.paused = false
	now := tf.now()
	gen := tf.taskGen
	tf.thaw(&tf.task, func() { tf.onTaskFire(gen) })
	tf.thaw(&tf.round, tf.onRoundFire)
	for i := range tf.clocks {
		c := &tf.clocks[i]
		if c.running {
			c.startedAt = now
		}
	}
}

func (tf *TimerFacility) Paused() bool {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.paused
}

func (tf *TimerFacility) StartClock(id int) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if id <= 0 || id >= len(tf.clocks) {
		return
	}
	tf.clocks[id] = clock{running: true, startedAt: tf.now()}
}

func (tf *TimerFacility) StopClock(id int) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if id <= 0 || id >= len(tf.clocks) {
		return
	}
	c := &tf.clocks[id]
	if c.running && !tf.paused {
		c.accumulated += tf.now().Sub(c.startedAt)
	}
	c.running = false
}

// Elapsed reports a clock's total running time excluding paused spans.
func (tf *TimerFacility) Elapsed(id int) time.Duration {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if id <= 0 || id >= len(tf.clocks) {
		return 0
	}
	c := tf.clocks[id]
	if c.running && !tf.paused {
		return c.accumulated + tf.now().Sub(c.startedAt)
	}
	return c.accumulated
}

// Close stops all armed timers.
func (tf *TimerFacility) Close() {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	tf.disarm(&tf.task)
	tf.disarm(&tf.round)
}

func (tf *TimerFacility) arm(o *oneShot, d time.Duration, fire func()) {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	if d < 0 {
		d = 0
	}
	o.armed = true
	o.fireAt = tf.now().Add(d)
	if tf.paused {
		o.remaining = d
		return
	}
	o.timer = time.AfterFunc(d, fire)
}

func (tf *TimerFacility) disarm(o *oneShot) {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.armed = false
	o.remaining = 0
}

func (tf *TimerFacility) freeze(o *oneShot, now time.Time) {
	if !o.armed {
		return
	}
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.remaining = o.fireAt.Sub(now)
	if o.remaining < 0 {
		o.remaining = 0
	}
}

func (tf *TimerFacility) thaw(o *oneShot, fire func()) {
	if !o.armed {
		return
	}
	o.fireAt = tf.now().Add(o.remaining)
	o.timer = time.AfterFunc(o.remaining, fire)
}
