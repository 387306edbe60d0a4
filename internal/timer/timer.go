// Package timer runs per-session phase and swap countdowns. It never touches
// session state; it reports what happened as Events on a single ordered
// channel and leaves the reaction to the consumer.
package timer

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventKind string

const (
	TimerStarted  EventKind = "timerStarted"
	TimerCleared  EventKind = "timerCleared"
	PhaseExpired  EventKind = "phaseExpired"
	SwapTick      EventKind = "swapPhaseUpdate"
	SwapCompleted EventKind = "swapPhaseComplete"
)

type Event struct {
	SessionID string
	Kind      EventKind

	// PhaseExpired: the phase index the timer was armed for.
	PhaseIndex int
	// TimerStarted: start timestamp and full duration.
	StartedAt time.Time
	Duration  time.Duration
	// SwapTick: remaining whole seconds and the swap lock.
	TimeLeft int
	CanSwap  bool
}

type Config struct {
	PhaseDuration time.Duration
	// SwapSeconds is the swap window and SwapLockSeconds the remaining time at
	// which swapping locks.
	SwapSeconds     int
	SwapLockSeconds int
	// SwapTick is the countdown period, one second outside tests.
	SwapTick time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		PhaseDuration:   30 * time.Second,
		SwapSeconds:     60,
		SwapLockSeconds: 20,
		SwapTick:        time.Second,
	}
}

// PhaseState is the resynchronizable view of a phase timer: anyone holding
// StartedAt and Duration can recompute TimeLeft without a live countdown.
type PhaseState struct {
	StartedAt time.Time
	Duration  time.Duration
	TimeLeft  int
	Active    bool
}

type phaseTimer struct {
	gen     uint64
	index   int
	started time.Time
	t       *time.Timer
}

type swapTimer struct {
	gen  uint64
	stop chan struct{}
}

type Coordinator struct {
	cfg Config
	log *zap.Logger

	mu    sync.Mutex
	gen   uint64
	phase map[string]*phaseTimer
	swap  map[string]*swapTimer

	// queue preserves emission order without ever blocking a caller; pump
	// drains it into out. Past maxQueue, swap ticks coalesce per session.
	queue    []Event
	maxQueue int
	signal   chan struct{}
	out      chan Event

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(parent context.Context, cfg Config, log *zap.Logger) *Coordinator {
	def := DefaultConfig()
	if cfg.PhaseDuration <= 0 {
		cfg.PhaseDuration = def.PhaseDuration
	}
	if cfg.SwapSeconds <= 0 {
		cfg.SwapSeconds = def.SwapSeconds
	}
	if cfg.SwapTick <= 0 {
		cfg.SwapTick = def.SwapTick
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(parent)

	c := &Coordinator{
		cfg:      cfg,
		log:      log.Named("timer"),
		phase:    make(map[string]*phaseTimer),
		swap:     make(map[string]*swapTimer),
		maxQueue: maxQueuedEvents,
		signal:   make(chan struct{}, 1),
		out:      make(chan Event, 64),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.pump()
	return c
}

// Events delivers timer events in the order they were raised.
func (c *Coordinator) Events() <-chan Event { return c.out }

func (c *Coordinator) Config() Config { return c.cfg }

// StartPhase arms the phase timer for id, replacing any armed one.
func (c *Coordinator) StartPhase(id string, phaseIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearPhaseLocked(id)

	c.gen++
	pt := &phaseTimer{gen: c.gen, index: phaseIndex, started: c.cfg.Now()}
	gen := pt.gen
	pt.t = time.AfterFunc(c.cfg.PhaseDuration, func() { c.expire(id, gen) })
	c.phase[id] = pt

	c.log.Debug("phase timer started", zap.String("draft_id", id), zap.Int("phase", phaseIndex))
	c.enqueueLocked(Event{SessionID: id, Kind: TimerStarted, StartedAt: pt.started, Duration: c.cfg.PhaseDuration, PhaseIndex: phaseIndex})
}

func (c *Coordinator) expire(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pt, ok := c.phase[id]
	if !ok || pt.gen != gen {
		// cleared or re-armed after this fire was scheduled
		return
	}
	delete(c.phase, id)

	c.log.Debug("phase timer expired", zap.String("draft_id", id), zap.Int("phase", pt.index))
	c.enqueueLocked(Event{SessionID: id, Kind: TimerCleared})
	c.enqueueLocked(Event{SessionID: id, Kind: PhaseExpired, PhaseIndex: pt.index})
}

// ClearPhase cancels id's phase timer. Clearing nothing emits nothing.
func (c *Coordinator) ClearPhase(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearPhaseLocked(id)
}

func (c *Coordinator) clearPhaseLocked(id string) {
	pt, ok := c.phase[id]
	if !ok {
		return
	}
	pt.t.Stop()
	delete(c.phase, id)
	c.log.Debug("phase timer cleared", zap.String("draft_id", id))
	c.enqueueLocked(Event{SessionID: id, Kind: TimerCleared})
}

// StartSwap arms the repeating swap countdown for id, replacing any running one.
func (c *Coordinator) StartSwap(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearSwapLocked(id)

	c.gen++
	st := &swapTimer{gen: c.gen, stop: make(chan struct{})}
	c.swap[id] = st

	c.log.Debug("swap timer started", zap.String("draft_id", id), zap.Int("seconds", c.cfg.SwapSeconds))
	go c.runSwap(id, st)
}

func (c *Coordinator) runSwap(id string, st *swapTimer) {
	ticker := time.NewTicker(c.cfg.SwapTick)
	defer ticker.Stop()

	timeLeft := c.cfg.SwapSeconds
	canSwap := true
	for {
		select {
		case <-st.stop:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
		}

		timeLeft--
		if timeLeft <= c.cfg.SwapLockSeconds {
			canSwap = false
		}

		c.mu.Lock()
		if cur, ok := c.swap[id]; !ok || cur.gen != st.gen {
			c.mu.Unlock()
			return
		}
		c.enqueueLocked(Event{SessionID: id, Kind: SwapTick, TimeLeft: timeLeft, CanSwap: canSwap})
		if timeLeft <= 0 {
			delete(c.swap, id)
			c.enqueueLocked(Event{SessionID: id, Kind: SwapCompleted})
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) ClearSwap(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSwapLocked(id)
}

func (c *Coordinator) clearSwapLocked(id string) {
	st, ok := c.swap[id]
	if !ok {
		return
	}
	close(st.stop)
	delete(c.swap, id)
	c.log.Debug("swap timer cleared", zap.String("draft_id", id))
}

func (c *Coordinator) ClearAll(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearPhaseLocked(id)
	c.clearSwapLocked(id)
}

// PhaseState recomputes id's remaining phase time as max(0, duration-elapsed),
// rounded up to whole seconds.
func (c *Coordinator) PhaseState(id string) PhaseState {
	c.mu.Lock()
	pt, ok := c.phase[id]
	c.mu.Unlock()
	if !ok {
		return PhaseState{}
	}
	return PhaseState{
		StartedAt: pt.started,
		Duration:  c.cfg.PhaseDuration,
		TimeLeft:  Remaining(pt.started, c.cfg.PhaseDuration, c.cfg.Now()),
		Active:    true,
	}
}

// Remaining is the whole seconds left of duration since start, never negative.
func Remaining(start time.Time, duration time.Duration, now time.Time) int {
	left := duration - now.Sub(start)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func (c *Coordinator) HasActiveTimers(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, p := c.phase[id]
	_, s := c.swap[id]
	return p || s
}

type Counts struct {
	Phase int `json:"phase"`
	Swap  int `json:"swap"`
}

func (c *Coordinator) ActiveTimerCount() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counts{Phase: len(c.phase), Swap: len(c.swap)}
}

// Close stops every timer and the event pump. Undelivered events are dropped.
func (c *Coordinator) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		for id, pt := range c.phase {
			pt.t.Stop()
			delete(c.phase, id)
		}
		for id, st := range c.swap {
			close(st.stop)
			delete(c.swap, id)
		}
		c.queue = nil
		c.mu.Unlock()

		c.cancel()
		<-c.done
	})
}

const maxQueuedEvents = 1024

func (c *Coordinator) enqueueLocked(ev Event) {
	if ev.Kind == SwapTick && len(c.queue) >= c.maxQueue {
		// a newer tick supersedes a queued one for the same session
		for i := len(c.queue) - 1; i >= 0; i-- {
			if q := c.queue[i]; q.Kind == SwapTick && q.SessionID == ev.SessionID {
				c.queue[i] = ev
				return
			}
		}
	}
	c.queue = append(c.queue, ev)
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Coordinator) pump() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.signal:
		}

		for {
			c.mu.Lock()
			if len(c.queue) == 0 {
				c.mu.Unlock()
				break
			}
			ev := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()

			select {
			case c.out <- ev:
			case <-c.ctx.Done():
				return
			}
		}
	}
}
