// Package registry owns the in-memory draft sessions. Sessions are ephemeral:
// they live until the sweep evicts them or the process exits.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/engine"
)

type Options struct {
	// Expiry is how old a session must be before the sweep may evict it.
	Expiry time.Duration
	// SweepInterval is how often the sweep runs. Zero disables it.
	SweepInterval time.Duration
	Rules         engine.Rules
	// Now defaults to time.Now.
	Now func() time.Time
}

type TimerState struct {
	StartTime *time.Time
	TimeLeft  *int
	Active    bool
}

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*engine.Session

	opts   Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New builds the registry and starts its sweep, which stops when parent is
// cancelled or Destroy is called.
func New(parent context.Context, opts Options, log *zap.Logger) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rules.SwapWindow <= 0 {
		opts.Rules = engine.DefaultRules()
	}
	ctx, cancel := context.WithCancel(parent)

	r := &Registry{
		sessions: make(map[string]*engine.Session),
		opts:     opts,
		log:      log.Named("registry"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go r.loop()
	return r
}

func (r *Registry) loop() {
	defer close(r.done)
	if r.opts.SweepInterval <= 0 {
		<-r.ctx.Done()
		return
	}

	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CreateSession creates id, or for an existing id upgrades a placeholder team
// name to a real one. A customized name is never overwritten.
func (r *Registry) CreateSession(id, blueName, redName string, fearless []engine.Champion, gameNumber int) (engine.Session, error) {
	if err := engine.ValidateDraftCreation(id, blueName, redName); err != nil {
		return engine.Session{}, err
	}
	blue, red := strings.TrimSpace(blueName), strings.TrimSpace(redName)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		newBlue, newRed := s.BlueTeamName, s.RedTeamName
		if newBlue == engine.PlaceholderBlueName {
			newBlue = blue
		}
		if newRed == engine.PlaceholderRedName {
			newRed = red
		}
		if newBlue == newRed {
			return engine.Session{}, engine.Invalid(engine.ErrDuplicateTeamNames, "Team names must be different")
		}
		if newBlue != s.BlueTeamName {
			s.BlueTeamName = newBlue
			r.log.Info("upgraded team name", zap.String("draft_id", id), zap.String("team", "BLUE"), zap.String("name", newBlue))
		}
		if newRed != s.RedTeamName {
			s.RedTeamName = newRed
			r.log.Info("upgraded team name", zap.String("draft_id", id), zap.String("team", "RED"), zap.String("name", newRed))
		}
		return s.Clone(), nil
	}

	s := engine.NewSession(id, blue, red, fearless, gameNumber, r.opts.Rules, r.opts.Now())
	r.sessions[id] = s
	r.log.Info("created session",
		zap.String("draft_id", id),
		zap.String("blue", blue),
		zap.String("red", red),
		zap.Int("game", s.GameNumber),
		zap.Int("fearless_bans", len(s.FearlessBans)),
	)
	return s.Clone(), nil
}

// EnsureSession returns id, creating it with placeholder names if unknown.
func (r *Registry) EnsureSession(id string) (engine.Session, error) {
	if s, ok := r.Get(id); ok {
		return s, nil
	}
	return r.CreateSession(id, engine.PlaceholderBlueName, engine.PlaceholderRedName, nil, 1)
}

// Get returns a copy of the session; ok is false for unknown ids.
func (r *Registry) Get(id string) (engine.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return engine.Session{}, false
	}
	return s.Clone(), true
}

// Update runs fn against the live session while holding the registry lock.
// fn must not block or call back into the registry.
func (r *Registry) Update(id string, fn func(s *engine.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return engine.Invalid(engine.ErrSessionNotFound, "Session not found")
	}
	return fn(s)
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *Registry) List() []engine.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]engine.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) UpdateConnectionStatus(id string, team engine.Team, connected bool) bool {
	if !team.Playing() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	if team == engine.TeamBlue {
		s.BlueConnected = connected
	} else {
		s.RedConnected = connected
	}
	r.log.Debug("connection status",
		zap.String("draft_id", id),
		zap.String("team", string(team)),
		zap.Bool("connected", connected),
		zap.Bool("in_progress", s.InProgress),
	)
	return true
}

// AssignTeamName binds a captain's custom name to a side. An exact name match
// wins; otherwise a single open slot (placeholder name, nobody connected) is
// claimed, and a tie between two open slots is broken by the draft id. It
// returns "" when both sides already carry custom names.
func (r *Registry) AssignTeamName(id, customName string) (engine.Team, error) {
	name := strings.TrimSpace(customName)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return "", engine.Invalid(engine.ErrSessionNotFound, "Session not found")
	}
	if name == "" {
		return "", nil
	}

	if name == s.BlueTeamName {
		return engine.TeamBlue, nil
	}
	if name == s.RedTeamName {
		return engine.TeamRed, nil
	}

	blueOpen := s.BlueTeamName == engine.PlaceholderBlueName && !s.BlueConnected
	redOpen := s.RedTeamName == engine.PlaceholderRedName && !s.RedConnected

	var side engine.Team
	switch {
	case blueOpen && redOpen:
		side = engine.TeamRed
		if preferBlue(id) {
			side = engine.TeamBlue
		}
	case blueOpen:
		side = engine.TeamBlue
	case redOpen:
		side = engine.TeamRed
	default:
		r.log.Info("no open team slot", zap.String("draft_id", id), zap.String("name", name))
		return "", nil
	}

	if side == engine.TeamBlue {
		s.BlueTeamName = name
	} else {
		s.RedTeamName = name
	}
	r.log.Info("assigned team name", zap.String("draft_id", id), zap.String("team", string(side)), zap.String("name", name))
	return side, nil
}

// preferBlue sums the id's code points; even sums go blue.
func preferBlue(id string) bool {
	sum := 0
	for _, c := range id {
		sum += int(c)
	}
	return sum%2 == 0
}

func (r *Registry) UpdateTimerState(id string, start *time.Time, timeLeft *int, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.PhaseStartTime = start
	s.PhaseTimeLeft = timeLeft
	s.PhaseTimerActive = active
	return true
}

func (r *Registry) TimerState(id string) (TimerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return TimerState{}, false
	}
	return TimerState{StartTime: s.PhaseStartTime, TimeLeft: s.PhaseTimeLeft, Active: s.PhaseTimerActive}, true
}

// Sweep evicts sessions older than the expiry window that are not mid-draft,
// returning the evicted ids.
func (r *Registry) Sweep() []string {
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, s := range r.sessions {
		if now.Sub(s.CreatedAt) > r.opts.Expiry && !s.InProgress {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	if len(expired) > 0 {
		r.log.Info("evicted expired sessions", zap.Int("count", len(expired)), zap.Strings("draft_ids", expired))
	}
	return expired
}

// Destroy stops the sweep and drops every session. Safe to call twice.
func (r *Registry) Destroy() {
	r.once.Do(func() {
		r.cancel()
		<-r.done

		r.mu.Lock()
		clear(r.sessions)
		r.mu.Unlock()
	})
}
